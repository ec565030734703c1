package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/udisondev/stunsim/internal/stun"
)

// ModifiersInput represents optional stun modifiers; omitted fields are neutral.
type ModifiersInput struct {
	IncreasedStunChance   *float64 `json:"increased_stun_chance,omitempty" jsonschema:"additive percent bonus to light stun chance"`
	MoreStunChance        *float64 `json:"more_stun_chance,omitempty" jsonschema:"multiplicative light stun chance factor (1 = neutral)"`
	StunBuildupMultiplier *float64 `json:"stun_buildup_multiplier,omitempty" jsonschema:"multiplier on heavy stun buildup (1 = neutral)"`
	ReducedStunThreshold  *float64 `json:"reduced_stun_threshold,omitempty" jsonschema:"fraction of max life used for light stun (1 = neutral)"`
}

// HitInput represents one hit against a target.
type HitInput struct {
	Damage        float64         `json:"damage" jsonschema:"damage dealt by the hit"`
	TargetMaxLife float64         `json:"target_max_life" jsonschema:"maximum life of the target"`
	DamageType    string          `json:"damage_type" jsonschema:"physical, fire, cold, lightning or chaos"`
	AttackType    string          `json:"attack_type" jsonschema:"melee, ranged or spell"`
	Modifiers     *ModifiersInput `json:"modifiers,omitempty" jsonschema:"optional stun modifiers"`
}

// AnalyzeStunInput represents the MCP tool input for a complete stun analysis.
type AnalyzeStunInput struct {
	Damage        float64         `json:"damage" jsonschema:"damage dealt by the hit"`
	TargetMaxLife float64         `json:"target_max_life" jsonschema:"maximum life of the target"`
	DamageType    string          `json:"damage_type" jsonschema:"physical, fire, cold, lightning or chaos"`
	AttackType    string          `json:"attack_type" jsonschema:"melee, ranged or spell"`
	TargetID      string          `json:"target_id,omitempty" jsonschema:"target whose heavy stun meter accumulates; a fresh id is generated when empty"`
	Modifiers     *ModifiersInput `json:"modifiers,omitempty" jsonschema:"optional stun modifiers"`
}

func (in AnalyzeStunInput) hit() HitInput {
	return HitInput{
		Damage:        in.Damage,
		TargetMaxLife: in.TargetMaxLife,
		DamageType:    in.DamageType,
		AttackType:    in.AttackType,
		Modifiers:     in.Modifiers,
	}
}

// LightResult represents the light stun verdict of a hit.
type LightResult struct {
	FinalChance float64 `json:"final_chance" jsonschema:"light stun chance in percent (0-100)"`
	WillStun    bool    `json:"will_stun" jsonschema:"whether the hit light-stuns"`
}

// MeterResult represents a heavy stun meter.
type MeterResult struct {
	TargetID          string  `json:"target_id" jsonschema:"target id"`
	BuildupPercentage float64 `json:"buildup_percentage" jsonschema:"current buildup in percent"`
	State             string  `json:"state" jsonschema:"dormant, building or primed"`
	IsPrimed          bool    `json:"is_primed" jsonschema:"whether the next hit is a crushing blow"`
	Hits              int     `json:"hits" jsonschema:"hits received"`
	HeavyStuns        int     `json:"heavy_stuns" jsonschema:"heavy stuns triggered"`
	CrushingBlows     int     `json:"crushing_blows" jsonschema:"crushing blows landed"`
}

// HeavyResult represents the heavy stun effect of a hit.
type HeavyResult struct {
	BuildupAdded          float64     `json:"buildup_added" jsonschema:"buildup contributed by this hit in percent"`
	PriorState            string      `json:"prior_state" jsonschema:"meter state before the hit"`
	Transition            string      `json:"transition" jsonschema:"state reached by the hit (triggered on the filling hit)"`
	TriggeredHeavyStun    bool        `json:"triggered_heavy_stun" jsonschema:"whether the hit filled the meter"`
	TriggeredCrushingBlow bool        `json:"triggered_crushing_blow" jsonschema:"whether the hit landed on a primed meter"`
	HitsToHeavyStun       *float64    `json:"hits_to_heavy_stun" jsonschema:"remaining hits of this size to fill the meter; null when unreachable"`
	Reachable             bool        `json:"reachable" jsonschema:"whether the meter can be filled with hits of this size"`
	Meter                 MeterResult `json:"meter" jsonschema:"meter after the hit"`
}

// AnalyzeStunResult represents the MCP tool output for a complete stun analysis.
type AnalyzeStunResult struct {
	TargetID   string      `json:"target_id" jsonschema:"target the hit was applied to"`
	DamageType string      `json:"damage_type" jsonschema:"normalized damage type"`
	AttackType string      `json:"attack_type" jsonschema:"normalized attack type"`
	Light      LightResult `json:"light" jsonschema:"light stun verdict"`
	Heavy      HeavyResult `json:"heavy" jsonschema:"heavy stun effect"`
	Summary    string      `json:"summary" jsonschema:"human-readable summary"`
}

// PlanStunResult represents the MCP tool output for a hits-to-stun projection.
type PlanStunResult struct {
	LightChancePerHit float64  `json:"light_chance_per_hit" jsonschema:"light stun chance of one hit in percent"`
	BuildupPerHit     float64  `json:"buildup_per_hit" jsonschema:"heavy buildup of one hit in percent"`
	HitsForLightStun  *float64 `json:"hits_for_light_stun" jsonschema:"hits to reach 100 percent light stun chance; null when unreachable"`
	LightReachable    bool     `json:"light_reachable" jsonschema:"whether light stun is reachable"`
	HitsForHeavyStun  *float64 `json:"hits_for_heavy_stun" jsonschema:"hits to fill an empty heavy meter; null when unreachable"`
	HeavyReachable    bool     `json:"heavy_reachable" jsonschema:"whether heavy stun is reachable"`
}

// QuickStunInput represents the MCP tool input for a quick calculation.
type QuickStunInput struct {
	Damage        float64 `json:"damage" jsonschema:"damage dealt by the hit"`
	TargetMaxLife float64 `json:"target_max_life" jsonschema:"maximum life of the target"`
	IsPhysical    bool    `json:"is_physical" jsonschema:"physical damage when true, fire otherwise"`
	IsMelee       bool    `json:"is_melee" jsonschema:"melee attack when true, spell otherwise"`
}

// QuickStunResult represents the MCP tool output for a quick calculation.
type QuickStunResult struct {
	Summary string `json:"summary" jsonschema:"human-readable summary"`
}

// StunMeterInput represents the MCP tool input for meter inspection.
type StunMeterInput struct {
	TargetID string `json:"target_id,omitempty" jsonschema:"target to inspect; every tracked target when empty"`
}

// StunMeterResult represents the MCP tool output for meter inspection.
type StunMeterResult struct {
	Found   bool          `json:"found" jsonschema:"whether the requested target is tracked"`
	Tracked []string      `json:"tracked" jsonschema:"tracked target ids in first-hit order"`
	Meters  []MeterResult `json:"meters" jsonschema:"requested meters"`
}

// DecayStunInput represents the MCP tool input for meter decay.
type DecayStunInput struct {
	TargetID string  `json:"target_id" jsonschema:"tracked target to decay"`
	Points   float64 `json:"points" jsonschema:"buildup points to remove"`
}

// DecayStunResult represents the MCP tool output for meter decay.
type DecayStunResult struct {
	Meter MeterResult `json:"meter" jsonschema:"meter after decay"`
}

// AnalyzeStunTool defines the MCP tool schema for complete stun analysis.
func AnalyzeStunTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "analyze_stun",
		Description: "Applies a hit to a target and reports light stun chance and heavy stun meter changes",
	}
}

// PlanStunTool defines the MCP tool schema for hits-to-stun projections.
func PlanStunTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "plan_stun",
		Description: "Projects how many hits of a given size are needed to light stun or heavy stun a target",
	}
}

// QuickStunTool defines the MCP tool schema for quick calculations.
func QuickStunTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "quick_stun",
		Description: "Summarizes a single hit against a fresh target",
	}
}

// StunMeterTool defines the MCP tool schema for meter inspection.
func StunMeterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "stun_meter",
		Description: "Shows the heavy stun meter of one target or of every tracked target",
	}
}

// DecayStunTool defines the MCP tool schema for meter decay.
func DecayStunTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "decay_stun",
		Description: "Lowers the heavy stun buildup of a tracked target",
	}
}

// AnalyzeStunHandler applies a hit through the session calculator.
func AnalyzeStunHandler(calc *stun.Calculator) mcp.ToolHandlerFor[AnalyzeStunInput, AnalyzeStunResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input AnalyzeStunInput) (*mcp.CallToolResult, AnalyzeStunResult, error) {
		dt, at, mods, err := input.hit().parse()
		if err != nil {
			return nil, AnalyzeStunResult{}, toolError(err)
		}

		targetID := strings.TrimSpace(input.TargetID)
		if targetID == "" {
			targetID = "target-" + uuid.NewString()
		}

		res, err := calc.CalculateCompleteStun(input.Damage, input.TargetMaxLife, dt, at, targetID, mods)
		if err != nil {
			return nil, AnalyzeStunResult{}, toolError(err)
		}

		reach, hits := nullableHits(res.Heavy.HitsToHeavyStun)
		return nil, AnalyzeStunResult{
			TargetID:   res.TargetID,
			DamageType: res.DamageType.String(),
			AttackType: res.AttackType.String(),
			Light: LightResult{
				FinalChance: res.Light.FinalChance,
				WillStun:    res.Light.WillStun,
			},
			Heavy: HeavyResult{
				BuildupAdded:          res.Heavy.BuildupAdded,
				PriorState:            res.Heavy.PriorState.String(),
				Transition:            res.Heavy.Transition.String(),
				TriggeredHeavyStun:    res.Heavy.TriggeredHeavyStun,
				TriggeredCrushingBlow: res.Heavy.TriggeredCrushingBlow,
				HitsToHeavyStun:       hits,
				Reachable:             reach,
				Meter:                 meterResult(res.Heavy.Meter),
			},
			Summary: stun.Summary(res),
		}, nil
	}
}

// PlanStunHandler projects hits to stun without touching any meter.
func PlanStunHandler(calc *stun.Calculator) mcp.ToolHandlerFor[HitInput, PlanStunResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input HitInput) (*mcp.CallToolResult, PlanStunResult, error) {
		dt, at, mods, err := input.parse()
		if err != nil {
			return nil, PlanStunResult{}, toolError(err)
		}

		plan, err := calc.CalculateHitsToStun(input.Damage, input.TargetMaxLife, dt, at, mods)
		if err != nil {
			return nil, PlanStunResult{}, toolError(err)
		}

		out := PlanStunResult{
			LightChancePerHit: plan.LightChancePerHit,
			BuildupPerHit:     plan.BuildupPerHit,
		}
		out.LightReachable, out.HitsForLightStun = nullableHits(plan.HitsForLightStun)
		out.HeavyReachable, out.HitsForHeavyStun = nullableHits(plan.HitsForHeavyStun)
		return nil, out, nil
	}
}

// QuickStunHandler runs the one-shot facade.
func QuickStunHandler() mcp.ToolHandlerFor[QuickStunInput, QuickStunResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input QuickStunInput) (*mcp.CallToolResult, QuickStunResult, error) {
		summary, err := stun.QuickStunCalculation(input.Damage, input.TargetMaxLife, input.IsPhysical, input.IsMelee)
		if err != nil {
			return nil, QuickStunResult{}, toolError(err)
		}
		return nil, QuickStunResult{Summary: summary}, nil
	}
}

// StunMeterHandler inspects one meter or all of them.
func StunMeterHandler(calc *stun.Calculator) mcp.ToolHandlerFor[StunMeterInput, StunMeterResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input StunMeterInput) (*mcp.CallToolResult, StunMeterResult, error) {
		out := StunMeterResult{
			Tracked: calc.TrackedEntities(),
			Meters:  []MeterResult{},
		}

		targetID := strings.TrimSpace(input.TargetID)
		if targetID != "" {
			snap, ok := calc.HeavyStunMeter(targetID)
			if ok {
				out.Found = true
				out.Meters = append(out.Meters, meterResult(snap))
			}
			return nil, out, nil
		}

		for _, id := range out.Tracked {
			if snap, ok := calc.HeavyStunMeter(id); ok {
				out.Meters = append(out.Meters, meterResult(snap))
			}
		}
		out.Found = len(out.Meters) > 0
		return nil, out, nil
	}
}

// DecayStunHandler lowers a tracked target's buildup.
func DecayStunHandler(calc *stun.Calculator) mcp.ToolHandlerFor[DecayStunInput, DecayStunResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input DecayStunInput) (*mcp.CallToolResult, DecayStunResult, error) {
		snap, err := calc.Decay(strings.TrimSpace(input.TargetID), input.Points)
		if err != nil {
			return nil, DecayStunResult{}, toolError(err)
		}
		return nil, DecayStunResult{Meter: meterResult(snap)}, nil
	}
}

func (in HitInput) parse() (stun.DamageType, stun.AttackType, *stun.Modifiers, error) {
	dt, err := stun.ParseDamageType(in.DamageType)
	if err != nil {
		return 0, 0, nil, err
	}
	at, err := stun.ParseAttackType(in.AttackType)
	if err != nil {
		return 0, 0, nil, err
	}
	return dt, at, in.Modifiers.modifiers(), nil
}

func (in *ModifiersInput) modifiers() *stun.Modifiers {
	if in == nil {
		return nil
	}
	m := stun.ModifierOverrides(*in).Modifiers()
	return &m
}

func meterResult(s stun.MeterSnapshot) MeterResult {
	return MeterResult{
		TargetID:          s.TargetID,
		BuildupPercentage: s.BuildupPercentage,
		State:             s.State.String(),
		IsPrimed:          s.IsPrimed(),
		Hits:              s.Hits,
		HeavyStuns:        s.HeavyStuns,
		CrushingBlows:     s.CrushingBlows,
	}
}

// nullableHits maps the +Inf sentinel to null; JSON has no infinity.
func nullableHits(hits float64) (bool, *float64) {
	if stun.IsUnreachable(hits) {
		return false, nil
	}
	return true, &hits
}

// toolError marks validation failures as bad game data for the caller.
func toolError(err error) error {
	switch {
	case errors.Is(err, stun.ErrInvalidInput):
		return fmt.Errorf("bad character or monster data: %w", err)
	case errors.Is(err, stun.ErrUnknownTarget):
		return fmt.Errorf("target has no stun meter yet: %w", err)
	default:
		return err
	}
}
