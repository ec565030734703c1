// Package render formats stun results for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/udisondev/stunsim/internal/sim"
	"github.com/udisondev/stunsim/internal/stun"
)

// Renderer handles output formatting.
// Pretty output is colored and boxed; plain output is one key=value line per record.
type Renderer struct {
	pretty bool
}

// New creates a new renderer.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// Result formats one evaluated hit.
func (r *Renderer) Result(res stun.Result) string {
	if !r.pretty {
		return plainResult(res) + "\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n",
		color.CyanString("Hit on %s:", res.TargetID),
		fmt.Sprintf("%.0f %s %s vs %.0f life", res.Damage, res.DamageType, res.AttackType, res.TargetMaxLife))
	sb.WriteString(strings.Repeat("─", 60) + "\n")

	light := color.HiBlackString("no stun")
	if res.Light.WillStun {
		light = color.GreenString("STUN")
	}
	fmt.Fprintf(&sb, "  light   %5.1f%%  %s\n", res.Light.FinalChance, light)
	if res.Light.Rolled {
		fmt.Fprintf(&sb, "          roll %.1f\n", res.Light.Roll)
	}

	fmt.Fprintf(&sb, "  heavy  +%5.1f%%  meter %s %s\n",
		res.Heavy.BuildupAdded, bar(res.Heavy.Meter.BuildupPercentage), r.state(res.Heavy.Meter.State))
	fmt.Fprintf(&sb, "  to fill %s hits\n", stun.FormatHits(res.Heavy.HitsToHeavyStun))

	if res.Heavy.TriggeredCrushingBlow {
		sb.WriteString("  " + color.YellowString("CRUSHING BLOW") + "\n")
	}
	if res.Heavy.TriggeredHeavyStun {
		sb.WriteString("  " + color.RedString("HEAVY STUN") + "\n")
	}
	return sb.String()
}

// Plan formats a hits-to-stun projection.
func (r *Renderer) Plan(plan stun.HitPlan) string {
	light := stun.FormatHits(plan.HitsForLightStun)
	heavy := stun.FormatHits(plan.HitsForHeavyStun)
	if !r.pretty {
		return fmt.Sprintf("light_chance=%.2f buildup=%.2f hits_light=%s hits_heavy=%s\n",
			plan.LightChancePerHit, plan.BuildupPerHit, light, heavy)
	}

	var sb strings.Builder
	sb.WriteString(color.CyanString("Hits to stun") + "\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n")
	fmt.Fprintf(&sb, "  light  %5.1f%% per hit  → %s\n", plan.LightChancePerHit, r.hits(light))
	fmt.Fprintf(&sb, "  heavy  %5.1f%% per hit  → %s\n", plan.BuildupPerHit, r.hits(heavy))
	return sb.String()
}

// Meters formats heavy stun meters.
func (r *Renderer) Meters(meters []stun.MeterSnapshot) string {
	if len(meters) == 0 {
		return "No tracked targets\n"
	}

	var sb strings.Builder
	for _, m := range meters {
		if r.pretty {
			fmt.Fprintf(&sb, "%-20s %s %-8s hits=%d heavy=%d crushing=%d\n",
				m.TargetID, bar(m.BuildupPercentage), r.state(m.State), m.Hits, m.HeavyStuns, m.CrushingBlows)
		} else {
			fmt.Fprintf(&sb, "target=%s buildup=%.2f state=%s hits=%d heavy=%d crushing=%d\n",
				m.TargetID, m.BuildupPercentage, m.State, m.Hits, m.HeavyStuns, m.CrushingBlows)
		}
	}
	return sb.String()
}

// Report formats a replayed session: the hit log then per-target totals.
func (r *Renderer) Report(report sim.Report) string {
	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.CyanString("Combat log") + "\n")
		sb.WriteString(strings.Repeat("─", 60) + "\n")
	}
	for _, hr := range report.Hits {
		r.formatHit(&sb, hr)
	}

	if r.pretty {
		sb.WriteString("\n" + color.CyanString("Targets") + "\n")
		sb.WriteString(strings.Repeat("─", 60) + "\n")
	}
	for _, ts := range report.Targets {
		r.formatTarget(&sb, ts)
	}
	return sb.String()
}

// Profiles formats coefficient profile names.
func (r *Renderer) Profiles(names []string) string {
	if len(names) == 0 {
		return "No coefficient profiles\n"
	}
	return strings.Join(names, "\n") + "\n"
}

func (r *Renderer) formatHit(sb *strings.Builder, hr sim.HitResult) {
	if !r.pretty {
		fmt.Fprintf(sb, "hit=%d label=%q %s\n", hr.Index+1, hr.Label, plainResult(hr.Result))
		return
	}

	label := hr.Label
	if label == "" {
		label = fmt.Sprintf("%.0f %s %s", hr.Result.Damage, hr.Result.DamageType, hr.Result.AttackType)
	}

	var events []string
	if hr.Result.Light.WillStun {
		events = append(events, color.GreenString("stun"))
	}
	if hr.Result.Heavy.TriggeredCrushingBlow {
		events = append(events, color.YellowString("crushing blow"))
	}
	if hr.Result.Heavy.TriggeredHeavyStun {
		events = append(events, color.RedString("HEAVY STUN"))
	}

	fmt.Fprintf(sb, "%s %-14s %-28s %s %s\n",
		color.HiBlackString("#%03d", hr.Index+1),
		hr.Result.TargetID,
		label,
		bar(hr.Result.Heavy.Meter.BuildupPercentage),
		strings.Join(events, " "))
}

func (r *Renderer) formatTarget(sb *strings.Builder, ts sim.TargetSummary) {
	name := ts.TargetID
	if ts.Label != "" {
		name = fmt.Sprintf("%s (%s)", ts.Label, ts.TargetID)
	}

	if !r.pretty {
		fmt.Fprintf(sb, "target=%s hits=%d light=%d heavy=%d crushing=%d peak_light=%.2f buildup=%.2f state=%s\n",
			ts.TargetID, ts.Hits, ts.LightStuns, ts.HeavyStuns, ts.CrushingBlows,
			ts.PeakLightChance, ts.FinalBuildup, ts.FinalState)
		return
	}

	fmt.Fprintf(sb, "%-30s hits %-3d light %-3d heavy %-3d crushing %-3d peak %5.1f%%  %s %s\n",
		name, ts.Hits, ts.LightStuns, ts.HeavyStuns, ts.CrushingBlows,
		ts.PeakLightChance, bar(ts.FinalBuildup), r.state(ts.FinalState))
}

func (r *Renderer) state(s stun.MeterState) string {
	switch s {
	case stun.StatePrimed:
		return color.YellowString(s.String())
	case stun.StateBuilding:
		return color.WhiteString(s.String())
	case stun.StateTriggered:
		return color.RedString(s.String())
	default:
		return color.HiBlackString(s.String())
	}
}

func (r *Renderer) hits(h string) string {
	if h == "never" {
		return color.HiBlackString(h)
	}
	return color.GreenString(h + " hits")
}

func plainResult(res stun.Result) string {
	return fmt.Sprintf("target=%s damage=%.2f life=%.2f type=%s/%s light=%.2f stun=%t buildup_added=%.2f buildup=%.2f state=%s transition=%s crushing=%t heavy=%t hits_to_heavy=%s",
		res.TargetID, res.Damage, res.TargetMaxLife, res.DamageType, res.AttackType,
		res.Light.FinalChance, res.Light.WillStun,
		res.Heavy.BuildupAdded, res.Heavy.Meter.BuildupPercentage, res.Heavy.Meter.State, res.Heavy.Transition,
		res.Heavy.TriggeredCrushingBlow, res.Heavy.TriggeredHeavyStun,
		stun.FormatHits(res.Heavy.HitsToHeavyStun))
}

// bar draws the meter as 20 cells with a mark at the primed threshold.
func bar(buildup float64) string {
	const cells = 20
	filled := min(int(buildup/100*cells), cells)
	filled = max(filled, 0)

	var sb strings.Builder
	sb.WriteByte('[')
	for i := range cells {
		switch {
		case i < filled:
			sb.WriteRune('█')
		case i == cells/2:
			sb.WriteRune('┆')
		default:
			sb.WriteRune('·')
		}
	}
	sb.WriteByte(']')
	fmt.Fprintf(&sb, " %5.1f%%", buildup)
	return sb.String()
}
