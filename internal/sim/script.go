// Package sim replays scripted combat sessions through the stun calculator.
package sim

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/stunsim/internal/stun"
)

var (
	ErrEmptyScript     = errors.New("script has no hits")
	ErrUnknownTarget   = errors.New("hit references undeclared target")
	ErrDuplicateTarget = errors.New("target declared twice")
)

// Script is a combat session: the targets and the hits in chronological order.
type Script struct {
	Targets []Target `yaml:"targets"`
	Hits    []Hit    `yaml:"hits"`
}

// Target is an enemy tracked by the session.
type Target struct {
	ID      string  `yaml:"id"`
	MaxLife float64 `yaml:"max_life"`
	Label   string  `yaml:"label"`
}

// Hit is one damage instance. DecayBefore lowers the target's buildup by
// that many points before the hit lands.
type Hit struct {
	Target      string        `yaml:"target"`
	Damage      float64       `yaml:"damage"`
	DamageType  string        `yaml:"damage_type"`
	AttackType  string        `yaml:"attack_type"`
	Label       string        `yaml:"label"`
	Modifiers   *ModifierSpec `yaml:"modifiers"`
	DecayBefore float64       `yaml:"decay_before"`
}

// ModifierSpec mirrors stun.Modifiers; omitted fields stay neutral.
type ModifierSpec struct {
	IncreasedStunChance   *float64 `yaml:"increased_stun_chance"`
	MoreStunChance        *float64 `yaml:"more_stun_chance"`
	StunBuildupMultiplier *float64 `yaml:"stun_buildup_multiplier"`
	ReducedStunThreshold  *float64 `yaml:"reduced_stun_threshold"`
}

// Modifiers converts to stun.Modifiers; nil yields nil (neutral).
func (s *ModifierSpec) Modifiers() *stun.Modifiers {
	if s == nil {
		return nil
	}
	m := stun.ModifierOverrides(*s).Modifiers()
	return &m
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("reading script %s: %w", path, err)
	}
	s, err := ParseScript(data)
	if err != nil {
		return Script{}, fmt.Errorf("script %s: %w", path, err)
	}
	return s, nil
}

// ParseScript decodes and validates a YAML script.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parsing script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Validate checks the whole script before anything runs.
func (s Script) Validate() error {
	_, err := s.plan()
	return err
}

// plannedHit is a validated hit with resolved types.
type plannedHit struct {
	index       int
	target      Target
	damage      float64
	damageType  stun.DamageType
	attackType  stun.AttackType
	label       string
	mods        *stun.Modifiers
	decayBefore float64
}

func (s Script) plan() ([]plannedHit, error) {
	if len(s.Hits) == 0 {
		return nil, ErrEmptyScript
	}

	targets := make(map[string]Target, len(s.Targets))
	for i, t := range s.Targets {
		if t.ID == "" {
			return nil, fmt.Errorf("target %d: %w: empty id", i+1, stun.ErrInvalidInput)
		}
		if _, dup := targets[t.ID]; dup {
			return nil, fmt.Errorf("target %q: %w", t.ID, ErrDuplicateTarget)
		}
		if !stun.Finite(t.MaxLife) || t.MaxLife <= 0 {
			return nil, fmt.Errorf("target %q: %w: max_life %v must be finite and > 0", t.ID, stun.ErrInvalidInput, t.MaxLife)
		}
		targets[t.ID] = t
	}

	planned := make([]plannedHit, 0, len(s.Hits))
	for i, h := range s.Hits {
		t, ok := targets[h.Target]
		if !ok {
			return nil, fmt.Errorf("hit %d: %w: %q", i+1, ErrUnknownTarget, h.Target)
		}
		dt, err := stun.ParseDamageType(h.DamageType)
		if err != nil {
			return nil, fmt.Errorf("hit %d: %w", i+1, err)
		}
		at, err := stun.ParseAttackType(h.AttackType)
		if err != nil {
			return nil, fmt.Errorf("hit %d: %w", i+1, err)
		}
		if !stun.Finite(h.Damage) || h.Damage < 0 {
			return nil, fmt.Errorf("hit %d: %w: damage %v must be finite and >= 0", i+1, stun.ErrInvalidInput, h.Damage)
		}
		if !stun.Finite(h.DecayBefore) || h.DecayBefore < 0 {
			return nil, fmt.Errorf("hit %d: %w: decay_before %v must be finite and >= 0", i+1, stun.ErrInvalidInput, h.DecayBefore)
		}
		mods := h.Modifiers.Modifiers()
		if mods != nil {
			if err := mods.Validate(); err != nil {
				return nil, fmt.Errorf("hit %d: %w", i+1, err)
			}
		}
		planned = append(planned, plannedHit{
			index:       i,
			target:      t,
			damage:      h.Damage,
			damageType:  dt,
			attackType:  at,
			label:       h.Label,
			mods:        mods,
			decayBefore: h.DecayBefore,
		})
	}
	return planned, nil
}
