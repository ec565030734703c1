package stun

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// QuickStunCalculation evaluates a single hit on a throwaway target and
// returns a short human-readable summary. isPhysical selects physical or
// fire damage, isMelee selects melee or spell delivery.
//
// Each call uses its own registry and a fresh target id, so nothing
// accumulates between calls.
func QuickStunCalculation(damage, targetMaxLife float64, isPhysical, isMelee bool) (string, error) {
	dt := DamageFire
	if isPhysical {
		dt = DamagePhysical
	}
	at := AttackSpell
	if isMelee {
		at = AttackMelee
	}

	calc, err := NewCalculator()
	if err != nil {
		return "", err
	}
	targetID := "quick-" + uuid.NewString()

	res, err := calc.CalculateCompleteStun(damage, targetMaxLife, dt, at, targetID, nil)
	if err != nil {
		return "", err
	}
	return Summary(res), nil
}

// Summary formats a result as plain text.
func Summary(res Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Stun Analysis: %.0f %s %s damage vs %.0f life\n",
		res.Damage, res.DamageType, res.AttackType, res.TargetMaxLife)
	fmt.Fprintf(&sb, "  Light Stun: %.1f%% chance (%s)\n", res.Light.FinalChance, yesNo(res.Light.WillStun, "STUN", "no stun"))
	fmt.Fprintf(&sb, "  Heavy Stun Buildup: +%.1f%% (meter %.1f%%, %s)\n",
		res.Heavy.BuildupAdded, res.Heavy.Meter.BuildupPercentage, res.Heavy.Meter.State)
	fmt.Fprintf(&sb, "  Hits to Heavy Stun: %s", FormatHits(res.Heavy.HitsToHeavyStun))
	if res.Heavy.TriggeredHeavyStun {
		sb.WriteString("\n  HEAVY STUN TRIGGERED")
	}
	if res.Heavy.TriggeredCrushingBlow {
		sb.WriteString("\n  CRUSHING BLOW")
	}
	return sb.String()
}

// FormatHits renders a hit count, "never" for the unreachable sentinel.
func FormatHits(hits float64) string {
	if IsUnreachable(hits) {
		return "never"
	}
	return fmt.Sprintf("%.2f", hits)
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
