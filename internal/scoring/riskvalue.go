package scoring

import (
	"math"

	"github.com/mbecker/rdtrack/internal/models"
)

// Tier weights for the weighted risk average. High risks dominate the
// score so a few severe risks outweigh many mild ones.
const (
	highRiskWeight   = 3.0 // risk level 15-25
	mediumRiskWeight = 2.0 // risk level 8-14
	lowRiskWeight    = 1.0 // risk level 1-7
)

// Cap on the penalty added for risks nobody has responded to yet.
const maxUnrespondedPenalty = 20

// ProjectRiskValue aggregates one project's risks into a 0-100 value.
// Closed risks are always excluded, even when the caller forgot to filter
// them out. An empty (or all-closed) risk set scores 0.
//
// The value is the tier-weighted average risk level normalized to 0-100,
// plus 3 points per unresponded risk (status identified or analyzed),
// capped at 20, clamped to [0, 100]. Deterministic and order-independent.
func ProjectRiskValue(risks []*models.Risk) int {
	var weightedSum, weightSum float64
	unresponded := 0

	for _, r := range risks {
		if r.Status == models.RiskStatusClosed {
			continue
		}

		weight := lowRiskWeight
		switch {
		case r.RiskLevel >= 15:
			weight = highRiskWeight
		case r.RiskLevel >= 8:
			weight = mediumRiskWeight
		}
		weightedSum += float64(r.RiskLevel) * weight
		weightSum += weight

		if r.Status == models.RiskStatusIdentified || r.Status == models.RiskStatusAnalyzed {
			unresponded++
		}
	}

	if weightSum == 0 {
		return 0
	}

	average := weightedSum / weightSum
	value := int(math.Round(average / 25.0 * 100))

	if unresponded > 0 {
		value += min(unresponded*3, maxUnrespondedPenalty)
	}

	return max(0, min(value, 100))
}

// RiskValueLabel maps an aggregate risk value to a display tier.
func RiskValueLabel(value int) string {
	switch {
	case value >= 70:
		return "high"
	case value >= 40:
		return "medium"
	case value >= 20:
		return "elevated"
	default:
		return "low"
	}
}
