package scoring

import (
	"math"
	"time"

	"github.com/mbecker/rdtrack/internal/models"
)

// HealthStatus classifies a project's schedule health.
type HealthStatus string

const (
	HealthUnknown  HealthStatus = "unknown"
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthRisk     HealthStatus = "risk"
	HealthCritical HealthStatus = "critical"
)

// HealthResult is the derived schedule health of a single project.
type HealthResult struct {
	Score               int          `json:"score"`
	Status              HealthStatus `json:"status"`
	Progress            float64      `json:"progress"`
	DaysUntilCompletion int          `json:"daysUntilCompletion"`
}

// ProjectHealth derives a 0-100 health score for a project from its stage
// progress and how close its estimated completion date is. Projects with no
// completion date, or one that cannot be parsed, report HealthUnknown.
//
// The score starts at the stage progress percentage. From the final week on,
// the expected progress ramps linearly from 0 to 100 and keeps climbing past
// the deadline; falling behind the ramp costs half the gap. Past the deadline
// every day late additionally costs 10 points, so overdue projects take both
// deductions.
func ProjectHealth(p *models.Project, today time.Time) HealthResult {
	if p.EstimatedCompletion == "" {
		return HealthResult{Status: HealthUnknown}
	}
	completion, err := parseDate(p.EstimatedCompletion)
	if err != nil {
		return HealthResult{Status: HealthUnknown}
	}

	progress := StageProgress(p.CurrentStageID)
	daysUntil := daysBetween(today, completion)
	score := progress

	if daysUntil <= 7 {
		expected := float64(7-daysUntil) / 7.0 * 100
		if progress < expected {
			score -= (expected - progress) * 0.5
		}
	}
	if daysUntil < 0 {
		score -= float64(absInt(daysUntil)) * 10
	}

	score = max(0, min(score, 100))
	rounded := int(math.Round(score))

	return HealthResult{
		Score:               rounded,
		Status:              healthStatus(rounded),
		Progress:            progress,
		DaysUntilCompletion: daysUntil,
	}
}

func healthStatus(score int) HealthStatus {
	switch {
	case score >= 80:
		return HealthHealthy
	case score >= 60:
		return HealthWarning
	case score >= 40:
		return HealthRisk
	default:
		return HealthCritical
	}
}
