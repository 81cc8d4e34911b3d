package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbecker/rdtrack/internal/models"
)

func risk(probability, impact int, status models.RiskStatus) *models.Risk {
	r := &models.Risk{Probability: probability, Impact: impact, Status: status}
	r.Recalculate()
	return r
}

func TestProjectRiskValue_Empty(t *testing.T) {
	assert.Equal(t, 0, ProjectRiskValue(nil))
	assert.Equal(t, 0, ProjectRiskValue([]*models.Risk{}))
}

func TestProjectRiskValue_AllClosed(t *testing.T) {
	risks := []*models.Risk{
		risk(5, 5, models.RiskStatusClosed),
		risk(4, 4, models.RiskStatusClosed),
	}
	assert.Equal(t, 0, ProjectRiskValue(risks))
}

func TestProjectRiskValue_SingleHighUnresponded(t *testing.T) {
	// level 20, weighted avg 20, normalized 80, plus 3 for one unresponded risk
	risks := []*models.Risk{risk(4, 5, models.RiskStatusIdentified)}
	assert.Equal(t, 83, ProjectRiskValue(risks))
}

func TestProjectRiskValue_RespondedSkipsPenalty(t *testing.T) {
	withPenalty := ProjectRiskValue([]*models.Risk{risk(4, 5, models.RiskStatusAnalyzed)})
	without := ProjectRiskValue([]*models.Risk{risk(4, 5, models.RiskStatusResponded)})
	assert.Equal(t, without+3, withPenalty)
}

func TestProjectRiskValue_PenaltyCapped(t *testing.T) {
	// 10 tiny unresponded risks: penalty would be 30, capped at 20
	var risks []*models.Risk
	for range 10 {
		risks = append(risks, risk(1, 1, models.RiskStatusIdentified))
	}
	// avg level 1, normalized round(1/25*100) = 4, plus capped penalty 20
	assert.Equal(t, 24, ProjectRiskValue(risks))
}

func TestProjectRiskValue_HighRisksDominate(t *testing.T) {
	mild := []*models.Risk{
		risk(2, 2, models.RiskStatusMonitored),
		risk(2, 2, models.RiskStatusMonitored),
		risk(2, 2, models.RiskStatusMonitored),
	}
	withSevere := append([]*models.Risk{risk(5, 5, models.RiskStatusMonitored)}, mild...)
	assert.Greater(t, ProjectRiskValue(withSevere), ProjectRiskValue(mild))
}

func TestProjectRiskValue_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	statuses := []models.RiskStatus{
		models.RiskStatusIdentified, models.RiskStatusAnalyzed,
		models.RiskStatusResponded, models.RiskStatusMonitored, models.RiskStatusClosed,
	}

	var risks []*models.Risk
	for range 1000 {
		risks = append(risks, risk(1+rng.Intn(5), 1+rng.Intn(5), statuses[rng.Intn(len(statuses))]))
		v := ProjectRiskValue(risks)
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
}

func TestProjectRiskValue_OrderIndependent(t *testing.T) {
	risks := []*models.Risk{
		risk(5, 4, models.RiskStatusIdentified),
		risk(3, 3, models.RiskStatusMonitored),
		risk(1, 2, models.RiskStatusResponded),
		risk(2, 5, models.RiskStatusAnalyzed),
	}
	want := ProjectRiskValue(risks)

	rng := rand.New(rand.NewSource(42))
	for range 20 {
		rng.Shuffle(len(risks), func(i, j int) { risks[i], risks[j] = risks[j], risks[i] })
		assert.Equal(t, want, ProjectRiskValue(risks))
	}
}

func TestRiskValueLabel(t *testing.T) {
	assert.Equal(t, "low", RiskValueLabel(0))
	assert.Equal(t, "low", RiskValueLabel(19))
	assert.Equal(t, "elevated", RiskValueLabel(20))
	assert.Equal(t, "medium", RiskValueLabel(40))
	assert.Equal(t, "high", RiskValueLabel(70))
	assert.Equal(t, "high", RiskValueLabel(100))
}
