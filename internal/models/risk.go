package models

import "time"

// RiskStatus represents the lifecycle state of a risk.
type RiskStatus string

const (
	RiskStatusIdentified RiskStatus = "identified"
	RiskStatusAnalyzed   RiskStatus = "analyzed"
	RiskStatusResponded  RiskStatus = "responded"
	RiskStatusMonitored  RiskStatus = "monitored"
	RiskStatusClosed     RiskStatus = "closed"
)

// ResponseStrategy is the chosen approach for addressing a risk.
type ResponseStrategy string

const (
	StrategyAvoid    ResponseStrategy = "avoid"
	StrategyMitigate ResponseStrategy = "mitigate"
	StrategyTransfer ResponseStrategy = "transfer"
	StrategyAccept   ResponseStrategy = "accept"
)

// ResponseStatus is the execution state of a risk response.
type ResponseStatus string

const (
	ResponseStatusPlanned   ResponseStatus = "planned"
	ResponseStatusExecuting ResponseStatus = "executing"
	ResponseStatusCompleted ResponseStatus = "completed"
	ResponseStatusCancelled ResponseStatus = "cancelled"
)

// Risk is an entry in a project's risk register.
type Risk struct {
	ID                     string
	ProjectID              string
	Description            string
	Category               string
	Probability            int // 1-5
	Impact                 int // 1-5
	RiskLevel              int // Probability * Impact, always derived
	Status                 RiskStatus
	Owner                  string
	RootCause              string
	Trigger                string
	Notes                  string
	IdentifiedDate         time.Time
	ExpectedOccurrenceDate *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time

	// Responses is populated on single-risk reads.
	Responses []*RiskResponse
}

// Recalculate derives RiskLevel from Probability and Impact. RiskLevel is
// never set directly; every write path calls this after changing either input.
func (r *Risk) Recalculate() {
	r.RiskLevel = r.Probability * r.Impact
}

// RiskResponse is an action plan addressing one risk. Responses are owned
// exclusively by their risk and removed with it.
type RiskResponse struct {
	ID          string
	RiskID      string
	Strategy    ResponseStrategy
	ActionPlan  string
	Responsible string
	Status      ResponseStatus
	DueDate     string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
