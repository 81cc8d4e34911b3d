package models

import "time"

// Project represents a tracked R&D project, typically one customer order.
type Project struct {
	ID                  string
	OrderNumber         string
	Name                string
	SalesContact        string
	DeviceQuantity      int
	CurrentStageID      string
	Priority            string
	EstimatedCompletion string // nominal date, e.g. "2026-03-15"; empty when not committed
	Region              string
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TimelineEvent records a stage transition in a project's history.
// Events are owned by their project and removed with it.
type TimelineEvent struct {
	ID          string
	ProjectID   string
	StageID     string
	Description string
	EventDate   time.Time
	CreatedAt   time.Time
}
