package models

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Task represents a unit of work, optionally linked to a project.
// Start/end dates are nominal date strings as entered by users; legacy
// records may carry empty or malformed values, which consumers tolerate.
type Task struct {
	ID              string
	ProjectID       string
	Name            string
	AssignedTo      []string
	StartDate       string
	EndDate         string
	Requirements    string
	Priority        string
	Status          TaskStatus
	TaskType        string
	CompletedDate   string
	CompletedBy     string
	CompletionNotes string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
