package models

import "time"

// LessonLearned captures a retrospective finding, optionally tied to a project.
type LessonLearned struct {
	ID          string
	ProjectID   string
	Title       string
	Category    string
	Description string
	RootCause   string
	Improvement string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
