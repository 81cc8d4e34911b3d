package models

import "time"

// User represents a team member who can own tasks and risks.
type User struct {
	ID         string
	Name       string
	Role       string
	Department string
	Email      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
