package store

import (
	"context"

	"github.com/mbecker/rdtrack/internal/models"
)

// TaskListFilter specifies filters for listing tasks.
type TaskListFilter struct {
	ProjectID string
	Status    models.TaskStatus
}

// Store defines the persistence interface for rdtrack.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjectByOrderNumber(ctx context.Context, orderNumber string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error

	// Timeline
	CreateTimelineEvent(ctx context.Context, e *models.TimelineEvent) error
	ListTimelineEvents(ctx context.Context, projectID string) ([]*models.TimelineEvent, error)

	// Tasks
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskListFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id string) error

	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error

	// Risks
	CreateRisk(ctx context.Context, r *models.Risk) error
	GetRisk(ctx context.Context, id string) (*models.Risk, error)
	ListRisksByProject(ctx context.Context, projectID string) ([]*models.Risk, error)
	UpdateRisk(ctx context.Context, r *models.Risk) error
	DeleteRisk(ctx context.Context, id string) error

	// Risk Responses
	CreateRiskResponse(ctx context.Context, resp *models.RiskResponse) error
	UpdateRiskResponse(ctx context.Context, resp *models.RiskResponse) error
	DeleteRiskResponse(ctx context.Context, id string) error

	// Lessons Learned
	CreateLesson(ctx context.Context, l *models.LessonLearned) error
	GetLesson(ctx context.Context, id string) (*models.LessonLearned, error)
	ListLessons(ctx context.Context, projectID string) ([]*models.LessonLearned, error)
	UpdateLesson(ctx context.Context, l *models.LessonLearned) error
	DeleteLesson(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
