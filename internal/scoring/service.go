package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbecker/rdtrack/internal/store"
)

// Service computes derived scores on top of the store.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// ProjectRiskValue loads a project's risks and aggregates them. Store
// failures are logged and reported as 0 so a flaky read never breaks a
// dashboard render.
func (s *Service) ProjectRiskValue(ctx context.Context, projectID string) int {
	risks, err := s.store.ListRisksByProject(ctx, projectID)
	if err != nil {
		slog.Warn("risk value lookup failed", "project_id", projectID, "error", err)
		return 0
	}
	return ProjectRiskValue(risks)
}

// ProjectHealth loads a project and derives its schedule health.
func (s *Service) ProjectHealth(ctx context.Context, projectID string, today time.Time) (HealthResult, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return HealthResult{}, fmt.Errorf("loading project %s: %w", projectID, err)
	}
	return ProjectHealth(p, today), nil
}

// DashboardAlerts classifies every open task and project by schedule
// pressure as of the given day.
func (s *Service) DashboardAlerts(ctx context.Context, asOf time.Time) (Alerts, error) {
	tasks, err := s.store.ListTasks(ctx, store.TaskListFilter{})
	if err != nil {
		return Alerts{}, fmt.Errorf("listing tasks: %w", err)
	}
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return Alerts{}, fmt.Errorf("listing projects: %w", err)
	}
	return ClassifyRisks(tasks, projects, asOf), nil
}
