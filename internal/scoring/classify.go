package scoring

import (
	"time"

	"github.com/mbecker/rdtrack/internal/models"
)

// OverdueTask is an open task whose end date has passed.
type OverdueTask struct {
	*models.Task
	DaysOverdue int `json:"daysOverdue"`
}

// DueSoonTask is an open task due within the next three days.
type DueSoonTask struct {
	*models.Task
	DaysUntilDue int `json:"daysUntilDue"`
}

// OverdueProject is an unfinished project past its estimated completion.
type OverdueProject struct {
	*models.Project
	DaysOverdue int     `json:"daysOverdue"`
	Progress    float64 `json:"progress"`
}

// AtRiskProject is a project within a week of its estimated completion
// whose stage progress is under 80 percent.
type AtRiskProject struct {
	*models.Project
	DaysUntilCompletion int     `json:"daysUntilCompletion"`
	Progress            float64 `json:"progress"`
}

// Alerts holds the dashboard's temporal risk buckets. Slices are always
// non-nil so they serialize as [] rather than null.
type Alerts struct {
	OverdueTasks    []OverdueTask    `json:"overdueTasks"`
	DueSoonTasks    []DueSoonTask    `json:"dueSoonTasks"`
	AtRiskProjects  []AtRiskProject  `json:"atRiskProjects"`
	OverdueProjects []OverdueProject `json:"overdueProjects"`
}

// ClassifyRisks buckets tasks and projects by schedule pressure as of the
// given day. Only completed tasks are exempt; every other status, cancelled
// included, still alerts. Records with a missing or unparseable date are
// skipped rather than failing the whole dashboard.
//
// A task is overdue only once its end date is fully in the past; on the
// deadline day itself it is due-soon with zero days remaining.
func ClassifyRisks(tasks []*models.Task, projects []*models.Project, today time.Time) Alerts {
	alerts := Alerts{
		OverdueTasks:    []OverdueTask{},
		DueSoonTasks:    []DueSoonTask{},
		AtRiskProjects:  []AtRiskProject{},
		OverdueProjects: []OverdueProject{},
	}

	for _, t := range tasks {
		if t.Status == models.TaskStatusCompleted {
			continue
		}
		if t.EndDate == "" {
			continue
		}
		end, err := parseDate(t.EndDate)
		if err != nil {
			continue
		}

		days := daysBetween(today, end)
		switch {
		case pastDeadline(end, today):
			alerts.OverdueTasks = append(alerts.OverdueTasks, OverdueTask{
				Task:        t,
				DaysOverdue: absInt(days),
			})
		case days >= 0 && days <= 3:
			alerts.DueSoonTasks = append(alerts.DueSoonTasks, DueSoonTask{
				Task:         t,
				DaysUntilDue: days,
			})
		}
	}

	for _, p := range projects {
		if p.EstimatedCompletion == "" {
			continue
		}
		completion, err := parseDate(p.EstimatedCompletion)
		if err != nil {
			continue
		}

		progress := StageProgress(p.CurrentStageID)
		days := daysBetween(today, completion)
		switch {
		case pastDeadline(completion, today) && progress < 100:
			alerts.OverdueProjects = append(alerts.OverdueProjects, OverdueProject{
				Project:     p,
				DaysOverdue: absInt(days),
				Progress:    progress,
			})
		case days >= 0 && days <= 7 && progress < 80:
			alerts.AtRiskProjects = append(alerts.AtRiskProjects, AtRiskProject{
				Project:             p,
				DaysUntilCompletion: days,
				Progress:            progress,
			})
		}
	}

	return alerts
}
