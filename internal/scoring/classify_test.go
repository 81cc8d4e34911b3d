package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbecker/rdtrack/internal/models"
)

var classifyToday = time.Date(2026, 3, 1, 14, 0, 0, 0, time.Local)

func task(name, endDate string, status models.TaskStatus) *models.Task {
	return &models.Task{Name: name, EndDate: endDate, Status: status}
}

func TestClassifyRisks_EmptyInputsGiveEmptySlices(t *testing.T) {
	alerts := ClassifyRisks(nil, nil, classifyToday)
	assert.NotNil(t, alerts.OverdueTasks)
	assert.NotNil(t, alerts.DueSoonTasks)
	assert.NotNil(t, alerts.AtRiskProjects)
	assert.NotNil(t, alerts.OverdueProjects)
	assert.Len(t, alerts.OverdueTasks, 0)
}

func TestClassifyRisks_OverdueTask(t *testing.T) {
	tasks := []*models.Task{task("slipped", "2026-02-28", models.TaskStatusPending)}
	alerts := ClassifyRisks(tasks, nil, classifyToday)

	require.Len(t, alerts.OverdueTasks, 1)
	assert.Equal(t, "slipped", alerts.OverdueTasks[0].Name)
	assert.Equal(t, 1, alerts.OverdueTasks[0].DaysOverdue)
	assert.Len(t, alerts.DueSoonTasks, 0)
}

func TestClassifyRisks_DeadlineDayIsDueSoonNotOverdue(t *testing.T) {
	tasks := []*models.Task{task("due today", "2026-03-01", models.TaskStatusInProgress)}
	alerts := ClassifyRisks(tasks, nil, classifyToday)

	assert.Len(t, alerts.OverdueTasks, 0)
	require.Len(t, alerts.DueSoonTasks, 1)
	assert.Equal(t, 0, alerts.DueSoonTasks[0].DaysUntilDue)
}

func TestClassifyRisks_DueSoonWindow(t *testing.T) {
	tasks := []*models.Task{
		task("in3", "2026-03-04", models.TaskStatusPending),
		task("in4", "2026-03-05", models.TaskStatusPending),
	}
	alerts := ClassifyRisks(tasks, nil, classifyToday)

	require.Len(t, alerts.DueSoonTasks, 1)
	assert.Equal(t, "in3", alerts.DueSoonTasks[0].Name)
	assert.Equal(t, 3, alerts.DueSoonTasks[0].DaysUntilDue)
}

func TestClassifyRisks_OnlyCompletedTasksExempt(t *testing.T) {
	tasks := []*models.Task{
		task("done late", "2026-01-01", models.TaskStatusCompleted),
		task("cancelled late", "2026-02-20", models.TaskStatusCancelled),
	}
	alerts := ClassifyRisks(tasks, nil, classifyToday)

	// Completed is the only exempt status; a cancelled task with a past
	// end date still shows up overdue.
	require.Len(t, alerts.OverdueTasks, 1)
	assert.Equal(t, "cancelled late", alerts.OverdueTasks[0].Name)
	assert.Equal(t, 9, alerts.OverdueTasks[0].DaysOverdue)
}

func TestClassifyRisks_SkipsUnusableDates(t *testing.T) {
	tasks := []*models.Task{
		task("no date", "", models.TaskStatusPending),
		task("garbage", "next sprint", models.TaskStatusPending),
		task("real", "2026-02-20", models.TaskStatusPending),
	}
	alerts := ClassifyRisks(tasks, nil, classifyToday)

	require.Len(t, alerts.OverdueTasks, 1)
	assert.Equal(t, "real", alerts.OverdueTasks[0].Name)
}

func TestClassifyRisks_OverdueProject(t *testing.T) {
	projects := []*models.Project{
		{Name: "late", CurrentStageID: "debugging", EstimatedCompletion: "2026-02-25"},
		{Name: "late but shipped", CurrentStageID: "shipping", EstimatedCompletion: "2026-02-25"},
	}
	alerts := ClassifyRisks(nil, projects, classifyToday)

	require.Len(t, alerts.OverdueProjects, 1)
	assert.Equal(t, "late", alerts.OverdueProjects[0].Name)
	assert.Equal(t, 4, alerts.OverdueProjects[0].DaysOverdue)
	assert.Equal(t, 87.5, alerts.OverdueProjects[0].Progress)
}

func TestClassifyRisks_AtRiskProject(t *testing.T) {
	projects := []*models.Project{
		{Name: "behind", CurrentStageID: "system_design", EstimatedCompletion: "2026-03-06"},
		{Name: "on track", CurrentStageID: "debugging", EstimatedCompletion: "2026-03-06"},
		{Name: "far out", CurrentStageID: "requirements", EstimatedCompletion: "2026-06-01"},
	}
	alerts := ClassifyRisks(nil, projects, classifyToday)

	require.Len(t, alerts.AtRiskProjects, 1)
	assert.Equal(t, "behind", alerts.AtRiskProjects[0].Name)
	assert.Equal(t, 5, alerts.AtRiskProjects[0].DaysUntilCompletion)
	assert.Equal(t, 50.0, alerts.AtRiskProjects[0].Progress)
	assert.Len(t, alerts.OverdueProjects, 0)
}

func TestClassifyRisks_ProjectWithoutDateSkipped(t *testing.T) {
	projects := []*models.Project{{Name: "uncommitted", CurrentStageID: "requirements"}}
	alerts := ClassifyRisks(nil, projects, classifyToday)
	assert.Len(t, alerts.AtRiskProjects, 0)
	assert.Len(t, alerts.OverdueProjects, 0)
}
