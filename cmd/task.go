package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbecker/rdtrack/internal/models"
	"github.com/mbecker/rdtrack/internal/output"
	"github.com/mbecker/rdtrack/internal/store"
)

var (
	taskProject  string
	taskAssign   []string
	taskStart    string
	taskDue      string
	taskPriority string
	taskType     string
	taskStatus   string
	taskBy       string
	taskNotes    string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  "Add, list, and complete tasks, optionally linked to a project.",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskAddRun(args[0])
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskListRun()
	},
}

var taskCompleteCmd = &cobra.Command{
	Use:     "complete <id>",
	Aliases: []string{"done"},
	Short:   "Mark a task completed",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskCompleteRun(args[0])
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return taskRemoveRun(args[0])
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&taskProject, "project", "", "Project (order number, ID, or name)")
	taskAddCmd.Flags().StringSliceVar(&taskAssign, "assign", nil, "Assignees (repeatable)")
	taskAddCmd.Flags().StringVar(&taskStart, "start", "", "Start date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "End date (YYYY-MM-DD)")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "medium", "Priority (high, medium, low)")
	taskAddCmd.Flags().StringVar(&taskType, "type", "", "Task type")

	taskListCmd.Flags().StringVar(&taskProject, "project", "", "Filter by project")
	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status (pending, in_progress, completed, cancelled)")

	taskCompleteCmd.Flags().StringVar(&taskBy, "by", "", "Who completed the task")
	taskCompleteCmd.Flags().StringVar(&taskNotes, "notes", "", "Completion notes")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskRemoveCmd)
	rootCmd.AddCommand(taskCmd)
}

func taskAddRun(name string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	var projectID string
	if taskProject != "" {
		p, err := resolveProjectRef(ctx, s, taskProject)
		if err != nil {
			return err
		}
		projectID = p.ID
	}

	t := &models.Task{
		ProjectID:  projectID,
		Name:       name,
		AssignedTo: taskAssign,
		StartDate:  taskStart,
		EndDate:    taskDue,
		Priority:   taskPriority,
		Status:     models.TaskStatusPending,
		TaskType:   taskType,
	}

	if dryRun {
		ui.DryRunMsg("Would add task: %s", name)
		return nil
	}

	if err := s.CreateTask(ctx, t); err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	ui.Success("Added task: %s", output.Cyan(name))
	ui.VerboseLog("ID: %s", t.ID)
	return nil
}

func taskListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	filter := store.TaskListFilter{Status: models.TaskStatus(taskStatus)}
	if taskProject != "" {
		p, err := resolveProjectRef(ctx, s, taskProject)
		if err != nil {
			return err
		}
		filter.ProjectID = p.ID
	}

	tasks, err := s.ListTasks(ctx, filter)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		ui.Info("No tasks found.")
		return nil
	}

	// Project names for display, fetched once
	projectNames := map[string]string{}
	if projects, err := s.ListProjects(ctx); err == nil {
		for _, p := range projects {
			projectNames[p.ID] = p.Name
		}
	}

	table := ui.Table([]string{"ID", "Task", "Project", "Assigned", "Due", "Priority", "Status"})
	for _, t := range tasks {
		due := t.EndDate
		if due == "" {
			due = "-"
		}
		assigned := strings.Join(t.AssignedTo, ", ")
		if assigned == "" {
			assigned = "-"
		}
		project := projectNames[t.ProjectID]
		if project == "" {
			project = "-"
		}

		table.Append([]string{
			t.ID,
			output.Cyan(t.Name),
			project,
			assigned,
			due,
			t.Priority,
			output.StatusColor(string(t.Status)),
		})
	}
	table.Render()
	return nil
}

func taskCompleteRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	t, err := s.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("find task: %w", err)
	}

	if t.Status == models.TaskStatusCompleted {
		ui.Info("Task already completed: %s", t.Name)
		return nil
	}

	if dryRun {
		ui.DryRunMsg("Would complete task: %s", t.Name)
		return nil
	}

	t.Status = models.TaskStatusCompleted
	t.CompletedDate = time.Now().Format("2006-01-02")
	t.CompletedBy = taskBy
	t.CompletionNotes = taskNotes

	if err := s.UpdateTask(ctx, t); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}

	ui.Success("Completed task: %s", output.Cyan(t.Name))
	return nil
}

func taskRemoveRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	t, err := s.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("find task: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would remove task: %s", t.Name)
		return nil
	}

	if err := s.DeleteTask(ctx, t.ID); err != nil {
		return fmt.Errorf("remove task: %w", err)
	}

	ui.Success("Removed task: %s", output.Cyan(t.Name))
	return nil
}
