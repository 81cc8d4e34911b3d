package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbecker/rdtrack/internal/models"
	"github.com/mbecker/rdtrack/internal/output"
	"github.com/mbecker/rdtrack/internal/scoring"
	"github.com/mbecker/rdtrack/internal/store"
)

var (
	projectOrder    string
	projectContact  string
	projectQuantity int
	projectStage    string
	projectPriority string
	projectDue      string
	projectRegion   string
	projectNotes    string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage R&D projects",
	Long:  "Add, remove, list, and show tracked R&D projects.",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectAddRun(args[0])
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:     "remove <ref>",
	Aliases: []string{"rm"},
	Short:   "Remove a project and everything attached to it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectRemoveRun(args[0])
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun()
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Show detailed project information",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectShowRun(args[0])
	},
}

var projectStageCmd = &cobra.Command{
	Use:   "stage <ref> <stage>",
	Short: "Move a project to a new stage",
	Long: `Move a project to a new stage and record the transition on its timeline.

Stages, in order: ` + strings.Join(scoring.Stages, ", "),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectStageRun(args[0], args[1])
	},
}

func init() {
	projectAddCmd.Flags().StringVar(&projectOrder, "order", "", "Customer order number")
	projectAddCmd.Flags().StringVar(&projectContact, "contact", "", "Sales contact")
	projectAddCmd.Flags().IntVar(&projectQuantity, "quantity", 0, "Device quantity")
	projectAddCmd.Flags().StringVar(&projectStage, "stage", scoring.Stages[0], "Initial stage")
	projectAddCmd.Flags().StringVar(&projectPriority, "priority", "medium", "Priority (high, medium, low)")
	projectAddCmd.Flags().StringVar(&projectDue, "due", "", "Estimated completion date (YYYY-MM-DD)")
	projectAddCmd.Flags().StringVar(&projectRegion, "region", "", "Region")
	projectAddCmd.Flags().StringVar(&projectNotes, "notes", "", "Notes")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectStageCmd)
	rootCmd.AddCommand(projectCmd)
}

func projectAddRun(name string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	if scoring.StageIndex(projectStage) < 0 {
		return fmt.Errorf("unknown stage %q (valid: %s)", projectStage, strings.Join(scoring.Stages, ", "))
	}

	p := &models.Project{
		OrderNumber:         projectOrder,
		Name:                name,
		SalesContact:        projectContact,
		DeviceQuantity:      projectQuantity,
		CurrentStageID:      projectStage,
		Priority:            projectPriority,
		EstimatedCompletion: projectDue,
		Region:              projectRegion,
		Notes:               projectNotes,
	}

	if dryRun {
		ui.DryRunMsg("Would add project: %s", name)
		return nil
	}

	if err := s.CreateProject(context.Background(), p); err != nil {
		return fmt.Errorf("add project: %w", err)
	}

	ui.Success("Added project: %s", output.Cyan(name))
	if projectOrder != "" {
		ui.VerboseLog("Order: %s", projectOrder)
	}
	return nil
}

func projectRemoveRun(ref string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	p, err := resolveProjectRef(ctx, s, ref)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would remove project: %s", p.Name)
		return nil
	}

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		return fmt.Errorf("remove project: %w", err)
	}

	ui.Success("Removed project: %s", output.Cyan(p.Name))
	return nil
}

func projectListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		ui.Info("No projects tracked. Use 'rdtrack project add <name>' to get started.")
		return nil
	}

	scorer := scoring.NewService(s)
	now := time.Now()

	table := ui.Table([]string{"Order", "Name", "Stage", "Priority", "Due", "Health", "Risk"})
	for _, p := range projects {
		h, err := scorer.ProjectHealth(ctx, p.ID, now)
		if err != nil {
			return err
		}
		rv := scorer.ProjectRiskValue(ctx, p.ID)

		due := p.EstimatedCompletion
		if due == "" {
			due = "-"
		}
		healthStr := string(h.Status)
		if h.Status != scoring.HealthUnknown {
			healthStr = output.HealthColor(h.Score)
		}

		table.Append([]string{
			p.OrderNumber,
			output.Cyan(p.Name),
			p.CurrentStageID,
			p.Priority,
			due,
			healthStr,
			output.RiskValueColor(rv),
		})
	}
	table.Render()
	return nil
}

func projectShowRun(ref string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	p, err := resolveProjectRef(ctx, s, ref)
	if err != nil {
		return err
	}

	scorer := scoring.NewService(s)
	now := time.Now()

	fmt.Fprintf(ui.Out, "%s\n", output.Cyan(p.Name))
	if p.OrderNumber != "" {
		fmt.Fprintf(ui.Out, "  Order:      %s\n", p.OrderNumber)
	}
	fmt.Fprintf(ui.Out, "  Stage:      %s (%.0f%%)\n", p.CurrentStageID, scoring.StageProgress(p.CurrentStageID))
	fmt.Fprintf(ui.Out, "  Priority:   %s\n", p.Priority)
	if p.EstimatedCompletion != "" {
		fmt.Fprintf(ui.Out, "  Due:        %s\n", p.EstimatedCompletion)
	}
	if p.SalesContact != "" {
		fmt.Fprintf(ui.Out, "  Contact:    %s\n", p.SalesContact)
	}
	if p.DeviceQuantity > 0 {
		fmt.Fprintf(ui.Out, "  Quantity:   %d\n", p.DeviceQuantity)
	}
	if p.Region != "" {
		fmt.Fprintf(ui.Out, "  Region:     %s\n", p.Region)
	}
	if p.Notes != "" {
		fmt.Fprintf(ui.Out, "  Notes:      %s\n", p.Notes)
	}
	fmt.Fprintln(ui.Out)

	h, err := scorer.ProjectHealth(ctx, p.ID, now)
	if err != nil {
		return err
	}
	if h.Status == scoring.HealthUnknown {
		fmt.Fprintf(ui.Out, "  Health:     unknown (no completion date)\n")
	} else {
		fmt.Fprintf(ui.Out, "  Health:     %s (%s, %d days to completion)\n",
			output.HealthColor(h.Score), h.Status, h.DaysUntilCompletion)
	}

	rv := scorer.ProjectRiskValue(ctx, p.ID)
	fmt.Fprintf(ui.Out, "  Risk value: %s (%s)\n", output.RiskValueColor(rv), scoring.RiskValueLabel(rv))

	// Open risks by level
	risks, err := s.ListRisksByProject(ctx, p.ID)
	if err == nil && len(risks) > 0 {
		open := 0
		for _, r := range risks {
			if r.Status != models.RiskStatusClosed {
				open++
			}
		}
		fmt.Fprintf(ui.Out, "  Risks:      %d open of %d total\n", open, len(risks))
	}

	// Task counts
	tasks, err := s.ListTasks(ctx, store.TaskListFilter{ProjectID: p.ID})
	if err == nil && len(tasks) > 0 {
		pending, inProg := 0, 0
		for _, t := range tasks {
			switch t.Status {
			case models.TaskStatusPending:
				pending++
			case models.TaskStatusInProgress:
				inProg++
			}
		}
		fmt.Fprintf(ui.Out, "  Tasks:      %d pending, %d in progress\n", pending, inProg)
	}

	// Stage history, newest first
	events, err := s.ListTimelineEvents(ctx, p.ID)
	if err == nil && len(events) > 0 {
		fmt.Fprintln(ui.Out)
		fmt.Fprintf(ui.Out, "  Timeline:\n")
		for _, e := range events {
			fmt.Fprintf(ui.Out, "    %s  %s", e.EventDate.Format("2006-01-02"), e.StageID)
			if e.Description != "" {
				fmt.Fprintf(ui.Out, "  %s", e.Description)
			}
			fmt.Fprintln(ui.Out)
		}
	}

	return nil
}

func projectStageRun(ref, stage string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if scoring.StageIndex(stage) < 0 {
		return fmt.Errorf("unknown stage %q (valid: %s)", stage, strings.Join(scoring.Stages, ", "))
	}

	p, err := resolveProjectRef(ctx, s, ref)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would move %s: %s -> %s", p.Name, p.CurrentStageID, stage)
		return nil
	}

	prev := p.CurrentStageID
	p.CurrentStageID = stage
	if err := s.UpdateProject(ctx, p); err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	event := &models.TimelineEvent{
		ProjectID:   p.ID,
		StageID:     stage,
		Description: fmt.Sprintf("Stage changed from %s to %s", prev, stage),
		EventDate:   time.Now(),
	}
	if err := s.CreateTimelineEvent(ctx, event); err != nil {
		return fmt.Errorf("record timeline event: %w", err)
	}

	ui.Success("Moved %s: %s -> %s", output.Cyan(p.Name), prev, stage)
	return nil
}

// resolveProjectRef finds a project by order number, ID, or name.
func resolveProjectRef(ctx context.Context, s store.Store, ref string) (*models.Project, error) {
	if p, err := s.GetProjectByOrderNumber(ctx, ref); err == nil {
		return p, nil
	}
	if p, err := s.GetProject(ctx, ref); err == nil {
		return p, nil
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}

	return nil, fmt.Errorf("project not found: %s", ref)
}
