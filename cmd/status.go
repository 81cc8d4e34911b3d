package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbecker/rdtrack/internal/output"
	"github.com/mbecker/rdtrack/internal/scoring"
)

var statusAlertsOnly bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project status dashboard",
	Long: `Show a cross-project status overview: every project with its stage,
schedule health, and risk value, followed by the alert buckets
(overdue tasks, tasks due soon, overdue and at-risk projects).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusOverviewRun()
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusAlertsOnly, "alerts", false, "Show only the alert buckets")
	rootCmd.AddCommand(statusCmd)
}

func statusOverviewRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()
	now := time.Now()
	scorer := scoring.NewService(s)

	if !statusAlertsOnly {
		projects, err := s.ListProjects(ctx)
		if err != nil {
			return err
		}

		if len(projects) == 0 {
			ui.Info("No projects tracked. Use 'rdtrack project add <name>' to get started.")
			return nil
		}

		table := ui.Table([]string{"Order", "Project", "Stage", "Due", "Health", "Risk"})

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
				healthStr = fmt.Sprintf("%s (%s)", output.HealthColor(h.Score), h.Status)
			}

			table.Append([]string{
				p.OrderNumber,
				output.Cyan(p.Name),
				p.CurrentStageID,
				due,
				healthStr,
				fmt.Sprintf("%s (%s)", output.RiskValueColor(rv), scoring.RiskValueLabel(rv)),
			})
		}

		table.Render()
		fmt.Fprintln(ui.Out)
	}

	alerts, err := scorer.DashboardAlerts(ctx, now)
	if err != nil {
		return err
	}

	printAlerts(alerts)
	return nil
}

func printAlerts(alerts scoring.Alerts) {
	total := len(alerts.OverdueTasks) + len(alerts.DueSoonTasks) +
		len(alerts.OverdueProjects) + len(alerts.AtRiskProjects)
	if total == 0 {
		ui.Success("No alerts. Nothing overdue or at risk.")
		return
	}

	if len(alerts.OverdueTasks) > 0 {
		fmt.Fprintf(ui.Out, "%s\n", output.Red(fmt.Sprintf("Overdue tasks (%d)", len(alerts.OverdueTasks))))
		for _, t := range alerts.OverdueTasks {
			fmt.Fprintf(ui.Out, "  %s  due %s (%s)\n", t.Name, t.EndDate, pluralDays(t.DaysOverdue, "overdue"))
		}
		fmt.Fprintln(ui.Out)
	}

	if len(alerts.DueSoonTasks) > 0 {
		fmt.Fprintf(ui.Out, "%s\n", output.Yellow(fmt.Sprintf("Tasks due soon (%d)", len(alerts.DueSoonTasks))))
		for _, t := range alerts.DueSoonTasks {
			when := pluralDays(t.DaysUntilDue, "left")
			if t.DaysUntilDue == 0 {
				when = "due today"
			}
			fmt.Fprintf(ui.Out, "  %s  due %s (%s)\n", t.Name, t.EndDate, when)
		}
		fmt.Fprintln(ui.Out)
	}

	if len(alerts.OverdueProjects) > 0 {
		fmt.Fprintf(ui.Out, "%s\n", output.Red(fmt.Sprintf("Overdue projects (%d)", len(alerts.OverdueProjects))))
		for _, p := range alerts.OverdueProjects {
			fmt.Fprintf(ui.Out, "  %s  %s, %.0f%% complete, %s\n",
				output.Cyan(p.Name), p.CurrentStageID, p.Progress, pluralDays(p.DaysOverdue, "overdue"))
		}
		fmt.Fprintln(ui.Out)
	}

	if len(alerts.AtRiskProjects) > 0 {
		fmt.Fprintf(ui.Out, "%s\n", output.Yellow(fmt.Sprintf("At-risk projects (%d)", len(alerts.AtRiskProjects))))
		for _, p := range alerts.AtRiskProjects {
			fmt.Fprintf(ui.Out, "  %s  %s, %.0f%% complete, %s\n",
				output.Cyan(p.Name), p.CurrentStageID, p.Progress, pluralDays(p.DaysUntilCompletion, "left"))
		}
		fmt.Fprintln(ui.Out)
	}
}

func pluralDays(n int, suffix string) string {
	if n == 1 {
		return fmt.Sprintf("1 day %s", suffix)
	}
	return fmt.Sprintf("%d days %s", n, suffix)
}
