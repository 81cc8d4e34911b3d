package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mbecker/rdtrack/internal/models"
	"github.com/mbecker/rdtrack/internal/output"
	"github.com/mbecker/rdtrack/internal/scoring"
)

var (
	riskProbability int
	riskImpact      int
	riskCategory    string
	riskOwner       string
	riskCause       string
	riskTrigger     string
	riskNotes       string

	respondStrategy    string
	respondPlan        string
	respondResponsible string
	respondDue         string
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Manage project risk registers",
	Long: `Manage per-project risk registers.

Each risk carries a probability and impact on a 1-5 scale; its level is
always probability times impact. Risks that have no response recorded
raise the project's aggregate risk value.`,
}

var riskAddCmd = &cobra.Command{
	Use:   "add <project> <description>",
	Short: "Add a risk to a project's register",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return riskAddRun(args[0], args[1])
	},
}

var riskListCmd = &cobra.Command{
	Use:     "list <project>",
	Aliases: []string{"ls"},
	Short:   "List a project's risks by level",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return riskListRun(args[0])
	},
}

var riskValueCmd = &cobra.Command{
	Use:   "value <project>",
	Short: "Show a project's aggregate risk value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return riskValueRun(args[0])
	},
}

var riskRespondCmd = &cobra.Command{
	Use:   "respond <risk-id>",
	Short: "Record a response plan for a risk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return riskRespondRun(args[0])
	},
}

var riskCloseCmd = &cobra.Command{
	Use:   "close <risk-id>",
	Short: "Close a risk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return riskCloseRun(args[0])
	},
}

func init() {
	riskAddCmd.Flags().IntVar(&riskProbability, "probability", 1, "Probability 1-5")
	riskAddCmd.Flags().IntVar(&riskImpact, "impact", 1, "Impact 1-5")
	riskAddCmd.Flags().StringVar(&riskCategory, "category", "", "Risk category")
	riskAddCmd.Flags().StringVar(&riskOwner, "owner", "", "Risk owner")
	riskAddCmd.Flags().StringVar(&riskCause, "cause", "", "Root cause")
	riskAddCmd.Flags().StringVar(&riskTrigger, "trigger", "", "Trigger condition")
	riskAddCmd.Flags().StringVar(&riskNotes, "notes", "", "Notes")

	riskRespondCmd.Flags().StringVar(&respondStrategy, "strategy", "mitigate", "Strategy (avoid, mitigate, transfer, accept)")
	riskRespondCmd.Flags().StringVar(&respondPlan, "plan", "", "Action plan")
	riskRespondCmd.Flags().StringVar(&respondResponsible, "responsible", "", "Who executes the plan")
	riskRespondCmd.Flags().StringVar(&respondDue, "due", "", "Due date (YYYY-MM-DD)")

	riskCmd.AddCommand(riskAddCmd)
	riskCmd.AddCommand(riskListCmd)
	riskCmd.AddCommand(riskValueCmd)
	riskCmd.AddCommand(riskRespondCmd)
	riskCmd.AddCommand(riskCloseCmd)
	rootCmd.AddCommand(riskCmd)
}

func validRiskScale(n int) bool { return n >= 1 && n <= 5 }

func riskAddRun(projectRef, description string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if !validRiskScale(riskProbability) || !validRiskScale(riskImpact) {
		return fmt.Errorf("probability and impact must be between 1 and 5")
	}

	p, err := resolveProjectRef(ctx, s, projectRef)
	if err != nil {
		return err
	}

	r := &models.Risk{
		ProjectID:   p.ID,
		Description: description,
		Category:    riskCategory,
		Probability: riskProbability,
		Impact:      riskImpact,
		Owner:       riskOwner,
		RootCause:   riskCause,
		Trigger:     riskTrigger,
		Notes:       riskNotes,
	}

	if dryRun {
		ui.DryRunMsg("Would add risk to %s: %s", p.Name, description)
		return nil
	}

	if err := s.CreateRisk(ctx, r); err != nil {
		return fmt.Errorf("add risk: %w", err)
	}

	ui.Success("Added risk to %s (level %d)", output.Cyan(p.Name), r.RiskLevel)
	ui.VerboseLog("ID: %s", r.ID)
	return nil
}

func riskListRun(projectRef string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	p, err := resolveProjectRef(ctx, s, projectRef)
	if err != nil {
		return err
	}

	risks, err := s.ListRisksByProject(ctx, p.ID)
	if err != nil {
		return err
	}

	if len(risks) == 0 {
		ui.Info("No risks registered for %s.", p.Name)
		return nil
	}

	table := ui.Table([]string{"ID", "Description", "P", "I", "Level", "Status", "Owner"})
	for _, r := range risks {
		owner := r.Owner
		if owner == "" {
			owner = "-"
		}
		table.Append([]string{
			r.ID,
			r.Description,
			fmt.Sprintf("%d", r.Probability),
			fmt.Sprintf("%d", r.Impact),
			fmt.Sprintf("%d", r.RiskLevel),
			output.StatusColor(string(r.Status)),
			owner,
		})
	}
	table.Render()
	return nil
}

func riskValueRun(projectRef string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	p, err := resolveProjectRef(ctx, s, projectRef)
	if err != nil {
		return err
	}

	rv := scoring.NewService(s).ProjectRiskValue(ctx, p.ID)
	fmt.Fprintf(ui.Out, "%s: %s (%s)\n", output.Cyan(p.Name), output.RiskValueColor(rv), scoring.RiskValueLabel(rv))
	return nil
}

func riskRespondRun(riskID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r, err := s.GetRisk(ctx, riskID)
	if err != nil {
		return fmt.Errorf("find risk: %w", err)
	}

	strategy := models.ResponseStrategy(respondStrategy)
	switch strategy {
	case models.StrategyAvoid, models.StrategyMitigate, models.StrategyTransfer, models.StrategyAccept:
	default:
		return fmt.Errorf("unknown strategy %q (valid: avoid, mitigate, transfer, accept)", respondStrategy)
	}

	if dryRun {
		ui.DryRunMsg("Would record %s response for risk: %s", strategy, r.Description)
		return nil
	}

	resp := &models.RiskResponse{
		RiskID:      r.ID,
		Strategy:    strategy,
		ActionPlan:  respondPlan,
		Responsible: respondResponsible,
		Status:      models.ResponseStatusPlanned,
		DueDate:     respondDue,
	}
	if err := s.CreateRiskResponse(ctx, resp); err != nil {
		return fmt.Errorf("record response: %w", err)
	}

	// The risk counts as responded once a plan exists.
	if r.Status == models.RiskStatusIdentified || r.Status == models.RiskStatusAnalyzed {
		r.Status = models.RiskStatusResponded
		if err := s.UpdateRisk(ctx, r); err != nil {
			return fmt.Errorf("update risk status: %w", err)
		}
	}

	ui.Success("Recorded %s response for risk: %s", strategy, r.Description)
	return nil
}

func riskCloseRun(riskID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r, err := s.GetRisk(ctx, riskID)
	if err != nil {
		return fmt.Errorf("find risk: %w", err)
	}

	if r.Status == models.RiskStatusClosed {
		ui.Info("Risk already closed: %s", r.Description)
		return nil
	}

	if dryRun {
		ui.DryRunMsg("Would close risk: %s", r.Description)
		return nil
	}

	r.Status = models.RiskStatusClosed
	if err := s.UpdateRisk(ctx, r); err != nil {
		return fmt.Errorf("close risk: %w", err)
	}

	ui.Success("Closed risk: %s", r.Description)
	return nil
}
