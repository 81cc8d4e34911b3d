package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbecker/rdtrack/internal/output"
)

var backupKeep int

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
	Long:  "Create, list, restore, and clean up timestamped copies of the database.",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backup of the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return backupCreateRun()
	},
}

var backupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return backupListRun()
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore the database from a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return backupRestoreRun(args[0])
	},
}

var backupCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove old backups beyond the keep count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return backupCleanupRun()
	},
}

func init() {
	backupCleanupCmd.Flags().IntVar(&backupKeep, "keep", 0, "Backups to keep (default: backup.keep config)")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupCleanupCmd)
	rootCmd.AddCommand(backupCmd)
}

func backupCreateRun() error {
	bm := getBackupManager()

	if dryRun {
		ui.DryRunMsg("Would back up %s to %s", bm.DBPath, bm.Dir)
		return nil
	}

	info, err := bm.Create()
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	ui.Success("Created backup: %s (%s)", output.Cyan(info.Name), formatBytes(info.Size))
	return nil
}

func backupListRun() error {
	bm := getBackupManager()

	backups, err := bm.List()
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	if len(backups) == 0 {
		ui.Info("No backups found in %s.", bm.Dir)
		return nil
	}

	table := ui.Table([]string{"Name", "Size", "Created"})
	for _, b := range backups {
		table.Append([]string{
			b.Name,
			formatBytes(b.Size),
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
	return nil
}

func backupRestoreRun(name string) error {
	bm := getBackupManager()

	if dryRun {
		ui.DryRunMsg("Would restore %s over %s", name, bm.DBPath)
		return nil
	}

	if err := bm.Restore(name); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}

	ui.Success("Restored database from %s", output.Cyan(name))
	return nil
}

func backupCleanupRun() error {
	bm := getBackupManager()

	keep := backupKeep
	if keep <= 0 {
		keep = viper.GetInt("backup.keep")
	}

	if dryRun {
		backups, err := bm.List()
		if err != nil {
			return fmt.Errorf("list backups: %w", err)
		}
		if len(backups) > keep {
			ui.DryRunMsg("Would remove %d backup(s), keeping %d", len(backups)-keep, keep)
		} else {
			ui.Info("Nothing to clean up (%d backup(s), keeping %d)", len(backups), keep)
		}
		return nil
	}

	removed, err := bm.Cleanup(keep)
	if err != nil {
		return fmt.Errorf("cleanup backups: %w", err)
	}

	if removed == 0 {
		ui.Info("Nothing to clean up.")
	} else {
		ui.Success("Removed %d old backup(s), kept %d", removed, keep)
	}
	return nil
}

// formatBytes returns a human-readable byte size string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
