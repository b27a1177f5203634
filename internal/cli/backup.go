package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/priorcoder/institute-manager/internal/backup"
)

func newBackupCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up and restore the institute database",
	}
	cmd.AddCommand(newBackupRunCommand(app), newBackupRestoreCommand(app))
	return cmd
}

func newBackupRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Back up the database to every configured destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOperation(cmd, app, backup.OperationBackup)
		},
	}
}

func newBackupRestoreCommand(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the database from the newest available backup",
		Long:  "Overwrites the live database with the newest backup, preferring the local directory over Dropbox. A pre-restore safety copy is kept next to the live database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("restore overwrites the live database; re-run with --yes to confirm")
			}
			return runOperation(cmd, app, backup.OperationRestore)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the destructive restore")
	return cmd
}

func runOperation(cmd *cobra.Command, app *App, op backup.Operation) error {
	settings, err := app.Settings.Load()
	if err != nil {
		return err
	}
	if settings.TokenFromFallback {
		fmt.Fprintln(cmd.OutOrStdout(), "Warning: Dropbox token is stored in the plain settings file; the system keyring is unavailable")
	}

	status, done, err := app.Orchestrator.Run(cmd.Context(), op, *settings)
	if err != nil {
		return err
	}
	for msg := range status {
		fmt.Fprintln(cmd.OutOrStdout(), msg)
	}

	result := <-done
	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	if !result.Success {
		return result.Err
	}
	return nil
}
