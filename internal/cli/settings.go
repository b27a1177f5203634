package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Configure backup destinations",
	}
	cmd.AddCommand(newSettingsShowCommand(app), newSettingsSetCommand(app))
	return cmd
}

func newSettingsShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current backup configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.Settings.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if settings.LocalConfigured() {
				fmt.Fprintf(out, "Local backup path:  %s\n", settings.LocalPath)
			} else {
				fmt.Fprintln(out, "Local backup path:  not configured")
			}
			if settings.CloudConfigured() {
				fmt.Fprintln(out, "Dropbox:            configured")
				if settings.TokenFromFallback {
					fmt.Fprintln(out, "                    (token stored in settings file; keyring unavailable)")
				}
			} else {
				fmt.Fprintln(out, "Dropbox:            not configured")
			}
			fmt.Fprintf(out, "Revisions to keep:  %d\n", settings.Revisions())
			return nil
		},
	}
}

func newSettingsSetCommand(app *App) *cobra.Command {
	var localPath, dropboxToken string
	var revisions int
	var clearToken bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the backup configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.Settings.Load()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("local-path") {
				settings.LocalPath = localPath
			}
			if cmd.Flags().Changed("dropbox-token") {
				settings.DropboxToken = dropboxToken
			}
			if clearToken {
				settings.DropboxToken = ""
			}
			if cmd.Flags().Changed("revisions") {
				settings.MaxRevisions = revisions
			}

			if err := app.Settings.Save(settings); err != nil {
				return err
			}
			if settings.TokenFromFallback {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: system keyring unavailable, Dropbox token stored in the plain settings file")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&localPath, "local-path", "", "directory for local backups (empty to disable)")
	cmd.Flags().StringVar(&dropboxToken, "dropbox-token", "", "Dropbox access token")
	cmd.Flags().BoolVar(&clearToken, "clear-dropbox-token", false, "remove the stored Dropbox token")
	cmd.Flags().IntVar(&revisions, "revisions", 0, "number of backup revisions to keep (1-20)")
	return cmd
}
