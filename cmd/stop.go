package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/cascade/internal/config"
	"github.com/bnema/cascade/internal/ipc"
	"github.com/bnema/cascade/internal/ui"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var stopYes bool

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running session",
	Long:  `Ask the running cascade session to stop, the same way the ALT+CTRL stop chord does.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := ipc.NewClient(config.Get().SocketPath())
		if !client.IsRunning() {
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatWarning("cascade is not running"))
			return nil
		}

		if !stopYes {
			confirmed := false
			err := huh.NewConfirm().
				Title("Stop the cascade session?").
				Description("Every client of the session loses its connection.").
				Affirmative("Stop").
				Negative("Cancel").
				Value(&confirmed).
				Run()
			if err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}
			if !confirmed {
				return nil
			}
		}

		if err := client.SendStop(); err != nil {
			if errors.Is(err, ipc.ErrNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.FormatWarning("cascade is not running"))
				return nil
			}
			return fmt.Errorf("failed to stop session: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess("cascade session stopped"))
		return nil
	},
}

func init() {
	stopCmd.Flags().BoolVarP(&stopYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(stopCmd)
}
