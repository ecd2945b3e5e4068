package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/cascade/internal/config"
	"github.com/bnema/cascade/internal/ipc"
	"github.com/bnema/cascade/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the running session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := ipc.NewClient(config.Get().SocketPath())

		if statusWatch {
			model := ui.NewWatchModel(client.SendStatus, ui.DefaultRefresh)
			_, err := tea.NewProgram(model).Run()
			return err
		}

		status, err := client.SendStatus()
		if errors.Is(err, ipc.ErrNotRunning) {
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderStatus(nil))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query status: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderStatus(status))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Keep refreshing the status")
	rootCmd.AddCommand(statusCmd)
}
