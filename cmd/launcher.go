package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/cascade/internal/config"
	"github.com/bnema/cascade/internal/ipc"
	"github.com/bnema/cascade/internal/ui"
	"github.com/spf13/cobra"
)

var launcherCmd = &cobra.Command{
	Use:   "launcher",
	Short: "Show the application launcher",
	Long:  `Ask the running session to show the launcher. Refused while a client holds the input inhibitor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := ipc.NewClient(config.Get().SocketPath())
		err := client.SendShowLauncher()
		if errors.Is(err, ipc.ErrNotRunning) {
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to show launcher: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess("launcher requested"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(launcherCmd)
}
