package cmd

import (
	"fmt"
	"os"

	"github.com/bnema/cascade/internal/config"
	"github.com/bnema/cascade/internal/logger"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cascade configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Config file: %s\n\n", config.GetConfigPath())

		fmt.Fprintln(out, "[session]")
		fmt.Fprintf(out, "  wallpaper_app = %q\n", cfg.Session.WallpaperApp)
		fmt.Fprintf(out, "  launcher_app  = %q\n", cfg.Session.LauncherApp)

		fmt.Fprintln(out, "\n[launcher]")
		fmt.Fprintf(out, "  command = %q\n", cfg.Launcher.Command)
		fmt.Fprintf(out, "  startup = %q\n", cfg.Launcher.Startup)

		fmt.Fprintln(out, "\n[shortcuts]")
		fmt.Fprintf(out, "  launcher_key = %q\n", cfg.Shortcuts.LauncherKey)
		fmt.Fprintf(out, "  stop_key     = %q\n", cfg.Shortcuts.StopKey)

		fmt.Fprintln(out, "\n[ipc]")
		fmt.Fprintf(out, "  socket_path = %q\n", cfg.SocketPath())

		fmt.Fprintln(out, "\n[logging]")
		fmt.Fprintf(out, "  log_level = %q\n", cfg.Logging.LogLevel)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check if config already exists
		configPath := config.GetConfigPath()
		if _, err := os.Stat(configPath); err == nil {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				logger.Infof("Configuration file already exists at: %s", configPath)
				logger.Info("Use --force to overwrite")
				return nil
			}
		}

		if err := config.Save(); err != nil {
			return err
		}

		logger.Infof("Configuration initialized at: %s", configPath)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
