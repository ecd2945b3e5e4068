package cmd

import (
	"fmt"

	"github.com/bnema/cascade/internal/config"
	"github.com/bnema/cascade/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string

	rootCmd = &cobra.Command{
		Use:   "cascade",
		Short: "Cascade - compositor session core",
		Long: `Cascade runs the policy core of a Wayland compositor session.
It routes window events to the configured policy engine, serves the
input inhibitor protocol and watches for the ALT+CTRL session shortcuts.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/cascade/cascade.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("socket", "", "Control socket path")
}

func initConfig(cmd *cobra.Command, args []string) error {
	// Bound here rather than in init so that tests resetting viper still see the flags
	if err := viper.BindPFlag("logging.log_level", cmd.Flags().Lookup("log-level")); err != nil {
		return err
	}
	if err := viper.BindPFlag("ipc.socket_path", cmd.Flags().Lookup("socket")); err != nil {
		return err
	}

	if configPath != "" {
		config.SetConfigPath(configPath)
	}
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if level := config.Get().Logging.LogLevel; level != "" {
		logger.SetLevel(level)
	}
	return nil
}
