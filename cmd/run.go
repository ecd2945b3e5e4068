package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/cascade/internal/config"
	"github.com/bnema/cascade/internal/input"
	"github.com/bnema/cascade/internal/ipc"
	"github.com/bnema/cascade/internal/logger"
	"github.com/bnema/cascade/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cascade session",
	Long: `Run the cascade session in the foreground. The session stops on
SIGINT/SIGTERM, on 'cascade stop' or on the ALT+CTRL stop chord.`,
	PreRunE: bindRunFlags,
	RunE:    runSession,
}

func init() {
	runCmd.Flags().Int("queue-size", 256, "Capacity of the session event queue")
	runCmd.Flags().Int("resource-limit", 0, "Maximum live protocol resources (0 = unlimited)")
	runCmd.Flags().Bool("evdev", false, "Read the ALT+CTRL chords from local keyboards (needs the input group)")

	rootCmd.AddCommand(runCmd)
}

func bindRunFlags(cmd *cobra.Command, args []string) error {
	for key, flag := range map[string]string{
		"session.queue_size":     "queue-size",
		"session.resource_limit": "resource-limit",
		"input.evdev":            "evdev",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func runSession(cmd *cobra.Command, args []string) error {
	log := logger.With("run")
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := session.New(cfg, nil,
		session.WithQueueSize(viper.GetInt("session.queue_size")),
		session.WithResourceLimit(viper.GetInt("session.resource_limit")),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	server, err := ipc.NewSocketServer(cfg.SocketPath(), ipc.NewSessionHandler(sess))
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start control socket: %w", err)
	}
	defer server.Stop()

	config.Watch(func(next *config.Config, err error) {
		if err != nil {
			log.Error("keeping previous configuration", "error", err)
			return
		}
		if err := sess.ApplyConfig(next); err != nil {
			log.Warn("configuration change not applied", "error", err)
		}
	})

	if viper.GetBool("input.evdev") {
		done := readKeyboards(ctx, sess)
		defer func() {
			stop()
			<-done
		}()
	}

	log.Info("session started", "socket", server.SocketPath(), "config", config.GetConfigPath())
	if err := sess.Run(ctx); err != nil {
		return fmt.Errorf("session failed: %w", err)
	}
	log.Info("session stopped")
	return nil
}

// readKeyboards feeds local key events to the session until ctx ends
func readKeyboards(ctx context.Context, sess *session.Session) <-chan struct{} {
	log := logger.With("run")
	done := make(chan struct{})

	go func() {
		defer close(done)
		src := input.NewEvdevSource(input.DefaultDeviceGlob)
		err := src.Run(ctx, func(ev input.Event) {
			if _, err := sess.HandleInput(ctx, ev); err != nil && !errors.Is(err, session.ErrStopped) {
				log.Debug("input not handled", "error", err)
			}
		})
		if err != nil {
			log.Error("keyboard input unavailable", "error", err)
		}
	}()
	return done
}
