package launcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bnema/cascade/internal/logger"
)

// ErrNoCommand is returned by Show when no launcher command is configured
var ErrNoCommand = errors.New("no launcher command configured")

// Launcher runs the launcher daemon for the lifetime of a session and the
// command that brings it to the front. Processes are started, not
// supervised: a daemon that exits is not restarted.
type Launcher struct {
	log *log.Logger

	mu      sync.Mutex
	show    []string
	startup []string
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
	watch   func(pid int, alive bool)
}

// New creates a launcher. show is run by Show and startup by Start.
func New(show, startup []string) *Launcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Launcher{
		log:     logger.With("launcher"),
		show:    show,
		startup: startup,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetCommands replaces the commands used by later calls
func (l *Launcher) SetCommands(show, startup []string) {
	l.mu.Lock()
	l.show, l.startup = show, startup
	l.mu.Unlock()
}

// WatchStartup registers fn to hear when the startup process starts and
// exits. It must be called before Start.
func (l *Launcher) WatchStartup(fn func(pid int, alive bool)) {
	l.mu.Lock()
	l.watch = fn
	l.mu.Unlock()
}

// Start launches the startup command in the background. It is a no-op when
// no startup command is configured.
func (l *Launcher) Start() error {
	l.mu.Lock()
	argv := l.startup
	l.mu.Unlock()

	if len(argv) == 0 {
		return nil
	}
	return l.spawn("startup", argv)
}

// Show runs the show command without waiting for it
func (l *Launcher) Show() error {
	l.mu.Lock()
	argv := l.show
	l.mu.Unlock()

	if len(argv) == 0 {
		return ErrNoCommand
	}
	return l.spawn("show", argv)
}

// Stop kills every process the launcher started and waits for them.
// Calling Stop more than once is safe.
func (l *Launcher) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()
}

func (l *Launcher) spawn(kind string, argv []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return fmt.Errorf("launcher stopped")
	}

	cmd := exec.CommandContext(l.ctx, argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s command %q: %w", kind, argv[0], err)
	}
	pid := cmd.Process.Pid
	l.log.Debug("started process", "kind", kind, "command", argv[0], "pid", pid)

	var watch func(int, bool)
	if kind == "startup" {
		watch = l.watch
	}
	if watch != nil {
		watch(pid, true)
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := cmd.Wait(); err != nil && l.ctx.Err() == nil {
			l.log.Warn("launcher process exited", "kind", kind, "command", argv[0], "error", err)
		}
		if watch != nil {
			watch(pid, false)
		}
	}()
	return nil
}
