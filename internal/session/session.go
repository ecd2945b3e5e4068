// Package session ties the protocol runtime, the input inhibitor, the policy
// dispatcher and the shortcut gate into one compositor session.
//
// Everything a session owns is driven from a single loop goroutine started
// by Run. Other goroutines talk to it through Post and the blocking helpers
// built on Do, so events are handled one at a time in posting order.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/cascade/internal/config"
	"github.com/bnema/cascade/internal/inhibitor"
	"github.com/bnema/cascade/internal/launcher"
	"github.com/bnema/cascade/internal/logger"
	"github.com/bnema/cascade/internal/policy"
	"github.com/bnema/cascade/internal/protocol"
	"github.com/bnema/cascade/internal/shortcuts"
)

var (
	// ErrStopped is returned for work posted after the session stopped
	ErrStopped = errors.New("session stopped")
	// ErrAlreadyRunning is returned by a second call to Run
	ErrAlreadyRunning = errors.New("session already running")
	// ErrInhibited is returned when an input inhibitor blocks a request
	ErrInhibited = errors.New("input is inhibited")
	// ErrUnknownWindow is returned for window ids the session does not know
	ErrUnknownWindow = errors.New("unknown window")
	// ErrUnknownClient is returned for client ids the session does not know
	ErrUnknownClient = errors.New("unknown client")
)

const defaultQueueSize = 256

// Option configures a Session
type Option func(*options)

type options struct {
	queueSize     int
	resourceLimit int
	launcher      *launcher.Launcher
	engineName    string
}

// WithQueueSize sets how many events may wait for the loop
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

// WithResourceLimit caps the live protocol resources across all clients
func WithResourceLimit(n int) Option {
	return func(o *options) { o.resourceLimit = n }
}

// WithLauncher replaces the launcher built from the configuration
func WithLauncher(l *launcher.Launcher) Option {
	return func(o *options) { o.launcher = l }
}

// WithEngineName sets the engine name reported by Status
func WithEngineName(name string) Option {
	return func(o *options) { o.engineName = name }
}

// Session is one running compositor session
type Session struct {
	log *log.Logger

	queue    chan job
	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
	later    []func()

	inhibition *inhibitor.State
	display    *protocol.Display
	extension  *inhibitor.Extension
	windows    *policy.WindowTable
	sessions   *launcher.Sessions
	launcher   *launcher.Launcher
	dispatcher *policy.Dispatcher
	gate       *shortcuts.Gate
	clients    map[protocol.ClientID]*protocol.Client

	engineName string
	logLevel   string

	statusMu sync.RWMutex
	status   Status
}

// New builds a session around engine. A nil engine leaves every decision
// to the baseline policy.
func New(cfg *config.Config, engine policy.Engine, opts ...Option) (*Session, error) {
	o := options{queueSize: defaultQueueSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.queueSize < 1 {
		o.queueSize = 1
	}

	s := &Session{
		log:        logger.With("session"),
		queue:      make(chan job, o.queueSize),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
		inhibition: inhibitor.NewState(),
		windows:    policy.NewWindowTable(),
		sessions:   launcher.NewSessions(cfg.Session.WallpaperApp, cfg.Session.LauncherApp),
		launcher:   o.launcher,
		clients:    make(map[protocol.ClientID]*protocol.Client),
		engineName: o.engineName,
		logLevel:   cfg.Logging.LogLevel,
	}
	if s.launcher == nil {
		s.launcher = launcher.New(cfg.Launcher.Command, cfg.Launcher.Startup)
	}
	s.launcher.WatchStartup(func(pid int, alive bool) {
		if alive {
			s.sessions.Track(policy.RoleLauncher, pid)
		} else {
			s.sessions.Untrack(policy.RoleLauncher, pid)
		}
	})

	var displayOpts []protocol.Option
	if o.resourceLimit > 0 {
		displayOpts = append(displayOpts, protocol.WithResourceLimit(o.resourceLimit))
	}
	s.display = protocol.NewDisplay(displayOpts...)

	ext, err := inhibitor.Register(s.display, s.inhibition)
	if err != nil {
		return nil, fmt.Errorf("failed to register input inhibitor: %w", err)
	}
	s.extension = ext

	s.windows.OnClose = s.askClientToClose

	if engine == nil {
		engine = policy.NopEngine{}
	}
	if s.engineName == "" {
		s.engineName = fmt.Sprintf("%T", engine)
	}
	if user, ok := engine.(policy.ToolsUser); ok {
		user.UseTools(s.windows)
	}
	baseline := policy.NewMinimalPolicy(s.windows, s.inhibition)
	s.dispatcher = policy.NewDispatcher(baseline, engine, s.sessions)

	gate, err := shortcuts.NewGate(s.inhibition, s, shortcuts.Keys{
		Launcher: cfg.Shortcuts.LauncherKey,
		Stop:     cfg.Shortcuts.StopKey,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid shortcut configuration: %w", err)
	}
	s.gate = gate

	s.publish()
	return s, nil
}

// Run drives the session until ctx is cancelled or Stop is called. Work still
// queued at that point is dropped.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	select {
	case <-s.done:
		s.running.Store(false)
		return ErrStopped
	default:
	}

	started := time.Now()
	s.statusMu.Lock()
	s.status.Running = true
	s.status.Started = started
	s.statusMu.Unlock()

	s.log.Info("session started", "engine", s.engineName, "global", inhibitor.ManagerInterface.Name)
	if err := s.launcher.Start(); err != nil {
		s.log.Warn("failed to start launcher", "error", err)
	}

	defer s.shutdown()
	for {
		// a stop wins over queued work
		select {
		case <-s.done:
			return nil
		default:
		}

		select {
		case <-ctx.Done():
			s.Stop()
			return nil
		case <-s.done:
			return nil
		case j := <-s.queue:
			s.run(j)
		}
	}
}

// Stop ends the run loop. It may be called from any goroutine, including
// from inside the loop, any number of times.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// Done is closed once Stop has been called
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Exited is closed once Run has returned and the session is torn down
func (s *Session) Exited() <-chan struct{} {
	return s.exited
}

// job is one unit of loop work. finished, when set, is closed after fn and
// everything it deferred have run and the status is republished.
// Job claim states. The loop and a waiting caller race to move a job out of
// jobPending; whoever wins decides whether fn runs.
const (
	jobPending int32 = iota
	jobRunning
	jobAbandoned
)

type job struct {
	fn       func()
	finished chan struct{}
	state    *atomic.Int32 // nil for jobs nobody waits on
}

// Post queues fn to run on the loop. It blocks while the queue is full.
func (s *Session) Post(fn func()) error {
	return s.enqueue(context.Background(), job{fn: fn})
}

// Do runs fn on the loop and waits for it to finish. When ctx ends before
// the loop picks fn up, fn never runs and ctx.Err() is returned. Once fn has
// started, Do waits for it and reports success.
func (s *Session) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	state := new(atomic.Int32)
	if err := s.enqueue(ctx, job{fn: fn, finished: finished, state: state}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		if state.CompareAndSwap(jobPending, jobAbandoned) {
			return ctx.Err()
		}
		// the loop already claimed fn and closes finished when it is done
		<-finished
		return nil
	case <-s.exited:
		// the loop either ran fn to completion or dropped it
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Status returns the latest snapshot published by the loop
func (s *Session) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	st := s.status
	st.Inhibition = s.inhibition.Status()
	return st
}

// Inhibition exposes the shared inhibition flag
func (s *Session) Inhibition() *inhibitor.State { return s.inhibition }

func (s *Session) enqueue(ctx context.Context, j job) error {
	select {
	case <-s.done:
		return ErrStopped
	default:
	}

	select {
	case s.queue <- j:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes one job and whatever it deferred, then republishes status
func (s *Session) run(j job) {
	if j.state != nil && !j.state.CompareAndSwap(jobPending, jobRunning) {
		return
	}
	j.fn()
	for len(s.later) > 0 {
		next := s.later[0]
		s.later = s.later[1:]
		next()
	}
	s.publish()
	if j.finished != nil {
		close(j.finished)
	}
}

// deferred queues fn to run on the loop right after the current event
func (s *Session) deferred(fn func()) {
	s.later = append(s.later, fn)
}

func (s *Session) shutdown() {
	s.launcher.Stop()

	for id, c := range s.clients {
		s.display.Disconnect(c)
		delete(s.clients, id)
	}
	s.later = nil
	s.running.Store(false)

	s.statusMu.Lock()
	s.status.Running = false
	s.statusMu.Unlock()
	s.publish()

	s.log.Info("session stopped")
	close(s.exited)
}

func (s *Session) publish() {
	keys := s.gate.Keys()
	active, _ := s.windows.ActiveWindow()

	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Engine = s.engineName
	s.status.Clients = s.display.ClientCount()
	s.status.Resources = s.display.ResourceCount()
	s.status.Windows = s.windows.Len()
	s.status.ActiveWindow = active
	s.status.LauncherKey = keys.Launcher
	s.status.StopKey = keys.Stop
}
