package session

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/cascade/internal/config"
	"github.com/bnema/cascade/internal/geometry"
	"github.com/bnema/cascade/internal/inhibitor"
	"github.com/bnema/cascade/internal/input"
	"github.com/bnema/cascade/internal/launcher"
	"github.com/bnema/cascade/internal/policy"
	"github.com/bnema/cascade/internal/protocol"
)

func testConfig() *config.Config {
	c := config.DefaultConfig
	c.Session.WallpaperApp = "wallpaper"
	c.Session.LauncherApp = "launcher"
	return &c
}

// startSession runs a session whose launcher spawns nothing
func startSession(t *testing.T, engine policy.Engine, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithLauncher(launcher.New(nil, nil))}, opts...)
	s, err := New(testConfig(), engine, opts...)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()
	t.Cleanup(func() {
		s.Stop()
		select {
		case err := <-errc:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("session did not stop")
		}
	})
	return s
}

func chord(code uint16) *input.KeyboardEvent {
	return &input.KeyboardEvent{Action: input.KeyDown, ScanCode: code, Modifiers: input.ModAlt | input.ModCtrl}
}

// takeInhibitor connects a client and has it grab an input inhibitor as
// object 2 through a manager bound as object 1
func takeInhibitor(t *testing.T, ctx context.Context, s *Session) protocol.ClientID {
	t.Helper()
	client, err := s.Connect(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.Bind(ctx, client, inhibitor.ManagerInterface.Name, 1, 1))
	require.NoError(t, s.Request(ctx, client, 1, inhibitor.RequestGetInhibitor, protocol.NewID(2)))
	return client
}

func TestSessionStopChordEndsRun(t *testing.T) {
	s, err := New(testConfig(), nil, WithLauncher(launcher.New(nil, nil)))
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()

	handled, err := s.HandleInput(context.Background(), chord(evdev.KEY_BACKSPACE))
	require.NoError(t, err)
	assert.True(t, handled)

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stop chord did not end the session")
	}

	assert.False(t, s.Status().Running)
	assert.ErrorIs(t, s.Post(func() {}), ErrStopped)
	assert.ErrorIs(t, s.Run(context.Background()), ErrStopped)
}

func TestSessionInhibitorBlocksChords(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil)

	client := takeInhibitor(t, ctx, s)
	st := s.Status()
	assert.True(t, st.Inhibition.Inhibited)
	assert.Equal(t, client, st.Inhibition.Owner)

	handled, err := s.HandleInput(ctx, chord(evdev.KEY_BACKSPACE))
	require.NoError(t, err)
	assert.False(t, handled, "chords fall through while inhibited")
	assert.ErrorIs(t, s.RequestLauncher(ctx), ErrInhibited)

	// the owner goes away without destroying its inhibitor
	require.NoError(t, s.Disconnect(ctx, client))
	assert.False(t, s.Status().Inhibition.Inhibited)
	assert.Zero(t, s.Status().Resources)
}

func TestSessionInhibitorExplicitDestroy(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil)

	client := takeInhibitor(t, ctx, s)
	require.NoError(t, s.Request(ctx, client, 2, inhibitor.RequestDestroy))

	st := s.Status()
	assert.False(t, st.Inhibition.Inhibited)
	assert.Equal(t, 1, st.Resources, "only the manager is left")
	assert.Equal(t, 1, st.Clients)
}

func TestSessionProtocolErrorsReachTheClient(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil)

	var mu sync.Mutex
	var posted []*protocol.Error
	client, err := s.Connect(ctx, protocol.ErrorSinkFunc(func(e *protocol.Error) {
		mu.Lock()
		posted = append(posted, e)
		mu.Unlock()
	}))
	require.NoError(t, err)

	err = s.Request(ctx, client, 9, 0)
	assert.ErrorIs(t, err, protocol.ErrUnknownObject)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, posted, 1)
	assert.Equal(t, protocol.ErrorInvalidObject, posted[0].Code)
}

func TestSessionUnknownClientAndGlobal(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil)

	assert.ErrorIs(t, s.Request(ctx, 42, 1, 0), ErrUnknownClient)

	client, err := s.Connect(ctx, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Bind(ctx, client, "wl_nonexistent", 1, 1), protocol.ErrUnknownGlobal)
}

func TestSessionResourceLimit(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil, WithResourceLimit(1))

	client, err := s.Connect(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.Bind(ctx, client, inhibitor.ManagerInterface.Name, 1, 1))

	err = s.Request(ctx, client, 1, inhibitor.RequestGetInhibitor, protocol.NewID(2))
	assert.ErrorIs(t, err, protocol.ErrNoMemory)
	assert.False(t, s.Status().Inhibition.Inhibited)

	// the session keeps serving other work
	_, err = s.MapWindow(ctx, policy.ApplicationInfo{Name: "term"}, policy.WindowSpecification{})
	assert.NoError(t, err)
}

func TestSessionWallpaperPlacement(t *testing.T) {
	ctx := context.Background()
	engine := &typeForcingEngine{forced: policy.WindowTypeUtility}
	s := startSession(t, engine)

	wallpaper, err := s.MapWindow(ctx, policy.ApplicationInfo{Name: "wallpaper"}, policy.WindowSpecification{})
	require.NoError(t, err)
	launcherWin, err := s.MapWindow(ctx, policy.ApplicationInfo{Name: "launcher"}, policy.WindowSpecification{})
	require.NoError(t, err)
	editor, err := s.MapWindow(ctx, policy.ApplicationInfo{Name: "editor"}, policy.WindowSpecification{})
	require.NoError(t, err)

	windows, err := s.Windows(ctx)
	require.NoError(t, err)
	types := map[policy.WindowID]policy.WindowType{}
	for _, w := range windows {
		types[w.ID] = w.Type
	}
	assert.Equal(t, policy.WindowTypeDecoration, types[wallpaper])
	assert.Equal(t, policy.WindowTypeDialog, types[launcherWin])
	assert.Equal(t, policy.WindowTypeUtility, types[editor])
	assert.True(t, engine.sawTools)
}

func TestSessionLauncherRoleFollowsStartedProcess(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil, WithLauncher(launcher.New(nil, []string{"sleep", "60"})))

	id, err := s.MapWindow(ctx, policy.ApplicationInfo{Name: "launcher", PID: os.Getpid()}, policy.WindowSpecification{})
	require.NoError(t, err)

	windows, err := s.Windows(ctx)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, id, windows[0].ID)
	assert.Equal(t, policy.WindowTypeNormal, windows[0].Type, "a client borrowing the launcher name is not the launcher")
}

func TestSessionWindowLifecycle(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil)

	id, err := s.MapWindow(ctx, policy.ApplicationInfo{Name: "term"}, policy.WindowSpecification{
		Size: policy.Some(geometry.Size{Width: 100, Height: 100}),
	})
	require.NoError(t, err)
	assert.Equal(t, id, s.Status().ActiveWindow)

	require.NoError(t, s.ModifyWindow(ctx, id, policy.WindowSpecification{Size: policy.Some(geometry.Size{Width: 1, Height: 1})}))
	windows, err := s.Windows(ctx)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, policy.MinimumWindowDimension, windows[0].Size.Width)

	// Alt+F4 closes the active window once the key event is done
	handled, err := s.HandleInput(ctx, &input.KeyboardEvent{Action: input.KeyDown, ScanCode: evdev.KEY_F4, Modifiers: input.ModAlt})
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Zero(t, s.Status().Windows)

	assert.ErrorIs(t, s.UnmapWindow(ctx, id), ErrUnknownWindow)
	assert.ErrorIs(t, s.FocusWindow(ctx, id), ErrUnknownWindow)
}

func TestSessionTimedOutCallsNeverRun(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil)

	started, release := make(chan struct{}), make(chan struct{})
	require.NoError(t, s.Post(func() {
		close(started)
		<-release
	}))
	<-started

	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	id, err := s.MapWindow(shortCtx, policy.ApplicationInfo{Name: "term"}, policy.WindowSpecification{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, id)

	handled, err := s.HandleInput(shortCtx, chord(evdev.KEY_BACKSPACE))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, handled)

	close(release)

	windows, err := s.Windows(ctx)
	require.NoError(t, err, "the abandoned stop chord must not end the session")
	assert.Empty(t, windows)
	assert.Zero(t, s.Status().Windows)
}

func TestSessionInhibitedFocusStaysWithOwner(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil)

	owner := takeInhibitor(t, ctx, s)
	locker, err := s.MapWindow(ctx, policy.ApplicationInfo{Name: "locker", Client: owner}, policy.WindowSpecification{})
	require.NoError(t, err)
	other, err := s.MapWindow(ctx, policy.ApplicationInfo{Name: "term", Client: owner + 1}, policy.WindowSpecification{})
	require.NoError(t, err)

	assert.Equal(t, locker, s.Status().ActiveWindow)
	require.NoError(t, s.FocusWindow(ctx, other))
	assert.Equal(t, locker, s.Status().ActiveWindow)
}

func TestSessionAdviseRejectsWindowEvents(t *testing.T) {
	ctx := context.Background()
	engine := &typeForcingEngine{}
	s := startSession(t, engine)

	assert.Error(t, s.Advise(ctx, policy.RaiseWindowEvent{}))
	require.NoError(t, s.Advise(ctx, policy.OutputCreatedEvent{Output: &policy.Output{ID: 1, Name: "DP-1"}}))
	assert.Equal(t, 1, engine.outputs)
}

func TestSessionApplyConfig(t *testing.T) {
	ctx := context.Background()
	s := startSession(t, nil)

	cfg := testConfig()
	cfg.Shortcuts.StopKey = "q"
	cfg.Session.WallpaperApp = "swaybg"
	require.NoError(t, s.ApplyConfig(cfg))

	// ApplyConfig is queued; a blocking call afterwards observes it
	id, err := s.MapWindow(ctx, policy.ApplicationInfo{Name: "swaybg"}, policy.WindowSpecification{})
	require.NoError(t, err)
	windows, err := s.Windows(ctx)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, id, windows[0].ID)
	assert.Equal(t, policy.WindowTypeDecoration, windows[0].Type)
	assert.Equal(t, "q", s.Status().StopKey)

	bad := testConfig()
	bad.Shortcuts.LauncherKey = "hyper"
	require.NoError(t, s.ApplyConfig(bad))
	_, err = s.Windows(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", s.Status().LauncherKey)
	assert.Equal(t, "q", s.Status().StopKey, "rejected keys leave both chords unchanged")
}

func TestSessionRunTwice(t *testing.T) {
	s := startSession(t, nil)

	// wait for the first Run to take the loop
	require.Eventually(t, func() bool { return s.Status().Running }, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, s.Run(context.Background()), ErrAlreadyRunning)
}

func TestSessionContextCancelStops(t *testing.T) {
	s, err := New(testConfig(), nil, WithLauncher(launcher.New(nil, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled context did not stop the session")
	}
	<-s.Done()
	<-s.Exited()
}

func TestStatusUptime(t *testing.T) {
	now := time.Now()
	assert.Zero(t, Status{}.Uptime(now))
	assert.Equal(t, time.Minute, Status{Running: true, Started: now.Add(-time.Minute)}.Uptime(now))
}

type typeForcingEngine struct {
	policy.NopEngine
	forced   policy.WindowType
	sawTools bool
	outputs  int
}

func (e *typeForcingEngine) UseTools(policy.Tools) { e.sawTools = true }

func (e *typeForcingEngine) PlaceNewWindow(_ policy.ApplicationInfo, spec *policy.WindowSpecification) {
	if e.forced != policy.WindowTypeNormal {
		spec.Type.Set(e.forced)
	}
}

func (e *typeForcingEngine) AdviseOutputCreate(*policy.Output) { e.outputs++ }
