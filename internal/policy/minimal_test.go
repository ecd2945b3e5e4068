package policy

import (
	"testing"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/cascade/internal/input"
	"github.com/bnema/cascade/internal/protocol"
)

type fakeInhibition struct {
	owner protocol.ClientID
	on    bool
}

func (f *fakeInhibition) IsInhibited() bool { return f.on }
func (f *fakeInhibition) IsAllowed(c protocol.ClientID) bool {
	return !f.on || c == f.owner
}

func openWindow(t *testing.T, table *WindowTable, p *MinimalPolicy, client protocol.ClientID) *WindowInfo {
	t.Helper()
	app := ApplicationInfo{Name: "app", Client: client}
	spec := p.PlaceNewWindow(app, WindowSpecification{})
	info := table.Create(app, &spec)
	p.HandleWindowReady(info)
	return info
}

func TestMinimalPolicyPlacementDefaultsType(t *testing.T) {
	p := NewMinimalPolicy(NewWindowTable(), nil)

	spec := p.PlaceNewWindow(ApplicationInfo{}, WindowSpecification{})
	assert.Equal(t, WindowTypeNormal, spec.Type.Or(WindowTypeTip))

	spec = p.PlaceNewWindow(ApplicationInfo{}, WindowSpecification{Type: Some(WindowTypeMenu)})
	assert.Equal(t, WindowTypeMenu, spec.Type.Or(WindowTypeTip))
}

func TestMinimalPolicyFocusesReadyWindows(t *testing.T) {
	table := NewWindowTable()
	p := NewMinimalPolicy(table, nil)

	first := openWindow(t, table, p, 1)
	second := openWindow(t, table, p, 2)

	active, ok := table.ActiveWindow()
	require.True(t, ok)
	assert.Equal(t, second.ID, active)
	assert.NotEqual(t, first.ID, active)
}

func TestMinimalPolicyIgnoresChildAndDecorationWindows(t *testing.T) {
	table := NewWindowTable()
	p := NewMinimalPolicy(table, nil)
	parent := openWindow(t, table, p, 1)

	child := table.Create(ApplicationInfo{Client: 1}, &WindowSpecification{Parent: Some(parent.ID)})
	p.HandleWindowReady(child)
	wallpaper := table.Create(ApplicationInfo{Client: 2}, &WindowSpecification{Type: Some(WindowTypeDecoration)})
	p.HandleWindowReady(wallpaper)

	active, _ := table.ActiveWindow()
	assert.Equal(t, parent.ID, active)
}

func TestMinimalPolicyKeepsFocusOnExclusiveClient(t *testing.T) {
	table := NewWindowTable()
	inhibition := &fakeInhibition{}
	p := NewMinimalPolicy(table, inhibition)

	locker := openWindow(t, table, p, 7)
	inhibition.on, inhibition.owner = true, 7

	intruder := openWindow(t, table, p, 8)
	active, _ := table.ActiveWindow()
	assert.Equal(t, locker.ID, active, "new windows of other clients must not take focus")

	p.AdviseFocusGained(intruder)
	active, _ = table.ActiveWindow()
	assert.Equal(t, locker.ID, active)

	inhibition.on = false
	p.AdviseFocusGained(intruder)
	windows := table.Windows()
	assert.Equal(t, intruder.ID, windows[len(windows)-1].ID, "focus raises once uninhibited")
}

func TestMinimalPolicyAltF4ClosesActiveWindow(t *testing.T) {
	table := NewWindowTable()
	var closed []WindowID
	table.OnClose = func(id WindowID) { closed = append(closed, id) }
	p := NewMinimalPolicy(table, nil)
	w := openWindow(t, table, p, 1)

	handled := p.HandleKeyboardEvent(&input.KeyboardEvent{Action: input.KeyDown, ScanCode: evdev.KEY_F4, Modifiers: input.ModAlt})
	assert.True(t, handled)
	assert.Equal(t, []WindowID{w.ID}, closed)
}

func TestMinimalPolicyAltTabCyclesApplications(t *testing.T) {
	table := NewWindowTable()
	p := NewMinimalPolicy(table, nil)
	openWindow(t, table, p, 1)
	a2 := openWindow(t, table, p, 1)
	b := openWindow(t, table, p, 2)

	tab := &input.KeyboardEvent{Action: input.KeyDown, ScanCode: evdev.KEY_TAB, Modifiers: input.ModAlt}
	require.True(t, p.HandleKeyboardEvent(tab))

	active, _ := table.ActiveWindow()
	assert.Equal(t, a2.ID, active, "topmost window of the next client")

	require.True(t, p.HandleKeyboardEvent(tab))
	active, _ = table.ActiveWindow()
	assert.Equal(t, b.ID, active)
}

func TestMinimalPolicyKeyFilter(t *testing.T) {
	tests := []struct {
		name string
		ev   input.KeyboardEvent
		want bool
	}{
		{"alt+tab", input.KeyboardEvent{Action: input.KeyDown, ScanCode: evdev.KEY_TAB, Modifiers: input.ModAlt}, true},
		{"alt+shift+tab", input.KeyboardEvent{Action: input.KeyDown, ScanCode: evdev.KEY_TAB, Modifiers: input.ModAlt | input.ModShift}, true},
		{"key up", input.KeyboardEvent{Action: input.KeyUp, ScanCode: evdev.KEY_TAB, Modifiers: input.ModAlt}, false},
		{"ctrl+alt+tab", input.KeyboardEvent{Action: input.KeyDown, ScanCode: evdev.KEY_TAB, Modifiers: input.ModAlt | input.ModCtrl}, false},
		{"plain tab", input.KeyboardEvent{Action: input.KeyDown, ScanCode: evdev.KEY_TAB}, false},
		{"alt+a", input.KeyboardEvent{Action: input.KeyDown, ScanCode: evdev.KEY_A, Modifiers: input.ModAlt}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewMinimalPolicy(NewWindowTable(), nil)
			assert.Equal(t, tt.want, p.HandleKeyboardEvent(&tt.ev))
		})
	}
}

func TestMinimalPolicyAppliesModifications(t *testing.T) {
	table := NewWindowTable()
	p := NewMinimalPolicy(table, nil)
	w := openWindow(t, table, p, 1)

	p.HandleModifyWindow(w, &WindowSpecification{Name: Some("renamed"), State: Some(WindowStateMaximized)})

	got, ok := table.Get(w.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, WindowStateMaximized, got.State)
}
