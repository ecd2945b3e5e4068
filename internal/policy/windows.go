package policy

import (
	"slices"
)

// WindowTable is an in-memory window stack implementing Tools. It is the
// window model of the headless session and is not safe for concurrent use.
type WindowTable struct {
	windows map[WindowID]*WindowInfo
	// stack holds ids bottom to top
	stack  []WindowID
	active WindowID
	nextID WindowID

	// OnClose is called when the policy asks a client to close a window
	OnClose func(id WindowID)
}

var _ Tools = (*WindowTable)(nil)

func NewWindowTable() *WindowTable {
	return &WindowTable{windows: make(map[WindowID]*WindowInfo)}
}

// Create adds a window on top of the stack built from spec and returns it
func (t *WindowTable) Create(app ApplicationInfo, spec *WindowSpecification) *WindowInfo {
	t.nextID++
	info := &WindowInfo{ID: t.nextID, App: app, Type: WindowTypeNormal, State: WindowStateRestored}
	info.Apply(spec)
	if info.Name == "" {
		info.Name = app.Name
	}
	t.windows[info.ID] = info
	t.stack = append(t.stack, info.ID)
	return info
}

// Remove deletes a window. Children are orphaned, not removed.
func (t *WindowTable) Remove(id WindowID) {
	if _, ok := t.windows[id]; !ok {
		return
	}
	delete(t.windows, id)
	t.stack = slices.DeleteFunc(t.stack, func(w WindowID) bool { return w == id })
	for _, w := range t.windows {
		if w.Parent == id {
			w.Parent = 0
		}
	}
	if t.active == id {
		t.active = 0
	}
}

// Get returns the live window with the given id
func (t *WindowTable) Get(id WindowID) (*WindowInfo, bool) {
	w, ok := t.windows[id]
	return w, ok
}

// OwnedBy lists, bottom to top, the windows whose application matches
func (t *WindowTable) OwnedBy(match func(ApplicationInfo) bool) []WindowID {
	var ids []WindowID
	for _, id := range t.stack {
		if match(t.windows[id].App) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *WindowTable) Len() int { return len(t.stack) }

func (t *WindowTable) Windows() []WindowInfo {
	out := make([]WindowInfo, 0, len(t.stack))
	for _, id := range t.stack {
		out = append(out, *t.windows[id])
	}
	return out
}

func (t *WindowTable) ActiveWindow() (WindowID, bool) {
	return t.active, t.active != 0
}

// SelectActiveWindow focuses and raises id. Unknown ids clear the focus.
func (t *WindowTable) SelectActiveWindow(id WindowID) {
	if _, ok := t.windows[id]; !ok {
		t.active = 0
		return
	}
	t.active = id
	t.RaiseTree(id)
}

// RaiseTree moves id and its descendants to the top, keeping their
// relative order
func (t *WindowTable) RaiseTree(id WindowID) {
	if _, ok := t.windows[id]; !ok {
		return
	}

	var tree, rest []WindowID
	for _, w := range t.stack {
		if t.descendsFrom(w, id) {
			tree = append(tree, w)
		} else {
			rest = append(rest, w)
		}
	}
	t.stack = append(rest, tree...)
}

func (t *WindowTable) ModifyWindow(id WindowID, mods *WindowSpecification) {
	if w, ok := t.windows[id]; ok {
		w.Apply(mods)
	}
}

func (t *WindowTable) AskClientToClose(id WindowID) {
	if _, ok := t.windows[id]; !ok {
		return
	}
	if t.OnClose != nil {
		t.OnClose(id)
	}
}

func (t *WindowTable) descendsFrom(w, root WindowID) bool {
	// bounded walk; a corrupted parent chain must not spin forever
	for range len(t.windows) + 1 {
		if w == root {
			return true
		}
		info, ok := t.windows[w]
		if !ok || info.Parent == 0 {
			return false
		}
		w = info.Parent
	}
	return false
}
