package session

import (
	"context"
	"fmt"

	"github.com/bnema/cascade/internal/input"
	"github.com/bnema/cascade/internal/policy"
)

// The methods below are the compositor side of the session: each one turns
// a window system occurrence into policy callbacks on the loop and waits
// for them to finish.

// MapWindow places and shows a new window for app
func (s *Session) MapWindow(ctx context.Context, app policy.ApplicationInfo, request policy.WindowSpecification) (policy.WindowID, error) {
	var id policy.WindowID
	err := s.Do(ctx, func() {
		spec := s.dispatcher.PlaceNewWindow(app, request)
		info := s.windows.Create(app, &spec)
		id = info.ID
		s.log.Debug("window mapped", "window", id, "app", app.Name, "type", info.Type)
		s.dispatcher.HandleWindowReady(info)
	})
	return id, err
}

// UnmapWindow removes a window after advising the policy
func (s *Session) UnmapWindow(ctx context.Context, id policy.WindowID) error {
	var err error
	if derr := s.Do(ctx, func() { err = s.unmapWindow(id) }); derr != nil {
		return derr
	}
	return err
}

// ModifyWindow asks the policy to apply a client or user modification
func (s *Session) ModifyWindow(ctx context.Context, id policy.WindowID, mods policy.WindowSpecification) error {
	return s.withWindow(ctx, id, func(info *policy.WindowInfo) {
		s.dispatcher.HandleModifyWindow(info, mods)
	})
}

// FocusWindow records that the compositor gave id keyboard focus
func (s *Session) FocusWindow(ctx context.Context, id policy.WindowID) error {
	return s.withWindow(ctx, id, func(info *policy.WindowInfo) {
		s.windows.SelectActiveWindow(id)
		s.dispatcher.AdviseFocusGained(info)
	})
}

// RaiseWindow forwards a client raise request
func (s *Session) RaiseWindow(ctx context.Context, id policy.WindowID) error {
	return s.withWindow(ctx, id, s.dispatcher.HandleRaiseWindow)
}

// RequestMove forwards an interactive move started by ev
func (s *Session) RequestMove(ctx context.Context, id policy.WindowID, ev input.Event) error {
	return s.withWindow(ctx, id, func(info *policy.WindowInfo) {
		s.dispatcher.HandleRequestMove(info, ev)
	})
}

// RequestResize forwards an interactive resize started by ev
func (s *Session) RequestResize(ctx context.Context, id policy.WindowID, ev input.Event, edge policy.ResizeEdge) error {
	return s.withWindow(ctx, id, func(info *policy.WindowInfo) {
		s.dispatcher.HandleRequestResize(info, ev, edge)
	})
}

// HandleInput offers ev to the shortcut gate and then to the policy. It
// reports whether anything consumed the event.
func (s *Session) HandleInput(ctx context.Context, ev input.Event) (bool, error) {
	var handled bool
	err := s.Do(ctx, func() { handled = s.handleInput(ev) })
	return handled, err
}

// Advise delivers an output or zone notification
func (s *Session) Advise(ctx context.Context, ev policy.Event) error {
	switch ev.Kind() {
	case policy.KindOutputCreated, policy.KindOutputUpdated, policy.KindOutputDeleted,
		policy.KindZoneCreated, policy.KindZoneUpdated, policy.KindZoneDeleted:
	default:
		return fmt.Errorf("%s is not an output or zone notification", ev.Kind())
	}
	return s.Do(ctx, func() { s.dispatcher.Dispatch(ev) })
}

// Windows returns the window stack, bottom to top
func (s *Session) Windows(ctx context.Context) ([]policy.WindowInfo, error) {
	var windows []policy.WindowInfo
	err := s.Do(ctx, func() { windows = s.windows.Windows() })
	return windows, err
}

func (s *Session) handleInput(ev input.Event) bool {
	if s.gate.HandleEvent(ev) {
		return true
	}

	switch e := ev.(type) {
	case *input.KeyboardEvent:
		return s.dispatcher.HandleKeyboardEvent(e)
	case *input.PointerEvent:
		return s.dispatcher.HandlePointerEvent(e)
	default:
		return false
	}
}

func (s *Session) withWindow(ctx context.Context, id policy.WindowID, fn func(*policy.WindowInfo)) error {
	var err error
	derr := s.Do(ctx, func() {
		info, ok := s.windows.Get(id)
		if !ok {
			err = fmt.Errorf("window %d: %w", id, ErrUnknownWindow)
			return
		}
		fn(info)
	})
	if derr != nil {
		return derr
	}
	return err
}

func (s *Session) unmapWindow(id policy.WindowID) error {
	info, ok := s.windows.Get(id)
	if !ok {
		return fmt.Errorf("window %d: %w", id, ErrUnknownWindow)
	}
	s.dispatcher.AdviseDeleteWindow(info)
	s.windows.Remove(id)
	s.log.Debug("window unmapped", "window", id)
	return nil
}

// askClientToClose has no client to ask in a headless session, so the
// window goes away once the current event is done with it
func (s *Session) askClientToClose(id policy.WindowID) {
	s.log.Info("closing window", "window", id)
	s.deferred(func() {
		if err := s.unmapWindow(id); err != nil {
			s.log.Debug("window already gone", "window", id)
		}
	})
}
