package ipc

import (
	"context"
	"time"

	"github.com/bnema/cascade/internal/session"
)

// Controller is the part of a session the control channel drives
type Controller interface {
	Status() session.Status
	Stop()
	RequestLauncher(ctx context.Context) error
}

// SessionHandler answers control messages from a running session
type SessionHandler struct {
	controller Controller
	timeout    time.Duration
	now        func() time.Time
}

var _ MessageHandler = (*SessionHandler)(nil)

// NewSessionHandler creates a handler for controller
func NewSessionHandler(controller Controller) *SessionHandler {
	return &SessionHandler{
		controller: controller,
		timeout:    DefaultTimeout,
		now:        time.Now,
	}
}

func (h *SessionHandler) HandleStatusQuery() (*StatusResponse, error) {
	return NewStatusResponse(h.controller.Status(), h.now()), nil
}

func (h *SessionHandler) HandleStop() error {
	h.controller.Stop()
	return nil
}

func (h *SessionHandler) HandleShowLauncher() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return h.controller.RequestLauncher(ctx)
}

// NewStatusResponse converts a session snapshot for the wire
func NewStatusResponse(st session.Status, now time.Time) *StatusResponse {
	return &StatusResponse{
		Running:       st.Running,
		Engine:        st.Engine,
		Inhibited:     st.Inhibition.Inhibited,
		Owner:         uint32(st.Inhibition.Owner),
		Clients:       st.Clients,
		Resources:     st.Resources,
		Windows:       st.Windows,
		ActiveWindow:  uint64(st.ActiveWindow),
		UptimeSeconds: st.Uptime(now).Seconds(),
		LauncherKey:   st.LauncherKey,
		StopKey:       st.StopKey,
	}
}
