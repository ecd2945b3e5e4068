package inhibitor

import (
	"fmt"

	"github.com/bnema/cascade/internal/logger"
	"github.com/bnema/cascade/internal/protocol"
	"github.com/charmbracelet/log"
)

// Version is the protocol version the extension advertises
const Version = 1

var (
	// InhibitorInterface is zwlr_input_inhibitor_v1
	InhibitorInterface = &protocol.Interface{
		Name:    "zwlr_input_inhibitor_v1",
		Version: Version,
		Requests: []protocol.Message{
			{Name: "destroy", Destructor: true},
		},
	}

	// ManagerInterface is zwlr_input_inhibit_manager_v1
	ManagerInterface = &protocol.Interface{
		Name:    "zwlr_input_inhibit_manager_v1",
		Version: Version,
		Requests: []protocol.Message{
			{Name: "get_inhibitor", NewInterface: InhibitorInterface},
		},
	}
)

// Request opcodes
const (
	RequestGetInhibitor uint16 = 0
	RequestDestroy      uint16 = 0
)

// Extension exposes State to clients through the inhibit manager global
type Extension struct {
	state  *State
	global *protocol.Global
	log    *log.Logger
}

// Register advertises the inhibit manager global on display
func Register(display *protocol.Display, state *State) (*Extension, error) {
	ext := &Extension{
		state: state,
		log:   logger.With("inhibitor"),
	}

	g, err := display.CreateGlobal(ManagerInterface, Version, ext.bind)
	if err != nil {
		return nil, fmt.Errorf("failed to advertise %s: %w", ManagerInterface.Name, err)
	}
	ext.global = g
	return ext, nil
}

// Global returns the advertised manager global
func (e *Extension) Global() *protocol.Global { return e.global }

// State returns the flag the extension drives
func (e *Extension) State() *State { return e.state }

func (e *Extension) bind(r *protocol.Resource) error {
	r.SetHandler(&manager{ext: e})
	return nil
}

type manager struct {
	ext *Extension
}

func (m *manager) HandleRequest(req *protocol.Request) error {
	switch req.Opcode {
	case RequestGetInhibitor:
		client := req.Resource.Client().ID()
		if prev, ok := m.ext.state.Owner(); ok && prev != client {
			m.ext.log.Info("inhibitor taken over", "previous", prev, "client", client)
		}
		m.ext.state.Set(client)
		req.NewResource.SetHandler(&inhibitor{ext: m.ext})
		m.ext.log.Info("input inhibited", "client", client)
		return nil
	default:
		return fmt.Errorf("unhandled opcode %d", req.Opcode)
	}
}

type inhibitor struct {
	ext *Extension
}

// HandleRequest accepts destroy; the runtime tears the object down afterwards
// and ResourceDestroyed releases the flag.
func (i *inhibitor) HandleRequest(req *protocol.Request) error {
	if req.Opcode != RequestDestroy {
		return fmt.Errorf("unhandled opcode %d", req.Opcode)
	}
	return nil
}

// ResourceDestroyed covers both explicit destroy and client disconnect
func (i *inhibitor) ResourceDestroyed(r *protocol.Resource) {
	i.ext.state.Clear()
	i.ext.log.Info("input inhibition released", "client", r.Client().ID(), "connected", r.Client().Connected())
}
