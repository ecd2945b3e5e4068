package session

import (
	"context"
	"fmt"

	"github.com/bnema/cascade/internal/protocol"
)

// Connect registers a new protocol client. Errors the runtime raises
// against it are delivered to sink on the loop goroutine.
func (s *Session) Connect(ctx context.Context, sink protocol.ErrorSink) (protocol.ClientID, error) {
	var id protocol.ClientID
	err := s.Do(ctx, func() {
		c := s.display.Connect(sink)
		s.clients[c.ID()] = c
		id = c.ID()
	})
	return id, err
}

// Bind binds the global implementing interfaceName to object id
func (s *Session) Bind(ctx context.Context, client protocol.ClientID, interfaceName string, version uint32, id protocol.ObjectID) error {
	return s.withClient(ctx, client, func(c *protocol.Client) error {
		g, ok := s.display.FindGlobal(interfaceName)
		if !ok {
			return fmt.Errorf("bind %s: %w", interfaceName, protocol.ErrUnknownGlobal)
		}
		_, err := s.display.Bind(c, g.Name(), version, id)
		return err
	})
}

// Request sends a request from client to one of its objects
func (s *Session) Request(ctx context.Context, client protocol.ClientID, id protocol.ObjectID, opcode uint16, args ...any) error {
	return s.withClient(ctx, client, func(c *protocol.Client) error {
		return s.display.Dispatch(c, id, opcode, args...)
	})
}

// Disconnect tears down a client and every object it still owns
func (s *Session) Disconnect(ctx context.Context, client protocol.ClientID) error {
	return s.withClient(ctx, client, func(c *protocol.Client) error {
		s.display.Disconnect(c)
		delete(s.clients, client)
		return nil
	})
}

func (s *Session) withClient(ctx context.Context, id protocol.ClientID, fn func(*protocol.Client) error) error {
	var err error
	derr := s.Do(ctx, func() {
		c, ok := s.clients[id]
		if !ok {
			err = fmt.Errorf("client %d: %w", id, ErrUnknownClient)
			return
		}
		err = fn(c)
	})
	if derr != nil {
		return derr
	}
	return err
}
