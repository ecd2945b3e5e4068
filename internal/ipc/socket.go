// Package ipc implements the local control channel of a running session:
// length-prefixed protobuf messages over a Unix socket.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bnema/cascade/internal/logger"
)

// SocketServer handles incoming IPC connections
type SocketServer struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	handler    MessageHandler
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool
}

// MessageHandler defines the interface for handling IPC messages
type MessageHandler interface {
	HandleStatusQuery() (*StatusResponse, error)
	HandleStop() error
	HandleShowLauncher() error
}

// NewSocketServer creates a socket server listening on socketPath
func NewSocketServer(socketPath string, handler MessageHandler) (*SocketServer, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("socket path is empty")
	}
	return &SocketServer{
		socketPath: socketPath,
		handler:    handler,
	}, nil
}

// SocketPath returns the path the server listens on
func (s *SocketServer) SocketPath() string { return s.socketPath }

// Start starts the socket server
func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// Remove existing socket file if it exists
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	// Set socket permissions (user only)
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Infof("IPC socket server started at %s", s.socketPath)
	return nil
}

// Stop stops the socket server
func (s *SocketServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()

	os.RemoveAll(s.socketPath)

	logger.Info("IPC socket server stopped")
}

func (s *SocketServer) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Errorf("Failed to accept connection: %v", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(ctx, conn)
	}
}

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// unblock the read below on shutdown
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logger.Debug("New IPC connection established")

	for {
		msg, err := readMessage(conn)
		if err != nil {
			logger.Debugf("Connection closed or read error: %v", err)
			return
		}

		response := s.handleMessage(msg)
		if err := writeMessage(conn, response); err != nil {
			logger.Errorf("Failed to send response: %v", err)
			return
		}
	}
}

// handleMessage processes a single message and returns a response
func (s *SocketServer) handleMessage(msg *structpb.Struct) *structpb.Struct {
	switch t := TypeOf(msg); t {
	case MessageTypeStatus:
		status, err := s.handler.HandleStatusQuery()
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		response, err := NewStatusResponseMessage(status)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return response

	case MessageTypeStop:
		if err := s.handler.HandleStop(); err != nil {
			return NewErrorMessage(err.Error())
		}
		return NewAckMessage()

	case MessageTypeShowLauncher:
		if err := s.handler.HandleShowLauncher(); err != nil {
			return NewErrorMessage(err.Error())
		}
		return NewAckMessage()

	default:
		return NewErrorMessage(fmt.Sprintf("unknown message type %q", t))
	}
}
