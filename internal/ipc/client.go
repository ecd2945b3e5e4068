package ipc

import (
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/bnema/cascade/internal/logger"
)

// ErrNotRunning is returned when no session listens on the socket
var ErrNotRunning = errors.New("cascade is not running")

// DefaultTimeout bounds a single request
const DefaultTimeout = 5 * time.Second

// Client handles IPC communication with a running cascade session
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the session listening on socketPath
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    DefaultTimeout,
	}
}

// NewClientWithTimeout creates a new IPC client with custom timeout
func NewClientWithTimeout(socketPath string, timeout time.Duration) *Client {
	c := NewClient(socketPath)
	c.timeout = timeout
	return c
}

// SendStatus queries the session state
func (c *Client) SendStatus() (*StatusResponse, error) {
	response, err := c.sendMessage(NewStatusMessage())
	if err != nil {
		return nil, err
	}

	switch TypeOf(response) {
	case MessageTypeStatusResponse:
		return GetStatusResponse(response)
	case MessageTypeError:
		errMsg, _ := GetErrorResponse(response)
		return nil, fmt.Errorf("server error: %s", errMsg)
	default:
		return nil, fmt.Errorf("unexpected response type: %s", TypeOf(response))
	}
}

// SendStop asks the session to stop
func (c *Client) SendStop() error {
	return c.sendCommand(NewStopMessage())
}

// SendShowLauncher asks the session to show the launcher
func (c *Client) SendShowLauncher() error {
	return c.sendCommand(NewShowLauncherMessage())
}

// IsRunning checks if a session answers on the socket
func (c *Client) IsRunning() bool {
	_, err := c.SendStatus()
	return err == nil
}

func (c *Client) sendCommand(msg *structpb.Struct) error {
	response, err := c.sendMessage(msg)
	if err != nil {
		return err
	}

	switch TypeOf(response) {
	case MessageTypeAck:
		return nil
	case MessageTypeError:
		errMsg, _ := GetErrorResponse(response)
		return fmt.Errorf("server error: %s", errMsg)
	default:
		return fmt.Errorf("unexpected response type: %s", TypeOf(response))
	}
}

// sendMessage sends a message and returns the response
func (c *Client) sendMessage(msg *structpb.Struct) (*structpb.Struct, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		if isConnectionRefused(err) {
			return nil, ErrNotRunning
		}
		return nil, fmt.Errorf("failed to connect to cascade: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Errorf("Failed to close IPC connection: %v", err)
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		logger.Warnf("Failed to set connection deadline: %v", err)
	}

	if err := writeMessage(conn, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	response, err := readMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return response, nil
}

// isConnectionRefused checks if the error is a connection refused error
func isConnectionRefused(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr) && netErr.Op == "dial"
}
