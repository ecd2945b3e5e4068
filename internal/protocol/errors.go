package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode mirrors the wl_display error enum
type ErrorCode uint32

const (
	ErrorInvalidObject  ErrorCode = 0
	ErrorInvalidMethod  ErrorCode = 1
	ErrorNoMemory       ErrorCode = 2
	ErrorImplementation ErrorCode = 3
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorInvalidObject:
		return "invalid_object"
	case ErrorInvalidMethod:
		return "invalid_method"
	case ErrorNoMemory:
		return "no_memory"
	case ErrorImplementation:
		return "implementation"
	default:
		return fmt.Sprintf("error(%d)", uint32(c))
	}
}

var (
	ErrNoMemory      = errors.New("no memory")
	ErrUnknownObject = errors.New("unknown object")
	ErrUnknownGlobal = errors.New("unknown global")
	ErrStaleHandle   = errors.New("stale resource handle")
	ErrClientGone    = errors.New("client disconnected")
	ErrInvalidMethod = errors.New("invalid method")
)

// Error is a protocol error delivered to a single client
type Error struct {
	Code      ErrorCode
	ObjectID  ObjectID
	Interface string
	Message   string
}

func (e *Error) Error() string {
	if e.Interface != "" {
		return fmt.Sprintf("%s@%d: %s: %s", e.Interface, e.ObjectID, e.Code, e.Message)
	}
	return fmt.Sprintf("object %d: %s: %s", e.ObjectID, e.Code, e.Message)
}

// Unwrap lets errors.Is match the sentinel for the error code
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrorNoMemory:
		return ErrNoMemory
	case ErrorInvalidObject:
		return ErrUnknownObject
	case ErrorInvalidMethod:
		return ErrInvalidMethod
	default:
		return nil
	}
}

// ErrorSink receives the protocol errors posted to one client
type ErrorSink interface {
	PostError(err *Error)
}

// ErrorSinkFunc adapts a function to ErrorSink
type ErrorSinkFunc func(err *Error)

func (f ErrorSinkFunc) PostError(err *Error) { f(err) }
