package engine

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRunning = errors.New("engine already running")
	ErrNotRunning     = errors.New("engine not running")
	ErrInvalidMode    = errors.New("invalid mode")
	ErrConfig         = errors.New("invalid config")
	ErrTransport      = errors.New("transport failure")
)

// ErrorKind classifies engine errors
type ErrorKind int

const (
	KindAlreadyRunning ErrorKind = iota
	KindNotRunning
	KindInvalidMode
	KindConfig
	KindTransport
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindAlreadyRunning:
		return ErrAlreadyRunning
	case KindNotRunning:
		return ErrNotRunning
	case KindInvalidMode:
		return ErrInvalidMode
	case KindConfig:
		return ErrConfig
	default:
		return ErrTransport
	}
}

// Error is returned by the engine's public operations
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind.sentinel(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// TransportError wraps a failure to connect the engine to a MIDI port
func TransportError(err error) error {
	return &Error{Kind: KindTransport, Err: err}
}
