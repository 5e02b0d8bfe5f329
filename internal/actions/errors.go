package actions

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for action failures. Sinks wrap these to classify their
// failures, e.g. fmt.Errorf("%w: %s", actions.ErrAppNotFound, name).
var (
	ErrExecutionFailed = errors.New("execution failed")
	ErrInvalidKey      = errors.New("invalid key")
	ErrAppNotFound     = errors.New("app not found")
	ErrInvalidMode     = errors.New("invalid mode")
	ErrCancelled       = errors.New("cancelled")
)

// ErrorKind categorizes an action failure
type ErrorKind int

const (
	KindExecutionFailed ErrorKind = iota
	KindInvalidKey
	KindAppNotFound
	KindInvalidMode
	KindCancelled
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidKey:
		return ErrInvalidKey
	case KindAppNotFound:
		return ErrAppNotFound
	case KindInvalidMode:
		return ErrInvalidMode
	case KindCancelled:
		return ErrCancelled
	default:
		return ErrExecutionFailed
	}
}

func (k ErrorKind) String() string {
	return k.sentinel().Error()
}

// Error is a failure of a single action
type Error struct {
	Kind   ErrorKind
	Action ActionType
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Action, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Action, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// wrapError classifies an arbitrary error into an *Error
func wrapError(t ActionType, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}

	kind := KindExecutionFailed
	switch {
	case errors.Is(err, ErrInvalidKey):
		kind = KindInvalidKey
	case errors.Is(err, ErrAppNotFound):
		kind = KindAppNotFound
	case errors.Is(err, ErrInvalidMode):
		kind = KindInvalidMode
	case errors.Is(err, ErrCancelled):
		kind = KindCancelled
	}
	return &Error{Kind: kind, Action: t, Err: err}
}

// SequenceError reports the children of a sequence that failed. The other
// children ran normally.
type SequenceError struct {
	Failed []int
	Errs   []error
}

func (e *SequenceError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, idx := range e.Failed {
		parts[i] = fmt.Sprintf("[%d] %v", idx, e.Errs[i])
	}
	return fmt.Sprintf("sequence: %d step(s) failed: %s", len(e.Failed), strings.Join(parts, "; "))
}

func (e *SequenceError) Unwrap() []error {
	return e.Errs
}

// FieldError is a validation problem at a path inside a document
type FieldError struct {
	Path    string
	Message string
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}
