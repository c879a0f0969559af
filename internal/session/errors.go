package session

import (
	"errors"
	"fmt"
)

// Op names the transport call that failed
type Op string

const (
	OpConnect   Op = "connect"
	OpDiscover  Op = "discover"
	OpWrite     Op = "write"
	OpSubscribe Op = "subscribe"
)

// TransportError wraps a transport failure verbatim. It is never retried.
type TransportError struct {
	Op  Op
	Err error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is allows errors.Is to compare TransportError values by Op
func (e *TransportError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*TransportError)
	if !ok {
		return false
	}
	return e.Op == t.Op
}

// Sentinels for errors.Is matching by failed operation
var (
	ErrConnectFailure   = &TransportError{Op: OpConnect}
	ErrDiscoverFailure  = &TransportError{Op: OpDiscover}
	ErrWriteFailure     = &TransportError{Op: OpWrite}
	ErrSubscribeFailure = &TransportError{Op: OpSubscribe}
)

// CharacteristicNotFoundError reports a required characteristic missing after discovery
type CharacteristicNotFoundError struct {
	Which string // "read" or "write"
	UUID  string
}

func (e *CharacteristicNotFoundError) Error() string {
	return fmt.Sprintf("%s characteristic %q not found", e.Which, e.UUID)
}

// RecipeError reports the recipe step whose write failed
type RecipeError struct {
	Step int // zero-based command index
	Err  error
}

func (e *RecipeError) Error() string {
	return fmt.Sprintf("recipe step %d: %v", e.Step+1, e.Err)
}

func (e *RecipeError) Unwrap() error {
	return e.Err
}

var (
	ErrNotOpen           = errors.New("session is not open")
	ErrAlreadySubscribed = errors.New("session is already subscribed")
)
