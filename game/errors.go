package game

import (
	"errors"
	"fmt"

	"github.com/minaorangina/removeone/protocol"
)

var (
	ErrNilState           = errors.New("state is nil")
	ErrInvalidAction      = errors.New("invalid action")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrConfiguration      = errors.New("configuration error")
)

// InvalidActionError is returned when an action breaks phase or legality constraints.
// The game it was submitted to cannot continue.
type InvalidActionError struct {
	Action protocol.Action
	Phase  protocol.Phase
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action (%s) during %s: %s", e.Action, e.Phase, e.Reason)
}

func (e *InvalidActionError) Unwrap() error {
	return ErrInvalidAction
}

// InvariantViolation means the state machine itself is broken, or was driven incorrectly.
// It is never corrected silently.
type InvariantViolation struct {
	Round  int
	Phase  protocol.Phase
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in round %d (%s): %s", e.Round, e.Phase, e.Reason)
}

func (e *InvariantViolation) Unwrap() error {
	return ErrInvariantViolation
}

// ConfigurationError rejects malformed options before any game starts
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

func invalid(s *State, a protocol.Action, format string, args ...interface{}) error {
	return &InvalidActionError{Action: a, Phase: s.Phase, Reason: fmt.Sprintf(format, args...)}
}

func violation(s *State, format string, args ...interface{}) error {
	return &InvariantViolation{Round: s.Round, Phase: s.Phase, Reason: fmt.Sprintf(format, args...)}
}
