package session

import (
	"errors"
	"fmt"
)

// Expected misses. Not logged as errors: an absent or lapsed session simply
// restarts the conversation.
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session expired")
	ErrAmbiguousRecovery = errors.New("history replay is ambiguous")
)

// StoreError reports the store itself being unreachable. Distinct from
// not-found so the orchestrator can choose the history-recovery path instead
// of silently restarting.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("dependencyUnavailable: session store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is a store-unreachable condition.
func IsUnavailable(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
