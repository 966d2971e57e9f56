package popular

import "fmt"

// DependencyError signals that the bookings source or cache is unreachable.
// Callers fall back to GetDefaultTimes rather than failing the conversation.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependencyUnavailable: %s: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
