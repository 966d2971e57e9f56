package messages

import (
	"fmt"
	"strings"
)

// ValidationError reports a template rendered with missing parameters or an
// unknown key. Partial interpolation is never sent to a customer; callers
// substitute the generic apology instead.
type ValidationError struct {
	Key     string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("validationError: unknown message key %q", e.Key)
	}
	return fmt.Sprintf("validationError: message %q missing parameters: %s",
		e.Key, strings.Join(e.Missing, ", "))
}
