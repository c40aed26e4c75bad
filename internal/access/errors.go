package access

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's error taxonomy. Callers match with
// errors.Is; handlers map them to 403/404/409.
var (
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Denied returns an ErrAccessDenied carrying the denial reason.
func Denied(reason string) error {
	return fmt.Errorf("%w: %s", ErrAccessDenied, reason)
}
