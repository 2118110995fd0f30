package model

import (
	"errors"
	"fmt"
)

// ErrNoDiagnosis is returned when a run derived no diagnosis, which only
// happens when no symptom was declared.
var ErrNoDiagnosis = errors.New("no diagnosis available")

// ValidationError reports a structurally invalid fact or request field.
type ValidationError struct {
	Kind   FactKind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s %s", e.Kind, e.Field, e.Reason)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
