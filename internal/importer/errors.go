package importer

import (
	"errors"
	"fmt"
)

// ErrNotImplemented marks a provider/payment-path combination that is
// deliberately unsupported. Callers hit it loudly instead of silently
// importing nothing.
var ErrNotImplemented = errors.New("attendee creation is not implemented for this provider path")

// FieldError reports a required attendee or order field that was either
// absent from the input entirely or present but empty. The two reasons are
// distinguishable because skip messages surface them differently.
type FieldError struct {
	Field string
	// Missing is true when the key was never set; false when it was set
	// but empty.
	Missing bool
}

func (e *FieldError) Error() string {
	if e.Missing {
		return fmt.Sprintf("attendee field %q is not set", e.Field)
	}
	return fmt.Sprintf("attendee field %q is empty", e.Field)
}

// FieldMissing reports an absent required field.
func FieldMissing(field string) error {
	return &FieldError{Field: field, Missing: true}
}

// FieldEmpty reports a present-but-empty required field.
func FieldEmpty(field string) error {
	return &FieldError{Field: field}
}

// ValidationError rejects a row on a business rule before creation is
// attempted. Message is shown to the operator for the skipped row.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CreationError wraps a rejection from the external store. The store's own
// message is preserved for the per-row report.
type CreationError struct {
	Op  string
	Err error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// creationFailed wraps a store error, passing through errors that already
// carry row-level meaning.
func creationFailed(op string, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) {
		return err
	}
	return &CreationError{Op: op, Err: err}
}
