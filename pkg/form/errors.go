package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSubmitInProgress is returned when a submission is already running.
	ErrSubmitInProgress = errors.New("form: submission already in progress")
	// ErrSessionClosed is returned once the session has succeeded.
	ErrSessionClosed = errors.New("form: session already submitted")
	// ErrUnknownField is returned for names that own no value slot.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrNotArrayField is returned when array operations target a scalar.
	ErrNotArrayField = errors.New("form: field is not a field-array")
	// ErrIndexOutOfRange is returned for array indexes outside the sequence.
	ErrIndexOutOfRange = errors.New("form: item index out of range")
)

// User-facing notices, one per failure phase.
const (
	NoticeValidation = "Check the highlighted fields."
	NoticeParent     = "Failed adding item."
	NoticeChildren   = "Product saved but photos failed."
)

// Phase names the step of a submission that failed.
type Phase string

const (
	PhaseValidation Phase = "validation"
	PhaseParent     Phase = "parent"
	PhaseChildren   Phase = "children"
)

// Failure is the outcome of an unsuccessful submission. Notice is a single
// message for the user, distinct from per-field validation messages.
type Failure interface {
	error
	Phase() Phase
	Notice() string
}

// ValidationError reports per-field errors. No record was created.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("form: validation failed for %s", strings.Join(names, ", "))
}

// Phase implements Failure.
func (e *ValidationError) Phase() Phase { return PhaseValidation }

// Notice implements Failure.
func (e *ValidationError) Notice() string { return NoticeValidation }

// ParentCreationError reports a failed product creation. Nothing was
// committed, so the submission can be retried as is.
type ParentCreationError struct {
	Err error
}

func (e *ParentCreationError) Error() string {
	return fmt.Sprintf("form: create product: %v", e.Err)
}

func (e *ParentCreationError) Unwrap() error { return e.Err }

// Phase implements Failure.
func (e *ParentCreationError) Phase() Phase { return PhaseParent }

// Notice implements Failure.
func (e *ParentCreationError) Notice() string { return NoticeParent }

// ChildCreationError reports a failed picture creation. The product with
// ProductID already exists and is not rolled back.
type ChildCreationError struct {
	ProductID ID
	Err       error
}

func (e *ChildCreationError) Error() string {
	return fmt.Sprintf("form: create pictures for product %d: %v", e.ProductID, e.Err)
}

func (e *ChildCreationError) Unwrap() error { return e.Err }

// Phase implements Failure.
func (e *ChildCreationError) Phase() Phase { return PhaseChildren }

// Notice implements Failure.
func (e *ChildCreationError) Notice() string { return NoticeChildren }

// ValueError reports a value whose type cannot be bound to a field.
type ValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("form: field %q: %s (got %T)", e.Field, e.Reason, e.Value)
}
