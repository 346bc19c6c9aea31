package order

import "fmt"

// ValidationError indicates malformed input to Create: a blank customer
// name, a non-positive total, or an unparseable order date.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates that no order exists for the referenced id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %d not found", e.ID)
}

// InvalidStateError indicates a transition attempted on an order whose
// current status does not allow it.
type InvalidStateError struct {
	ID     int64
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order %d is %s (%s) and cannot be transitioned", e.ID, e.Status, e.Status.Description())
}
