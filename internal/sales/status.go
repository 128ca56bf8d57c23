// Package sales holds the sale lifecycle rules shared by the REST backend and
// the client-side desk: price quoting, form validation, payment registration,
// cancellation, due-date alerts and totals.
package sales

import (
	"errors"
	"fmt"
)

// Status is the lifecycle state of a sale.
// PENDING -> PARTIAL -> COMPLETED; PENDING|PARTIAL -> CANCELLED.
type Status string

const (
	Pending   Status = "PENDING"
	Partial   Status = "PARTIAL"
	Completed Status = "COMPLETED"
	Cancelled Status = "CANCELLED"
)

// ErrInvalidTransition is wrapped by every refused state change.
var ErrInvalidTransition = errors.New("transicion de estado no permitida")

// ParseStatus accepts the canonical upper-case wire values only.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("estado de venta desconocido: %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case Pending, Partial, Completed, Cancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool { return s == Completed || s == Cancelled }

// Open reports whether the sale still carries a balance that can be paid.
func (s Status) Open() bool { return s == Pending || s == Partial }

// Label is the Spanish badge text shown next to a sale.
func (s Status) Label() string {
	switch s {
	case Pending:
		return "Pendiente"
	case Partial:
		return "Parcial"
	case Completed:
		return "Completado"
	case Cancelled:
		return "Cancelado"
	}
	return string(s)
}

// StatusLabel is Label for a raw wire value.
func StatusLabel(s string) string { return Status(s).Label() }

// CanCancel is true only for PENDING and PARTIAL sales.
func CanCancel(s Status) bool { return s.Open() }

// Transition validates an explicit status change. Same-state updates of an
// open sale are accepted as no-ops.
func Transition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, to)
	}
	if from.Terminal() {
		return fmt.Errorf("%w: la venta ya esta %s", ErrInvalidTransition, from)
	}
	switch {
	case from == to:
		return nil
	case from == Pending && (to == Partial || to == Completed || to == Cancelled):
		return nil
	case from == Partial && (to == Completed || to == Cancelled):
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
