package order

import "github.com/go-faster/errors"

// Status enumerates the order lifecycle states.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusPaid      Status = "PAID"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
)

// descriptions maps each status to its human-readable label.
var descriptions = map[Status]string{
	StatusNew:       "Novo",
	StatusPaid:      "Pago",
	StatusFulfilled: "Entregue",
	StatusCancelled: "Cancelado",
}

// transitions is the closed set of legal status edges. FULFILLED and
// CANCELLED are terminal: no outgoing edges.
var transitions = map[Status][]Status{
	StatusNew:       {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusFulfilled, StatusCancelled},
	StatusFulfilled: {},
	StatusCancelled: {},
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	_, ok := descriptions[s]
	return ok
}

// Description returns the human-readable label for s, or the raw value
// when s is unknown.
func (s Status) Description() string {
	if d, ok := descriptions[s]; ok {
		return d
	}
	return string(s)
}

// CanTransition reports whether the edge s -> to exists in the transition
// table.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", errors.Errorf("unknown order status %q", raw)
	}
	return s, nil
}
