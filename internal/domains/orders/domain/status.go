package domain

import "errors"

// Status enumerates the order lifecycle states.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
	StatusReturned   Status = "Returned"
)

var (
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// allowedTransitions is the closed transition table. Cancelled and Returned
// are terminal: they map to the empty set.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusReturned},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {},
	StatusReturned:   {},
}

// IsValidStatus reports whether the value is one of the six known states.
func IsValidStatus(status Status) bool {
	_, ok := allowedTransitions[status]
	return ok
}

// IsTerminal reports whether the status accepts no further transitions.
func IsTerminal(status Status) bool {
	next, ok := allowedTransitions[status]
	return ok && len(next) == 0
}

// CanTransition reports whether moving from one status to another is allowed.
// A transition to the current status is never allowed.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedNext returns a copy of the allowed-next set for a status.
func AllowedNext(from Status) []Status {
	next := allowedTransitions[from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
