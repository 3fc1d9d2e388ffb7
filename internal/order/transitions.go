package order

// Transitions lists the statuses reachable from each status. A nil table
// allows every transition.
type Transitions map[Status][]Status

// StrictTransitions moves orders forward only; delivered and cancelled are
// terminal.
var StrictTransitions = Transitions{
	StatusPending: {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered, StatusCancelled},
}

func (t Transitions) Allows(from, to Status) bool {
	if t == nil {
		return true
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}
