package domain

import "time"

// TicketStatus enumerates ticket lifecycle states.
type TicketStatus string

const (
	TicketStatusWaiting   TicketStatus = "waiting"
	TicketStatusCalled    TicketStatus = "called"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusServed    TicketStatus = "served"
)

// transitions maps each status to the statuses it may move to.
// cancelled and served are terminal.
var transitions = map[TicketStatus][]TicketStatus{
	TicketStatusWaiting: {TicketStatusCalled, TicketStatusCancelled},
	TicketStatusCalled:  {TicketStatusServed, TicketStatusCancelled},
}

// ValidTransition reports whether moving a ticket from one status to another
// is legal under the lifecycle state machine.
func ValidTransition(from, to TicketStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status admits no further transitions.
func (s TicketStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Ticket is one queue entry representing a person waiting to be served.
// Tickets are never deleted; terminal states are retained for stats and audit.
type Ticket struct {
	ID          string
	QueueID     string
	Phone       string
	Status      TicketStatus
	AttendantID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanResolve reports whether the user may cancel or serve the ticket.
// The assigned attendant or an admin qualifies.
func (t *Ticket) CanResolve(u *User) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return t.AttendantID != nil && *t.AttendantID == u.ID
}

// StatusTally partitions a queue's tickets by status. Total always equals the
// sum of the four buckets.
type StatusTally struct {
	Total     int `json:"total"`
	Waiting   int `json:"waiting"`
	Called    int `json:"called"`
	Cancelled int `json:"cancelled"`
	Served    int `json:"served"`
}

// TallyStatuses counts tickets by status. Pure function, no side effects.
func TallyStatuses(tickets []Ticket) StatusTally {
	tally := StatusTally{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case TicketStatusWaiting:
			tally.Waiting++
		case TicketStatusCalled:
			tally.Called++
		case TicketStatusCancelled:
			tally.Cancelled++
		case TicketStatusServed:
			tally.Served++
		}
	}
	return tally
}
