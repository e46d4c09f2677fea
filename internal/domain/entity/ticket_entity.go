package entity

import "time"

// TicketStatus enumerates the ticket lifecycle states.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusDone       TicketStatus = "done"
)

// Valid reports whether s is one of the enumerated statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusDone:
		return true
	}
	return false
}

// Ticket is the aggregate root for the ticket domain. A ticket is owned by
// exactly one creator; the assignee is optional and mutable.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Status      TicketStatus
	CreatorID   int64
	AssigneeID  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Eager-loaded relations, populated by reads that request them.
	Creator  *User
	Assignee *User
}
