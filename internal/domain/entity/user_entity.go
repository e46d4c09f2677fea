package entity

import "time"

// User can create tickets and be assigned to them. Email is unique.
type User struct {
	ID        int64
	Name      string
	Email     string
	Age       *int
	CreatedAt time.Time
	UpdatedAt time.Time

	// Non-owning back-references, populated on read when requested.
	CreatedTicketIDs  []int64
	AssignedTicketIDs []int64
}
