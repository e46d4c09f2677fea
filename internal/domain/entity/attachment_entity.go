package entity

import "time"

// Attachment is a file uploaded against a ticket. The bytes live in object
// storage; only the public URL and metadata are persisted here.
type Attachment struct {
	ID          int64
	TicketID    int64
	FileName    string
	ContentType string
	URL         string
	SizeBytes   int64
	CreatedAt   time.Time
}
