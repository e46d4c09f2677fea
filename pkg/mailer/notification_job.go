package mailer

import "fmt"

// AssignmentJob is the JSON payload put on the notifications queue when a
// ticket is created with an assignee. The email worker turns it into a mail.
type AssignmentJob struct {
	TicketID      int64  `json:"ticket_id"`
	TicketTitle   string `json:"ticket_title"`
	AssigneeEmail string `json:"assignee_email"`
	AssigneeName  string `json:"assignee_name"`
	CreatorName   string `json:"creator_name"`
}

// Subject returns the mail subject line for the job.
func (j AssignmentJob) Subject() string {
	return fmt.Sprintf("Ticket #%d assigned to you: %s", j.TicketID, j.TicketTitle)
}

// Text returns the plain-text mail body for the job.
func (j AssignmentJob) Text() string {
	return fmt.Sprintf(
		"Hi %s,\n\n%s assigned ticket #%d (%q) to you.\n",
		j.AssigneeName, j.CreatorName, j.TicketID, j.TicketTitle,
	)
}
