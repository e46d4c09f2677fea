package repository

import (
	"context"

	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
)

// AttachmentRepository defines the interface for ticket attachment metadata.
// The attachment bytes themselves live in object storage.
type AttachmentRepository interface {
	Create(ctx context.Context, a *entity.Attachment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]entity.Attachment, error)
}
