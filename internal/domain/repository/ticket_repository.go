package repository

import (
	"context"

	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
)

// TicketRepository defines the interface for ticket persistence.
// List and GetByID load the creator and assignee relations.
type TicketRepository interface {
	Create(ctx context.Context, t *entity.Ticket) error
	GetByID(ctx context.Context, id int64) (*entity.Ticket, error)
	// List returns one page ordered by creation time descending, plus the
	// total row count for pagination metadata.
	List(ctx context.Context, limit, offset int) ([]entity.Ticket, int64, error)
	UpdateStatus(ctx context.Context, id int64, status entity.TicketStatus) (*entity.Ticket, error)
	// Delete reports the number of rows removed (0 or 1).
	Delete(ctx context.Context, id int64) (int64, error)
	// DeleteMany removes every ticket whose id is in ids and reports the
	// affected count. IDs with no matching row are skipped silently.
	DeleteMany(ctx context.Context, ids []int64) (int64, error)
}
