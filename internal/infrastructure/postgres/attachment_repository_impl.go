package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
	"github.com/ticketdesk/ticketdesk/internal/domain/repository"
)

type AttachmentRepository struct {
	pool *pgxpool.Pool
}

func NewAttachmentRepository(pool *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{pool: pool}
}

func (r *AttachmentRepository) Create(ctx context.Context, a *entity.Attachment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ticket_attachments (ticket_id, file_name, content_type, url, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, a.TicketID, a.FileName, a.ContentType, a.URL, a.SizeBytes)
	return row.Scan(&a.ID, &a.CreatedAt)
}

func (r *AttachmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]entity.Attachment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ticket_id, file_name, content_type, url, size_bytes, created_at
		FROM ticket_attachments
		WHERE ticket_id = $1
		ORDER BY id
	`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Attachment
	for rows.Next() {
		var a entity.Attachment
		if err := rows.Scan(&a.ID, &a.TicketID, &a.FileName, &a.ContentType, &a.URL, &a.SizeBytes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

var _ repository.AttachmentRepository = (*AttachmentRepository)(nil)
