package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
	"github.com/ticketdesk/ticketdesk/internal/domain/repository"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

// ticketColumns joins the creator (required) and assignee (optional) so a
// single read returns the relations the list and detail endpoints expose.
const ticketColumns = `
	t.id, t.title, t.description, t.status, t.creator_id, t.assignee_id, t.created_at, t.updated_at,
	c.name, c.email, c.age, c.created_at, c.updated_at,
	a.name, a.email, a.age, a.created_at, a.updated_at`

const ticketJoins = `
	FROM tickets t
	JOIN users c ON c.id = t.creator_id
	LEFT JOIN users a ON a.id = t.assignee_id`

func (r *TicketRepository) Create(ctx context.Context, t *entity.Ticket) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tickets (title, description, status, creator_id, assignee_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, t.Title, t.Description, t.Status, t.CreatorID, t.AssigneeID)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*entity.Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+ticketColumns+ticketJoins+` WHERE t.id = $1`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TicketRepository) List(ctx context.Context, limit, offset int) ([]entity.Ticket, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT`+ticketColumns+ticketJoins+`
		ORDER BY t.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]entity.Ticket, 0, limit)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id int64, status entity.TicketStatus) (*entity.Ticket, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE tickets SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *TicketRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

// DeleteMany is a set-membership delete: ids with no matching row are no-ops.
func (r *TicketRepository) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func scanTicket(row pgx.Row) (*entity.Ticket, error) {
	var (
		t entity.Ticket
		c entity.User

		aName      *string
		aEmail     *string
		aAge       *int
		aCreatedAt *time.Time
		aUpdatedAt *time.Time
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatorID, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
		&c.Name, &c.Email, &c.Age, &c.CreatedAt, &c.UpdatedAt,
		&aName, &aEmail, &aAge, &aCreatedAt, &aUpdatedAt,
	); err != nil {
		return nil, err
	}
	c.ID = t.CreatorID
	t.Creator = &c
	if t.AssigneeID != nil && aName != nil {
		a := entity.User{ID: *t.AssigneeID, Name: *aName, Age: aAge}
		if aEmail != nil {
			a.Email = *aEmail
		}
		if aCreatedAt != nil {
			a.CreatedAt = *aCreatedAt
		}
		if aUpdatedAt != nil {
			a.UpdatedAt = *aUpdatedAt
		}
		t.Assignee = &a
	}
	return &t, nil
}

var _ repository.TicketRepository = (*TicketRepository)(nil)
