package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
	"github.com/ticketdesk/ticketdesk/internal/domain/repository"
)

// Postgres SQLSTATEs surfaced as repository.ErrConflict.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, age)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Age)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapConstraint(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, age, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Age, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadTicketIDs(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, age, created_at, updated_at
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Age, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadTicketIDs(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, upd repository.UserUpdate) (int64, error) {
	set := make([]string, 0, 3)
	args := make([]any, 0, 4)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Age != nil {
		add("age", *upd.Age)
	}
	if len(set) == 0 {
		// Nothing to change; report whether the row exists.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
			return 0, err
		}
		if exists {
			return 1, nil
		}
		return 0, nil
	}

	args = append(args, id)
	q := `UPDATE users SET ` + joinSet(set) + `, updated_at = NOW() WHERE id = $` + strconv.Itoa(len(args))
	res, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.RowsAffected(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		// Deleting a user still referenced by tickets trips the FK.
		return 0, mapConstraint(err)
	}
	return res.RowsAffected(), nil
}

func (r *UserRepository) loadTicketIDs(ctx context.Context, u *entity.User) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, creator_id, assignee_id
		FROM tickets
		WHERE creator_id = $1 OR assignee_id = $1
		ORDER BY id
	`, u.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	u.CreatedTicketIDs = u.CreatedTicketIDs[:0]
	u.AssignedTicketIDs = u.AssignedTicketIDs[:0]
	for rows.Next() {
		var (
			tid        int64
			creatorID  int64
			assigneeID *int64
		)
		if err := rows.Scan(&tid, &creatorID, &assigneeID); err != nil {
			return err
		}
		if creatorID == u.ID {
			u.CreatedTicketIDs = append(u.CreatedTicketIDs, tid)
		}
		if assigneeID != nil && *assigneeID == u.ID {
			u.AssignedTicketIDs = append(u.AssignedTicketIDs, tid)
		}
	}
	return rows.Err()
}

func joinSet(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == uniqueViolation || pgErr.Code == foreignKeyViolation) {
		return repository.ErrConflict
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
