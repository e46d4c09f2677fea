package repository

import (
	"context"

	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
)

// UserUpdate carries a partial user update; nil fields are left unchanged.
type UserUpdate struct {
	Name  *string
	Email *string
	Age   *int
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	// GetByID loads the user along with its created/assigned ticket ids.
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	// Update applies the partial update and reports rows affected.
	Update(ctx context.Context, id int64, upd UserUpdate) (int64, error)
	// Delete reports the number of rows removed (0 or 1).
	Delete(ctx context.Context, id int64) (int64, error)
}
