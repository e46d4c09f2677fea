// Package testutil provides in-memory fakes for the repository and
// messaging interfaces so services and handlers can be tested without
// Postgres or RabbitMQ.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
	"github.com/ticketdesk/ticketdesk/internal/domain/repository"
)

// MemTicketRepo is an in-memory TicketRepository.
type MemTicketRepo struct {
	mu      sync.Mutex
	seq     int64
	Tickets map[int64]entity.Ticket

	// captured arguments from the last List call
	LastLimit  int
	LastOffset int

	// when set, DeleteMany fails with this error
	DeleteManyErr error
}

func NewMemTicketRepo() *MemTicketRepo {
	return &MemTicketRepo{Tickets: map[int64]entity.Ticket{}}
}

func (r *MemTicketRepo) Create(_ context.Context, t *entity.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	t.ID = r.seq
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.Tickets[t.ID] = *t
	return nil
}

func (r *MemTicketRepo) GetByID(_ context.Context, id int64) (*entity.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *MemTicketRepo) List(_ context.Context, limit, offset int) ([]entity.Ticket, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LastLimit = limit
	r.LastOffset = offset

	// Postgres rejects negative LIMIT/OFFSET; fail the same way instead of
	// panicking on a slice bound.
	if limit < 0 || offset < 0 {
		return nil, 0, errors.New("limit and offset must not be negative")
	}

	all := make([]entity.Ticket, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		all = append(all, t)
	}
	// newest first, ties broken by id descending for determinism
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []entity.Ticket{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *MemTicketRepo) UpdateStatus(_ context.Context, id int64, status entity.TicketStatus) (*entity.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	r.Tickets[id] = t
	return &t, nil
}

func (r *MemTicketRepo) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Tickets[id]; !ok {
		return 0, nil
	}
	delete(r.Tickets, id)
	return 1, nil
}

func (r *MemTicketRepo) DeleteMany(_ context.Context, ids []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteManyErr != nil {
		return 0, r.DeleteManyErr
	}
	var affected int64
	for _, id := range ids {
		if _, ok := r.Tickets[id]; ok {
			delete(r.Tickets, id)
			affected++
		}
	}
	return affected, nil
}

// MemUserRepo is an in-memory UserRepository with email uniqueness.
type MemUserRepo struct {
	mu    sync.Mutex
	seq   int64
	Users map[int64]entity.User

	// when set, Delete fails with repository.ErrConflict, simulating a
	// user still referenced by tickets
	DeleteConflict bool
}

func NewMemUserRepo() *MemUserRepo {
	return &MemUserRepo{Users: map[int64]entity.User{}}
}

// Seed inserts a user and returns its id.
func (r *MemUserRepo) Seed(name, email string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now()
	r.Users[r.seq] = entity.User{ID: r.seq, Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
	return r.seq
}

func (r *MemUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.Email == u.Email {
			return repository.ErrConflict
		}
	}
	r.seq++
	u.ID = r.seq
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.Users[u.ID] = *u
	return nil
}

func (r *MemUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *MemUserRepo) List(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.Users))
	for _, u := range r.Users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemUserRepo) Update(_ context.Context, id int64, upd repository.UserUpdate) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return 0, nil
	}
	if upd.Email != nil {
		for _, existing := range r.Users {
			if existing.ID != id && existing.Email == *upd.Email {
				return 0, repository.ErrConflict
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Age != nil {
		u.Age = upd.Age
	}
	u.UpdatedAt = time.Now()
	r.Users[id] = u
	return 1, nil
}

func (r *MemUserRepo) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteConflict {
		return 0, repository.ErrConflict
	}
	if _, ok := r.Users[id]; !ok {
		return 0, nil
	}
	delete(r.Users, id)
	return 1, nil
}

// MemAttachmentRepo is an in-memory AttachmentRepository.
type MemAttachmentRepo struct {
	mu    sync.Mutex
	seq   int64
	Items []entity.Attachment
}

func NewMemAttachmentRepo() *MemAttachmentRepo {
	return &MemAttachmentRepo{}
}

func (r *MemAttachmentRepo) Create(_ context.Context, a *entity.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	a.ID = r.seq
	a.CreatedAt = time.Now()
	r.Items = append(r.Items, *a)
	return nil
}

func (r *MemAttachmentRepo) ListByTicket(_ context.Context, ticketID int64) ([]entity.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Attachment
	for _, a := range r.Items {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

// CapturePublisher records published bodies, optionally failing every call.
type CapturePublisher struct {
	mu        sync.Mutex
	Published []any
	Err       error
}

func (p *CapturePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Published = append(p.Published, body)
	return nil
}

// Count returns how many messages were published.
func (p *CapturePublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Published)
}

var (
	_ repository.TicketRepository     = (*MemTicketRepo)(nil)
	_ repository.UserRepository       = (*MemUserRepo)(nil)
	_ repository.AttachmentRepository = (*MemAttachmentRepo)(nil)
)
