package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
	repo "github.com/ticketdesk/ticketdesk/internal/domain/repository"
	"github.com/ticketdesk/ticketdesk/pkg/helpers"
	"github.com/ticketdesk/ticketdesk/pkg/mailer"
)

var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrCreatorNotFound  = errors.New("creator user not found")
	ErrAssigneeNotFound = errors.New("assignee user not found")
	ErrGCSNotConfigured = errors.New("object storage not configured")
)

// MaxPageSize caps the page size a caller may request.
const MaxPageSize = 100

// Publisher abstracts the message broker so services can be tested with
// in-memory fakes.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// TicketService owns the ticket lifecycle: pagination, referential checks on
// create, status transitions, and both delete paths (synchronous single
// delete and the asynchronous bulk-delete pipeline).
type TicketService struct {
	Tickets     repo.TicketRepository
	Users       repo.UserRepository
	Attachments repo.AttachmentRepository

	BulkDeleteQueue Publisher // tickets queue; producer side of the pipeline
	Notifications   Publisher // assignment email jobs, best effort

	GCS       *storage.Client
	GCSBucket string

	ES             *elasticsearch.Client
	ESTicketsIndex string

	Logger *logrus.Logger
}

func NewTicketService(tickets repo.TicketRepository, users repo.UserRepository, attachments repo.AttachmentRepository, bulkDeleteQueue, notifications Publisher, gcs *storage.Client, gcsBucket string, es *elasticsearch.Client, esTicketsIndex string, logger *logrus.Logger) *TicketService {
	return &TicketService{
		Tickets:         tickets,
		Users:           users,
		Attachments:     attachments,
		BulkDeleteQueue: bulkDeleteQueue,
		Notifications:   notifications,
		GCS:             gcs,
		GCSBucket:       gcsBucket,
		ES:              es,
		ESTicketsIndex:  esTicketsIndex,
		Logger:          logger,
	}
}

// TicketPage is one page of tickets plus pagination metadata.
type TicketPage struct {
	Items      []entity.Ticket
	Page       int
	Limit      int
	Total      int64
	TotalPages int64
}

// List returns tickets ordered by creation time descending, joined with
// creator and assignee. The limit is clamped to [1, MaxPageSize]. Page
// lower bounds are enforced at the API boundary, but out-of-range values
// are normalized here too so no caller can produce a zero divisor or a
// negative offset.
func (s *TicketService) List(ctx context.Context, page, limit int) (*TicketPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := (page - 1) * limit

	items, total, err := s.Tickets.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	return &TicketPage{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *TicketService) Get(ctx context.Context, id int64) (*entity.Ticket, error) {
	t, err := s.Tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return t, nil
}

type CreateTicketInput struct {
	Title       string
	Description string
	CreatorID   int64
	AssigneeID  *int64
}

// Create persists a new ticket with status forced to open. The creator must
// exist; the assignee, if given, must exist. Both are checked by lookup, not
// by a transaction spanning the insert.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput) (*entity.Ticket, error) {
	creator, err := s.Users.GetByID(ctx, in.CreatorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCreatorNotFound
		}
		return nil, err
	}

	var assignee *entity.User
	if in.AssigneeID != nil {
		assignee, err = s.Users.GetByID(ctx, *in.AssigneeID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrAssigneeNotFound
			}
			return nil, err
		}
	}

	t := &entity.Ticket{
		Title:       in.Title,
		Description: in.Description,
		Status:      entity.TicketStatusOpen,
		CreatorID:   in.CreatorID,
		AssigneeID:  in.AssigneeID,
	}
	if err := s.Tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	t.Creator = creator
	t.Assignee = assignee

	_ = s.indexTicket(ctx, t)
	if assignee != nil {
		s.notifyAssignment(ctx, t, creator, assignee)
	}
	return t, nil
}

func (s *TicketService) UpdateStatus(ctx context.Context, id int64, status entity.TicketStatus) (*entity.Ticket, error) {
	t, err := s.Tickets.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	_ = s.indexTicket(ctx, t)
	return t, nil
}

func (s *TicketService) Delete(ctx context.Context, id int64) error {
	affected, err := s.Tickets.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTicketNotFound
	}
	s.deindexTickets(ctx, []int64{id})
	return nil
}

// EnqueueBulkDelete is the producer side of the async pipeline: it publishes
// the ID list to the tickets queue and returns. Actual deletion happens when
// a consumer picks the message up; no result flows back to the caller.
func (s *TicketService) EnqueueBulkDelete(ctx context.Context, ids []int64) error {
	if err := s.BulkDeleteQueue.PublishJSON(ctx, ids); err != nil {
		return err
	}
	s.Logger.WithFields(logrus.Fields{"count": len(ids)}).Info("bulk delete enqueued")
	return nil
}

// BulkDelete is the consumer side: a set-membership delete over the ID list.
// IDs with no matching row are skipped. Persistence errors are logged and
// swallowed; the pipeline is fire and forget, so there is nobody to tell.
func (s *TicketService) BulkDelete(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		s.Logger.Warn("received bulk delete request with no ids, skipping")
		return
	}
	affected, err := s.Tickets.DeleteMany(ctx, ids)
	if err != nil {
		s.Logger.WithError(err).WithField("ids", ids).Error("bulk delete failed")
		return
	}
	s.Logger.WithFields(logrus.Fields{"ids": ids, "affected": affected}).Info("bulk delete completed")
	s.deindexTickets(ctx, ids)
}

// Search runs a multi_match query over title and description in
// Elasticsearch. Returns empty results when search is not configured.
func (s *TicketService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESTicketsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESTicketsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// AddAttachment uploads the file to object storage and records its metadata
// against the ticket.
func (s *TicketService) AddAttachment(ctx context.Context, ticketID int64, r io.Reader, filename, contentType string, size int64) (*entity.Attachment, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, ErrGCSNotConfigured
	}
	if _, err := s.Get(ctx, ticketID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("tickets", strconv.FormatInt(ticketID, 10), uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}

	a := &entity.Attachment{
		TicketID:    ticketID,
		FileName:    filename,
		ContentType: contentType,
		URL:         url,
		SizeBytes:   size,
	}
	if err := s.Attachments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *TicketService) ListAttachments(ctx context.Context, ticketID int64) ([]entity.Attachment, error) {
	if _, err := s.Get(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.Attachments.ListByTicket(ctx, ticketID)
}

func (s *TicketService) notifyAssignment(ctx context.Context, t *entity.Ticket, creator, assignee *entity.User) {
	if s.Notifications == nil {
		return
	}
	job := mailer.AssignmentJob{
		TicketID:      t.ID,
		TicketTitle:   t.Title,
		AssigneeEmail: assignee.Email,
		AssigneeName:  assignee.Name,
		CreatorName:   creator.Name,
	}
	if err := s.Notifications.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("ticket_id", t.ID).Warn("assignment notification publish failed")
	}
}

func (s *TicketService) indexTicket(ctx context.Context, t *entity.Ticket) error {
	if s.ES == nil || s.ESTicketsIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"creator_id":  t.CreatorID,
		"created_at":  t.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  t.UpdatedAt.Format(time.RFC3339Nano),
	}
	if t.AssigneeID != nil {
		doc["assignee_id"] = *t.AssigneeID
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESTicketsIndex,
		DocumentID: strconv.FormatInt(t.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("ticket_id", t.ID).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("ticket_id", t.ID).Warn("es index response error")
	}
	return nil
}

func (s *TicketService) deindexTickets(ctx context.Context, ids []int64) {
	if s.ES == nil || s.ESTicketsIndex == "" {
		return
	}
	for _, id := range ids {
		req := esapi.DeleteRequest{Index: s.ESTicketsIndex, DocumentID: strconv.FormatInt(id, 10)}
		c, cancel := context.WithTimeout(ctx, 3*time.Second)
		res, err := req.Do(c, s.ES)
		cancel()
		if err != nil {
			s.Logger.WithError(err).WithField("ticket_id", id).Warn("es delete failed")
			continue
		}
		_ = res.Body.Close()
	}
}
