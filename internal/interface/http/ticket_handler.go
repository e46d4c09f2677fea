package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	ticketapp "github.com/ticketdesk/ticketdesk/internal/application"
	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
	"github.com/ticketdesk/ticketdesk/pkg/response"
	"github.com/ticketdesk/ticketdesk/pkg/validation"
)

type TicketHandler struct {
	Svc    *ticketapp.TicketService
	Logger *logrus.Logger
}

func NewTicketHandler(svc *ticketapp.TicketService, logger *logrus.Logger) *TicketHandler {
	return &TicketHandler{Svc: svc, Logger: logger}
}

// Absent fields take the form defaults; the gte guards must not be relaxed
// with omitempty, which treats an explicit 0 as unset and skips them.
type listTicketsRequest struct {
	Page  int `form:"page,default=1" binding:"gte=1"`
	Limit int `form:"limit,default=10" binding:"gte=1"`
}

type createTicketRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	CreatorID   int64  `json:"creatorId" binding:"required,gt=0"`
	AssigneeID  *int64 `json:"assigneeId" binding:"omitempty,gt=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open in_progress done"`
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1,dive,gt=0"`
}

type userRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ticketResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatorID   int64     `json:"creatorId"`
	AssigneeID  *int64    `json:"assigneeId,omitempty"`
	Creator     *userRef  `json:"creator,omitempty"`
	Assignee    *userRef  `json:"assignee,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type attachmentResponse struct {
	ID          int64     `json:"id"`
	TicketID    int64     `json:"ticketId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	URL         string    `json:"url"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toAttachmentResponse(a *entity.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:          a.ID,
		TicketID:    a.TicketID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		URL:         a.URL,
		SizeBytes:   a.SizeBytes,
		CreatedAt:   a.CreatedAt,
	}
}

func toTicketResponse(t *entity.Ticket) ticketResponse {
	out := ticketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatorID:   t.CreatorID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Creator != nil {
		out.Creator = &userRef{ID: t.Creator.ID, Name: t.Creator.Name, Email: t.Creator.Email}
	}
	if t.Assignee != nil {
		out.Assignee = &userRef{ID: t.Assignee.ID, Name: t.Assignee.Name, Email: t.Assignee.Email}
	}
	return out
}

func (h *TicketHandler) List(c *gin.Context) {
	var req listTicketsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid pagination", validation.ToDetails(err))
		return
	}

	page, err := h.Svc.List(c.Request.Context(), req.Page, req.Limit)
	if err != nil {
		h.Logger.WithError(err).Error("list tickets failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list tickets", nil)
		return
	}

	items := make([]ticketResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, toTicketResponse(&page.Items[i]))
	}
	response.Success(c, http.StatusOK, items, "tickets", response.Pagination{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	t, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ticketapp.ErrTicketNotFound) {
			response.Error[any](c, http.StatusNotFound, "ticket not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("ticket_id", id).Error("get ticket failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to get ticket", nil)
		return
	}
	response.Success(c, http.StatusOK, toTicketResponse(t), "ticket", nil)
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	t, err := h.Svc.Create(c.Request.Context(), ticketapp.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   req.CreatorID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ticketapp.ErrCreatorNotFound):
			response.Error[any](c, http.StatusNotFound, "creator user not found", nil)
		case errors.Is(err, ticketapp.ErrAssigneeNotFound):
			response.Error[any](c, http.StatusNotFound, "assignee user not found", nil)
		default:
			h.Logger.WithError(err).Error("create ticket failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to create ticket", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, toTicketResponse(t), "ticket created", nil)
}

func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	t, err := h.Svc.UpdateStatus(c.Request.Context(), id, entity.TicketStatus(req.Status))
	if err != nil {
		if errors.Is(err, ticketapp.ErrTicketNotFound) {
			response.Error[any](c, http.StatusNotFound, "ticket not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("ticket_id", id).Error("update status failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update status", nil)
		return
	}
	response.Success(c, http.StatusOK, toTicketResponse(t), "status updated", nil)
}

func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ticketapp.ErrTicketNotFound) {
			response.Error[any](c, http.StatusNotFound, "ticket not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("ticket_id", id).Error("delete ticket failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to delete ticket", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "ticket deleted", nil)
}

// BulkDelete validates the ID list and hands it to the queue. The 202 means
// accepted, not done: deletion happens later in the consumer and no result
// flows back to this caller.
func (h *TicketHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.EnqueueBulkDelete(c.Request.Context(), req.IDs); err != nil {
		h.Logger.WithError(err).Error("bulk delete publish failed")
		response.Error[any](c, http.StatusServiceUnavailable, "failed to enqueue bulk delete", nil)
		return
	}
	response.Success[any](c, http.StatusAccepted, gin.H{"queued": len(req.IDs)}, "bulk delete accepted", nil)
}

func (h *TicketHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("ticket search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

func (h *TicketHandler) UploadAttachment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing file", map[string]string{"file": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	a, err := h.Svc.AddAttachment(c.Request.Context(), id, f, fh.Filename, contentType, fh.Size)
	if err != nil {
		switch {
		case errors.Is(err, ticketapp.ErrTicketNotFound):
			response.Error[any](c, http.StatusNotFound, "ticket not found", nil)
		case errors.Is(err, ticketapp.ErrGCSNotConfigured):
			response.Error[any](c, http.StatusServiceUnavailable, "attachments not configured", nil)
		default:
			h.Logger.WithError(err).WithField("ticket_id", id).Error("attachment upload failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to upload attachment", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, toAttachmentResponse(a), "attachment uploaded", nil)
}

func (h *TicketHandler) ListAttachments(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	items, err := h.Svc.ListAttachments(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ticketapp.ErrTicketNotFound) {
			response.Error[any](c, http.StatusNotFound, "ticket not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("ticket_id", id).Error("list attachments failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list attachments", nil)
		return
	}
	out := make([]attachmentResponse, 0, len(items))
	for i := range items {
		out = append(out, toAttachmentResponse(&items[i]))
	}
	response.Success(c, http.StatusOK, out, "attachments", nil)
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid id", map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return id, true
}
