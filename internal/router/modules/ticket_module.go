package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ticketdesk/ticketdesk/internal/container"
	handlers "github.com/ticketdesk/ticketdesk/internal/interface/http"
	"github.com/ticketdesk/ticketdesk/internal/interface/middleware"
)

// TicketModule wires ticket HTTP handlers into routes under /api/tickets.
// Reads are unthrottled; writes and the bulk-delete producer get per-IP rate
// limits so a misbehaving client cannot flood the queue.
type TicketModule struct {
	Handler *handlers.TicketHandler
}

func NewTicketModule(h *handlers.TicketHandler) *TicketModule {
	return &TicketModule{Handler: h}
}

func (m *TicketModule) Register(rg *gin.RouterGroup) {
	writeLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	bulkLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	g := rg.Group("/tickets")
	{
		g.GET("", m.Handler.List)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.POST("", writeLimiter, m.Handler.Create)
		g.PATCH("/:id/status", writeLimiter, m.Handler.UpdateStatus)
		g.DELETE("/:id", writeLimiter, m.Handler.Delete)
		g.POST("/bulk-delete", bulkLimiter, m.Handler.BulkDelete)
		g.POST("/:id/attachments", writeLimiter, m.Handler.UploadAttachment)
		g.GET("/:id/attachments", m.Handler.ListAttachments)
	}
}
