package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ticketdesk/ticketdesk/internal/container"
	handlers "github.com/ticketdesk/ticketdesk/internal/interface/http"
	"github.com/ticketdesk/ticketdesk/internal/interface/middleware"
)

// UserModule wires user CRUD routes under /api/users.
type UserModule struct {
	Handler *handlers.UserHandler
}

func NewUserModule(h *handlers.UserHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	writeLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)

	g := rg.Group("/users")
	{
		g.GET("", m.Handler.List)
		g.GET("/:id", m.Handler.Get)
		g.POST("", writeLimiter, m.Handler.Create)
		g.PUT("/:id", writeLimiter, m.Handler.Update)
		g.DELETE("/:id", writeLimiter, m.Handler.Delete)
	}
}
