package router

import (
	app "github.com/ticketdesk/ticketdesk/internal/application"
	"github.com/ticketdesk/ticketdesk/internal/container"
	pginfra "github.com/ticketdesk/ticketdesk/internal/infrastructure/postgres"
	handlers "github.com/ticketdesk/ticketdesk/internal/interface/http"
	"github.com/ticketdesk/ticketdesk/internal/router/modules"
)

func buildTicketModule() Module {
	pool := container.GetPGPool()
	cfg := container.GetConfig()

	// Avoid handing a typed-nil *RabbitPublisher to the Publisher interface
	// when notifications are not configured.
	var notifPub app.Publisher
	if p := container.GetNotificationPub(); p != nil {
		notifPub = p
	}

	svc := app.NewTicketService(
		pginfra.NewTicketRepository(pool),
		pginfra.NewUserRepository(pool),
		pginfra.NewAttachmentRepository(pool),
		container.GetBulkDeletePub(),
		notifPub,
		container.GetGCS(),
		cfg.GCSBucket,
		container.GetES(),
		cfg.ESTicketsIndex,
		container.GetLogger(),
	)
	return modules.NewTicketModule(handlers.NewTicketHandler(svc, container.GetLogger()))
}

func buildUserModule() Module {
	svc := app.NewUserService(pginfra.NewUserRepository(container.GetPGPool()), container.GetLogger())
	return modules.NewUserModule(handlers.NewUserHandler(svc, container.GetLogger()))
}

// InitModules initializes all application modules and registers them with
// the router registry. Called once during startup after the container has
// been populated.
func InitModules(r *Registry) {
	r.Add(buildTicketModule())
	r.Add(buildUserModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
