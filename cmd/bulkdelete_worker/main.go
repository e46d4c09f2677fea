package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ticketdesk/ticketdesk/config"
	"github.com/ticketdesk/ticketdesk/internal/application"
	pginfra "github.com/ticketdesk/ticketdesk/internal/infrastructure/postgres"
	"github.com/ticketdesk/ticketdesk/pkg/helpers"
)

// The bulk-delete consumer. It dequeues ID lists serially relative to
// itself, but runs concurrently with the API's normal traffic against the
// same tables; correctness relies on Postgres, not application locks.
// Deletes are idempotent, so redelivery after a crash is harmless.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-bulkdelete-worker", cfg.Env)

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("failed to init elasticsearch client: %v", err)
	}

	svc := application.NewTicketService(
		pginfra.NewTicketRepository(pool),
		pginfra.NewUserRepository(pool),
		pginfra.NewAttachmentRepository(pool),
		nil, // this process consumes; it never publishes
		nil,
		nil, "",
		es, cfg.ESTicketsIndex,
		logger,
	)

	conn, ch, msgs, err := helpers.ConsumerQueue(cfg.RabbitMQURL, cfg.RabbitMQTicketsQueue, 16)
	if err != nil {
		log.Fatalf("amqp consume: %v", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ids []int64
			if err := json.Unmarshal(msg.Body, &ids); err != nil {
				logger.WithError(err).Warn("bad bulk delete message")
				_ = msg.Nack(false, false)
				continue
			}
			logger.WithField("ids", ids).Info("received deletion request")
			// BulkDelete never returns an error: persistence failures
			// are logged and swallowed, so the message is always acked.
			svc.BulkDelete(ctx, ids)
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("bulk delete worker listening on queue=%s", cfg.RabbitMQTicketsQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
