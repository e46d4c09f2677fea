package application_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/ticketdesk/ticketdesk/internal/application"
	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
	"github.com/ticketdesk/ticketdesk/internal/testutil"
	"github.com/ticketdesk/ticketdesk/pkg/mailer"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTicketService(tickets *testutil.MemTicketRepo, users *testutil.MemUserRepo) (*app.TicketService, *testutil.CapturePublisher, *testutil.CapturePublisher) {
	bulk := &testutil.CapturePublisher{}
	notif := &testutil.CapturePublisher{}
	svc := app.NewTicketService(tickets, users, testutil.NewMemAttachmentRepo(), bulk, notif, nil, "", nil, "", quietLogger())
	return svc, bulk, notif
}

func seedTickets(t *testing.T, svc *app.TicketService, creatorID int64, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		created, err := svc.Create(context.Background(), app.CreateTicketInput{
			Title:       "ticket",
			Description: "body",
			CreatorID:   creatorID,
		})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	return ids
}

func TestTicketServiceList(t *testing.T) {
	tickets := testutil.NewMemTicketRepo()
	users := testutil.NewMemUserRepo()
	creatorID := users.Seed("Ada", "ada@example.com")
	svc, _, _ := newTicketService(tickets, users)
	seedTickets(t, svc, creatorID, 25)

	tests := []struct {
		name           string
		page, limit    int
		wantItems      int
		wantLimit      int
		wantTotalPages int64
	}{
		{name: "first page", page: 1, limit: 10, wantItems: 10, wantLimit: 10, wantTotalPages: 3},
		{name: "last partial page", page: 3, limit: 10, wantItems: 5, wantLimit: 10, wantTotalPages: 3},
		{name: "past the end", page: 9, limit: 10, wantItems: 0, wantLimit: 10, wantTotalPages: 3},
		{name: "limit clamped to max", page: 1, limit: 500, wantItems: 25, wantLimit: app.MaxPageSize, wantTotalPages: 1},
		{name: "exact division", page: 1, limit: 5, wantItems: 5, wantLimit: 5, wantTotalPages: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(context.Background(), tt.page, tt.limit)
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, tt.page, page.Page)
			assert.Equal(t, tt.wantLimit, page.Limit)
			assert.Equal(t, int64(25), page.Total)
			assert.Equal(t, tt.wantTotalPages, page.TotalPages)
		})
	}
}

func TestTicketServiceListBounds(t *testing.T) {
	tickets := testutil.NewMemTicketRepo()
	users := testutil.NewMemUserRepo()
	creatorID := users.Seed("Ada", "ada@example.com")
	svc, _, _ := newTicketService(tickets, users)
	seedTickets(t, svc, creatorID, 3)

	tests := []struct {
		name        string
		page, limit int
		wantPage    int
		wantLimit   int
	}{
		{name: "zero limit", page: 1, limit: 0, wantPage: 1, wantLimit: 1},
		{name: "negative limit", page: 1, limit: -5, wantPage: 1, wantLimit: 1},
		{name: "zero page", page: 0, limit: 10, wantPage: 1, wantLimit: 10},
		{name: "negative page", page: -2, limit: 10, wantPage: 1, wantLimit: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(context.Background(), tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantLimit, page.Limit)
			assert.GreaterOrEqual(t, tickets.LastOffset, 0)
		})
	}
}

func TestTicketServiceListOffset(t *testing.T) {
	tickets := testutil.NewMemTicketRepo()
	users := testutil.NewMemUserRepo()
	creatorID := users.Seed("Ada", "ada@example.com")
	svc, _, _ := newTicketService(tickets, users)
	seedTickets(t, svc, creatorID, 3)

	_, err := svc.List(context.Background(), 4, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, tickets.LastLimit)
	assert.Equal(t, 21, tickets.LastOffset)
}

func TestTicketServiceCreate(t *testing.T) {
	t.Run("status forced to open", func(t *testing.T) {
		tickets := testutil.NewMemTicketRepo()
		users := testutil.NewMemUserRepo()
		creatorID := users.Seed("Ada", "ada@example.com")
		svc, _, notif := newTicketService(tickets, users)

		created, err := svc.Create(context.Background(), app.CreateTicketInput{
			Title:       "broken build",
			Description: "CI is red",
			CreatorID:   creatorID,
		})
		require.NoError(t, err)
		assert.Equal(t, entity.TicketStatusOpen, created.Status)
		assert.Equal(t, creatorID, created.CreatorID)
		assert.Nil(t, created.AssigneeID)
		require.NotNil(t, created.Creator)
		assert.Equal(t, "Ada", created.Creator.Name)
		assert.Equal(t, 0, notif.Count(), "no assignee, no notification")
	})

	t.Run("unknown creator persists nothing", func(t *testing.T) {
		tickets := testutil.NewMemTicketRepo()
		users := testutil.NewMemUserRepo()
		svc, _, _ := newTicketService(tickets, users)

		_, err := svc.Create(context.Background(), app.CreateTicketInput{
			Title:       "x",
			Description: "y",
			CreatorID:   42,
		})
		assert.ErrorIs(t, err, app.ErrCreatorNotFound)
		assert.Empty(t, tickets.Tickets)
	})

	t.Run("unknown assignee persists nothing", func(t *testing.T) {
		tickets := testutil.NewMemTicketRepo()
		users := testutil.NewMemUserRepo()
		creatorID := users.Seed("Ada", "ada@example.com")
		svc, _, _ := newTicketService(tickets, users)

		missing := int64(99)
		_, err := svc.Create(context.Background(), app.CreateTicketInput{
			Title:       "x",
			Description: "y",
			CreatorID:   creatorID,
			AssigneeID:  &missing,
		})
		assert.ErrorIs(t, err, app.ErrAssigneeNotFound)
		assert.Empty(t, tickets.Tickets)
	})

	t.Run("assignment publishes a notification job", func(t *testing.T) {
		tickets := testutil.NewMemTicketRepo()
		users := testutil.NewMemUserRepo()
		creatorID := users.Seed("Ada", "ada@example.com")
		assigneeID := users.Seed("Bob", "bob@example.com")
		svc, _, notif := newTicketService(tickets, users)

		created, err := svc.Create(context.Background(), app.CreateTicketInput{
			Title:       "assign me",
			Description: "please",
			CreatorID:   creatorID,
			AssigneeID:  &assigneeID,
		})
		require.NoError(t, err)
		require.Equal(t, 1, notif.Count())
		job, ok := notif.Published[0].(mailer.AssignmentJob)
		require.True(t, ok)
		assert.Equal(t, created.ID, job.TicketID)
		assert.Equal(t, "bob@example.com", job.AssigneeEmail)
		assert.Equal(t, "Ada", job.CreatorName)
	})

	t.Run("notification failure does not fail the create", func(t *testing.T) {
		tickets := testutil.NewMemTicketRepo()
		users := testutil.NewMemUserRepo()
		creatorID := users.Seed("Ada", "ada@example.com")
		assigneeID := users.Seed("Bob", "bob@example.com")
		svc, _, notif := newTicketService(tickets, users)
		notif.Err = errors.New("broker down")

		created, err := svc.Create(context.Background(), app.CreateTicketInput{
			Title:       "assign me",
			Description: "please",
			CreatorID:   creatorID,
			AssigneeID:  &assigneeID,
		})
		require.NoError(t, err)
		assert.Contains(t, tickets.Tickets, created.ID)
	})
}

func TestTicketServiceGet(t *testing.T) {
	tickets := testutil.NewMemTicketRepo()
	users := testutil.NewMemUserRepo()
	creatorID := users.Seed("Ada", "ada@example.com")
	svc, _, _ := newTicketService(tickets, users)
	ids := seedTickets(t, svc, creatorID, 1)

	got, err := svc.Get(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.ID)

	_, err = svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, app.ErrTicketNotFound)
}

func TestTicketServiceUpdateStatus(t *testing.T) {
	tickets := testutil.NewMemTicketRepo()
	users := testutil.NewMemUserRepo()
	creatorID := users.Seed("Ada", "ada@example.com")
	svc, _, _ := newTicketService(tickets, users)
	ids := seedTickets(t, svc, creatorID, 1)

	got, err := svc.UpdateStatus(context.Background(), ids[0], entity.TicketStatusDone)
	require.NoError(t, err)
	assert.Equal(t, entity.TicketStatusDone, got.Status)

	_, err = svc.UpdateStatus(context.Background(), 999, entity.TicketStatusDone)
	assert.ErrorIs(t, err, app.ErrTicketNotFound)
}

func TestTicketServiceDelete(t *testing.T) {
	tickets := testutil.NewMemTicketRepo()
	users := testutil.NewMemUserRepo()
	creatorID := users.Seed("Ada", "ada@example.com")
	svc, _, _ := newTicketService(tickets, users)
	ids := seedTickets(t, svc, creatorID, 1)

	require.NoError(t, svc.Delete(context.Background(), ids[0]))

	// the row is gone, so a second delete reports not found
	err := svc.Delete(context.Background(), ids[0])
	assert.ErrorIs(t, err, app.ErrTicketNotFound)
}

func TestTicketServiceEnqueueBulkDelete(t *testing.T) {
	tickets := testutil.NewMemTicketRepo()
	users := testutil.NewMemUserRepo()
	svc, bulk, _ := newTicketService(tickets, users)

	require.NoError(t, svc.EnqueueBulkDelete(context.Background(), []int64{1, 2, 3}))
	require.Equal(t, 1, bulk.Count())
	assert.Equal(t, []int64{1, 2, 3}, bulk.Published[0])

	bulk.Err = errors.New("broker down")
	assert.Error(t, svc.EnqueueBulkDelete(context.Background(), []int64{4}))
}

func TestTicketServiceBulkDelete(t *testing.T) {
	t.Run("ignores absent ids", func(t *testing.T) {
		tickets := testutil.NewMemTicketRepo()
		users := testutil.NewMemUserRepo()
		creatorID := users.Seed("Ada", "ada@example.com")
		svc, _, _ := newTicketService(tickets, users)
		ids := seedTickets(t, svc, creatorID, 3)

		svc.BulkDelete(context.Background(), []int64{ids[0], ids[2], 777, 888})
		assert.Len(t, tickets.Tickets, 1)
		assert.Contains(t, tickets.Tickets, ids[1])
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		tickets := testutil.NewMemTicketRepo()
		users := testutil.NewMemUserRepo()
		creatorID := users.Seed("Ada", "ada@example.com")
		svc, _, _ := newTicketService(tickets, users)
		seedTickets(t, svc, creatorID, 2)

		svc.BulkDelete(context.Background(), nil)
		assert.Len(t, tickets.Tickets, 2)
	})

	t.Run("swallows persistence errors", func(t *testing.T) {
		tickets := testutil.NewMemTicketRepo()
		users := testutil.NewMemUserRepo()
		creatorID := users.Seed("Ada", "ada@example.com")
		svc, _, _ := newTicketService(tickets, users)
		ids := seedTickets(t, svc, creatorID, 1)
		tickets.DeleteManyErr = errors.New("connection reset")

		// must not panic and must leave the rows untouched
		svc.BulkDelete(context.Background(), ids)
		assert.Len(t, tickets.Tickets, 1)
	})
}

func TestTicketServiceSearchUnconfigured(t *testing.T) {
	tickets := testutil.NewMemTicketRepo()
	users := testutil.NewMemUserRepo()
	svc, _, _ := newTicketService(tickets, users)

	hits, err := svc.Search(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTicketServiceAddAttachmentUnconfigured(t *testing.T) {
	tickets := testutil.NewMemTicketRepo()
	users := testutil.NewMemUserRepo()
	svc, _, _ := newTicketService(tickets, users)

	_, err := svc.AddAttachment(context.Background(), 1, nil, "a.txt", "text/plain", 3)
	assert.ErrorIs(t, err, app.ErrGCSNotConfigured)
}
