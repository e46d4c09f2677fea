package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/ticketdesk/ticketdesk/internal/application"
	"github.com/ticketdesk/ticketdesk/internal/testutil"
)

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func TestUserServiceCreate(t *testing.T) {
	users := testutil.NewMemUserRepo()
	svc := app.NewUserService(users, quietLogger())

	u, err := svc.Create(context.Background(), app.CreateUserInput{Name: "Ada", Email: "ada@example.com", Age: intptr(36)})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = svc.Create(context.Background(), app.CreateUserInput{Name: "Other Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, app.ErrEmailTaken)
}

func TestUserServiceGet(t *testing.T) {
	users := testutil.NewMemUserRepo()
	id := users.Seed("Ada", "ada@example.com")
	svc := app.NewUserService(users, quietLogger())

	u, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)

	_, err = svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, app.ErrUserNotFound)
}

func TestUserServiceUpdate(t *testing.T) {
	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		users := testutil.NewMemUserRepo()
		id := users.Seed("Ada", "ada@example.com")
		svc := app.NewUserService(users, quietLogger())

		u, err := svc.Update(context.Background(), id, app.UpdateUserInput{Name: strptr("Ada L.")})
		require.NoError(t, err)
		assert.Equal(t, "Ada L.", u.Name)
		assert.Equal(t, "ada@example.com", u.Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := testutil.NewMemUserRepo()
		svc := app.NewUserService(users, quietLogger())

		_, err := svc.Update(context.Background(), 404, app.UpdateUserInput{Name: strptr("Nobody")})
		assert.ErrorIs(t, err, app.ErrUserNotFound)
	})

	t.Run("email collision", func(t *testing.T) {
		users := testutil.NewMemUserRepo()
		users.Seed("Ada", "ada@example.com")
		id := users.Seed("Bob", "bob@example.com")
		svc := app.NewUserService(users, quietLogger())

		_, err := svc.Update(context.Background(), id, app.UpdateUserInput{Email: strptr("ada@example.com")})
		assert.ErrorIs(t, err, app.ErrEmailTaken)
	})
}

func TestUserServiceDelete(t *testing.T) {
	t.Run("removes the user", func(t *testing.T) {
		users := testutil.NewMemUserRepo()
		id := users.Seed("Ada", "ada@example.com")
		svc := app.NewUserService(users, quietLogger())

		require.NoError(t, svc.Delete(context.Background(), id))
		err := svc.Delete(context.Background(), id)
		assert.ErrorIs(t, err, app.ErrUserNotFound)
	})

	t.Run("referenced by tickets", func(t *testing.T) {
		users := testutil.NewMemUserRepo()
		id := users.Seed("Ada", "ada@example.com")
		users.DeleteConflict = true
		svc := app.NewUserService(users, quietLogger())

		err := svc.Delete(context.Background(), id)
		assert.ErrorIs(t, err, app.ErrUserHasTickets)
	})
}

func TestUserServiceList(t *testing.T) {
	users := testutil.NewMemUserRepo()
	users.Seed("Ada", "ada@example.com")
	users.Seed("Bob", "bob@example.com")
	svc := app.NewUserService(users, quietLogger())

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ada", got[0].Name)
	assert.Equal(t, "Bob", got[1].Name)
}
