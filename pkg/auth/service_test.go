package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whatson/whatson/internal/config"
	"github.com/whatson/whatson/pkg/venue"
	"golang.org/x/crypto/bcrypt"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuth(t *testing.T) (*Service, *venue.RepositoryStub, venue.Venue) {
	venues := venue.NewRepositoryStub()
	seeded, err := venues.Create(context.Background(), venue.Venue{
		Name:         "The Swan",
		OwnerEmail:   "swan@example.com",
		PasswordHash: mustHash(t, "correct-horse"),
	})
	require.NoError(t, err)

	admin := config.Admin{Email: "admin@example.com", PasswordHash: mustHash(t, "admin-secret")}
	return NewService(venues, admin), venues, seeded
}

func TestAuthenticateVenue(t *testing.T) {
	service, _, seeded := newTestAuth(t)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		v, err := service.AuthenticateVenue(ctx, "swan@example.com", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, v.ID)
	})

	// Unknown email and wrong password produce the same error so the
	// response does not leak which accounts exist.
	t.Run("wrong password", func(t *testing.T) {
		_, err := service.AuthenticateVenue(ctx, "swan@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.AuthenticateVenue(ctx, "ghost@example.com", "correct-horse")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty credentials", func(t *testing.T) {
		_, err := service.AuthenticateVenue(ctx, "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticateAdmin(t *testing.T) {
	service, _, _ := newTestAuth(t)

	assert.NoError(t, service.AuthenticateAdmin("admin@example.com", "admin-secret"))
	assert.ErrorIs(t, service.AuthenticateAdmin("admin@example.com", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, service.AuthenticateAdmin("other@example.com", "admin-secret"), ErrInvalidCredentials)
	assert.ErrorIs(t, service.AuthenticateAdmin("", ""), ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	service, venues, seeded := newTestAuth(t)
	ctx := context.Background()

	t.Run("confirmation mismatch", func(t *testing.T) {
		err := service.ChangePassword(ctx, seeded.ID, "correct-horse", "new-password", "different")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})

	t.Run("too short", func(t *testing.T) {
		err := service.ChangePassword(ctx, seeded.ID, "correct-horse", "short", "short")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("wrong current password", func(t *testing.T) {
		err := service.ChangePassword(ctx, seeded.ID, "wrong", "new-password", "new-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, service.ChangePassword(ctx, seeded.ID, "correct-horse", "new-password", "new-password"))

		stored, err := venues.GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password")))
	})
}
