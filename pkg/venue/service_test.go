package venue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whatson/whatson/internal/event_bus"
	"golang.org/x/crypto/bcrypt"
)

func newTestService() (*Service, *RepositoryStub, *event_bus.EventBus) {
	repo := NewRepositoryStub()
	bus := event_bus.NewEventBus()
	return NewService(repo, bus), repo, bus
}

func validInput() Input {
	return Input{
		Name:       "The Railway Tavern",
		Location:   "Romiley",
		Type:       "Pub",
		OwnerEmail: "railway@example.com",
		Password:   "secret-password",
	}
}

func TestCreateVenue(t *testing.T) {
	service, _, bus := newTestService()

	var published event_bus.VenueCreated
	bus.Subscribe(event_bus.TopicVenueCreated, func(e event_bus.Event) error {
		published = e.Data.(event_bus.VenueCreated)
		return nil
	})

	created, err := service.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "The Railway Tavern", created.Name)
	assert.Equal(t, "railway@example.com", created.OwnerEmail)

	// Stored as a bcrypt hash, never the plain text
	assert.NotEqual(t, "secret-password", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret-password")))

	assert.Equal(t, created.ID, published.ID)
	assert.False(t, published.Imported)
}

func TestCreateVenueValidation(t *testing.T) {
	service, _, _ := newTestService()

	t.Run("missing name", func(t *testing.T) {
		input := validInput()
		input.Name = ""
		_, err := service.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("invalid email", func(t *testing.T) {
		input := validInput()
		input.OwnerEmail = "not-an-email"
		_, err := service.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing password", func(t *testing.T) {
		input := validInput()
		input.Password = ""
		_, err := service.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("short password", func(t *testing.T) {
		input := validInput()
		input.Password = "short"
		_, err := service.Create(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestCreateVenueDuplicateEmail(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Create(context.Background(), validInput())
	require.NoError(t, err)

	input := validInput()
	input.Name = "Another Venue"
	_, err = service.Create(context.Background(), input)
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestUpdateVenueKeepsPassword(t *testing.T) {
	service, _, _ := newTestService()

	created, err := service.Create(context.Background(), validInput())
	require.NoError(t, err)

	input := validInput()
	input.Name = "Renamed Tavern"
	input.Password = "this-must-be-ignored"

	updated, err := service.Update(context.Background(), created.ID, input)
	require.NoError(t, err)

	assert.Equal(t, "Renamed Tavern", updated.Name)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
}

func TestUpdateVenueNotFound(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Update(context.Background(), "missing", validInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	service, repo, _ := newTestService()

	created, err := service.Create(context.Background(), validInput())
	require.NoError(t, err)

	t.Run("too short", func(t *testing.T) {
		assert.ErrorIs(t, service.ResetPassword(context.Background(), created.ID, "short"), ErrPasswordTooShort)
	})

	t.Run("unknown venue", func(t *testing.T) {
		assert.ErrorIs(t, service.ResetPassword(context.Background(), "missing", "new-password"), ErrNotFound)
	})

	t.Run("replaces the hash", func(t *testing.T) {
		require.NoError(t, service.ResetPassword(context.Background(), created.ID, "new-password"))

		stored, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("new-password")))
	})
}

func TestDeleteVenue(t *testing.T) {
	service, repo, _ := newTestService()

	created, err := service.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), created.ID))

	_, err = repo.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, service.Delete(context.Background(), created.ID), ErrNotFound)
}
