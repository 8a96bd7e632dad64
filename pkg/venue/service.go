package venue

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/whatson/whatson/internal/event_bus"
	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

var validate = validator.New()

type Service struct {
	repo Repository
	bus  *event_bus.EventBus
}

func NewService(repo Repository, bus *event_bus.EventBus) *Service {
	return &Service{repo: repo, bus: bus}
}

// Create registers a new venue with a bcrypt-hashed password. Returns
// ErrEmailInUse when the owner email is already taken.
func (s *Service) Create(ctx context.Context, input Input) (Venue, error) {
	if err := validate.Struct(input); err != nil {
		return Venue{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Password == "" {
		return Venue{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Venue{}, fmt.Errorf("failed to hash password: %w", err)
	}

	venue, err := s.repo.Create(ctx, Venue{
		Name:         input.Name,
		Location:     input.Location,
		Type:         input.Type,
		OwnerEmail:   input.OwnerEmail,
		PasswordHash: string(hash),
	})
	if err != nil {
		return Venue{}, err
	}
	log.Infof("venue %s created", venue.ID)

	if err := s.bus.Publish(event_bus.NewEvent(event_bus.TopicVenueCreated, event_bus.VenueCreated{
		ID:   venue.ID,
		Name: venue.Name,
	})); err != nil {
		log.Errorf("failed to publish venue created event: %v", err)
	}

	return venue, nil
}

// Update overwrites the venue's descriptive fields and owner email. The
// password is never touched here; ResetPassword handles that separately.
func (s *Service) Update(ctx context.Context, id string, input Input) (Venue, error) {
	if err := validate.Struct(input); err != nil {
		return Venue{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	venue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Venue{}, err
	}

	venue.Name = input.Name
	venue.Location = input.Location
	venue.Type = input.Type
	venue.OwnerEmail = input.OwnerEmail

	if err := s.repo.Update(ctx, venue); err != nil {
		return Venue{}, err
	}
	return venue, nil
}

// Delete removes the venue together with all of its events.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Infof("venue %s deleted", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Venue, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Venue, error) {
	return s.repo.List(ctx)
}

// ResetPassword sets a new password for a venue. Used by the platform admin,
// notably to activate venues auto-created by the CSV import, which start
// with an unguessable random credential.
func (s *Service) ResetPassword(ctx context.Context, id string, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}
