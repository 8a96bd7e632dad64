package event

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/whatson/whatson/internal/auth"
	"github.com/whatson/whatson/internal/event_bus"
	"github.com/whatson/whatson/internal/utils"
)

const defaultListLimit = 200

type Service struct {
	repo  Repository
	clock utils.Clock
	bus   *event_bus.EventBus
}

func NewService(repo Repository, clock utils.Clock, bus *event_bus.EventBus) *Service {
	return &Service{repo: repo, clock: clock, bus: bus}
}

// Create expands the submission into its concrete instances and persists
// them in a single transaction, so a recurring group is written
// all-or-nothing.
func (s *Service) Create(ctx context.Context, input Input) ([]Event, error) {
	venueID, err := auth.CurrentVenueID(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}

	instances, err := Expand(input, venueID)
	if err != nil {
		return nil, err
	}

	created := make([]Event, 0, len(instances))
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		for _, instance := range instances {
			stored, err := repo.Create(ctx, instance)
			if err != nil {
				return fmt.Errorf("failed to store event instance: %w", err)
			}
			created = append(created, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infof("created %d event(s) for venue %s", len(created), venueID)
	if err := s.bus.Publish(event_bus.NewEvent(event_bus.TopicEventsCreated, event_bus.EventsCreated{
		VenueID: venueID,
		GroupID: created[0].GroupID,
		Count:   len(created),
	})); err != nil {
		log.Errorf("failed to publish events created event: %v", err)
	}

	return created, nil
}

// Update overwrites a single instance. It never touches sibling instances of
// the same recurrence group. The caller must own the event unless acting as
// platform admin.
func (s *Service) Update(ctx context.Context, id string, input Input) (Event, error) {
	if err := validate.Struct(input); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	date, err := parseDate(input.Date)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if err := s.requireOwnership(ctx, existing); err != nil {
		return Event{}, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Category = input.Category
	existing.Date = date
	existing.BookingURL = input.BookingURL

	if err := s.repo.Update(ctx, existing); err != nil {
		return Event{}, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, existing); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// DeleteMany removes the given events. Owners are scoped to their own venue;
// the platform admin can delete across venues.
func (s *Service) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if auth.IsPlatformAdmin(ctx) {
		return s.repo.DeleteMany(ctx, ids, "")
	}
	venueID, err := auth.CurrentVenueID(ctx)
	if err != nil {
		return 0, ErrUnauthorized
	}
	return s.repo.DeleteMany(ctx, ids, venueID)
}

// Upcoming lists public events from now on, optionally filtered by a
// substring query and category.
func (s *Service) Upcoming(ctx context.Context, search, category string, limit int) ([]Event, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.ListUpcoming(ctx, s.clock.Now(), search, category, limit)
}

func (s *Service) ListByVenue(ctx context.Context, venueID string) ([]Event, error) {
	return s.repo.ListByVenue(ctx, venueID)
}

func (s *Service) requireOwnership(ctx context.Context, e Event) error {
	if auth.IsPlatformAdmin(ctx) {
		return nil
	}
	venueID, err := auth.CurrentVenueID(ctx)
	if err != nil || e.VenueID != venueID {
		return ErrUnauthorized
	}
	return nil
}
