package venue

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// RepositoryStub is an in-memory Repository for tests.
type RepositoryStub struct {
	mu     sync.RWMutex
	venues map[string]Venue // id -> venue
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{venues: make(map[string]Venue)}
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.venues = make(map[string]Venue)
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(r)
}

func (r *RepositoryStub) Create(ctx context.Context, venue Venue) (Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.venues {
		if existing.OwnerEmail == venue.OwnerEmail {
			return Venue{}, ErrEmailInUse
		}
	}
	if venue.ID == "" {
		venue.ID = uuid.NewString()
	}
	r.venues[venue.ID] = venue
	return venue, nil
}

func (r *RepositoryStub) GetByID(ctx context.Context, id string) (Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	venue, ok := r.venues[id]
	if !ok {
		return Venue{}, ErrNotFound
	}
	return venue, nil
}

func (r *RepositoryStub) GetByEmail(ctx context.Context, ownerEmail string) (Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, venue := range r.venues {
		if venue.OwnerEmail == ownerEmail {
			return venue, nil
		}
	}
	return Venue{}, ErrNotFound
}

func (r *RepositoryStub) FindByName(ctx context.Context, name string) (Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, venue := range r.venues {
		if venue.Name == name {
			return venue, nil
		}
	}
	return Venue{}, ErrNotFound
}

func (r *RepositoryStub) List(ctx context.Context) ([]Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	venues := make([]Venue, 0, len(r.venues))
	for _, venue := range r.venues {
		venues = append(venues, venue)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i].Name < venues[j].Name })
	return venues, nil
}

func (r *RepositoryStub) Update(ctx context.Context, venue Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.venues[venue.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range r.venues {
		if id != venue.ID && existing.OwnerEmail == venue.OwnerEmail {
			return ErrEmailInUse
		}
	}
	r.venues[venue.ID] = venue
	return nil
}

func (r *RepositoryStub) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	venue, ok := r.venues[id]
	if !ok {
		return ErrNotFound
	}
	venue.PasswordHash = passwordHash
	r.venues[id] = venue
	return nil
}

func (r *RepositoryStub) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.venues[id]; !ok {
		return ErrNotFound
	}
	delete(r.venues, id)
	return nil
}
