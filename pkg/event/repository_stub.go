package event

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RepositoryStub is an in-memory Repository for tests. WithTransaction takes
// a snapshot and restores it when the callback fails, mirroring the rollback
// behavior of the SQL implementation.
type RepositoryStub struct {
	mu     sync.RWMutex
	events map[string]Event // id -> event

	// FailCreateAfter makes Create fail once that many events exist,
	// to exercise mid-batch store failures. Zero disables it.
	FailCreateAfter int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{events: make(map[string]Event)}
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(map[string]Event)
	r.FailCreateAfter = 0
}

func (r *RepositoryStub) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

func (r *RepositoryStub) All() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	snapshot := make(map[string]Event, len(r.events))
	for k, v := range r.events {
		snapshot[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.events = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) Create(ctx context.Context, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreateAfter > 0 && len(r.events) >= r.FailCreateAfter {
		return Event{}, errors.New("stub store failure")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = time.Now()
	r.events[event.ID] = event
	return event, nil
}

func (r *RepositoryStub) GetByID(ctx context.Context, id string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	return event, nil
}

func (r *RepositoryStub) FindByNaturalKey(ctx context.Context, venueID, title string, dayStart, dayEnd time.Time) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.events {
		if e.VenueID == venueID && e.Title == title && !e.Date.Before(dayStart) && !e.Date.After(dayEnd) {
			return e, nil
		}
	}
	return Event{}, ErrNotFound
}

func (r *RepositoryStub) Update(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.events[event.ID]
	if !ok {
		return ErrNotFound
	}
	event.CreatedAt = existing.CreatedAt
	r.events[event.ID] = event
	return nil
}

func (r *RepositoryStub) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *RepositoryStub) DeleteMany(ctx context.Context, ids []string, venueID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		e, ok := r.events[id]
		if !ok {
			continue
		}
		if venueID != "" && e.VenueID != venueID {
			continue
		}
		delete(r.events, id)
		deleted++
	}
	return deleted, nil
}

func (r *RepositoryStub) ListUpcoming(ctx context.Context, from time.Time, search, category string, limit int) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Event
	for _, e := range r.events {
		if e.Date.Before(from) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Title), strings.ToLower(search)) &&
			!strings.Contains(strings.ToLower(e.Description), strings.ToLower(search)) {
			continue
		}
		if category != "" && e.Category != category {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *RepositoryStub) ListByVenue(ctx context.Context, venueID string) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Event
	for _, e := range r.events {
		if e.VenueID == venueID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}
