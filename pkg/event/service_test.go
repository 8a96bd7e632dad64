package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whatson/whatson/internal/auth"
	"github.com/whatson/whatson/internal/event_bus"
	"github.com/whatson/whatson/internal/utils"
)

func newTestService() (*Service, *RepositoryStub, *utils.MockClock) {
	repo := NewRepositoryStub()
	clock := &utils.MockClock{FixedNow: time.Date(2026, 9, 1, 12, 0, 0, 0, time.Local)}
	return NewService(repo, clock, event_bus.NewEventBus()), repo, clock
}

func venueCtx(venueID string) context.Context {
	return auth.WithVenue(context.Background(), venueID)
}

func adminCtx() context.Context {
	return auth.WithPlatformAdmin(context.Background())
}

func TestCreateRequiresVenueSession(t *testing.T) {
	service, repo, _ := newTestService()

	_, err := service.Create(context.Background(), submission("2026-09-04T19:30", "none"))
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, repo.Len())
}

func TestCreateSingleEvent(t *testing.T) {
	service, repo, _ := newTestService()

	created, err := service.Create(venueCtx("venue-1"), submission("2026-09-04T19:30", "none"))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "venue-1", created[0].VenueID)
	assert.NotEmpty(t, created[0].ID)
	assert.Equal(t, 1, repo.Len())
}

func TestCreateWeeklySeries(t *testing.T) {
	service, repo, _ := newTestService()

	created, err := service.Create(venueCtx("venue-1"), submission("2026-09-04T19:30", "weekly"))
	require.NoError(t, err)
	assert.Len(t, created, 13)
	assert.Equal(t, 13, repo.Len())
}

// A store failure halfway through a recurring batch must leave nothing
// behind: the group is written all-or-nothing.
func TestCreateSeriesIsAtomic(t *testing.T) {
	service, repo, _ := newTestService()
	repo.FailCreateAfter = 5

	_, err := service.Create(venueCtx("venue-1"), submission("2026-09-04T19:30", "weekly"))
	require.Error(t, err)
	assert.Equal(t, 0, repo.Len())
}

func TestUpdateChecksOwnership(t *testing.T) {
	service, repo, _ := newTestService()

	seeded, err := repo.Create(context.Background(), Event{
		Title:   "Quiz Night",
		Date:    time.Date(2026, 9, 4, 19, 30, 0, 0, time.Local),
		VenueID: "venue-1",
	})
	require.NoError(t, err)

	input := submission("2026-09-04T21:00", "none")
	input.Title = "Late Quiz Night"

	t.Run("foreign venue is rejected", func(t *testing.T) {
		_, err := service.Update(venueCtx("venue-2"), seeded.ID, input)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("owner can update", func(t *testing.T) {
		updated, err := service.Update(venueCtx("venue-1"), seeded.ID, input)
		require.NoError(t, err)
		assert.Equal(t, "Late Quiz Night", updated.Title)
		assert.Equal(t, time.Date(2026, 9, 4, 21, 0, 0, 0, time.Local), updated.Date)
	})

	t.Run("platform admin bypasses ownership", func(t *testing.T) {
		_, err := service.Update(adminCtx(), seeded.ID, input)
		assert.NoError(t, err)
	})
}

func TestUpdateNeverTouchesSiblings(t *testing.T) {
	service, repo, _ := newTestService()

	created, err := service.Create(venueCtx("venue-1"), submission("2026-09-04T19:30", "weekly"))
	require.NoError(t, err)

	input := submission("2026-09-04T21:00", "none")
	input.Title = "Special Edition"
	_, err = service.Update(venueCtx("venue-1"), created[0].ID, input)
	require.NoError(t, err)

	renamed := 0
	for _, e := range repo.All() {
		if e.Title == "Special Edition" {
			renamed++
		}
	}
	assert.Equal(t, 1, renamed)
}

func TestDeleteChecksOwnership(t *testing.T) {
	service, repo, _ := newTestService()

	seeded, err := repo.Create(context.Background(), Event{Title: "Quiz Night", VenueID: "venue-1"})
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(venueCtx("venue-2"), seeded.ID), ErrUnauthorized)
	assert.NoError(t, service.Delete(venueCtx("venue-1"), seeded.ID))
	assert.Equal(t, 0, repo.Len())
}

func TestDeleteManyScopesToOwner(t *testing.T) {
	service, repo, _ := newTestService()

	mine, err := repo.Create(context.Background(), Event{Title: "Mine", VenueID: "venue-1"})
	require.NoError(t, err)
	theirs, err := repo.Create(context.Background(), Event{Title: "Theirs", VenueID: "venue-2"})
	require.NoError(t, err)

	deleted, err := service.DeleteMany(venueCtx("venue-1"), []string{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 1, repo.Len())

	_, err = repo.GetByID(context.Background(), theirs.ID)
	assert.NoError(t, err)
}

func TestDeleteManyAsAdmin(t *testing.T) {
	service, repo, _ := newTestService()

	a, err := repo.Create(context.Background(), Event{Title: "A", VenueID: "venue-1"})
	require.NoError(t, err)
	b, err := repo.Create(context.Background(), Event{Title: "B", VenueID: "venue-2"})
	require.NoError(t, err)

	deleted, err := service.DeleteMany(adminCtx(), []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, 0, repo.Len())
}

func TestUpcomingHidesPastEvents(t *testing.T) {
	service, repo, clock := newTestService()
	clock.SetNow(time.Date(2026, 9, 10, 0, 0, 0, 0, time.Local))

	_, err := repo.Create(context.Background(), Event{
		Title: "Yesterday", VenueID: "venue-1",
		Date: time.Date(2026, 9, 9, 19, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), Event{
		Title: "Tomorrow", VenueID: "venue-1",
		Date: time.Date(2026, 9, 11, 19, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)

	events, err := service.Upcoming(context.Background(), "", "", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Tomorrow", events[0].Title)
}
