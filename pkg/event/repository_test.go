package event

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whatson/whatson/internal/test_utils"
)

func insertVenue(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO venue (id, name, location, type, owner_email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, "Romiley", "Pub", id+"@example.com", "hash", 0, 0)
	require.NoError(t, err)
}

func TestRepositoryCreateAndGetEvent(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	insertVenue(t, db, "venue-1", "The Swan")

	date := time.Date(2026, 9, 4, 19, 30, 0, 0, time.Local)
	created, err := repo.Create(ctx, Event{
		Title:      "Quiz Night",
		Date:       date,
		Category:   "Community",
		BookingURL: "https://example.com/book",
		VenueID:    "venue-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quiz Night", stored.Title)
	assert.Equal(t, date.UnixMilli(), stored.Date.UnixMilli())
	assert.Equal(t, "https://example.com/book", stored.BookingURL)
	assert.Empty(t, stored.GroupID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryFindByNaturalKey(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	insertVenue(t, db, "venue-1", "The Swan")
	insertVenue(t, db, "venue-2", "The Crown")

	created, err := repo.Create(ctx, Event{
		Title:   "Quiz Night",
		Date:    time.Date(2026, 9, 4, 19, 30, 0, 0, time.Local),
		VenueID: "venue-1",
	})
	require.NoError(t, err)

	day := time.Date(2026, 9, 4, 0, 0, 0, 0, time.Local)
	dayEnd := time.Date(2026, 9, 4, 23, 59, 59, int(999*time.Millisecond), time.Local)

	t.Run("found within the day window", func(t *testing.T) {
		found, err := repo.FindByNaturalKey(ctx, "venue-1", "Quiz Night", day, dayEnd)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("different day misses", func(t *testing.T) {
		_, err := repo.FindByNaturalKey(ctx, "venue-1", "Quiz Night", day.AddDate(0, 0, 1), dayEnd.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("different title misses", func(t *testing.T) {
		_, err := repo.FindByNaturalKey(ctx, "venue-1", "Karaoke", day, dayEnd)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("different venue misses", func(t *testing.T) {
		_, err := repo.FindByNaturalKey(ctx, "venue-2", "Quiz Night", day, dayEnd)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepositoryDeleteManyScoped(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	insertVenue(t, db, "venue-1", "The Swan")
	insertVenue(t, db, "venue-2", "The Crown")

	mine, err := repo.Create(ctx, Event{Title: "Mine", Date: time.Now(), VenueID: "venue-1"})
	require.NoError(t, err)
	theirs, err := repo.Create(ctx, Event{Title: "Theirs", Date: time.Now(), VenueID: "venue-2"})
	require.NoError(t, err)

	deleted, err := repo.DeleteMany(ctx, []string{mine.ID, theirs.ID}, "venue-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByID(ctx, theirs.ID)
	assert.NoError(t, err)

	deleted, err = repo.DeleteMany(ctx, []string{theirs.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = repo.DeleteMany(ctx, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}

func TestRepositoryListUpcoming(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	insertVenue(t, db, "venue-1", "The Swan")

	seed := func(title, category string, date time.Time) {
		_, err := repo.Create(ctx, Event{Title: title, Category: category, Date: date, VenueID: "venue-1"})
		require.NoError(t, err)
	}
	seed("Jazz Night", "Music", time.Date(2026, 9, 5, 20, 0, 0, 0, time.Local))
	seed("Quiz Night", "Community", time.Date(2026, 9, 6, 19, 30, 0, 0, time.Local))
	seed("Old Jazz Night", "Music", time.Date(2026, 8, 1, 20, 0, 0, 0, time.Local))

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.Local)

	t.Run("past events excluded, sorted by date", func(t *testing.T) {
		events, err := repo.ListUpcoming(ctx, from, "", "", 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "Jazz Night", events[0].Title)
		assert.Equal(t, "The Swan", events[0].VenueName)
	})

	t.Run("search matches case-insensitively", func(t *testing.T) {
		events, err := repo.ListUpcoming(ctx, from, "jazz", "", 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Jazz Night", events[0].Title)
	})

	t.Run("category filter", func(t *testing.T) {
		events, err := repo.ListUpcoming(ctx, from, "", "Community", 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Quiz Night", events[0].Title)
	})

	t.Run("limit applies", func(t *testing.T) {
		events, err := repo.ListUpcoming(ctx, from, "", "", 1)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

func TestRepositoryTransactionRollsBack(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	insertVenue(t, db, "venue-1", "The Swan")

	err := repo.WithTransaction(ctx, func(txRepo Repository) error {
		if _, err := txRepo.Create(ctx, Event{Title: "Doomed", Date: time.Now(), VenueID: "venue-1"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM event`).Scan(&count))
	assert.Equal(t, 0, count)
}
