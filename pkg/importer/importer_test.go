package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whatson/whatson/internal/config"
	"github.com/whatson/whatson/internal/event_bus"
	"github.com/whatson/whatson/pkg/event"
	"github.com/whatson/whatson/pkg/venue"
	"golang.org/x/crypto/bcrypt"
)

func newTestImporter() (*Service, *venue.RepositoryStub, *event.RepositoryStub) {
	venues := venue.NewRepositoryStub()
	events := event.NewRepositoryStub()
	cfg := config.Import{DefaultLocation: "Romiley", PlaceholderDomain: "placeholder.com"}
	return NewService(venues, events, cfg, event_bus.NewEventBus()), venues, events
}

const sampleCSV = `Date,Venue,Time,Category,Title,Description,BookingURL
04/09/2026,The Swan,19:30,Music,Jazz Night,An evening of jazz,https://example.com/jazz
05/09/2026,The Swan,20:00,Community,Quiz Night,Weekly pub quiz,
`

func TestImportCreatesVenuesAndEvents(t *testing.T) {
	service, venues, events := newTestImporter()

	result, err := service.Import(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, result.EventsProcessed)
	assert.Equal(t, 1, result.VenuesCreated)
	assert.Equal(t, 0, result.Skipped)

	created, err := venues.FindByName(context.Background(), "The Swan")
	require.NoError(t, err)
	assert.Equal(t, "Romiley", created.Location)
	assert.Equal(t, "Other", created.Type)
	assert.Equal(t, "the-swan@placeholder.com", created.OwnerEmail)

	assert.Equal(t, 2, events.Len())
	stored := events.All()
	assert.Equal(t, "Jazz Night", stored[0].Title)
	assert.Equal(t, time.Date(2026, 9, 4, 19, 30, 0, 0, time.Local), stored[0].Date)
	assert.Equal(t, "https://example.com/jazz", stored[0].BookingURL)
	assert.Equal(t, created.ID, stored[0].VenueID)
}

// Auto-created venues must not be reachable with a guessable credential; a
// platform admin has to reset the password before the owner can log in.
func TestImportedVenueCredentialIsUnguessable(t *testing.T) {
	service, venues, _ := newTestImporter()

	_, err := service.Import(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	created, err := venues.FindByName(context.Background(), "The Swan")
	require.NoError(t, err)

	for _, guess := range []string{"temp123", "password", "the-swan", ""} {
		assert.Error(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(guess)))
	}
}

func TestImportIsIdempotent(t *testing.T) {
	service, _, events := newTestImporter()

	first, err := service.Import(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 1, first.VenuesCreated)

	second, err := service.Import(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, second.EventsProcessed)
	assert.Equal(t, 0, second.VenuesCreated)
	assert.Equal(t, 2, events.Len())
}

// Re-importing the same event on the same day with a corrected time updates
// the existing record instead of duplicating it.
func TestImportReconcilesSameDay(t *testing.T) {
	service, _, events := newTestImporter()

	_, err := service.Import(context.Background(),
		strings.NewReader("04/09/2026,The Swan,19:00,Music,Jazz Night,First draft,\n"))
	require.NoError(t, err)

	_, err = service.Import(context.Background(),
		strings.NewReader("04/09/2026,The Swan,21:00,Music,Jazz Night,Corrected,\n"))
	require.NoError(t, err)

	require.Equal(t, 1, events.Len())
	stored := events.All()[0]
	assert.Equal(t, time.Date(2026, 9, 4, 21, 0, 0, 0, time.Local), stored.Date)
	assert.Equal(t, "Corrected", stored.Description)
}

func TestImportSkipsBadLines(t *testing.T) {
	service, _, events := newTestImporter()

	csv := strings.Join([]string{
		"Date,Venue,Time,Category,Title",
		"",
		"04/09/2026,The Swan,19:30,Music,Jazz Night",
		"too,few,fields",
		"not-a-date,The Swan,19:30,Music,Broken Date",
		"05/09/2026,The Swan,,Music,Missing Time",
	}, "\n")

	result, err := service.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.EventsProcessed)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 1, events.Len())
}

func TestImportNilReader(t *testing.T) {
	service, _, _ := newTestImporter()

	_, err := service.Import(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestResultMessage(t *testing.T) {
	result := Result{EventsProcessed: 12, VenuesCreated: 3, Skipped: 2}
	assert.Equal(t, "Import complete. Processed 12 events and created 3 new venues. (2 skipped)", result.Message())
}
