package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/whatson/whatson/internal/config"
	"github.com/whatson/whatson/internal/event_bus"
	"github.com/whatson/whatson/pkg/event"
	"github.com/whatson/whatson/pkg/venue"
	"golang.org/x/crypto/bcrypt"
)

var ErrNoFile = errors.New("no file uploaded")

// Result aggregates the counters of one import run. Individual bad lines
// never abort the batch; partial success is the expected steady state.
type Result struct {
	EventsProcessed int
	VenuesCreated   int
	Skipped         int
}

func (r Result) Message() string {
	return fmt.Sprintf("Import complete. Processed %d events and created %d new venues. (%d skipped)",
		r.EventsProcessed, r.VenuesCreated, r.Skipped)
}

// Service reconciles uploaded CSV content against the venue and event
// stores. Expected column order: Date, Venue, Time, Category, Title,
// Description, BookingURL (last two optional).
type Service struct {
	venues venue.Repository
	events event.Repository
	cfg    config.Import
	bus    *event_bus.EventBus
}

func NewService(venues venue.Repository, events event.Repository, cfg config.Import, bus *event_bus.EventBus) *Service {
	return &Service{venues: venues, events: events, cfg: cfg, bus: bus}
}

// Import processes the file line by line, so large spreadsheets never have
// to be held in memory as a parsed collection.
func (s *Service) Import(ctx context.Context, r io.Reader) (Result, error) {
	if r == nil {
		return Result{}, ErrNoFile
	}

	var result Result
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isHeader(line) {
			continue
		}

		cols := splitLine(line)
		// Expected: Date, Venue, Time, Category, Title, Description, BookingURL
		if len(cols) < 5 {
			log.Warnf("skipping invalid line %d: %s", lineNo, line)
			result.Skipped++
			continue
		}

		dateStr := cols[0]
		venueName := cols[1]
		timeStr := cols[2]
		category := cols[3]
		title := cols[4]
		description := ""
		if len(cols) > 5 {
			description = cols[5]
		}
		bookingURL := ""
		if len(cols) > 6 {
			bookingURL = cols[6]
		}

		if dateStr == "" || venueName == "" || timeStr == "" || category == "" || title == "" {
			log.Warnf("skipping incomplete line %d", lineNo)
			result.Skipped++
			continue
		}

		v, created, err := s.findOrCreateVenue(ctx, venueName)
		if err != nil {
			log.Errorf("error resolving venue on line %d: %v", lineNo, err)
			result.Skipped++
			continue
		}
		if created {
			result.VenuesCreated++
		}

		eventDate, ok := parseStrictDate(dateStr, timeStr)
		if !ok {
			log.Warnf("invalid date/time on line %d: %s %s", lineNo, dateStr, timeStr)
			result.Skipped++
			continue
		}

		if err := s.reconcileEvent(ctx, v.ID, title, description, category, bookingURL, eventDate); err != nil {
			log.Errorf("error processing line %d: %v", lineNo, err)
			result.Skipped++
			continue
		}
		result.EventsProcessed++
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read import file: %w", err)
	}

	log.Info(result.Message())
	if err := s.bus.Publish(event_bus.NewEvent(event_bus.TopicImportCompleted, event_bus.ImportCompleted{
		EventsProcessed: result.EventsProcessed,
		VenuesCreated:   result.VenuesCreated,
		Skipped:         result.Skipped,
	})); err != nil {
		log.Errorf("failed to publish import completed event: %v", err)
	}

	return result, nil
}

// findOrCreateVenue resolves a venue by exact (trimmed) name, creating it
// with import defaults when absent. Auto-created venues get a placeholder
// owner email derived from the name slug and an unguessable random
// credential; a platform admin must reset the password before the owner can
// log in. Two concurrent imports can race here: the store's unique email
// constraint rejects the loser, which surfaces as a per-line error.
func (s *Service) findOrCreateVenue(ctx context.Context, name string) (venue.Venue, bool, error) {
	name = strings.TrimSpace(name)

	v, err := s.venues.FindByName(ctx, name)
	if err == nil {
		return v, false, nil
	}
	if !errors.Is(err, venue.ErrNotFound) {
		return venue.Venue{}, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return venue.Venue{}, false, fmt.Errorf("failed to hash placeholder password: %w", err)
	}

	created, err := s.venues.Create(ctx, venue.Venue{
		Name:         name,
		Location:     s.cfg.DefaultLocation,
		Type:         "Other",
		OwnerEmail:   fmt.Sprintf("%s@%s", venue.Slugify(name), s.cfg.PlaceholderDomain),
		PasswordHash: string(hash),
	})
	if err != nil {
		return venue.Venue{}, false, err
	}
	log.Infof("import created venue %q (%s)", created.Name, created.ID)

	if err := s.bus.Publish(event_bus.NewEvent(event_bus.TopicVenueCreated, event_bus.VenueCreated{
		ID:       created.ID,
		Name:     created.Name,
		Imported: true,
	})); err != nil {
		log.Errorf("failed to publish venue created event: %v", err)
	}

	return created, true, nil
}

// reconcileEvent upserts by the natural key (venue, title, calendar day):
// an existing event in that day window is updated in place (the time of day
// may shift), otherwise a new one is created.
func (s *Service) reconcileEvent(ctx context.Context, venueID, title, description, category, bookingURL string, date time.Time) error {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, int(999*time.Millisecond), date.Location())

	existing, err := s.events.FindByNaturalKey(ctx, venueID, title, dayStart, dayEnd)
	if err != nil && !errors.Is(err, event.ErrNotFound) {
		return err
	}

	if err == nil {
		existing.Description = description
		existing.Category = category
		existing.BookingURL = bookingURL
		existing.Date = date
		return s.events.Update(ctx, existing)
	}

	_, err = s.events.Create(ctx, event.Event{
		Title:       title,
		Description: description,
		Date:        date,
		Category:    category,
		BookingURL:  bookingURL,
		VenueID:     venueID,
	})
	return err
}
