package event

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	weeklyOccurrences  = 12 // further instances after the seed, one per week
	monthlyOccurrences = 6  // further instances after the seed, one per month
)

var validate = validator.New()

// Expand validates a submission and produces the concrete set of event
// instances to persist: the seed instance at the submitted date plus, for
// recurring modes, the mechanically derived follow-ups. All instances of a
// recurring submission share one freshly generated group id.
func Expand(input Input, venueID string) ([]Event, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	start, err := parseDate(input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	recurrence := Recurrence(input.Recurrence)
	if recurrence == "" {
		recurrence = RecurrenceNone
	}
	category := input.Category
	if category == "" {
		category = "General"
	}

	seed := Event{
		Title:       input.Title,
		Description: input.Description,
		Date:        start,
		Category:    category,
		BookingURL:  input.BookingURL,
		VenueID:     venueID,
	}

	if recurrence == RecurrenceNone {
		return []Event{seed}, nil
	}

	seed.GroupID = uuid.NewString()
	seed.Recurrence = recurrence

	var instances []Event
	switch recurrence {
	case RecurrenceWeekly:
		instances = make([]Event, 0, weeklyOccurrences+1)
		instances = append(instances, seed)
		for i := 1; i <= weeklyOccurrences; i++ {
			next := seed
			next.Date = start.AddDate(0, 0, 7*i)
			instances = append(instances, next)
		}
	case RecurrenceMonthly:
		instances = make([]Event, 0, monthlyOccurrences+1)
		instances = append(instances, seed)
		for i := 1; i <= monthlyOccurrences; i++ {
			next := seed
			next.Date = addMonthsClamp(start, i)
			instances = append(instances, next)
		}
	}

	return instances, nil
}

// parseDate accepts RFC 3339 or the zone-less datetime-local form produced
// by HTML date inputs, interpreted as local wall-clock time.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", value, time.Local)
}

// addMonthsClamp adds calendar months keeping the day-of-month and wall-clock
// time. When the target month is shorter the day clamps to its last day
// (Jan 31 + 1 month = Feb 28), unlike time.AddDate which would normalize
// into the following month.
func addMonthsClamp(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
