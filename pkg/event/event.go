package event

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("event not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrInvalidInput = errors.New("invalid input")
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Event is a single dated happening belonging to one venue. Instances
// generated from one recurring submission share a GroupID and carry the
// recurrence mode; one-off events leave both empty.
type Event struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	Category    string
	BookingURL  string
	GroupID     string
	Recurrence  Recurrence
	VenueID     string
	VenueName   string
	CreatedAt   time.Time
}

// Input carries the fields of an event submission after form decoding,
// validated before any expansion or write happens.
type Input struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required"`
	Category    string `json:"category"`
	Recurrence  string `json:"recurrence" validate:"omitempty,oneof=none weekly monthly"`
	BookingURL  string `json:"bookingUrl" validate:"omitempty,url"`
}
