package venue

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("venue not found")
	ErrEmailInUse   = errors.New("owner email already in use")
	ErrInvalidInput = errors.New("invalid input")
)

// Venue is a business (pub, restaurant...) that owns and publishes events.
// The owner email doubles as the login identity and is globally unique.
type Venue struct {
	ID           string
	Name         string
	Location     string
	Type         string
	OwnerEmail   string
	PasswordHash string
	EventCount   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Input carries the fields of a venue registration or update submitted by
// the platform admin.
type Input struct {
	Name       string `json:"name" validate:"required"`
	Location   string `json:"location"`
	Type       string `json:"type"`
	OwnerEmail string `json:"ownerEmail" validate:"required,email"`
	Password   string `json:"password" validate:"omitempty,min=8"`
}
