package auth

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const (
	venueKey contextKey = "venueId"
	adminKey contextKey = "platformAdmin"
)

var ErrNoVenue = errors.New("no venue in context")

// WithVenue returns a context carrying the authenticated venue id.
func WithVenue(ctx context.Context, venueID string) context.Context {
	return context.WithValue(ctx, venueKey, venueID)
}

// CurrentVenueID retrieves the authenticated venue id from the context.
// Returns ErrNoVenue if the request was not made by a logged-in venue owner.
func CurrentVenueID(ctx context.Context) (string, error) {
	venueID, ok := ctx.Value(venueKey).(string)
	if !ok || venueID == "" {
		log.Trace("venue not found in context")
		return "", ErrNoVenue
	}
	return venueID, nil
}

// WithPlatformAdmin returns a context marked as acting with platform-admin privilege.
func WithPlatformAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey, true)
}

func IsPlatformAdmin(ctx context.Context) bool {
	isAdmin, ok := ctx.Value(adminKey).(bool)
	return ok && isAdmin
}
