package media

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("media not found")
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("file too large")
)

// Media is an uploaded image asset, independent of venues and events;
// presentation layers reference it only by URL. Type is a free-text tag
// (background/venue/event/general).
type Media struct {
	ID        string
	URL       string
	Filename  string
	MimeType  string
	Size      int64
	Type      string
	Label     string
	CreatedAt time.Time
}
