package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	log "github.com/sirupsen/logrus"
	"github.com/whatson/whatson/internal/utils"
)

type Service struct {
	repo     Repository
	store    BlobStore
	clock    utils.Clock
	maxBytes int64
}

func NewService(repo Repository, store BlobStore, clock utils.Clock, maxBytes int64) *Service {
	return &Service{repo: repo, store: store, clock: clock, maxBytes: maxBytes}
}

// Upload validates and stores an image. The content type is sniffed from the
// bytes rather than trusted from the request. Non-images and files over the
// configured size limit are rejected before anything is written.
func (s *Service) Upload(ctx context.Context, filename string, content io.Reader, mediaType, label string) (Media, error) {
	if mediaType == "" {
		mediaType = "general"
	}

	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return Media{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return Media{}, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Media{}, ErrNotImage
	}

	key := fmt.Sprintf("%s/%d-%s", mediaType, s.clock.Now().UnixMilli(), filepath.Base(filename))
	url, err := s.store.Save(ctx, key, bytes.NewReader(data))
	if err != nil {
		return Media{}, err
	}

	stored, err := s.repo.Create(ctx, Media{
		URL:      url,
		Filename: filepath.Base(filename),
		MimeType: mtype.String(),
		Size:     int64(len(data)),
		Type:     mediaType,
		Label:    label,
	})
	if err != nil {
		// Don't leave an orphaned blob behind when the metadata write fails.
		if delErr := s.store.Delete(ctx, url); delErr != nil {
			log.Errorf("failed to clean up blob after failed upload: %v", delErr)
		}
		return Media{}, err
	}

	log.Infof("media %s uploaded (%s, %d bytes)", stored.ID, stored.MimeType, stored.Size)
	return stored, nil
}

func (s *Service) List(ctx context.Context, mediaType string) ([]Media, error) {
	return s.repo.List(ctx, mediaType)
}

// Delete removes the blob first and the metadata row second, so a failure
// never leaves a row pointing at a missing file for longer than necessary.
func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, m.URL); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) UpdateLabel(ctx context.Context, id string, label string) error {
	return s.repo.UpdateLabel(ctx, id, label)
}
