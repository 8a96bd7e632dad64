package media

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RepositoryStub is an in-memory Repository for tests.
type RepositoryStub struct {
	mu    sync.RWMutex
	items map[string]Media
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{items: make(map[string]Media)}
}

func (r *RepositoryStub) Create(ctx context.Context, media Media) (Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if media.ID == "" {
		media.ID = uuid.NewString()
	}
	media.CreatedAt = time.Now()
	r.items[media.ID] = media
	return media, nil
}

func (r *RepositoryStub) GetByID(ctx context.Context, id string) (Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[id]
	if !ok {
		return Media{}, ErrNotFound
	}
	return m, nil
}

func (r *RepositoryStub) List(ctx context.Context, mediaType string) ([]Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Media, 0, len(r.items))
	for _, m := range r.items {
		if mediaType != "" && m.Type != mediaType {
			continue
		}
		items = append(items, m)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *RepositoryStub) UpdateLabel(ctx context.Context, id string, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	m.Label = label
	r.items[id] = m
	return nil
}

func (r *RepositoryStub) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// BlobStoreStub keeps blobs in a map, keyed by the URL it hands out.
type BlobStoreStub struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewBlobStoreStub() *BlobStoreStub {
	return &BlobStoreStub{blobs: make(map[string][]byte)}
}

func (s *BlobStoreStub) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	url := "stub://" + key
	s.blobs[url] = buf.Bytes()
	return url, nil
}

func (s *BlobStoreStub) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, url)
	return nil
}

func (s *BlobStoreStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
