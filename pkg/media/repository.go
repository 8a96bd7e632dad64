package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Create(ctx context.Context, media Media) (Media, error)
	GetByID(ctx context.Context, id string) (Media, error)
	// List returns media newest first, optionally filtered by type tag.
	List(ctx context.Context, mediaType string) ([]Media, error)
	UpdateLabel(ctx context.Context, id string, label string) error
	Delete(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, media Media) (Media, error) {
	if media.ID == "" {
		media.ID = uuid.NewString()
	}
	media.CreatedAt = time.Now()

	query := `INSERT INTO media (id, url, filename, mime_type, size, type, label, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		media.ID,
		media.URL,
		media.Filename,
		media.MimeType,
		media.Size,
		media.Type,
		sql.NullString{String: media.Label, Valid: media.Label != ""},
		media.CreatedAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not insert media: %w", err)
		log.Error(err)
		return Media{}, err
	}
	return media, nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id string) (Media, error) {
	query := `SELECT id, url, filename, mime_type, size, type, label, created_at FROM media WHERE id = ?`

	var m Media
	var label sql.NullString
	var createdAtMillis int64
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&m.ID, &m.URL, &m.Filename, &m.MimeType, &m.Size, &m.Type, &label, &createdAtMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return Media{}, ErrNotFound
	} else if err != nil {
		err := fmt.Errorf("could not scan media: %w", err)
		log.Error(err)
		return Media{}, err
	}
	m.Label = label.String
	m.CreatedAt = time.UnixMilli(createdAtMillis)
	return m, nil
}

func (r *RepositoryImpl) List(ctx context.Context, mediaType string) ([]Media, error) {
	query := `SELECT id, url, filename, mime_type, size, type, label, created_at FROM media`
	args := []interface{}{}
	if mediaType != "" {
		query += ` WHERE type = ?`
		args = append(args, mediaType)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query media: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	items := make([]Media, 0, 10)
	for rows.Next() {
		var m Media
		var label sql.NullString
		var createdAtMillis int64
		if err := rows.Scan(&m.ID, &m.URL, &m.Filename, &m.MimeType, &m.Size, &m.Type, &label, &createdAtMillis); err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		m.Label = label.String
		m.CreatedAt = time.UnixMilli(createdAtMillis)
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *RepositoryImpl) UpdateLabel(ctx context.Context, id string, label string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE media SET label = ? WHERE id = ?`,
		sql.NullString{String: label, Valid: label != ""}, id)
	if err != nil {
		err := fmt.Errorf("could not update media label: %w", err)
		log.Error(err)
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		err := fmt.Errorf("could not delete media: %w", err)
		log.Error(err)
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
