package venue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	Create(ctx context.Context, venue Venue) (Venue, error)
	GetByID(ctx context.Context, id string) (Venue, error)
	GetByEmail(ctx context.Context, ownerEmail string) (Venue, error)
	FindByName(ctx context.Context, name string) (Venue, error)
	List(ctx context.Context) ([]Venue, error)
	Update(ctx context.Context, venue Venue) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *RepositoryImpl) Create(ctx context.Context, venue Venue) (Venue, error) {
	if venue.ID == "" {
		venue.ID = uuid.NewString()
	}
	now := time.Now()
	venue.CreatedAt = now
	venue.UpdatedAt = now

	query := `INSERT INTO venue (id, name, location, type, owner_email, password, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.getQueryer().ExecContext(ctx, query,
		venue.ID,
		venue.Name,
		venue.Location,
		venue.Type,
		venue.OwnerEmail,
		venue.PasswordHash,
		now.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Venue{}, ErrEmailInUse
		}
		err := fmt.Errorf("could not insert venue: %w", err)
		log.Error(err)
		return Venue{}, err
	}

	return venue, nil
}

const venueColumns = `v.id, v.name, v.location, v.type, v.owner_email, v.password, v.created_at, v.updated_at`

func (r *RepositoryImpl) GetByID(ctx context.Context, id string) (Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venue v WHERE v.id = ?`
	return r.scanOne(r.getQueryer().QueryRowContext(ctx, query, id))
}

func (r *RepositoryImpl) GetByEmail(ctx context.Context, ownerEmail string) (Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venue v WHERE v.owner_email = ?`
	return r.scanOne(r.getQueryer().QueryRowContext(ctx, query, ownerEmail))
}

// FindByName looks a venue up by exact name match. Used by the CSV import
// to reconcile incoming rows against existing venues.
func (r *RepositoryImpl) FindByName(ctx context.Context, name string) (Venue, error) {
	query := `SELECT ` + venueColumns + ` FROM venue v WHERE v.name = ? LIMIT 1`
	return r.scanOne(r.getQueryer().QueryRowContext(ctx, query, name))
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Venue, error) {
	query := `SELECT ` + venueColumns + `, COUNT(e.id)
				FROM venue v
				LEFT JOIN event e ON e.venue_id = v.id
				GROUP BY v.id
				ORDER BY v.name`

	rows, err := r.getQueryer().QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query venues: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	venues := make([]Venue, 0, 10)
	for rows.Next() {
		var v Venue
		var createdAtMillis, updatedAtMillis int64
		err := rows.Scan(&v.ID, &v.Name, &v.Location, &v.Type, &v.OwnerEmail, &v.PasswordHash,
			&createdAtMillis, &updatedAtMillis, &v.EventCount)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		v.CreatedAt = time.UnixMilli(createdAtMillis)
		v.UpdatedAt = time.UnixMilli(updatedAtMillis)
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, venue Venue) error {
	query := `UPDATE venue SET name = ?, location = ?, type = ?, owner_email = ?, updated_at = ? WHERE id = ?`
	result, err := r.getQueryer().ExecContext(ctx, query,
		venue.Name,
		venue.Location,
		venue.Type,
		venue.OwnerEmail,
		time.Now().UnixMilli(),
		venue.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailInUse
		}
		err := fmt.Errorf("could not update venue: %w", err)
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

func (r *RepositoryImpl) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `UPDATE venue SET password = ?, updated_at = ? WHERE id = ?`
	result, err := r.getQueryer().ExecContext(ctx, query, passwordHash, time.Now().UnixMilli(), id)
	if err != nil {
		err := fmt.Errorf("could not update venue password: %w", err)
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

// Delete removes the venue and all of its events in one transaction. The
// schema also declares ON DELETE CASCADE; the explicit delete keeps the
// cascade visible and working even when foreign keys are disabled.
func (r *RepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.WithTransaction(ctx, func(repo Repository) error {
		txRepo := repo.(*RepositoryImpl)
		if _, err := txRepo.getQueryer().ExecContext(ctx, `DELETE FROM event WHERE venue_id = ?`, id); err != nil {
			err := fmt.Errorf("could not delete venue events: %w", err)
			log.Error(err)
			return err
		}
		result, err := txRepo.getQueryer().ExecContext(ctx, `DELETE FROM venue WHERE id = ?`, id)
		if err != nil {
			err := fmt.Errorf("could not delete venue: %w", err)
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
	})
}

func (r *RepositoryImpl) scanOne(row *sql.Row) (Venue, error) {
	var v Venue
	var createdAtMillis, updatedAtMillis int64
	err := row.Scan(&v.ID, &v.Name, &v.Location, &v.Type, &v.OwnerEmail, &v.PasswordHash,
		&createdAtMillis, &updatedAtMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return Venue{}, ErrNotFound
	} else if err != nil {
		err := fmt.Errorf("could not scan venue: %w", err)
		log.Error(err)
		return Venue{}, err
	}
	v.CreatedAt = time.UnixMilli(createdAtMillis)
	v.UpdatedAt = time.UnixMilli(updatedAtMillis)
	return v, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
