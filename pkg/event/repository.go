package event

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
	Create(ctx context.Context, event Event) (Event, error)
	GetByID(ctx context.Context, id string) (Event, error)
	// FindByNaturalKey locates an event by its reconciliation key: owning
	// venue, exact title, and a date falling inside [dayStart, dayEnd].
	FindByNaturalKey(ctx context.Context, venueID, title string, dayStart, dayEnd time.Time) (Event, error)
	Update(ctx context.Context, event Event) error
	Delete(ctx context.Context, id string) error
	// DeleteMany removes the given events. When venueID is non-empty the
	// delete is scoped to that venue so owners cannot touch foreign events.
	DeleteMany(ctx context.Context, ids []string, venueID string) (int64, error)
	ListUpcoming(ctx context.Context, from time.Time, query, category string, limit int) ([]Event, error)
	ListByVenue(ctx context.Context, venueID string) ([]Event, error)
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

func (r *RepositoryImpl) Create(ctx context.Context, event Event) (Event, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = time.Now()

	query := `INSERT INTO event (id, title, description, date, category, booking_url, group_id, recurrence, venue_id, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.getQueryer().ExecContext(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Date.UnixMilli(),
		event.Category,
		nullable(event.BookingURL),
		nullable(event.GroupID),
		nullable(string(event.Recurrence)),
		event.VenueID,
		event.CreatedAt.UnixMilli(),
	)
	if err != nil {
		err := fmt.Errorf("could not insert event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

const eventColumns = `e.id, e.title, e.description, e.date, e.category, e.booking_url, e.group_id, e.recurrence, e.venue_id, e.created_at`

func (r *RepositoryImpl) GetByID(ctx context.Context, id string) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event e WHERE e.id = ?`
	row := r.getQueryer().QueryRowContext(ctx, query, id)
	return scanEvent(row.Scan)
}

func (r *RepositoryImpl) FindByNaturalKey(ctx context.Context, venueID, title string, dayStart, dayEnd time.Time) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event e
				WHERE e.venue_id = ? AND e.title = ? AND e.date >= ? AND e.date <= ?
				LIMIT 1`
	row := r.getQueryer().QueryRowContext(ctx, query, venueID, title, dayStart.UnixMilli(), dayEnd.UnixMilli())
	return scanEvent(row.Scan)
}

func (r *RepositoryImpl) Update(ctx context.Context, event Event) error {
	query := `UPDATE event SET title = ?, description = ?, date = ?, category = ?, booking_url = ? WHERE id = ?`
	result, err := r.getQueryer().ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Date.UnixMilli(),
		event.Category,
		nullable(event.BookingURL),
		event.ID,
	)
	if err != nil {
		err := fmt.Errorf("could not update event: %w", err)
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
	result, err := r.getQueryer().ExecContext(ctx, `DELETE FROM event WHERE id = ?`, id)
	if err != nil {
		err := fmt.Errorf("could not delete event: %w", err)
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

func (r *RepositoryImpl) DeleteMany(ctx context.Context, ids []string, venueID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := `DELETE FROM event WHERE id IN (` + placeholders + `)`
	args := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	if venueID != "" {
		query += ` AND venue_id = ?`
		args = append(args, venueID)
	}

	result, err := r.getQueryer().ExecContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not delete events: %w", err)
		log.Error(err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *RepositoryImpl) ListUpcoming(ctx context.Context, from time.Time, search, category string, limit int) ([]Event, error) {
	query := `SELECT ` + eventColumns + `, v.name FROM event e
				JOIN venue v ON v.id = e.venue_id
				WHERE e.date >= ?`
	args := []interface{}{from.UnixMilli()}

	if search != "" {
		// LIKE is case-insensitive for ASCII in SQLite, which is the
		// substring-match behavior the public search relies on.
		query += ` AND (e.title LIKE ? OR e.description LIKE ?)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	if category != "" {
		query += ` AND e.category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY e.date LIMIT ?`
	args = append(args, limit)

	rows, err := r.getQueryer().QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows.Scan, withVenueName)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *RepositoryImpl) ListByVenue(ctx context.Context, venueID string) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event e WHERE e.venue_id = ? ORDER BY e.date`
	rows, err := r.getQueryer().QueryContext(ctx, query, venueID)
	if err != nil {
		err := fmt.Errorf("could not query venue events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

const withVenueName = true

func scanEvent(scan func(...interface{}) error, includeVenueName ...bool) (Event, error) {
	var e Event
	var dateMillis, createdAtMillis int64
	var bookingURL, groupID, recurrence sql.NullString

	dest := []interface{}{&e.ID, &e.Title, &e.Description, &dateMillis, &e.Category,
		&bookingURL, &groupID, &recurrence, &e.VenueID, &createdAtMillis}
	if len(includeVenueName) > 0 && includeVenueName[0] {
		dest = append(dest, &e.VenueName)
	}

	err := scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	} else if err != nil {
		err := fmt.Errorf("could not scan event: %w", err)
		log.Error(err)
		return Event{}, err
	}

	e.Date = time.UnixMilli(dateMillis)
	e.CreatedAt = time.UnixMilli(createdAtMillis)
	e.BookingURL = bookingURL.String
	e.GroupID = groupID.String
	e.Recurrence = Recurrence(recurrence.String)
	return e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
