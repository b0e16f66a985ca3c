// Package pins persists point records and notifies connected clients
// through the presence dispatcher when they change.
package pins

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mapcollab/boardd/internal/domain"
)

// Store is the relational pin store. All state except pins is
// process-memory-only; pins are the one thing that survives a restart.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("pins: open DB: %w", err)
	}

	ctx := context.Background()

	// WAL for concurrent readers, busy timeout against "database is locked".
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pins: set WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pins: enable FK: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pins: set busy_timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pins: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT,
		color      TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS pins (
		id             TEXT PRIMARY KEY,
		board_id       TEXT NOT NULL,
		lat            REAL NOT NULL,
		lng            REAL NOT NULL,
		title          TEXT,
		created_by     TEXT NOT NULL REFERENCES users(id),
		color_snapshot TEXT,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_pins_board ON pins(board_id, created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateParams are the caller-supplied fields of a new pin.
type CreateParams struct {
	BoardID       domain.BoardID
	Lat           float64
	Lng           float64
	Title         string
	CreatedBy     domain.UserID
	ColorSnapshot string
}

// Create inserts a pin, creating the referenced user row when missing.
func (s *Store) Create(ctx context.Context, p CreateParams) (domain.Pin, error) {
	pin := domain.Pin{
		ID:            uuid.NewString(),
		BoardID:       p.BoardID,
		Lat:           p.Lat,
		Lng:           p.Lng,
		Title:         p.Title,
		CreatedBy:     p.CreatedBy,
		ColorSnapshot: p.ColorSnapshot,
		CreatedAt:     time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Pin{}, fmt.Errorf("pins: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, name, color) VALUES (?, NULL, ?)
		 ON CONFLICT(id) DO NOTHING`,
		string(p.CreatedBy), p.ColorSnapshot,
	); err != nil {
		return domain.Pin{}, fmt.Errorf("pins: ensure user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pins (id, board_id, lat, lng, title, created_by, color_snapshot, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pin.ID, string(pin.BoardID), pin.Lat, pin.Lng, nullable(pin.Title),
		string(pin.CreatedBy), nullable(pin.ColorSnapshot), pin.CreatedAt,
	); err != nil {
		return domain.Pin{}, fmt.Errorf("pins: insert pin: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Pin{}, fmt.Errorf("pins: commit: %w", err)
	}
	return pin, nil
}

// List returns all pins, oldest first.
func (s *Store) List(ctx context.Context) ([]domain.Pin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, board_id, lat, lng, title, created_by, color_snapshot, created_at
		 FROM pins ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("pins: list: %w", err)
	}
	defer rows.Close()

	var out []domain.Pin
	for rows.Next() {
		var (
			pin   domain.Pin
			title sql.NullString
			color sql.NullString
		)
		if err := rows.Scan(&pin.ID, &pin.BoardID, &pin.Lat, &pin.Lng,
			&title, &pin.CreatedBy, &color, &pin.CreatedAt); err != nil {
			return nil, fmt.Errorf("pins: scan: %w", err)
		}
		pin.Title = title.String
		pin.ColorSnapshot = color.String
		out = append(out, pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pins: rows: %w", err)
	}
	return out, nil
}

// DeleteAll removes every pin and reports how many were deleted.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pins`)
	if err != nil {
		return 0, fmt.Errorf("pins: delete all: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pins: rows affected: %w", err)
	}
	return count, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
