package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/tm-roles/internal/agenda"

	_ "modernc.org/sqlite"
)

// DBFile is the database file name inside the data directory
const DBFile = "tm-roles.db"

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS agendas (
	meeting_date TEXT PRIMARY KEY,
	agenda_json  TEXT NOT NULL,
	fetched_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
	name       TEXT PRIMARY KEY,
	active     INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	meeting_date TEXT NOT NULL,
	role         TEXT NOT NULL,
	assigned     TEXT NOT NULL,
	position     INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assignments_date ON assignments(meeting_date);
`

// Storage handles persistence of agendas, members and assignments
type Storage struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the database in dataDir
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return Open(filepath.Join(dataDir, DBFile))
}

// Open opens the database file at path and applies the schema
func Open(path string) (*Storage, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Storage{db: db, path: path}, nil
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.path
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveAgendas replaces the stored agenda of every meeting date in agendas
func (s *Storage) SaveAgendas(ctx context.Context, agendas []*agenda.Agenda) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	for _, a := range agendas {
		data, err := json.Marshal(a.Entries)
		if err != nil {
			return fmt.Errorf("encoding agenda %s: %w", a.DateKey(), err)
		}
		fetchedAt := a.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO agendas (meeting_date, agenda_json, fetched_at) VALUES (?, ?, ?)
			ON CONFLICT(meeting_date) DO UPDATE SET agenda_json = excluded.agenda_json, fetched_at = excluded.fetched_at
		`, a.DateKey(), string(data), fetchedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("saving agenda %s: %w", a.DateKey(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing agendas: %w", err)
	}
	return nil
}

// Agenda returns the agenda stored for a meeting date, or ErrNotFound
func (s *Storage) Agenda(ctx context.Context, date time.Time) (*agenda.Agenda, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT meeting_date, agenda_json, fetched_at FROM agendas WHERE meeting_date = ?
	`, date.Format(agenda.DateLayout))

	a, err := scanAgenda(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("agenda %s: %w", date.Format(agenda.DateLayout), ErrNotFound)
	}
	return a, err
}

// Agendas returns every stored agenda, oldest first
func (s *Storage) Agendas(ctx context.Context) ([]*agenda.Agenda, error) {
	return s.queryAgendas(ctx, `
		SELECT meeting_date, agenda_json, fetched_at FROM agendas ORDER BY meeting_date ASC
	`)
}

// AgendasBefore returns agendas held strictly before date, oldest first
func (s *Storage) AgendasBefore(ctx context.Context, date time.Time) ([]*agenda.Agenda, error) {
	return s.queryAgendas(ctx, `
		SELECT meeting_date, agenda_json, fetched_at FROM agendas WHERE meeting_date < ? ORDER BY meeting_date ASC
	`, date.Format(agenda.DateLayout))
}

func (s *Storage) queryAgendas(ctx context.Context, query string, args ...interface{}) ([]*agenda.Agenda, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query agendas: %w", err)
	}
	defer rows.Close()

	agendas := make([]*agenda.Agenda, 0)
	for rows.Next() {
		a, err := scanAgenda(rows)
		if err != nil {
			return nil, err
		}
		agendas = append(agendas, a)
	}
	return agendas, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAgenda(row scanner) (*agenda.Agenda, error) {
	var dateKey, data, fetchedAt string
	if err := row.Scan(&dateKey, &data, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan agenda: %w", err)
	}

	date, err := agenda.ParseDateKey(dateKey)
	if err != nil {
		return nil, fmt.Errorf("scan agenda: %w", err)
	}
	a := &agenda.Agenda{MeetingDate: date}
	if err := json.Unmarshal([]byte(data), &a.Entries); err != nil {
		return nil, fmt.Errorf("decoding agenda %s: %w", dateKey, err)
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		a.FetchedAt = t
	}
	return a, nil
}
