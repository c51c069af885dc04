// Package persist is the on-device slot: a single versioned JSON document
// in a local SQLite database. The slot is the offline source of truth; the
// sync engine reconciles it with the remote copy when connectivity allows.
package persist

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/jtroost/packmule/internal/state"
)

//go:embed migrations/*.sql
var migrations embed.FS

// CurrentVersion is the schema version of the persisted document. Loading
// an older version runs the document migrations and writes the result back.
const CurrentVersion = 2

const docName = "app-state"

// Slot stores the application state document.
type Slot struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the slot database at the given path and runs the
// table migrations. Use ":memory:" for tests.
func Open(dbPath string, logger *slog.Logger) (*Slot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Slot{db: db, logger: logger.With("component", "persist")}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Slot) Close() error {
	return s.db.Close()
}

// Save writes the document at the current version, replacing any previous
// copy. Implements state.Persister.
func (s *Slot) Save(doc state.Persisted) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO app_state (name, version, data, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		docName, CurrentVersion, string(data))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Load reads the document, migrating older versions forward. The second
// return is false when the slot is empty (first run).
func (s *Slot) Load() (state.Persisted, bool, error) {
	var (
		version int
		data    string
	)
	err := s.db.QueryRow(`SELECT version, data FROM app_state WHERE name = ?`, docName).
		Scan(&version, &data)
	if err == sql.ErrNoRows {
		return state.Persisted{}, false, nil
	}
	if err != nil {
		return state.Persisted{}, false, fmt.Errorf("load state: %w", err)
	}

	var doc state.Persisted
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return state.Persisted{}, false, fmt.Errorf("decode state: %w", err)
	}

	if version < CurrentVersion {
		s.logger.Info("migrating state document", "from", version, "to", CurrentVersion)
		doc = Migrate(doc, version)
		if err := s.Save(doc); err != nil {
			return state.Persisted{}, false, fmt.Errorf("write back migrated state: %w", err)
		}
	}
	return doc, true, nil
}
