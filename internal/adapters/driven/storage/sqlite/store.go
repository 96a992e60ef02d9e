package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/cartographer/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// DatabaseFile is the ledger file name inside the data directory.
const DatabaseFile = "history.db"

// Store is the SQLite database holding the extraction history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in dataDir, creating the directory
// and applying pending migrations.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory: %w", domain.ErrConfiguration)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL mode lets `history` read while an extraction writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// HistoryStore returns a HistoryStore interface backed by this store.
func (s *Store) HistoryStore() driven.HistoryStore {
	return &historyStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_history.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// version returns the highest applied migration.
func (s *Store) version() (int, error) {
	var v int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

// ==================== History Store ====================

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Record appends an extraction record. A missing id or timestamp is filled in.
func (h *historyStore) Record(ctx context.Context, rec domain.ExtractionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := h.store.db.ExecContext(ctx, `
		INSERT INTO extraction_history (
			id, run_id, client_name, subtype, mode, model, documents,
			input_tokens, output_tokens, cost, status, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.RunID, rec.ClientName, rec.Subtype, string(rec.Mode), rec.Model, rec.Documents,
		rec.InputTokens, rec.OutputTokens, rec.Cost, string(rec.Status), nullString(rec.Error),
		rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving extraction record: %w", err)
	}
	return nil
}

// List returns records newest first. An empty client lists all clients;
// a non-positive limit returns everything.
func (h *historyStore) List(ctx context.Context, client string, limit int) ([]domain.ExtractionRecord, error) {
	query := `
		SELECT id, run_id, client_name, subtype, mode, model, documents,
			input_tokens, output_tokens, cost, status, error, created_at
		FROM extraction_history`
	var args []any
	if client != "" {
		query += " WHERE client_name = ?"
		args = append(args, client)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying extraction history: %w", err)
	}
	defer rows.Close()

	var records []domain.ExtractionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extraction history: %w", err)
	}
	return records, nil
}

// ==================== Helper Functions ====================

func scanRecord(rows *sql.Rows) (domain.ExtractionRecord, error) {
	var rec domain.ExtractionRecord
	var mode, status string
	var errText sql.NullString
	var createdAt sql.NullTime

	if err := rows.Scan(&rec.ID, &rec.RunID, &rec.ClientName, &rec.Subtype, &mode, &rec.Model,
		&rec.Documents, &rec.InputTokens, &rec.OutputTokens, &rec.Cost, &status, &errText,
		&createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, domain.ErrNotFound
		}
		return rec, fmt.Errorf("scanning extraction record: %w", err)
	}

	rec.Mode = domain.ProcessingMode(mode)
	rec.Status = domain.RunStatus(status)
	rec.Error = errText.String
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	return rec, nil
}

// nullString converts an empty string to sql.NullString{Valid: false}.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
