package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite. It provides durable
// occurrence tracking across monitor restarts.
//
// SQLite supports a single writer; the store serializes writes through a
// one-connection pool plus an upsert inside a transaction, so concurrent
// contract-check completions cannot lose updates.
type SQLiteStore struct {
	db        *sql.DB
	mu        sync.Mutex
	closeOnce sync.Once

	recordStmt *sql.Stmt
	getStmt    *sql.Stmt
	listStmt   *sql.Stmt
	clearStmt  *sql.Stmt
}

// SQLiteConfig configures the SQLite history store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (or creates) a SQLite-backed history store.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Single writer; SQLite does not support more.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare history statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS violation_history (
		contract       TEXT NOT NULL,
		check_type     TEXT NOT NULL,
		error_code     TEXT NOT NULL,
		first_detected INTEGER NOT NULL,
		last_seen      INTEGER NOT NULL,
		occurrences    INTEGER NOT NULL,
		PRIMARY KEY (contract, check_type, error_code)
	);

	CREATE INDEX IF NOT EXISTS idx_history_contract ON violation_history(contract);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.recordStmt, err = s.db.Prepare(`
		INSERT INTO violation_history (contract, check_type, error_code, first_detected, last_seen, occurrences)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(contract, check_type, error_code)
		DO UPDATE SET last_seen = excluded.last_seen, occurrences = occurrences + 1`)
	if err != nil {
		return err
	}

	s.getStmt, err = s.db.Prepare(`
		SELECT first_detected, last_seen, occurrences
		FROM violation_history
		WHERE contract = ? AND check_type = ? AND error_code = ?`)
	if err != nil {
		return err
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT check_type, error_code, first_detected, last_seen, occurrences
		FROM violation_history
		WHERE contract = ?
		ORDER BY first_detected, check_type, error_code`)
	if err != nil {
		return err
	}

	s.clearStmt, err = s.db.Prepare(`
		DELETE FROM violation_history
		WHERE contract = ? AND check_type = ? AND error_code = ?`)
	return err
}

// Record upserts an occurrence and reads back the updated row.
func (s *SQLiteStore) Record(ctx context.Context, key Key, seenAt time.Time) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unix := seenAt.UTC().Unix()
	if _, err := s.recordStmt.ExecContext(ctx, key.Contract, key.Check, key.ErrorCode, unix, unix); err != nil {
		return nil, fmt.Errorf("failed to record violation %s: %w", key, err)
	}
	return s.get(ctx, key)
}

// Get returns the record for a key, or nil if none exists.
func (s *SQLiteStore) Get(ctx context.Context, key Key) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx, key)
}

func (s *SQLiteStore) get(ctx context.Context, key Key) (*Record, error) {
	var first, last int64
	var occurrences int
	err := s.getStmt.QueryRowContext(ctx, key.Contract, key.Check, key.ErrorCode).
		Scan(&first, &last, &occurrences)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load violation %s: %w", key, err)
	}
	return &Record{
		Contract:      key.Contract,
		Check:         key.Check,
		ErrorCode:     key.ErrorCode,
		FirstDetected: time.Unix(first, 0).UTC(),
		LastSeen:      time.Unix(last, 0).UTC(),
		Occurrences:   occurrences,
	}, nil
}

// List returns all records for a contract, ordered by first detection.
func (s *SQLiteStore) List(ctx context.Context, contract string) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.listStmt.QueryContext(ctx, contract)
	if err != nil {
		return nil, fmt.Errorf("failed to list violations for %q: %w", contract, err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var check, code string
		var first, last int64
		var occurrences int
		if err := rows.Scan(&check, &code, &first, &last, &occurrences); err != nil {
			return nil, fmt.Errorf("failed to scan violation row: %w", err)
		}
		out = append(out, &Record{
			Contract:      contract,
			Check:         check,
			ErrorCode:     code,
			FirstDetected: time.Unix(first, 0).UTC(),
			LastSeen:      time.Unix(last, 0).UTC(),
			Occurrences:   occurrences,
		})
	}
	return out, rows.Err()
}

// Clear removes the record for a key.
func (s *SQLiteStore) Clear(ctx context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.clearStmt.ExecContext(ctx, key.Contract, key.Check, key.ErrorCode); err != nil {
		return fmt.Errorf("failed to clear violation %s: %w", key, err)
	}
	return nil
}

// Close closes prepared statements and the database.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{s.recordStmt, s.getStmt, s.listStmt, s.clearStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = s.db.Close()
	})
	return err
}
