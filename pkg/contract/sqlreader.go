package contract

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite" // default driver for local datasets
)

// SQLReader implements DatasetReader over a database/sql connection. The
// data queries are driver-generic; schema introspection uses sqlite's
// catalog when the sqlite driver is in play, because its ColumnTypes do
// not report nullability. The sqlite driver is linked in as the default
// for local datasets and tests.
type SQLReader struct {
	db     *sql.DB
	driver string
}

// identPattern restricts dataset and column identifiers, since they are
// interpolated into statements (placeholders cannot bind identifiers).
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// NewSQLReader opens a reader for the given driver and DSN.
func NewSQLReader(driver, dsn string) (*SQLReader, error) {
	if driver == "" {
		driver = "sqlite"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open datasource (driver %q): %w", driver, err)
	}
	return &SQLReader{db: db, driver: driver}, nil
}

// NewSQLReaderFromDB wraps an existing connection pool. The driver name
// selects the schema-introspection strategy.
func NewSQLReaderFromDB(db *sql.DB, driver string) *SQLReader {
	return &SQLReader{db: db, driver: driver}
}

// MaxTimestamp returns the newest value of the timestamp column.
func (r *SQLReader) MaxTimestamp(ctx context.Context, dataset, column string) (time.Time, error) {
	if err := checkIdent(dataset); err != nil {
		return time.Time{}, err
	}
	if err := checkIdent(column); err != nil {
		return time.Time{}, err
	}

	var raw sql.NullString
	query := fmt.Sprintf("SELECT MAX(%s) FROM %s", column, dataset)
	if err := r.db.QueryRowContext(ctx, query).Scan(&raw); err != nil {
		return time.Time{}, fmt.Errorf("max-timestamp query on %q failed: %w", dataset, err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, fmt.Errorf("dataset %q has no rows with a %q timestamp", dataset, column)
	}

	ts, err := parseTimestamp(raw.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("dataset %q column %q: %w", dataset, column, err)
	}
	return ts, nil
}

// Schema returns the live schema of a dataset. Under the sqlite driver
// it reads the table catalog; sqlite's ColumnTypes never report
// nullability, and a reader that cannot see NOT NULL cannot detect a
// column becoming required. Other drivers use a zero-row select.
func (r *SQLReader) Schema(ctx context.Context, dataset string) ([]LiveColumn, error) {
	if err := checkIdent(dataset); err != nil {
		return nil, err
	}
	if r.driver == "sqlite" || r.driver == "sqlite3" {
		return r.sqliteSchema(ctx, dataset)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", dataset))
	if err != nil {
		return nil, fmt.Errorf("schema query on %q failed: %w", dataset, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types for %q: %w", dataset, err)
	}

	out := make([]LiveColumn, 0, len(types))
	for _, ct := range types {
		nullable, known := ct.Nullable()
		out = append(out, LiveColumn{
			Name:     ct.Name(),
			Type:     ct.DatabaseTypeName(),
			Required: known && !nullable,
		})
	}
	return out, rows.Err()
}

// sqliteSchema reads column names, declared types, and NOT NULL flags
// from the table catalog. A missing table yields zero catalog rows, not
// a query error, so that case is surfaced explicitly.
func (r *SQLReader) sqliteSchema(ctx context.Context, dataset string) ([]LiveColumn, error) {
	stmt := fmt.Sprintf("PRAGMA table_info(%s)", dataset)
	if schema, table, ok := strings.Cut(dataset, "."); ok {
		stmt = fmt.Sprintf("PRAGMA %s.table_info(%s)", schema, table)
	}

	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("schema query on %q failed: %w", dataset, err)
	}
	defer rows.Close()

	var out []LiveColumn
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to read column info for %q: %w", dataset, err)
		}
		out = append(out, LiveColumn{
			Name:     name,
			Type:     colType,
			Required: notNull != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema query on %q failed: %w", dataset, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("schema query on %q failed: no such table", dataset)
	}
	return out, nil
}

// Ping probes connectivity and the dataset's existence.
func (r *SQLReader) Ping(ctx context.Context, dataset string) error {
	if err := checkIdent(dataset); err != nil {
		return err
	}
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("connection probe failed: %w", err)
	}
	var one int
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", dataset)).Scan(&one); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("dataset probe failed: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (r *SQLReader) Close() error {
	return r.db.Close()
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// timestampFormats are tried in order when parsing a MAX() result.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
