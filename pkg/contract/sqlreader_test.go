package contract

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE orders (
			id INTEGER NOT NULL,
			amount REAL,
			loaded_at TEXT
		)`)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestSQLReader_MaxTimestamp(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec(`INSERT INTO orders VALUES
		(1, 10.5, '2026-02-01 06:00:00'),
		(2, 20.0, '2026-02-01 08:30:00')`); err != nil {
		t.Fatal(err)
	}

	reader := NewSQLReaderFromDB(db, "sqlite")
	got, err := reader.MaxTimestamp(context.Background(), "orders", "loaded_at")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("max timestamp = %v, want %v", got, want)
	}
}

func TestSQLReader_MaxTimestampEmptyTable(t *testing.T) {
	reader := NewSQLReaderFromDB(openTestDB(t), "sqlite")
	_, err := reader.MaxTimestamp(context.Background(), "orders", "loaded_at")
	if err == nil || !strings.Contains(err.Error(), "no rows") {
		t.Fatalf("error = %v, want no-rows error", err)
	}
}

func TestSQLReader_Schema(t *testing.T) {
	reader := NewSQLReaderFromDB(openTestDB(t), "sqlite")
	cols, err := reader.Schema(context.Background(), "orders")
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %+v", cols)
	}
	byName := make(map[string]LiveColumn)
	for _, c := range cols {
		byName[c.Name] = c
	}
	if c := byName["id"]; !c.Required {
		t.Errorf("NOT NULL column should be required: %+v", c)
	}
	if c := byName["amount"]; c.Required {
		t.Errorf("nullable column should not be required: %+v", c)
	}
	if c := byName["id"]; c.Type != "INTEGER" {
		t.Errorf("declared type not read from the catalog: %+v", c)
	}
}

func TestSQLReader_SchemaMissingTable(t *testing.T) {
	reader := NewSQLReaderFromDB(openTestDB(t), "sqlite")
	_, err := reader.Schema(context.Background(), "missing_table")
	if err == nil || !strings.Contains(err.Error(), "no such table") {
		t.Fatalf("error = %v, want a no-such-table error", err)
	}
}

func TestSQLReader_Ping(t *testing.T) {
	reader := NewSQLReaderFromDB(openTestDB(t), "sqlite")
	if err := reader.Ping(context.Background(), "orders"); err != nil {
		t.Errorf("ping against an existing empty table should pass, got %v", err)
	}
	if err := reader.Ping(context.Background(), "missing_table"); err == nil {
		t.Error("ping against a missing table should fail")
	}
}

func TestSQLReader_RejectsInvalidIdentifiers(t *testing.T) {
	reader := NewSQLReaderFromDB(openTestDB(t), "sqlite")
	ctx := context.Background()

	bad := []string{"orders; DROP TABLE orders", "a b", "", "1abc", "x'"}
	for _, name := range bad {
		if _, err := reader.MaxTimestamp(ctx, name, "loaded_at"); err == nil {
			t.Errorf("identifier %q should be rejected", name)
		}
		if _, err := reader.Schema(ctx, name); err == nil {
			t.Errorf("identifier %q should be rejected", name)
		}
	}

	// Dotted schema-qualified names are allowed.
	if err := checkIdent("analytics.orders"); err != nil {
		t.Errorf("schema-qualified identifier rejected: %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2026-02-01T08:30:00Z", want: time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)},
		{in: "2026-02-01 08:30:00", want: time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)},
		{in: "2026-02-01", want: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{in: "last tuesday", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseTimestamp(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseTimestamp(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTimestamp(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
