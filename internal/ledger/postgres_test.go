package ledger

import (
	"os"
	"testing"
)

// setupPostgres connects to the database named by TEST_DB_* and wipes the
// trades table. Tests are skipped when no test database is configured.
func setupPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres store tests")
	}
	s, err := OpenPostgres(PostgresConfig{
		Host:     host,
		Port:     envOr("TEST_DB_PORT", "5432"),
		User:     envOr("TEST_DB_USER", "tracker"),
		Password: envOr("TEST_DB_PASSWORD", "tracker"),
		Name:     envOr("TEST_DB_NAME", "portfolio_test"),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		s.db.Exec("DELETE FROM trades")
		s.Close()
	})
	return s
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func TestPostgresStore_AppendAndList(t *testing.T) {
	s := setupPostgres(t)

	stored, err := s.Append(sampleRecord("AAPL", "2024-01-02"))
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID == "" {
		t.Error("expected serial id")
	}

	records, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	if records[0].Ticker != "AAPL" || !records[0].Price.Equal(stored.Price) {
		t.Errorf("round trip mismatch: %+v", records[0])
	}
}

func TestPostgresStore_ListOrdersByDateThenId(t *testing.T) {
	s := setupPostgres(t)

	// Inserted out of date order; same-day rows keep insertion order.
	if _, err := s.Append(sampleRecord("LATER", "2024-02-01")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(sampleRecord("FIRST", "2024-01-02")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(sampleRecord("SECOND", "2024-01-02")); err != nil {
		t.Fatal(err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"FIRST", "SECOND", "LATER"}
	if len(records) != len(want) {
		t.Fatalf("len = %d, want %d", len(records), len(want))
	}
	for i, ticker := range want {
		if records[i].Ticker != ticker {
			t.Errorf("records[%d] = %s, want %s", i, records[i].Ticker, ticker)
		}
	}
}

func TestPostgresStore_Delete(t *testing.T) {
	s := setupPostgres(t)

	stored, err := s.Append(sampleRecord("AAPL", "2024-01-02"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(stored.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(stored.ID); err != ErrNotFound {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
