package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/club-reservations/internal/persistence"
	"github.com/example/club-reservations/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool         *sqlite.ConnectionPool
	Resources    persistence.ResourceRepository
	Reservations persistence.ReservationRepository
	Blackouts    persistence.BlackoutRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness backed by a temporary file that
// is migrated automatically. A cleanup callback is registered with the
// provided testing.TB; calling Close earlier is also fine.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "reservas.db")

	pool, err := sqlite.NewConnectionPool("file:" + path)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:         pool,
		Resources:    sqlite.NewResourceRepository(pool),
		Reservations: sqlite.NewReservationRepository(pool),
		Blackouts:    sqlite.NewBlackoutRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
