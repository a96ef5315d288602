// Package testutil provides an in-memory sqlite fixture for repository and
// service tests, mirroring the teacher's NewTestDB pattern.
package testutil

import (
	"database/sql"
	"embed"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

//go:embed migrations/*.sql
var testMigrationsFS embed.FS

// NewTestDB creates an in-memory SQLite database with all migrations
// applied, foreign keys enabled.
func NewTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)

	entries, err := testMigrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	for _, entry := range entries {
		sqlBytes, err := testMigrationsFS.ReadFile("migrations/" + entry.Name())
		require.NoError(t, err, "failed to read migration %s", entry.Name())

		_, err = db.Exec(string(sqlBytes))
		require.NoError(t, err, "failed to apply migration %s", entry.Name())
	}

	return db
}

// SeedAyah inserts a minimal Ayah row for tests that only need a valid id.
func SeedAyah(t *testing.T, db *sql.DB, id, surah, ayah, juz, page, hizb int) {
	_, err := db.Exec(`INSERT INTO ayahs (id, surah_number, ayah_number, juz_number, page_number, hizb_quarter, text_uthmani) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, surah, ayah, juz, page, hizb, "")
	require.NoError(t, err)
}

// SeedUser inserts a minimal User row with id and email only, defaults
// otherwise, for tests exercising repository/service behavior directly.
func SeedUser(t *testing.T, db *sql.DB, id, email string) {
	_, err := db.Exec(`INSERT INTO users (id, email) VALUES (?, ?)`, id, email)
	require.NoError(t, err)
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
