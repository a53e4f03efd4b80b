package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/kyastream/site-backend/db"
)

// SetupTestDB opens a test database connection and applies the schema.
// It skips the test when TEST_PG_DSN is not set.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	database, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(context.Background(), database); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// ResetBoard clears the community tables between tests sharing one database.
func ResetBoard(t *testing.T, database *sql.DB) {
	t.Helper()
	for _, table := range []string{"reactions", "messages", "strategies", "chat_messages"} {
		if _, err := database.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
}
