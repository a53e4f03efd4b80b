package chat_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kyastream/site-backend/chat"
	"github.com/kyastream/site-backend/testutil"
)

func TestRecentAndPrune(t *testing.T) {
	database := testutil.SetupTestDB(t)
	testutil.ResetBoard(t, database)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if _, err := database.ExecContext(ctx,
			`INSERT INTO chat_messages (username, message, color, sent_at) VALUES ($1,$2,$3,$4)`,
			fmt.Sprintf("user%d", i), fmt.Sprintf("line %d", i), "#FF0000", base.Add(time.Duration(i)*time.Second),
		); err != nil {
			t.Fatalf("insert chat line: %v", err)
		}
	}

	recent, err := chat.Recent(ctx, database, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent() returned %d, want 3", len(recent))
	}
	if recent[0].Message != "line 9" {
		t.Errorf("newest line = %q, want line 9", recent[0].Message)
	}

	if err := chat.Prune(ctx, database, 4); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_messages`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("rows after prune = %d, want 4", count)
	}

	// The survivors are the newest rows
	recent, err = chat.Recent(ctx, database, 10)
	if err != nil {
		t.Fatal(err)
	}
	if recent[len(recent)-1].Message != "line 6" {
		t.Errorf("oldest surviving line = %q, want line 6", recent[len(recent)-1].Message)
	}
}

func TestRecentLimitBounds(t *testing.T) {
	database := testutil.SetupTestDB(t)
	testutil.ResetBoard(t, database)
	ctx := context.Background()

	if _, err := chat.Recent(ctx, database, 0); err != nil {
		t.Errorf("Recent(0) error = %v", err)
	}
	if _, err := chat.Recent(ctx, database, 500); err != nil {
		t.Errorf("Recent(500) error = %v", err)
	}
}
