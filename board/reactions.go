package board

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// SetReaction records key as this anonymous user's reaction to a post,
// replacing any previous one, and returns the recomputed full tally. The
// delete-then-insert pair keeps at most one row per (post, anon) tuple;
// selecting a different key swaps the reaction.
//
// Two concurrent toggles for the same (post, anon) are not serialized here;
// their delete/insert sequences can interleave and the last writer wins.
func SetReaction(ctx context.Context, db *sql.DB, postType PostType, postID, anonID string, key ReactionKey) (Tally, error) {
	if err := deleteReaction(ctx, db, postType, postID, anonID); err != nil {
		return Tally{}, err
	}
	_, err := db.ExecContext(ctx, `
        INSERT INTO reactions (post_type, post_id, anon_id, reaction_key, created_at)
        VALUES ($1,$2,$3,$4,NOW())
    `, string(postType), postID, anonID, string(key))
	if err != nil {
		return Tally{}, fmt.Errorf("insert reaction: %w", err)
	}
	return CountReactions(ctx, db, postType, postID)
}

// ClearReaction removes this anonymous user's reaction to a post, if any, and
// returns the recomputed full tally. Clearing an absent reaction is a no-op.
func ClearReaction(ctx context.Context, db *sql.DB, postType PostType, postID, anonID string) (Tally, error) {
	if err := deleteReaction(ctx, db, postType, postID, anonID); err != nil {
		return Tally{}, err
	}
	return CountReactions(ctx, db, postType, postID)
}

func deleteReaction(ctx context.Context, db *sql.DB, postType PostType, postID, anonID string) error {
	_, err := db.ExecContext(ctx, `
        DELETE FROM reactions WHERE post_type = $1 AND post_id = $2 AND anon_id = $3
    `, string(postType), postID, anonID)
	if err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	return nil
}

// CountReactions recomputes a post's tally with a full count over its
// reaction rows. A running counter would be cheaper per toggle but can drift;
// posts see few enough reactions that the recount stays trivial.
func CountReactions(ctx context.Context, db *sql.DB, postType PostType, postID string) (Tally, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT reaction_key FROM reactions WHERE post_type = $1 AND post_id = $2
    `, string(postType), postID)
	if err != nil {
		return Tally{}, fmt.Errorf("count reactions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("failed to close rows", slog.Any("err", err))
		}
	}()
	var t Tally
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return Tally{}, fmt.Errorf("scan reaction: %w", err)
		}
		t.add(key)
	}
	if err := rows.Err(); err != nil {
		return Tally{}, fmt.Errorf("count reactions: %w", err)
	}
	return t, nil
}
