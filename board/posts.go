package board

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StrategyInput carries raw client input for a new strategy post. Weapon and
// Action are normalized with the enum parsers; DurationRounds is clamped.
type StrategyInput struct {
	Author         string `json:"author"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	Weapon         string `json:"weapon"`
	Action         string `json:"action"`
	DurationRounds int    `json:"durationRounds"`
}

// CreateMessage persists a free-text message. The author defaults to
// "Anonymous" when blank; an empty body after trimming is rejected.
func CreateMessage(ctx context.Context, db *sql.DB, author, body string) (*Message, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		author = defaultAuthor
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ValidationError{Field: "body", Msg: "message is required"}
	}
	if len(body) > maxBodyLen {
		return nil, &ValidationError{Field: "body", Msg: fmt.Sprintf("too long (max %d chars)", maxBodyLen)}
	}
	m := &Message{
		ID:        uuid.New().String(),
		Author:    author,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO messages (id, author, body, created_at) VALUES ($1,$2,$3,$4)`,
		m.ID, m.Author, m.Body, m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// ListMessages returns up to limit most recent messages with complete
// reaction tallies. A failed tally fetch degrades to zero tallies instead of
// failing the listing.
func ListMessages(ctx context.Context, db *sql.DB, limit int) ([]Message, error) {
	limit = clampLimit(limit)
	rows, err := db.QueryContext(ctx, `
        SELECT id, COALESCE(author, ''), COALESCE(body, ''), created_at
        FROM messages
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("failed to close rows", slog.Any("err", err))
		}
	}()
	list := make([]Message, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Author, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		list = append(list, m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	tallies, err := fetchTallies(ctx, db, PostMessages, ids)
	if err != nil {
		slog.Warn("reaction fetch failed, serving zero tallies", slog.Any("err", err), slog.String("component", "board"))
	} else {
		for i := range list {
			list[i].Reactions = tallies[list[i].ID]
		}
	}
	return list, nil
}

// CreateStrategy persists a strategy post. Title and body are required after
// trimming; weapon/action/duration are normalized rather than rejected.
func CreateStrategy(ctx context.Context, db *sql.DB, in StrategyInput) (*Strategy, error) {
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = defaultAuthor
	}
	title := strings.TrimSpace(in.Title)
	details := strings.TrimSpace(in.Body)
	if title == "" {
		return nil, &ValidationError{Field: "title", Msg: "title is required"}
	}
	if details == "" {
		return nil, &ValidationError{Field: "body", Msg: "details are required"}
	}
	if len(details) > maxBodyLen {
		return nil, &ValidationError{Field: "body", Msg: fmt.Sprintf("too long (max %d chars)", maxBodyLen)}
	}
	s := &Strategy{
		ID:             uuid.New().String(),
		Author:         author,
		Title:          title,
		Body:           details,
		Weapon:         ParseWeapon(in.Weapon),
		Action:         ParseAction(in.Action),
		DurationRounds: ClampDuration(in.DurationRounds),
		CreatedAt:      time.Now().UTC(),
	}
	_, err := db.ExecContext(ctx, `
        INSERT INTO strategies (id, author, title, body, weapon, action, duration_rounds, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, s.ID, s.Author, s.Title, s.Body, string(s.Weapon), string(s.Action), s.DurationRounds, s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert strategy: %w", err)
	}
	return s, nil
}

// ListStrategies returns up to limit most recent strategies with complete
// reaction tallies, normalizing enum values stored before the fallback tables
// existed.
func ListStrategies(ctx context.Context, db *sql.DB, limit int) ([]Strategy, error) {
	limit = clampLimit(limit)
	rows, err := db.QueryContext(ctx, `
        SELECT id, COALESCE(author, ''), COALESCE(title, ''), COALESCE(body, ''),
               COALESCE(weapon, ''), COALESCE(action, ''), COALESCE(duration_rounds, 1), created_at
        FROM strategies
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("failed to close rows", slog.Any("err", err))
		}
	}()
	list := make([]Strategy, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var s Strategy
		var weapon, action string
		var duration int
		if err := rows.Scan(&s.ID, &s.Author, &s.Title, &s.Body, &weapon, &action, &duration, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		if s.Author == "" {
			s.Author = defaultAuthor
		}
		s.Weapon = ParseWeapon(weapon)
		s.Action = ParseAction(action)
		s.DurationRounds = ClampDuration(duration)
		list = append(list, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list strategies: %w", err)
	}
	tallies, err := fetchTallies(ctx, db, PostStrategies, ids)
	if err != nil {
		slog.Warn("reaction fetch failed, serving zero tallies", slog.Any("err", err), slog.String("component", "board"))
	} else {
		for i := range list {
			list[i].Reactions = tallies[list[i].ID]
		}
	}
	return list, nil
}

// fetchTallies folds all reaction rows for the given posts into per-post
// tallies. Posts with no rows still map to a zero-valued tally.
func fetchTallies(ctx context.Context, db *sql.DB, postType PostType, ids []string) (map[string]Tally, error) {
	tallies := make(map[string]Tally, len(ids))
	for _, id := range ids {
		tallies[id] = Tally{}
	}
	if len(ids) == 0 {
		return tallies, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(postType))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	q := `SELECT post_id, reaction_key FROM reactions WHERE post_type = $1 AND post_id IN (` +
		strings.Join(placeholders, ",") + `)`
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch reactions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("failed to close rows", slog.Any("err", err))
		}
	}()
	for rows.Next() {
		var postID, key string
		if err := rows.Scan(&postID, &key); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		t := tallies[postID]
		t.add(key)
		tallies[postID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch reactions: %w", err)
	}
	return tallies, nil
}
