package chat

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/kyastream/site-backend/telemetry"
)

// retentionInterval is how often old chat rows are pruned while recording.
const retentionInterval = time.Minute

// StartRecorder joins channel anonymously and records chat lines until ctx is
// canceled. keepRows bounds the chat_messages table; rows beyond the most
// recent keepRows are pruned periodically. Blocks until disconnect; run it in
// a goroutine.
func StartRecorder(ctx context.Context, db *sql.DB, channel string, keepRows int) {
	if channel == "" {
		slog.Info("chat recorder: channel empty; skipping")
		return
	}
	if keepRows <= 0 {
		keepRows = 500
	}

	client := twitch.NewAnonymousClient()
	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO chat_messages (username, message, color, sent_at) VALUES ($1,$2,$3,$4)`,
			msg.User.DisplayName, msg.Message, msg.User.Color, time.Now().UTC()); err != nil {
			slog.Error("failed to insert chat message", slog.Any("err", err))
			return
		}
		if telemetry.ChatLinesStored != nil {
			telemetry.ChatLinesStored.Inc()
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(retentionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				client.Disconnect()
				return
			case <-ticker.C:
				if err := Prune(ctx, db, keepRows); err != nil {
					slog.Warn("chat retention prune failed", slog.Any("err", err))
				}
			}
		}
	}()

	client.Join(channel)
	slog.Info("chat recorder: joining", slog.String("channel", channel), slog.Int("keep_rows", keepRows))
	if err := client.Connect(); err != nil {
		slog.Error("twitch chat connect error", slog.Any("err", err))
	}
	<-done
}

// Prune deletes chat rows beyond the most recent keepRows.
func Prune(ctx context.Context, db *sql.DB, keepRows int) error {
	_, err := db.ExecContext(ctx, `
        DELETE FROM chat_messages
        WHERE id NOT IN (
            SELECT id FROM chat_messages ORDER BY sent_at DESC, id DESC LIMIT $1
        )
    `, keepRows)
	return err
}

// RecentMessage is one chat line served to the ticker.
type RecentMessage struct {
	Username string    `json:"username"`
	Message  string    `json:"message"`
	Color    string    `json:"color"`
	SentAt   time.Time `json:"sentAt"`
}

// Recent returns up to limit most recent chat lines, newest first.
func Recent(ctx context.Context, db *sql.DB, limit int) ([]RecentMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
        SELECT COALESCE(username,''), COALESCE(message,''), COALESCE(color,''), sent_at
        FROM chat_messages
        ORDER BY sent_at DESC, id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("failed to close rows", slog.Any("err", err))
		}
	}()
	list := make([]RecentMessage, 0, limit)
	for rows.Next() {
		var m RecentMessage
		if err := rows.Scan(&m.Username, &m.Message, &m.Color, &m.SentAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
