// Package twitchapi contains helpers to interact with Twitch Helix APIs for
// user id resolution, live status, clips, archived VODs, and the stream
// schedule, using a cached app access token.
package twitchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultHelixURL = "https://api.twitch.tv/helix"

// HelixClient provides the Helix lookups needed by the site proxy endpoints.
type HelixClient struct {
	AppTokenSource *TokenSource
	ClientID       string
	BaseURL        string // defaults to the Helix endpoint; overridable in tests
	HTTPClient     *http.Client
}

// Stream describes an active broadcast.
type Stream struct {
	Title       string
	GameName    string
	ViewerCount int
	StartedAt   string
}

// VOD describes an archived broadcast. ThumbnailURL has its size placeholders
// already substituted.
type VOD struct {
	Title        string
	URL          string
	ThumbnailURL string
	CreatedAt    string
	Duration     string
	ViewCount    int
}

// Clip describes a channel clip. Slug is derived from the embed or canonical
// URL and falls back to the raw clip id.
type Clip struct {
	ID           string
	Slug         string
	URL          string
	EmbedURL     string
	Title        string
	ThumbnailURL string
	ViewCount    int
	CreatedAt    string
	Duration     float64
}

// ScheduleSegment describes one planned broadcast slot.
type ScheduleSegment struct {
	ID         string
	Title      string
	StartTime  string
	EndTime    string
	Category   string
	IsCanceled bool
}

func (hc *HelixClient) http() *http.Client {
	if hc.HTTPClient != nil {
		return hc.HTTPClient
	}
	return http.DefaultClient
}

func (hc *HelixClient) base() string {
	if hc.BaseURL != "" {
		return hc.BaseURL
	}
	return defaultHelixURL
}

// get performs an authenticated Helix GET and decodes the JSON response into
// out. Non-2xx responses become an *APIError labeled with op.
func (hc *HelixClient) get(ctx context.Context, op, path string, q url.Values, out any) error {
	tok, err := hc.AppTokenSource.Get(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.base()+path, nil)
	if err != nil {
		return err
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Client-Id", hc.ClientID)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := hc.http().Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: truncateBody(b)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GetUserID resolves a login name to its user ID.
func (hc *HelixClient) GetUserID(ctx context.Context, login string) (string, error) {
	if login == "" {
		return "", fmt.Errorf("login empty")
	}
	q := url.Values{}
	q.Set("login", login)
	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := hc.get(ctx, "users", "/users", q, &body); err != nil {
		return "", err
	}
	if len(body.Data) == 0 {
		return "", fmt.Errorf("twitch user %q not found", login)
	}
	return body.Data[0].ID, nil
}

// GetStream returns the active stream for a login, or nil when offline.
func (hc *HelixClient) GetStream(ctx context.Context, login string) (*Stream, error) {
	if login == "" {
		return nil, fmt.Errorf("login empty")
	}
	q := url.Values{}
	q.Set("user_login", login)
	var body struct {
		Data []struct {
			Title       string `json:"title"`
			GameName    string `json:"game_name"`
			ViewerCount int    `json:"viewer_count"`
			StartedAt   string `json:"started_at"`
		} `json:"data"`
	}
	if err := hc.get(ctx, "streams", "/streams", q, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, nil
	}
	s := body.Data[0]
	return &Stream{Title: s.Title, GameName: s.GameName, ViewerCount: s.ViewerCount, StartedAt: s.StartedAt}, nil
}

// LastVOD returns the most recent archived broadcast for a user, or nil when
// the channel has no archives.
func (hc *HelixClient) LastVOD(ctx context.Context, userID string) (*VOD, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID empty")
	}
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("type", "archive")
	q.Set("first", "1")
	var body struct {
		Data []struct {
			Title        string `json:"title"`
			URL          string `json:"url"`
			ThumbnailURL string `json:"thumbnail_url"`
			CreatedAt    string `json:"created_at"`
			Duration     string `json:"duration"`
			ViewCount    int    `json:"view_count"`
		} `json:"data"`
	}
	if err := hc.get(ctx, "videos", "/videos", q, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, nil
	}
	v := body.Data[0]
	return &VOD{
		Title:        v.Title,
		URL:          v.URL,
		ThumbnailURL: RenderThumbnail(v.ThumbnailURL, 1280, 720),
		CreatedAt:    v.CreatedAt,
		Duration:     v.Duration,
		ViewCount:    v.ViewCount,
	}, nil
}

// ListClips lists clips for a broadcaster within [startedAt, endedAt], in the
// upstream's most-viewed order, returning the page plus the continuation
// cursor (empty when Twitch reports none).
func (hc *HelixClient) ListClips(ctx context.Context, broadcasterID string, first int, startedAt, endedAt time.Time, after string) ([]Clip, string, error) {
	if broadcasterID == "" {
		return nil, "", fmt.Errorf("broadcasterID empty")
	}
	if first <= 0 {
		first = 12
	}
	q := url.Values{}
	q.Set("broadcaster_id", broadcasterID)
	q.Set("first", fmt.Sprintf("%d", first))
	if !startedAt.IsZero() {
		q.Set("started_at", startedAt.UTC().Format(time.RFC3339))
	}
	if !endedAt.IsZero() {
		q.Set("ended_at", endedAt.UTC().Format(time.RFC3339))
	}
	if after != "" {
		q.Set("after", after)
	}
	var body struct {
		Data []struct {
			ID           string  `json:"id"`
			URL          string  `json:"url"`
			EmbedURL     string  `json:"embed_url"`
			Title        string  `json:"title"`
			ThumbnailURL string  `json:"thumbnail_url"`
			ViewCount    int     `json:"view_count"`
			CreatedAt    string  `json:"created_at"`
			Duration     float64 `json:"duration"`
		} `json:"data"`
		Pagination struct {
			Cursor string `json:"cursor"`
		} `json:"pagination"`
	}
	if err := hc.get(ctx, "clips", "/clips", q, &body); err != nil {
		return nil, "", err
	}
	out := make([]Clip, 0, len(body.Data))
	for _, c := range body.Data {
		out = append(out, Clip{
			ID:           c.ID,
			Slug:         ClipSlug(c.EmbedURL, c.URL, c.ID),
			URL:          c.URL,
			EmbedURL:     c.EmbedURL,
			Title:        c.Title,
			ThumbnailURL: c.ThumbnailURL,
			ViewCount:    c.ViewCount,
			CreatedAt:    c.CreatedAt,
			Duration:     c.Duration,
		})
	}
	return out, body.Pagination.Cursor, nil
}

// ListSchedule returns upcoming schedule segments for a broadcaster. A 404
// means the channel never configured a schedule and yields an empty list, not
// an error.
func (hc *HelixClient) ListSchedule(ctx context.Context, broadcasterID string, first int) ([]ScheduleSegment, error) {
	if broadcasterID == "" {
		return nil, fmt.Errorf("broadcasterID empty")
	}
	if first <= 0 {
		first = 8
	}
	q := url.Values{}
	q.Set("broadcaster_id", broadcasterID)
	q.Set("first", fmt.Sprintf("%d", first))
	var body struct {
		Data struct {
			Segments []struct {
				ID        string `json:"id"`
				Title     string `json:"title"`
				StartTime string `json:"start_time"`
				EndTime   string `json:"end_time"`
				Category  *struct {
					Name string `json:"name"`
				} `json:"category"`
				IsCanceled bool `json:"is_canceled"`
			} `json:"segments"`
		} `json:"data"`
	}
	if err := hc.get(ctx, "schedule", "/schedule", q, &body); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return []ScheduleSegment{}, nil
		}
		return nil, err
	}
	out := make([]ScheduleSegment, 0, len(body.Data.Segments))
	for _, s := range body.Data.Segments {
		seg := ScheduleSegment{ID: s.ID, Title: s.Title, StartTime: s.StartTime, EndTime: s.EndTime, IsCanceled: s.IsCanceled}
		if s.Category != nil {
			seg.Category = s.Category.Name
		}
		out = append(out, seg)
	}
	return out, nil
}
