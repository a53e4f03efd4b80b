package server

import (
	"net/http"
	"time"

	"github.com/kyastream/site-backend/chat"
	"github.com/kyastream/site-backend/feed"
	"github.com/kyastream/site-backend/telemetry"
	"github.com/kyastream/site-backend/twitchapi"
)

const (
	defaultClipPageSize = 12
	maxClipPageSize     = 20

	defaultClipWindowDays = 365
	maxClipWindowDays     = 3650
)

// lastVodJSON is the offline fallback payload: the most recent archived
// broadcast, when one exists.
type lastVodJSON struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	CreatedAt    string `json:"createdAt"`
	Duration     string `json:"duration"`
	ViewCount    int    `json:"viewCount"`
}

// HandleLive reports whether the configured channel is live. Offline
// responses carry the last VOD for display when the channel has one.
func (h *Handlers) HandleLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := h.cfg.ValidateTwitchReady(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"live": false, "error": err.Error()})
		return
	}
	ctx := r.Context()

	stream, err := h.helix.GetStream(ctx, h.cfg.TwitchUserLogin)
	telemetry.CountUpstream("streams", err)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Error("live status fetch failed", errAttr(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"live": false, "error": err.Error()})
		return
	}
	if stream != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"live":        true,
			"title":       stream.Title,
			"gameName":    stream.GameName,
			"viewerCount": stream.ViewerCount,
			"startedAt":   stream.StartedAt,
		})
		return
	}

	// Offline: fall back to the most recent archived broadcast.
	userID, err := h.helix.GetUserID(ctx, h.cfg.TwitchUserLogin)
	telemetry.CountUpstream("users", err)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Error("user lookup failed", errAttr(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"live": false, "error": err.Error()})
		return
	}
	vod, err := h.helix.LastVOD(ctx, userID)
	telemetry.CountUpstream("videos", err)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Error("last vod fetch failed", errAttr(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"live": false, "error": err.Error()})
		return
	}
	if vod == nil {
		writeJSON(w, http.StatusOK, map[string]any{"live": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"live": false,
		"lastVod": lastVodJSON{
			Title:        vod.Title,
			URL:          vod.URL,
			ThumbnailURL: vod.ThumbnailURL,
			CreatedAt:    vod.CreatedAt,
			Duration:     vod.Duration,
			ViewCount:    vod.ViewCount,
		},
	})
}

type clipJSON struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	URL          string  `json:"url"`
	EmbedURL     string  `json:"embedUrl"`
	Title        string  `json:"title"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	ViewCount    int     `json:"viewCount"`
	CreatedAt    string  `json:"createdAt"`
	Duration     float64 `json:"duration"`
}

type clipsResponse struct {
	Clips   []clipJSON `json:"clips"`
	Cursor  *string    `json:"cursor"`
	HasMore bool       `json:"hasMore"`
	Error   string     `json:"error,omitempty"`
}

// HandleClips lists clips for the configured channel with cursor pagination.
// sort=views (default) keeps the upstream most-viewed order so it stays
// aligned with the cursor; sort=date re-sorts the page by recency. Failures
// degrade to an empty, well-shaped payload.
func (h *Handlers) HandleClips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ctx := r.Context()

	sortMode := r.URL.Query().Get("sort")
	if sortMode != "date" {
		sortMode = "views"
	}
	first := clampInt(parseIntQuery(r, "first", defaultClipPageSize), 1, maxClipPageSize)
	days := clampInt(parseIntQuery(r, "days", defaultClipWindowDays), 1, maxClipWindowDays)
	after := r.URL.Query().Get("after")

	if err := h.cfg.ValidateTwitchReady(); err != nil {
		writeJSON(w, http.StatusInternalServerError, clipsResponse{Clips: []clipJSON{}, Error: err.Error()})
		return
	}

	userID, err := h.helix.GetUserID(ctx, h.cfg.TwitchUserLogin)
	telemetry.CountUpstream("users", err)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Error("user lookup failed", errAttr(err))
		writeJSON(w, http.StatusInternalServerError, clipsResponse{Clips: []clipJSON{}, Error: err.Error()})
		return
	}

	now := time.Now().UTC()
	var clips []twitchapi.Clip
	var returned string
	telemetry.TimeFunc(telemetry.UpstreamDuration, func() {
		clips, returned, err = h.helix.ListClips(ctx, userID, first, now.AddDate(0, 0, -days), now, after)
	})
	telemetry.CountUpstream("clips", err)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Error("clip fetch failed", errAttr(err))
		writeJSON(w, http.StatusInternalServerError, clipsResponse{Clips: []clipJSON{}, Error: err.Error()})
		return
	}

	cursor, hasMore := feed.NextCursor(after, returned, len(clips), first)
	if sortMode == "date" {
		feed.SortByDate(clips)
	}

	resp := clipsResponse{Clips: make([]clipJSON, 0, len(clips)), HasMore: hasMore}
	if hasMore {
		resp.Cursor = &cursor
	}
	for _, c := range clips {
		resp.Clips = append(resp.Clips, clipJSON{
			ID:           c.ID,
			Slug:         c.Slug,
			URL:          c.URL,
			EmbedURL:     c.EmbedURL,
			Title:        c.Title,
			ThumbnailURL: c.ThumbnailURL,
			ViewCount:    c.ViewCount,
			CreatedAt:    c.CreatedAt,
			Duration:     c.Duration,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type segmentJSON struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Category   string `json:"category"`
	IsCanceled bool   `json:"isCanceled"`
}

// HandleSchedule lists upcoming schedule segments. Channels without a
// schedule, and upstream failures, both render as an empty list so the page
// can always show "no schedule".
func (h *Handlers) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := h.cfg.ValidateTwitchReady(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ctx := r.Context()

	segments := []segmentJSON{}
	userID, err := h.helix.GetUserID(ctx, h.cfg.TwitchUserLogin)
	telemetry.CountUpstream("users", err)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Warn("user lookup failed, serving empty schedule", errAttr(err))
		writeJSON(w, http.StatusOK, map[string]any{"segments": segments})
		return
	}
	list, err := h.helix.ListSchedule(ctx, userID, 8)
	telemetry.CountUpstream("schedule", err)
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Warn("schedule fetch failed, serving empty schedule", errAttr(err))
		writeJSON(w, http.StatusOK, map[string]any{"segments": segments})
		return
	}
	for _, s := range list {
		segments = append(segments, segmentJSON{
			ID:         s.ID,
			Title:      s.Title,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			Category:   s.Category,
			IsCanceled: s.IsCanceled,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"segments": segments})
}

// HandleChat serves the most recent recorded chat lines for the ticker.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := parseIntQuery(r, "limit", 50)
	messages, err := chat.Recent(r.Context(), h.db, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
