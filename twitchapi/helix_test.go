package twitchapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kyastream/site-backend/testutil"
)

// newTestClient points a HelixClient and its token source at the mock server.
func newTestClient(t *testing.T) (*HelixClient, *testutil.MockTwitchServer) {
	t.Helper()
	mock := testutil.NewMockTwitchServer(t)
	mock.MockTokenResponse("mock-app-token", 3600)
	hc := &HelixClient{
		AppTokenSource: &TokenSource{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			TokenURL:     mock.URL + "/oauth2/token",
		},
		ClientID: "test-client",
		BaseURL:  mock.URL,
	}
	return hc, mock
}

func TestGetUserID(t *testing.T) {
	hc, mock := newTestClient(t)
	mock.MockUserResponse("12345", "somestreamer")

	id, err := hc.GetUserID(context.Background(), "somestreamer")
	if err != nil {
		t.Fatalf("GetUserID() error = %v", err)
	}
	if id != "12345" {
		t.Errorf("GetUserID() = %s, want 12345", id)
	}
}

func TestGetUserIDNotFound(t *testing.T) {
	hc, mock := newTestClient(t)
	mock.Handlers["/users"] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}

	_, err := hc.GetUserID(context.Background(), "ghost")
	if err == nil {
		t.Fatal("GetUserID() expected error for unknown user")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("GetUserID() error = %v, want not-found message", err)
	}
}

func TestGetStreamLiveAndOffline(t *testing.T) {
	hc, mock := newTestClient(t)
	mock.MockStreamsResponse([]map[string]any{{
		"title":        "ranked grind",
		"game_name":    "VALORANT",
		"viewer_count": 321,
		"started_at":   "2025-06-01T18:00:00Z",
	}})

	stream, err := hc.GetStream(context.Background(), "somestreamer")
	if err != nil {
		t.Fatalf("GetStream() error = %v", err)
	}
	if stream == nil {
		t.Fatal("GetStream() = nil, want live stream")
	}
	if stream.Title != "ranked grind" || stream.GameName != "VALORANT" || stream.ViewerCount != 321 {
		t.Errorf("GetStream() = %+v", stream)
	}

	mock.MockStreamsResponse([]map[string]any{})
	stream, err = hc.GetStream(context.Background(), "somestreamer")
	if err != nil {
		t.Fatalf("GetStream() offline error = %v", err)
	}
	if stream != nil {
		t.Errorf("GetStream() = %+v, want nil when offline", stream)
	}
}

func TestLastVOD(t *testing.T) {
	hc, mock := newTestClient(t)
	mock.MockVideosResponse([]map[string]any{{
		"title":         "yesterday's stream",
		"url":           "https://www.twitch.tv/videos/111",
		"thumbnail_url": "https://cdn.example/thumb-%{width}x%{height}.jpg",
		"created_at":    "2025-06-01T00:00:00Z",
		"duration":      "3h2m1s",
		"view_count":    42,
	}}, "")

	vod, err := hc.LastVOD(context.Background(), "12345")
	if err != nil {
		t.Fatalf("LastVOD() error = %v", err)
	}
	if vod == nil {
		t.Fatal("LastVOD() = nil, want vod")
	}
	if vod.ThumbnailURL != "https://cdn.example/thumb-1280x720.jpg" {
		t.Errorf("thumbnail = %s, want substituted dimensions", vod.ThumbnailURL)
	}

	mock.MockVideosResponse([]map[string]any{}, "")
	vod, err = hc.LastVOD(context.Background(), "12345")
	if err != nil {
		t.Fatalf("LastVOD() empty error = %v", err)
	}
	if vod != nil {
		t.Errorf("LastVOD() = %+v, want nil when no archives", vod)
	}
}

func TestListClips(t *testing.T) {
	hc, mock := newTestClient(t)
	mock.MockClipsResponse([]map[string]any{
		{
			"id":         "CleverClip",
			"url":        "https://clips.twitch.tv/CleverClip",
			"embed_url":  "https://clips.twitch.tv/embed?clip=CleverClip",
			"title":      "insane ace",
			"view_count": 1000,
			"created_at": "2025-06-01T00:00:00Z",
			"duration":   27.5,
		},
		{
			"id":         "OtherClip",
			"url":        "https://www.twitch.tv/somestreamer/clip/OtherSlug",
			"embed_url":  "",
			"title":      "clutch 1v4",
			"view_count": 500,
			"created_at": "2025-06-02T00:00:00Z",
			"duration":   14.0,
		},
	}, "next-cursor")

	clips, cursor, err := hc.ListClips(context.Background(), "12345", 2, time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("ListClips() error = %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("ListClips() returned %d clips, want 2", len(clips))
	}
	if cursor != "next-cursor" {
		t.Errorf("cursor = %s, want next-cursor", cursor)
	}
	if clips[0].Slug != "CleverClip" {
		t.Errorf("slug from embed url = %s, want CleverClip", clips[0].Slug)
	}
	if clips[1].Slug != "OtherSlug" {
		t.Errorf("slug from canonical url = %s, want OtherSlug", clips[1].Slug)
	}
}

func TestListClipsQueryParams(t *testing.T) {
	hc, mock := newTestClient(t)
	var gotQuery map[string]string
	mock.Handlers["/clips"] = func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[],"pagination":{}}`))
	}

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := hc.ListClips(context.Background(), "12345", 5, start, end, "abc")
	if err != nil {
		t.Fatalf("ListClips() error = %v", err)
	}
	want := map[string]string{
		"broadcaster_id": "12345",
		"first":          "5",
		"started_at":     "2025-05-01T00:00:00Z",
		"ended_at":       "2025-06-01T00:00:00Z",
		"after":          "abc",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %s, want %s", k, gotQuery[k], v)
		}
	}
}

func TestListScheduleNoScheduleIs404(t *testing.T) {
	hc, mock := newTestClient(t)
	mock.MockErrorResponse("/schedule", http.StatusNotFound, `{"error":"Not Found"}`)

	segments, err := hc.ListSchedule(context.Background(), "12345", 8)
	if err != nil {
		t.Fatalf("ListSchedule() error = %v, want nil on 404", err)
	}
	if len(segments) != 0 {
		t.Errorf("ListSchedule() returned %d segments, want 0", len(segments))
	}
}

func TestListSchedule(t *testing.T) {
	hc, mock := newTestClient(t)
	mock.MockScheduleResponse([]map[string]any{{
		"id":          "seg1",
		"title":       "community games",
		"start_time":  "2025-06-05T18:00:00Z",
		"end_time":    "2025-06-05T22:00:00Z",
		"category":    map[string]any{"name": "VALORANT"},
		"is_canceled": false,
	}})

	segments, err := hc.ListSchedule(context.Background(), "12345", 8)
	if err != nil {
		t.Fatalf("ListSchedule() error = %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("ListSchedule() returned %d segments, want 1", len(segments))
	}
	if segments[0].Category != "VALORANT" {
		t.Errorf("category = %s, want VALORANT", segments[0].Category)
	}
}

func TestAPIErrorFromUpstream(t *testing.T) {
	hc, mock := newTestClient(t)
	longBody := strings.Repeat("x", 2000)
	mock.MockErrorResponse("/users", http.StatusTooManyRequests, longBody)

	_, err := hc.GetUserID(context.Background(), "somestreamer")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Op != "users" {
		t.Errorf("op = %s, want users", apiErr.Op)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", apiErr.StatusCode)
	}
	if len(apiErr.Body) > 800 {
		t.Errorf("body length = %d, want truncated to 800", len(apiErr.Body))
	}
	if !strings.Contains(apiErr.Error(), "users") {
		t.Errorf("Error() = %q, want op label included", apiErr.Error())
	}
}

func TestGetSendsAuthHeaders(t *testing.T) {
	mock := testutil.NewMockTwitchServer(t)
	mock.MockTokenResponse("header-token", 3600)
	var gotAuth, gotClientID string
	mock.Handlers["/users"] = func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotClientID = r.Header.Get("Client-Id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"1"}]}`))
	}
	hc := &HelixClient{
		AppTokenSource: &TokenSource{ClientID: "cid", ClientSecret: "sec", TokenURL: mock.URL + "/oauth2/token"},
		ClientID:       "cid",
		BaseURL:        mock.URL,
	}
	if _, err := hc.GetUserID(context.Background(), "x"); err != nil {
		t.Fatalf("GetUserID() error = %v", err)
	}
	if gotAuth != "Bearer header-token" {
		t.Errorf("Authorization = %q, want Bearer header-token", gotAuth)
	}
	if gotClientID != "cid" {
		t.Errorf("Client-Id = %q, want cid", gotClientID)
	}
}
