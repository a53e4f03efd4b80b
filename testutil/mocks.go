package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// MockTwitchServer is a test server standing in for the Helix API and the
// OAuth token endpoint. Register handlers per path, unregistered paths 404.
type MockTwitchServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc
}

// NewMockTwitchServer starts a mock Twitch API server, closed on test cleanup.
func NewMockTwitchServer(t *testing.T) *MockTwitchServer {
	t.Helper()
	m := &MockTwitchServer{
		Handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := m.Handlers[r.URL.Path]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *MockTwitchServer) respondJSON(path string, payload any) {
	m.Handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload) //nolint:errcheck // test mock response
	}
}

// MockUserResponse registers the /users endpoint.
func (m *MockTwitchServer) MockUserResponse(userID, login string) {
	m.respondJSON("/users", map[string]any{
		"data": []map[string]string{{"id": userID, "login": login}},
	})
}

// MockStreamsResponse registers the /streams endpoint. Pass an empty slice
// for an offline channel.
func (m *MockTwitchServer) MockStreamsResponse(streams []map[string]any) {
	m.respondJSON("/streams", map[string]any{"data": streams})
}

// MockVideosResponse registers the /videos endpoint.
func (m *MockTwitchServer) MockVideosResponse(videos []map[string]any, cursor string) {
	m.respondJSON("/videos", map[string]any{
		"data":       videos,
		"pagination": map[string]string{"cursor": cursor},
	})
}

// MockClipsResponse registers the /clips endpoint.
func (m *MockTwitchServer) MockClipsResponse(clips []map[string]any, cursor string) {
	m.respondJSON("/clips", map[string]any{
		"data":       clips,
		"pagination": map[string]string{"cursor": cursor},
	})
}

// MockScheduleResponse registers the /schedule endpoint.
func (m *MockTwitchServer) MockScheduleResponse(segments []map[string]any) {
	m.respondJSON("/schedule", map[string]any{
		"data": map[string]any{"segments": segments},
	})
}

// MockTokenResponse registers the OAuth client-credentials endpoint.
func (m *MockTwitchServer) MockTokenResponse(accessToken string, expiresIn int) {
	m.respondJSON("/oauth2/token", map[string]any{
		"access_token": accessToken,
		"expires_in":   expiresIn,
		"token_type":   "bearer",
	})
}

// MockErrorResponse registers an endpoint that fails with the given status.
func (m *MockTwitchServer) MockErrorResponse(path string, status int, body string) {
	m.Handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
