package twitchapi

import "fmt"

// maxErrorBody bounds how much of an upstream response body is carried in an
// APIError for diagnostics.
const maxErrorBody = 800

// APIError describes a non-success response from the Twitch API. Op labels the
// failed operation ("token", "users", "clips", ...), Body holds at most
// maxErrorBody bytes of the upstream response.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitch %s request failed: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
