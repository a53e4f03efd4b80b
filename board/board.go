// Package board implements the community board: free-text messages,
// structured strategy posts, and per-post reaction tallies keyed by an
// anonymous client id. Posts are immutable after creation; only tallies
// change, and those only through the toggle operations in reactions.go.
package board

import (
	"fmt"
	"time"
)

// PostType selects which table a reaction targets.
type PostType string

const (
	PostMessages   PostType = "messages"
	PostStrategies PostType = "strategies"
)

// ParsePostType validates a client-supplied post type.
func ParsePostType(s string) (PostType, error) {
	switch PostType(s) {
	case PostMessages, PostStrategies:
		return PostType(s), nil
	default:
		return "", &ValidationError{Field: "postType", Msg: fmt.Sprintf("unknown post type %q", s)}
	}
}

// Tally counts reactions per key. Using a struct keeps every key present in
// JSON output even when no reactions exist.
type Tally struct {
	Love  int `json:"love"`
	Fire  int `json:"fire"`
	Brain int `json:"brain"`
	Rip   int `json:"rip"`
}

// add increments the counter for key and reports whether key is recognized.
// Unknown keys in stored rows are ignored rather than failing the fold.
func (t *Tally) add(key string) bool {
	switch key {
	case "love":
		t.Love++
	case "fire":
		t.Fire++
	case "brain":
		t.Brain++
	case "rip":
		t.Rip++
	default:
		return false
	}
	return true
}

// ReactionKey is one of the four fixed reaction counters.
type ReactionKey string

const (
	ReactionLove  ReactionKey = "love"
	ReactionFire  ReactionKey = "fire"
	ReactionBrain ReactionKey = "brain"
	ReactionRip   ReactionKey = "rip"
)

// ParseReactionKey validates a client-supplied reaction key.
func ParseReactionKey(s string) (ReactionKey, error) {
	switch ReactionKey(s) {
	case ReactionLove, ReactionFire, ReactionBrain, ReactionRip:
		return ReactionKey(s), nil
	default:
		return "", &ValidationError{Field: "key", Msg: fmt.Sprintf("unknown reaction key %q", s)}
	}
}

// Message is a free-text community post.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Reactions Tally     `json:"reactions"`
}

// Strategy is a structured strategy post.
type Strategy struct {
	ID             string    `json:"id"`
	Author         string    `json:"author"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Weapon         Weapon    `json:"weapon"`
	Action         Action    `json:"action"`
	DurationRounds int       `json:"durationRounds"`
	CreatedAt      time.Time `json:"createdAt"`
	Reactions      Tally     `json:"reactions"`
}

// ValidationError reports client input rejected before touching the store.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }

const (
	defaultAuthor = "Anonymous"
	maxBodyLen    = 500

	defaultListLimit = 80
	maxListLimit     = 200
)

// clampLimit normalizes a caller-supplied listing limit into [1, maxListLimit].
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
