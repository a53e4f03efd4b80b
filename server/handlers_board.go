package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kyastream/site-backend/board"
	"github.com/kyastream/site-backend/telemetry"
)

// HandleMessages serves the community message board: GET lists the latest
// messages with reaction tallies, POST creates one.
func (h *Handlers) HandleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := parseIntQuery(r, "limit", 0)
		messages, err := board.ListMessages(r.Context(), h.db, limit)
		if err != nil {
			telemetry.LoggerWithCorr(r.Context()).Error("message list failed", errAttr(err))
			writeError(w, http.StatusInternalServerError, "Failed to load messages")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
	case http.MethodPost:
		var in struct {
			Author string `json:"author"`
			Body   string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		msg, err := board.CreateMessage(r.Context(), h.db, in.Author, in.Body)
		if err != nil {
			var verr *board.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, verr.Msg)
				return
			}
			telemetry.LoggerWithCorr(r.Context()).Error("message create failed", errAttr(err))
			writeError(w, http.StatusInternalServerError, "Failed to save message")
			return
		}
		if telemetry.PostsCreated != nil {
			telemetry.PostsCreated.WithLabelValues("message").Inc()
		}
		writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// HandleStrategies serves the strategy board. Strategy posts carry weapon,
// action and round-duration fields on top of the message shape.
func (h *Handlers) HandleStrategies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := parseIntQuery(r, "limit", 0)
		strategies, err := board.ListStrategies(r.Context(), h.db, limit)
		if err != nil {
			telemetry.LoggerWithCorr(r.Context()).Error("strategy list failed", errAttr(err))
			writeError(w, http.StatusInternalServerError, "Failed to load strategies")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"strategies": strategies})
	case http.MethodPost:
		var in board.StrategyInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		strat, err := board.CreateStrategy(r.Context(), h.db, in)
		if err != nil {
			var verr *board.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusBadRequest, verr.Msg)
				return
			}
			telemetry.LoggerWithCorr(r.Context()).Error("strategy create failed", errAttr(err))
			writeError(w, http.StatusInternalServerError, "Failed to save strategy")
			return
		}
		if telemetry.PostsCreated != nil {
			telemetry.PostsCreated.WithLabelValues("strategy").Inc()
		}
		writeJSON(w, http.StatusCreated, map[string]any{"strategy": strat})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type reactionRequest struct {
	PostType string  `json:"postType"`
	PostID   string  `json:"postId"`
	AnonID   string  `json:"anonId"`
	Key      *string `json:"key"`
}

// HandleReactions sets or clears one visitor's reaction on a post. A null
// key clears; a non-null key replaces whatever the visitor had before. The
// response always carries the post's full tally.
func (h *Handlers) HandleReactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Use POST")
		return
	}
	var in reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if in.PostType == "" || in.PostID == "" || in.AnonID == "" {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}
	postType, err := board.ParsePostType(in.PostType)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid post type")
		return
	}

	var tally board.Tally
	if in.Key == nil {
		tally, err = board.ClearReaction(r.Context(), h.db, postType, in.PostID, in.AnonID)
	} else {
		var key board.ReactionKey
		key, err = board.ParseReactionKey(*in.Key)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid reaction key")
			return
		}
		tally, err = board.SetReaction(r.Context(), h.db, postType, in.PostID, in.AnonID, key)
	}
	if err != nil {
		telemetry.LoggerWithCorr(r.Context()).Error("reaction update failed", errAttr(err))
		writeError(w, http.StatusInternalServerError, "Failed to update reaction")
		return
	}
	if telemetry.ReactionToggles != nil {
		telemetry.ReactionToggles.Inc()
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": tally})
}
