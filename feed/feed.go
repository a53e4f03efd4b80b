// Package feed implements the cursor bookkeeping and client-side merge used
// by the clip listing endpoint. The server stays stateless: the caller holds
// the cursor and the accumulated clip list between requests, and these pure
// helpers decide whether another page exists and fold new pages in without
// duplicates.
package feed

import (
	"sort"
	"time"

	"github.com/kyastream/site-backend/twitchapi"
)

// NextCursor decides whether more pages exist after a fetch and which cursor
// the caller should send next.
//
// after is the cursor sent with the request (empty on the first page),
// returned is the cursor Twitch sent back, items is the number of clips in
// the page and pageSize the number requested. A cursor equal to the one we
// just sent means the upstream made no progress and paging must stop, and a
// short page means the queryable window is exhausted even when a cursor is
// present. The returned cursor is empty whenever hasMore is false so a
// looping or dead cursor is never handed back to the caller.
func NextCursor(after, returned string, items, pageSize int) (cursor string, hasMore bool) {
	cursorDidNotAdvance := after != "" && returned != "" && returned == after
	likelyEndOfWindow := items < pageSize
	hasMore = returned != "" && !cursorDidNotAdvance && !likelyEndOfWindow && items > 0
	if !hasMore {
		return "", false
	}
	return returned, true
}

// Merge folds a freshly fetched page into an already accumulated clip list,
// keyed by clip id with the fresh copy winning on duplicates, and returns the
// result sorted by creation time descending. Twitch orders clip pages by view
// count, so incremental pages would otherwise interleave arbitrarily in the
// display order.
func Merge(existing, fresh []twitchapi.Clip) []twitchapi.Clip {
	byID := make(map[string]twitchapi.Clip, len(existing)+len(fresh))
	order := make([]string, 0, len(existing)+len(fresh))
	for _, c := range existing {
		if _, ok := byID[c.ID]; !ok {
			order = append(order, c.ID)
		}
		byID[c.ID] = c
	}
	for _, c := range fresh {
		if _, ok := byID[c.ID]; !ok {
			order = append(order, c.ID)
		}
		byID[c.ID] = c
	}
	merged := make([]twitchapi.Clip, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	sort.SliceStable(merged, func(i, j int) bool {
		ti, tj := createdAt(merged[i]), createdAt(merged[j])
		if ti.Equal(tj) {
			return merged[i].ID < merged[j].ID
		}
		return ti.After(tj)
	})
	return merged
}

// SortByDate orders clips by creation time descending in place. Used when the
// caller asks for recency ordering; the default most-viewed order is left
// untouched so it stays aligned with the upstream cursor.
func SortByDate(clips []twitchapi.Clip) {
	sort.SliceStable(clips, func(i, j int) bool {
		return createdAt(clips[i]).After(createdAt(clips[j]))
	})
}

func createdAt(c twitchapi.Clip) time.Time {
	t, err := time.Parse(time.RFC3339, c.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
