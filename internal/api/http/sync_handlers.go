package http

import (
	"net/http"
	"strconv"

	syncx "github.com/pathwise/pathwise-lms/internal/sync"
)

// SyncEventsHandler streams event-log rows after a given offset so an online
// site can pull an offline site's progress. Cursor-style: the caller passes
// the last offset it has seen.
func SyncEventsHandler(events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		list, err := events.ListSince(r.Context(), after, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		next := after
		if len(list) > 0 {
			next = list[len(list)-1].Offset
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": list, "next": next})
	}
}
