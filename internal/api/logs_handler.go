// File path: internal/api/logs_handler.go
package api

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/nicodishanthj/propinsight/internal/common"
)

// handleLogs returns captured log entries, oldest first. Optional query
// parameters: component, trace_id and limit (most recent N).
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	component := strings.ToLower(strings.TrimSpace(query.Get("component")))
	traceID := strings.TrimSpace(query.Get("trace_id"))

	entries := make([]common.LogEntry, 0)
	for _, entry := range common.LogEntries() {
		if component != "" && strings.ToLower(entry.Component) != component {
			continue
		}
		if traceID != "" && entry.TraceID != traceID {
			continue
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		if limit < len(entries) {
			entries = entries[len(entries)-limit:]
		}
	}
	writeJSON(w, http.StatusOK, logsResponse{Entries: entries})
}
