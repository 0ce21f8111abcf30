package handlers

import (
	"crypto/hmac"
	"log"
	"net/http"
	"strconv"
	"time"

	"daylog-go/internal/store"
)

// DispatchHandler is the scheduler-facing trigger: it runs one reminder
// dispatch and reports the invocation status payload. Guarded by the
// shared CRON_SECRET; when the secret is unset the check is skipped,
// which is only sensible in development.
func (h *Handler) DispatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.validCronSecret(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	started := time.Now().UTC()
	result, err := h.Dispatcher.Run(r.Context())
	if err != nil {
		// Upstream data access failed; nothing was sent.
		log.Printf("Dispatch failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "dispatch failed"})
		return
	}

	if _, err := h.Runs.RecordRun(r.Context(), store.DispatchRun{
		StartedAt: started,
		Skipped:   result.Skipped,
		Attempted: result.Attempted,
		Sent:      result.Sent,
	}); err != nil {
		// History is best-effort; the dispatch itself succeeded.
		log.Printf("Failed to record dispatch run: %v", err)
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) validCronSecret(r *http.Request) bool {
	if h.CronSecret == "" {
		return true
	}
	got := r.Header.Get("X-Cron-Secret")
	return hmac.Equal([]byte(got), []byte(h.CronSecret))
}

// RunsHandler returns the recent dispatch-run history
func (h *Handler) RunsHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.Runs.GetRuns(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to fetch runs: %v", err)
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}
