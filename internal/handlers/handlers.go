package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"daylog-go/internal/reminder"
	"daylog-go/internal/store"
)

// Dispatcher is the reminder fan-out the dispatch endpoint triggers.
type Dispatcher interface {
	Run(ctx context.Context) (reminder.Result, error)
}

type Handler struct {
	Store      store.AccountStore
	Runs       store.RunStore
	Dispatcher Dispatcher

	VAPIDPublicKey string
	CronSecret     string
}

func NewHandler(s store.AccountStore, runs store.RunStore, d Dispatcher, vapidPublicKey, cronSecret string) *Handler {
	return &Handler{
		Store:          s,
		Runs:           runs,
		Dispatcher:     d,
		VAPIDPublicKey: vapidPublicKey,
		CronSecret:     cronSecret,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
