package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"daylog-go/internal/reminder"
	"daylog-go/internal/store"
)

// SaveEntryHandler records today's check-in for the session user. When no
// date is given, "today" is resolved in the supplied zone (UTC fallback),
// matching how the reminder dispatcher will later look the entry up.
func (h *Handler) SaveEntryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := CurrentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Date     string `json:"date"`
		Timezone string `json:"timezone"`
		Mood     int    `json:"mood"`
		Note     string `json:"note"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	date := req.Date
	if date == "" {
		date = reminder.LocalDate(time.Now(), req.Timezone)
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entry, err := h.Store.SaveEntry(r.Context(), userID, date, req.Mood, req.Note)
	if err != nil {
		log.Printf("Failed to save entry: %v", err)
		http.Error(w, "Failed to save entry", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "entry": entry})
}

// TodayEntryHandler reports whether the session user has logged today
func (h *Handler) TodayEntryHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = reminder.LocalDate(time.Now(), r.URL.Query().Get("timezone"))
	}

	entry, err := h.Store.GetEntry(r.Context(), userID, date)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"logged": false, "date": date})
		return
	}
	if err != nil {
		log.Printf("Failed to look up entry: %v", err)
		http.Error(w, "Failed to look up entry", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"logged": true, "date": date, "entry": entry})
}
