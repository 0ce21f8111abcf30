package models

import "time"

// Entry is a single daily check-in. The date is the user's local calendar
// day ("YYYY-MM-DD"); the store enforces one entry per user per day.
type Entry struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Date      string    `json:"date"`
	Mood      int       `json:"mood"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
