package models

import "time"

// PushSubscription is one user's browser push registration. One row per
// user; re-subscribing replaces the previous endpoint and keys.
type PushSubscription struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"keys_p256dh"` // Mapped from keys.p256dh
	Auth      string    `json:"keys_auth"`   // Mapped from keys.auth
	Timezone  string    `json:"timezone"`    // IANA name, empty means UTC
	CreatedAt time.Time `json:"created_at"`
}
