package store

import (
	"context"
	"errors"

	"daylog-go/internal/models"
)

// ErrNotFound is returned when a lookup matches no row. Callers that
// need to tell "no such record" from a database fault check for it
// with errors.Is.
var ErrNotFound = errors.New("not found")

// AccountStore handles user accounts and entries (PostgreSQL)
type AccountStore interface {
	CreateUser(ctx context.Context, username, password string) (models.User, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	UpdateUser2FA(ctx context.Context, userID int, totpSecret string, enabled bool) error
	Disable2FA(ctx context.Context, userID int) error

	SaveEntry(ctx context.Context, userID int, date string, mood int, note string) (models.Entry, error)
	GetEntry(ctx context.Context, userID int, date string) (models.Entry, error)

	SavePushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth, timezone string) error
	DeletePushSubscription(ctx context.Context, userID int) error
}

// DispatchStore is the read path the reminder dispatcher depends on.
type DispatchStore interface {
	GetPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
	LoggedUserIDs(ctx context.Context, date string, userIDs []int) (map[int]bool, error)
}
