package reminder

import (
	"context"
	"fmt"
	"time"

	"daylog-go/internal/models"
)

// Recipient is a subscription due for a reminder right now: it is the
// reminder hour in the subscriber's zone and no entry exists for their
// local date. Recomputed fresh every invocation, never cached.
type Recipient struct {
	UserID    int
	Endpoint  string
	P256dh    string
	Auth      string
	LocalDate string
}

// EntryChecker is the read path eligibility needs from the store.
type EntryChecker interface {
	LoggedUserIDs(ctx context.Context, date string, userIDs []int) (map[int]bool, error)
}

// Eligible filters subscriptions down to the recipients due at now.
//
// Subscriptions whose zone does not resolve are dropped: a reminder at a
// guessed hour is worse than a missed one. Survivors are grouped by their
// local date so the already-logged check is one query per distinct date,
// bounding query count by the handful of dates in play rather than by
// subscriber count.
func Eligible(ctx context.Context, entries EntryChecker, subs []models.PushSubscription, hour int, now time.Time) ([]Recipient, error) {
	byDate := make(map[string][]models.PushSubscription)
	for _, sub := range subs {
		if LocalHour(now, sub.Timezone) != hour {
			continue
		}
		date := LocalDate(now, sub.Timezone)
		byDate[date] = append(byDate[date], sub)
	}

	var eligible []Recipient
	for date, group := range byDate {
		userIDs := make([]int, 0, len(group))
		for _, sub := range group {
			userIDs = append(userIDs, sub.UserID)
		}

		logged, err := entries.LoggedUserIDs(ctx, date, userIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch entries for %s: %w", date, err)
		}

		for _, sub := range group {
			if logged[sub.UserID] {
				continue
			}
			eligible = append(eligible, Recipient{
				UserID:    sub.UserID,
				Endpoint:  sub.Endpoint,
				P256dh:    sub.P256dh,
				Auth:      sub.Auth,
				LocalDate: date,
			})
		}
	}

	return eligible, nil
}
