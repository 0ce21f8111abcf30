package reminder

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"daylog-go/internal/models"
)

// fakeEntries records which users logged on which dates and counts queries.
type fakeEntries struct {
	logged  map[string][]int
	queries int
	err     error
}

func (f *fakeEntries) LoggedUserIDs(ctx context.Context, date string, userIDs []int) (map[int]bool, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	asked := make(map[int]bool, len(userIDs))
	for _, id := range userIDs {
		asked[id] = true
	}
	out := make(map[int]bool)
	for _, id := range f.logged[date] {
		if asked[id] {
			out[id] = true
		}
	}
	return out, nil
}

func sub(userID int, zone string) models.PushSubscription {
	return models.PushSubscription{
		UserID:   userID,
		Endpoint: "https://push.example.com/send/abc",
		P256dh:   "key",
		Auth:     "auth",
		Timezone: zone,
	}
}

func userIDs(recipients []Recipient) []int {
	ids := make([]int, 0, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.UserID)
	}
	sort.Ints(ids)
	return ids
}

// 19:00 in New York (EDT, UTC-4) but 23:00 UTC: user A logged today in NY,
// user B is not in the reminder hour. Nobody is eligible.
func TestEligible_LoggedAndWrongHourExcluded(t *testing.T) {
	now := time.Date(2025, time.July, 15, 23, 0, 0, 0, time.UTC)
	entries := &fakeEntries{logged: map[string][]int{
		"2025-07-15": {1}, // A's local date in New York
	}}

	subs := []models.PushSubscription{
		sub(1, "America/New_York"),
		sub(2, "UTC"),
	}

	got, err := Eligible(context.Background(), entries, subs, 19, now)
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty eligible set, got %v", got)
	}
}

// 19:00 UTC with no entries: only the UTC user is due.
func TestEligible_UTCUserDue(t *testing.T) {
	now := time.Date(2025, time.July, 15, 19, 0, 0, 0, time.UTC)
	entries := &fakeEntries{logged: map[string][]int{}}

	subs := []models.PushSubscription{
		sub(1, "America/New_York"), // 15:00 local
		sub(2, "UTC"),
	}

	got, err := Eligible(context.Background(), entries, subs, 19, now)
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	if want := []int{2}; !reflect.DeepEqual(userIDs(got), want) {
		t.Fatalf("eligible users = %v, want %v", userIDs(got), want)
	}
	if got[0].LocalDate != "2025-07-15" {
		t.Fatalf("local date = %q, want 2025-07-15", got[0].LocalDate)
	}
}

func TestEligible_InvalidZoneNeverEligible(t *testing.T) {
	now := time.Date(2025, time.July, 15, 19, 0, 0, 0, time.UTC)
	entries := &fakeEntries{logged: map[string][]int{}}

	subs := []models.PushSubscription{sub(1, "Not/AZone")}

	got, err := Eligible(context.Background(), entries, subs, 19, now)
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("invalid zone must never be eligible, got %v", got)
	}
	if entries.queries != 0 {
		t.Fatalf("expected no entry queries, got %d", entries.queries)
	}
}

// One batched query per distinct local date, not one per user.
func TestEligible_OneQueryPerDate(t *testing.T) {
	// 23:00 UTC: 19:00 in New York (still the 15th) and 19:00 in Chicago
	// is false (18:00), so pick zones sharing the 19:00 wall clock.
	now := time.Date(2025, time.July, 15, 23, 0, 0, 0, time.UTC)
	entries := &fakeEntries{logged: map[string][]int{}}

	subs := []models.PushSubscription{
		sub(1, "America/New_York"), // 19:00, date 2025-07-15
		sub(2, "America/New_York"), // same group
		sub(3, "America/Toronto"),  // same offset, same date group
	}

	got, err := Eligible(context.Background(), entries, subs, 19, now)
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 eligible, got %d", len(got))
	}
	if entries.queries != 1 {
		t.Fatalf("want 1 batched query for the shared date, got %d", entries.queries)
	}
}

func TestEligible_Idempotent(t *testing.T) {
	now := time.Date(2025, time.July, 15, 19, 0, 0, 0, time.UTC)
	entries := &fakeEntries{logged: map[string][]int{"2025-07-15": {2}}}

	subs := []models.PushSubscription{
		sub(1, "UTC"),
		sub(2, "UTC"),
		sub(3, "Europe/London"), // 20:00 local, not due
	}

	first, err := Eligible(context.Background(), entries, subs, 19, now)
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	second, err := Eligible(context.Background(), entries, subs, 19, now)
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	if !reflect.DeepEqual(userIDs(first), userIDs(second)) {
		t.Fatalf("same instant and state must yield the same set: %v vs %v", userIDs(first), userIDs(second))
	}
	if want := []int{1}; !reflect.DeepEqual(userIDs(first), want) {
		t.Fatalf("eligible users = %v, want %v", userIDs(first), want)
	}
}

func TestEligible_StoreErrorFailsRun(t *testing.T) {
	now := time.Date(2025, time.July, 15, 19, 0, 0, 0, time.UTC)
	entries := &fakeEntries{err: errors.New("db down")}

	subs := []models.PushSubscription{sub(1, "UTC")}

	if _, err := Eligible(context.Background(), entries, subs, 19, now); err == nil {
		t.Fatal("want error when the entries query fails")
	}
}
