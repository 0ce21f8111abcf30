package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"daylog-go/internal/models"

	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// RunMigrations creates tables if they don't exist and applies schema updates
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return err
	}

	migrations := []string{
		`ALTER TABLE push_subscriptions ADD COLUMN IF NOT EXISTS timezone VARCHAR(64) DEFAULT 'UTC';`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// User methods

func (s *PostgresStore) CreateUser(ctx context.Context, username, password string) (models.User, error) {
	passwordHash, err := models.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, created_at)
		 VALUES ($1, $2, NOW())
		 RETURNING id, username, password_hash, created_at`,
		username, passwordHash,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int) (models.User, error) {
	var user models.User
	var totpSecret sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, totp_secret, totp_enabled, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &totpSecret, &user.TOTPEnabled, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return models.User{}, fmt.Errorf("user %w", ErrNotFound)
	}
	if err != nil {
		return models.User{}, err
	}

	if totpSecret.Valid {
		user.TOTPSecret = totpSecret.String
	}

	return user, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	var totpSecret sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, totp_secret, totp_enabled, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &totpSecret, &user.TOTPEnabled, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return models.User{}, fmt.Errorf("user %w", ErrNotFound)
	}
	if err != nil {
		return models.User{}, err
	}

	if totpSecret.Valid {
		user.TOTPSecret = totpSecret.String
	}

	return user, nil
}

// 2FA methods

func (s *PostgresStore) UpdateUser2FA(ctx context.Context, userID int, totpSecret string, enabled bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET totp_secret = $1, totp_enabled = $2 WHERE id = $3`,
		totpSecret, enabled, userID,
	)
	return err
}

func (s *PostgresStore) Disable2FA(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET totp_secret = NULL, totp_enabled = FALSE WHERE id = $1`,
		userID,
	)
	return err
}

// Entry methods

// SaveEntry records the user's check-in for a local calendar day. Saving
// twice for the same day overwrites the first entry.
func (s *PostgresStore) SaveEntry(ctx context.Context, userID int, date string, mood int, note string) (models.Entry, error) {
	var entry models.Entry
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO entries (user_id, date, mood, note, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id, date) DO UPDATE SET mood = EXCLUDED.mood, note = EXCLUDED.note
		 RETURNING id, user_id, to_char(date, 'YYYY-MM-DD'), mood, note, created_at`,
		userID, date, mood, note,
	).Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Mood, &entry.Note, &entry.CreatedAt)

	return entry, err
}

func (s *PostgresStore) GetEntry(ctx context.Context, userID int, date string) (models.Entry, error) {
	var entry models.Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, to_char(date, 'YYYY-MM-DD'), mood, note, created_at
		 FROM entries WHERE user_id = $1 AND date = $2`,
		userID, date,
	).Scan(&entry.ID, &entry.UserID, &entry.Date, &entry.Mood, &entry.Note, &entry.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Entry{}, fmt.Errorf("entry %w", ErrNotFound)
	}
	return entry, err
}

// LoggedUserIDs returns which of the given users already have an entry for
// the given date. One query per date group, not one per user.
func (s *PostgresStore) LoggedUserIDs(ctx context.Context, date string, userIDs []int) (map[int]bool, error) {
	logged := make(map[int]bool)
	if len(userIDs) == 0 {
		return logged, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM entries WHERE date = $1 AND user_id = ANY($2)`,
		date, pq.Array(userIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		logged[id] = true
	}

	return logged, rows.Err()
}

// Push subscription methods

// SavePushSubscription upserts the user's subscription. A user has at most
// one device registered; enabling reminders on a new browser replaces it.
func (s *PostgresStore) SavePushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth, timezone string) error {
	if timezone == "" {
		timezone = "UTC"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, timezone, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   endpoint = EXCLUDED.endpoint,
		   p256dh = EXCLUDED.p256dh,
		   auth = EXCLUDED.auth,
		   timezone = EXCLUDED.timezone,
		   created_at = NOW()`,
		userID, endpoint, p256dh, auth, timezone,
	)
	return err
}

func (s *PostgresStore) DeletePushSubscription(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE user_id = $1`, userID)
	return err
}

func (s *PostgresStore) GetPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, endpoint, p256dh, auth, timezone, created_at FROM push_subscriptions`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.PushSubscription
	for rows.Next() {
		var sub models.PushSubscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.Timezone, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}
