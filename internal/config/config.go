package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
// main loads .env first (godotenv), so a local file and real env behave
// the same.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `envconfig:"VAPID_SUBJECT" default:"mailto:admin@example.com"`

	ReminderHour    int    `envconfig:"REMINDER_HOUR" default:"19"` // local wall-clock hour
	ReminderMessage string `envconfig:"REMINDER_MESSAGE" default:"Don't forget to log your day!"`
	ReminderTTL     int    `envconfig:"REMINDER_TTL" default:"86400"`
	Concurrency     int    `envconfig:"DISPATCH_CONCURRENCY" default:"8"`

	// RunScheduler enables the in-process top-of-hour trigger. Leave off
	// when an external scheduler hits /api/reminders/dispatch instead.
	RunScheduler bool   `envconfig:"RUN_SCHEDULER" default:"false"`
	CronSecret   string `envconfig:"CRON_SECRET"`

	SessionSecret string `envconfig:"SESSION_SECRET" default:"secret-key-change-in-production"`
}

// Load reads environment variables into Config and checks the settings
// the dispatcher cannot run without. Missing VAPID keys are a startup
// fault: nothing may be sent with an unprovable identity.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}

	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return cfg, fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY are required (run with -genkeys to create a pair)")
	}
	if cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		return cfg, fmt.Errorf("REMINDER_HOUR %d out of range 0..23", cfg.ReminderHour)
	}

	return cfg, nil
}
