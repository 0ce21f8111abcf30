package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"daylog-go/internal/config"
	"daylog-go/internal/handlers"
	"daylog-go/internal/reminder"
	"daylog-go/internal/scheduler"
	"daylog-go/internal/store"
	"daylog-go/internal/webpush"
)

func main() {
	genKeys := flag.Bool("genkeys", false, "generate a VAPID key pair and exit")
	flag.Parse()

	if *genKeys {
		keys, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("Failed to generate VAPID keys: %v", err)
		}
		fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", keys.PublicKey, keys.PrivateKey)
		return
	}

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize PostgreSQL store (accounts, entries, subscriptions)
	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	ctx := context.Background()
	if err := pgStore.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Initialize Redis store (dispatch-run history)
	runStore := store.NewRedisStore(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	dispatcher := reminder.NewDispatcher(pgStore, reminder.Config{
		Hour: cfg.ReminderHour,
		Keys: webpush.VAPIDKeys{
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
		},
		Subject:     cfg.VAPIDSubject,
		Message:     cfg.ReminderMessage,
		TTL:         cfg.ReminderTTL,
		Concurrency: cfg.Concurrency,
	})

	handlers.InitSessions(cfg.SessionSecret)
	h := handlers.NewHandler(pgStore, runStore, dispatcher, cfg.VAPIDPublicKey, cfg.CronSecret)

	// Optional in-process trigger; most deployments use an external
	// scheduler against /api/reminders/dispatch instead.
	if cfg.RunScheduler {
		sched := scheduler.New(dispatcher, runStore)
		if err := sched.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// Account routes
	http.HandleFunc("/api/register", h.RegisterHandler)
	http.HandleFunc("/api/login", h.LoginHandler)
	http.HandleFunc("/api/logout", h.LogoutHandler)
	http.HandleFunc("/api/me", handlers.AuthMiddleware(h.MeHandler))

	// 2FA
	http.HandleFunc("/api/2fa/generate", handlers.AuthMiddleware(h.Generate2FAHandler))
	http.HandleFunc("/api/2fa/enable", handlers.AuthMiddleware(h.Enable2FAHandler))
	http.HandleFunc("/api/2fa/disable", handlers.AuthMiddleware(h.Disable2FAHandler))

	// Check-in entries
	http.HandleFunc("/api/entries", handlers.AuthMiddleware(h.SaveEntryHandler))
	http.HandleFunc("/api/entries/today", handlers.AuthMiddleware(h.TodayEntryHandler))

	// Push subscriptions
	http.HandleFunc("/api/push/key", h.GetVAPIDKeyHandler)
	http.HandleFunc("/api/push/subscribe", handlers.AuthMiddleware(h.SubscribePushHandler))
	http.HandleFunc("/api/push/unsubscribe", handlers.AuthMiddleware(h.UnsubscribePushHandler))

	// Reminder dispatch (scheduler trigger) and run history
	http.HandleFunc("/api/reminders/dispatch", h.DispatchHandler)
	http.HandleFunc("/api/reminders/runs", handlers.AuthMiddleware(h.RunsHandler))

	http.HandleFunc("/healthz", h.HealthzHandler)
	http.Handle("/metrics", promhttp.Handler())

	log.Println("Listening on :" + cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.Fatal(err)
	}
}
