package reminder

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"daylog-go/internal/metrics"
	"daylog-go/internal/store"
	"daylog-go/internal/webpush"
)

const (
	// DefaultHour is the local wall-clock hour reminders go out: 7 PM.
	DefaultHour = 19

	defaultTTL         = 86400 // message lifetime at the push service, seconds
	defaultConcurrency = 8
	defaultTimeout     = 30 * time.Second
)

// Config is everything one dispatcher invocation depends on besides the
// store. Passed in at construction; the dispatcher holds no ambient state.
// Hour 0 is a valid reminder hour (midnight), so no default is applied
// here; config loading owns that.
type Config struct {
	Hour        int // local reminder hour, 0..23
	Keys        webpush.VAPIDKeys
	Subject     string // VAPID sub claim, mailto: or https: URL
	Message     string // notification payload delivered to the browser
	TTL         int
	Concurrency int
}

// Outcome records one recipient's delivery result.
type Outcome struct {
	UserID  int  `json:"user_id"`
	Success bool `json:"success"`
}

// Result is the status payload of one invocation.
type Result struct {
	Skipped   string    `json:"skipped,omitempty"`
	Message   string    `json:"message,omitempty"`
	Attempted int       `json:"attempted"`
	Sent      int       `json:"sent"`
	Results   []Outcome `json:"results,omitempty"`
}

// Dispatcher runs the reminder fan-out: eligibility, then per-recipient
// signing, encryption, and delivery on a bounded worker pool.
type Dispatcher struct {
	store  store.DispatchStore
	cfg    Config
	client *http.Client
	now    func() time.Time
}

func NewDispatcher(s store.DispatchStore, cfg Config) *Dispatcher {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Dispatcher{
		store:  s,
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
		now:    time.Now,
	}
}

// Run performs one invocation. It fails only when the subscription or
// entry reads fail; every per-recipient fault is recorded in the result
// and retried naturally by the next scheduled run.
func (d *Dispatcher) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	defer func() { metrics.DispatchDuration.Observe(time.Since(start).Seconds()) }()

	subs, err := d.store.GetPushSubscriptions(ctx)
	if err != nil {
		metrics.DispatchRuns.WithLabelValues("store_error").Inc()
		return Result{}, fmt.Errorf("fetch subscriptions: %w", err)
	}
	if len(subs) == 0 {
		metrics.DispatchRuns.WithLabelValues("no_subscriptions").Inc()
		return Result{Skipped: "no subscriptions"}, nil
	}

	now := d.now()
	eligible, err := Eligible(ctx, d.store, subs, d.cfg.Hour, now)
	if err != nil {
		metrics.DispatchRuns.WithLabelValues("store_error").Inc()
		return Result{}, err
	}
	if len(eligible) == 0 {
		metrics.DispatchRuns.WithLabelValues("nobody_due").Inc()
		return Result{Skipped: "no one in the reminder hour"}, nil
	}

	outcomes := d.deliverAll(ctx, eligible, now)

	sent := 0
	for _, o := range outcomes {
		if o.Success {
			sent++
		}
	}
	metrics.RemindersSent.Add(float64(sent))
	metrics.RemindersFailed.Add(float64(len(outcomes) - sent))
	metrics.DispatchRuns.WithLabelValues("dispatched").Inc()

	return Result{
		Message:   fmt.Sprintf("Sent %d/%d reminders", sent, len(outcomes)),
		Attempted: len(outcomes),
		Sent:      sent,
		Results:   outcomes,
	}, nil
}

// deliverAll fans deliveries out over a fixed-size worker pool. Recipients
// share nothing mutable; outcome order is not meaningful.
func (d *Dispatcher) deliverAll(ctx context.Context, recipients []Recipient, now time.Time) []Outcome {
	workers := d.cfg.Concurrency
	if workers > len(recipients) {
		workers = len(recipients)
	}

	jobs := make(chan Recipient)
	results := make(chan Outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range jobs {
				results <- Outcome{UserID: r.UserID, Success: d.deliver(ctx, r, now) == nil}
			}
		}()
	}

	go func() {
		for _, r := range recipients {
			jobs <- r
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	outcomes := make([]Outcome, 0, len(recipients))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// deliver signs, encrypts, and POSTs one reminder. Any error fails only
// this recipient.
func (d *Dispatcher) deliver(ctx context.Context, r Recipient, now time.Time) error {
	audience, err := webpush.Audience(r.Endpoint)
	if err != nil {
		log.Printf("reminder: user %d: bad endpoint: %v", r.UserID, err)
		return err
	}

	auth, err := webpush.Sign(audience, d.cfg.Subject, d.cfg.Keys, now)
	if err != nil {
		log.Printf("reminder: user %d: vapid signing failed: %v", r.UserID, err)
		return err
	}

	msg, err := webpush.Encrypt(r.P256dh, r.Auth, []byte(d.cfg.Message))
	if err != nil {
		log.Printf("reminder: user %d: encryption failed: %v", r.UserID, err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(msg.Ciphertext))
	if err != nil {
		return err
	}

	b64 := base64.RawURLEncoding
	req.Header.Set("Authorization", auth.Authorization)
	req.Header.Set("TTL", strconv.Itoa(d.cfg.TTL))
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Encoding", "aesgcm")
	req.Header.Set("Crypto-Key", "dh="+b64.EncodeToString(msg.ServerPublicKey)+";p256ecdsa="+auth.PublicKey)
	req.Header.Set("Encryption", "salt="+b64.EncodeToString(msg.Salt))

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("reminder: user %d: delivery failed: %v", r.UserID, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("reminder: user %d: push service returned %d: %s", r.UserID, resp.StatusCode, body)
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}

	return nil
}
