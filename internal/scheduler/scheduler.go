package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"daylog-go/internal/reminder"
	"daylog-go/internal/store"
)

// Scheduler triggers the reminder dispatcher at the top of every hour.
// Eligibility is evaluated by whole local hour, so an hourly cadence
// catches each zone's reminder hour exactly once.
type Scheduler struct {
	dispatcher *reminder.Dispatcher
	runs       store.RunStore
	cron       *cron.Cron
}

func New(d *reminder.Dispatcher, runs store.RunStore) *Scheduler {
	return &Scheduler{
		dispatcher: d,
		runs:       runs,
		cron:       cron.New(),
	}
}

// Start registers the hourly job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", s.tick)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Reminder scheduler started (hourly, top of hour)")
	return nil
}

// Stop waits for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Reminder scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	started := time.Now().UTC()

	result, err := s.dispatcher.Run(ctx)
	if err != nil {
		log.Printf("Scheduled dispatch failed: %v", err)
		return
	}

	if result.Skipped != "" {
		log.Printf("Scheduled dispatch skipped: %s", result.Skipped)
	} else {
		log.Printf("Scheduled dispatch: %s", result.Message)
	}

	if _, err := s.runs.RecordRun(ctx, store.DispatchRun{
		StartedAt: started,
		Skipped:   result.Skipped,
		Attempted: result.Attempted,
		Sent:      result.Sent,
	}); err != nil {
		log.Printf("Failed to record dispatch run: %v", err)
	}
}
