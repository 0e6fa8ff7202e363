package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"regnify/internal/domain"
	"regnify/internal/port"
)

// IntegrationSchedulerConfig holds settings for the scheduled provider send.
type IntegrationSchedulerConfig struct {
	PollInterval time.Duration
	SendTimeout  time.Duration
}

// IntegrationScheduler sends pending invoices to every provider whose
// schedule has come due.
type IntegrationScheduler struct {
	repo      port.IntegrationRepository
	sender    IntegrationService
	cfg       IntegrationSchedulerConfig
	now       func() time.Time
	attempted map[uuid.UUID]time.Time
}

// NewIntegrationScheduler creates a new IntegrationScheduler.
func NewIntegrationScheduler(repo port.IntegrationRepository, sender IntegrationService, cfg IntegrationSchedulerConfig) *IntegrationScheduler {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 2 * time.Minute
	}
	return &IntegrationScheduler{
		repo:      repo,
		sender:    sender,
		cfg:       cfg,
		now:       time.Now,
		attempted: make(map[uuid.UUID]time.Time),
	}
}

// Start runs the polling loop until ctx is canceled.
func (w *IntegrationScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	log.Printf("integrationScheduler: started (poll=%s)", w.cfg.PollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("integrationScheduler: shutdown complete")
			return
		case <-ticker.C:
			w.RunOnce(ctx, w.now())
		}
	}
}

// RunOnce sends to every due provider and returns how many sends were
// attempted. A failed send is not retried until the next period.
func (w *IntegrationScheduler) RunOnce(ctx context.Context, now time.Time) int {
	cfgs, err := w.repo.ListScheduled(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("integrationScheduler: ListScheduled error: %v", err)
		}
		return 0
	}

	sent := 0
	for i := range cfgs {
		cfg := cfgs[i]
		last := cfg.LastSyncAt
		if at, ok := w.attempted[cfg.ID]; ok && (last == nil || at.After(*last)) {
			last = &at
		}
		if !ScheduleDue(cfg, last, now) {
			continue
		}
		w.attempted[cfg.ID] = now
		sent++

		log.Printf("integrationScheduler: sending to %s", cfg.ServiceProviderName)
		sendCtx, cancel := context.WithTimeout(ctx, w.cfg.SendTimeout)
		if err := w.sender.SendScheduled(sendCtx, cfg); err != nil {
			log.Printf("integrationScheduler: %v", err)
		}
		cancel()
	}
	return sent
}

// ScheduleDue reports whether cfg should send at now, given the time of the
// last send. Periods start at the configured sending time: every hour at its
// minute, every day, every Monday, or on the first of the month.
func ScheduleDue(cfg domain.IntegrationConfig, last *time.Time, now time.Time) bool {
	start, ok := periodStart(cfg, now)
	if !ok || now.Before(start) {
		return false
	}
	return last == nil || last.Before(start)
}

func periodStart(cfg domain.IntegrationConfig, now time.Time) (time.Time, bool) {
	at, err := time.Parse("15:04", cfg.SendingTime)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := now.Date()
	loc := now.Location()

	switch cfg.Frequency {
	case domain.FrequencyHourly:
		start := time.Date(y, m, d, now.Hour(), at.Minute(), 0, 0, loc)
		if start.After(now) {
			start = start.Add(-time.Hour)
		}
		return start, true
	case domain.FrequencyDaily:
		return time.Date(y, m, d, at.Hour(), at.Minute(), 0, 0, loc), true
	case domain.FrequencyWeekly:
		back := (int(now.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, at.Hour(), at.Minute(), 0, 0, loc), true
	case domain.FrequencyMonthly:
		return time.Date(y, m, 1, at.Hour(), at.Minute(), 0, 0, loc), true
	}
	return time.Time{}, false
}
