package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"StockBoard/internal/collector"
	"StockBoard/internal/model"
	"StockBoard/internal/notifier"
)

// Purger drops expired cache entries.
type Purger interface {
	Purge() int
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  notifier.Notifier
	Cache     Purger
	Selection model.Selection
	Currency  string
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler. cache may be nil.
func NewScheduler(ctx context.Context, col *collector.Collector, n notifier.Notifier, cache Purger, sel model.Selection, currency string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Cache:     cache,
		Selection: sel,
		Currency:  currency,
		Ctx:       ctx,
	}
}

// RegisterAll registers the refresh, digest and cache purge tasks.
func (s *Scheduler) RegisterAll(refreshCron, digestCron, purgeCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	if s.Cache != nil {
		if _, err := s.Cron.AddFunc(purgeCron, s.purgeTask); err != nil {
			return fmt.Errorf("register purge task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RefreshNow runs the refresh task immediately.
func (s *Scheduler) RefreshNow() {
	s.refreshTask()
}

// refreshTask recomputes the default dashboard so the fetch cache is warm
// for the next interactive request.
func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running refresh task")
	dash, err := s.Collector.Build(s.Ctx, s.Selection)
	if err != nil {
		log.Printf("[ERROR] refresh: %v", err)
		return
	}
	if dash.NoData {
		log.Println("[WARN] refresh: no price data for the default selection")
		return
	}
	log.Printf("[INFO] refresh: %d rows, %d companies", len(dash.Rows), len(dash.Latest))
}

func (s *Scheduler) digestTask() {
	log.Println("[INFO] running digest task")
	msg, err := s.latestDigest(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] digest: %v", err)
		s.trySend(fmt.Sprintf("❌ Price digest failed: %v", err))
		return
	}
	s.trySend(msg)
}

func (s *Scheduler) purgeTask() {
	if n := s.Cache.Purge(); n > 0 {
		log.Printf("[INFO] purged %d expired cache entries", n)
	}
}

func (s *Scheduler) latestDigest(ctx context.Context) (string, error) {
	dash, err := s.Collector.Build(ctx, s.Selection)
	if err != nil {
		return "", err
	}
	return notifier.FormatLatestDigest(dash, s.Currency), nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/latest":
		msg, err := s.latestDigest(ctx)
		if err != nil {
			log.Printf("[ERROR] /latest: %v", err)
			return fmt.Sprintf("❌ %v", err)
		}
		return msg
	case "/companies":
		return notifier.FormatCompanies(s.Selection.Companies)
	default:
		return "Available commands:\n• /latest\n• /companies"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
