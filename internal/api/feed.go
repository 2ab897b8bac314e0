package api

import (
	"context"
	"sync"
	"time"

	"lead-automation/internal/common/logger"
	"lead-automation/internal/common/refresh"
	"lead-automation/internal/models"
)

// FeedSubscription is the refresh-scheduler name the lead feed runs under.
const FeedSubscription = "leads"

type LeadLister interface {
	List(ctx context.Context) ([]models.Record, error)
}

// LeadFeed caches the stored leads for list views and reports newly arrived ones.
type LeadFeed struct {
	lister  LeadLister
	watcher refresh.CountWatcher
	logger  logger.Logger

	mu        sync.RWMutex
	records   []models.Record
	refreshed time.Time
	lastErr   error
}

func NewLeadFeed(lister LeadLister, log logger.Logger) *LeadFeed {
	return &LeadFeed{
		lister:  lister,
		records: []models.Record{},
		logger:  log.WithFields(map[string]interface{}{"component": "lead-feed"}),
	}
}

// Refresh re-reads the store. On failure the previous snapshot is kept.
func (f *LeadFeed) Refresh(ctx context.Context) error {
	records, err := f.lister.List(ctx)
	if err != nil {
		f.mu.Lock()
		f.lastErr = err
		f.mu.Unlock()
		f.logger.Warn("lead feed refresh failed", map[string]interface{}{"error": err.Error()})
		return err
	}

	f.mu.Lock()
	f.records = records
	f.refreshed = time.Now()
	f.lastErr = nil
	f.mu.Unlock()

	if added := f.watcher.Observe(len(records)); added > 0 {
		f.logger.Info("new leads detected", map[string]interface{}{
			"added": added,
			"total": len(records),
		})
	}
	return nil
}

// Subscribe refreshes the feed on every scheduler tick, replacing any earlier subscription.
func (f *LeadFeed) Subscribe(s *refresh.Scheduler) *refresh.Handle {
	return s.Start(FeedSubscription, func(ctx context.Context) {
		_ = f.Refresh(ctx)
	})
}

// Snapshot returns a copy of the cached records and when they were read.
func (f *LeadFeed) Snapshot() ([]models.Record, time.Time, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]models.Record, len(f.records))
	copy(out, f.records)
	return out, f.refreshed, f.lastErr
}
