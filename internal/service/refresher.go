package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/domain"
)

// DefaultRefreshInterval is used when no positive interval is configured
const DefaultRefreshInterval = time.Hour

// Refresher keeps the latest badge counts for cheap reads. The service
// publishes new counts after every change and Run rescores on a ticker so
// problems crossing their due time are counted too.
type Refresher struct {
	service  *ReviewService
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	latest domain.QueueSummary
}

// NewRefresher creates a refresher that runs every interval and subscribes
// it to the service's counts
func NewRefresher(service *ReviewService, interval time.Duration, logger *zap.Logger) *Refresher {
	if interval <= 0 {
		logger.Warn("Non-positive refresh interval, using default",
			zap.Duration("interval", interval),
			zap.Duration("default", DefaultRefreshInterval),
		)
		interval = DefaultRefreshInterval
	}
	r := &Refresher{
		service:  service,
		interval: interval,
		logger:   logger,
	}
	service.OnSummary(r.publish)
	return r
}

// Run refreshes once immediately and then on every tick until ctx is done
func (r *Refresher) Run(ctx context.Context) {
	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh rescores now and returns the new counts. Failures keep the previous counts.
func (r *Refresher) Refresh(ctx context.Context) domain.QueueSummary {
	summary, err := r.service.RefreshPriorities(ctx)
	if err != nil {
		r.logger.Warn("Priority refresh failed", zap.Error(err))
		return r.Latest()
	}

	r.logger.Debug("Priorities refreshed",
		zap.Int("total", summary.Total),
		zap.Int("due", summary.Due),
		zap.Int("mastered", summary.Mastered),
	)
	return *summary
}

func (r *Refresher) publish(summary domain.QueueSummary) {
	r.mu.Lock()
	r.latest = summary
	r.mu.Unlock()
}

// Latest returns the most recently published counts
func (r *Refresher) Latest() domain.QueueSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}
