// Package backup keeps a JSON copy of the schedule outside the primary store
// and restores from it when the primary store starts out empty.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/infrastructure"
)

// writeTimeout bounds a single debounced write
const writeTimeout = 30 * time.Second

// FileNotifier writes the snapshot document to a file a short while after the
// last mutation. Bursts of mutations produce one write.
type FileNotifier struct {
	store    domain.ScheduleStore
	path     string
	debounce time.Duration
	metrics  *infrastructure.TelemetryMetrics
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	closed  bool
	writeMu sync.Mutex
}

// NewFileNotifier creates a notifier writing to config.Path
func NewFileNotifier(
	store domain.ScheduleStore,
	config *infrastructure.BackupConfig,
	metrics *infrastructure.TelemetryMetrics,
	logger *zap.Logger,
) *FileNotifier {
	return &FileNotifier{
		store:    store,
		path:     config.Path,
		debounce: config.Debounce,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// NotifyBackup schedules a write, pushing back any write already scheduled
func (n *FileNotifier) NotifyBackup() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.pending = true
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.debounce, n.fire)
}

func (n *FileNotifier) fire() {
	n.mu.Lock()
	if !n.pending {
		n.mu.Unlock()
		return
	}
	n.pending = false
	n.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := n.write(ctx); err != nil {
		n.logger.Warn("Backup write failed", zap.String("path", n.path), zap.Error(err))
	}
}

// Flush writes immediately if a write is scheduled
func (n *FileNotifier) Flush(ctx context.Context) error {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	pending := n.pending
	n.pending = false
	n.mu.Unlock()

	if !pending {
		// wait out a write already started by the timer
		n.writeMu.Lock()
		n.writeMu.Unlock()
		return nil
	}
	return n.write(ctx)
}

// Close flushes the pending write and ignores later notifications
func (n *FileNotifier) Close(ctx context.Context) error {
	err := n.Flush(ctx)

	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()

	return err
}

func (n *FileNotifier) write(ctx context.Context) error {
	n.writeMu.Lock()
	defer n.writeMu.Unlock()

	snapshot, err := domain.CollectSnapshot(ctx, n.store)
	if err != nil {
		n.record(ctx, "error")
		return err
	}
	if len(snapshot.Problems) == 0 {
		n.record(ctx, "skipped")
		return nil
	}
	snapshot.BackupTime = n.now().UnixMilli()

	if err := writeFile(n.path, snapshot); err != nil {
		n.record(ctx, "error")
		return err
	}

	n.record(ctx, "ok")
	n.logger.Debug("Backup written",
		zap.String("path", n.path),
		zap.Int("problems", len(snapshot.Problems)),
	)
	return nil
}

func (n *FileNotifier) record(ctx context.Context, result string) {
	if n.metrics == nil {
		return
	}
	n.metrics.BackupWrites.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// writeFile replaces path with the snapshot through a temp file and rename
func writeFile(path string, snapshot *domain.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
