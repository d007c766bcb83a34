package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/domain"
)

// Load reads a snapshot document from path.
// A missing file returns (nil, nil).
func Load(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, domain.NewDomainError(domain.ErrInvalidSnapshot, fmt.Sprintf("failed to parse %s: %v", path, err))
	}
	return &snapshot, nil
}

// Restore loads the backup at path into store when store holds no problems
// and the backup holds some. It reports how many problems were restored.
func Restore(ctx context.Context, store domain.ScheduleStore, path string, logger *zap.Logger) (int, error) {
	count, err := store.CountProblems(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	snapshot, err := Load(path)
	if err != nil {
		return 0, err
	}
	if snapshot == nil || len(snapshot.Problems) == 0 {
		return 0, nil
	}
	if err := snapshot.Validate(); err != nil {
		return 0, err
	}
	if err := store.ReplaceAll(ctx, snapshot); err != nil {
		return 0, err
	}

	logger.Info("Restored schedule from backup",
		zap.String("path", path),
		zap.Int("problems", len(snapshot.Problems)),
		zap.Int64("backup_time", snapshot.BackupTime),
	)
	return len(snapshot.Problems), nil
}
