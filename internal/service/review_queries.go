package service

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/domain"
)

// RecentWindow is how far back GetRecentActivity looks
const RecentWindow = 7 * 24 * time.Hour

// GetReviewQueue returns every non-mastered problem, highest priority first
func (s *ReviewService) GetReviewQueue(ctx context.Context) ([]domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetReviewQueue")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	problems, err := s.store.ListProblems(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	queue := domain.BuildReviewQueue(problems, settings.TagWeights, s.now())
	span.SetAttributes(attribute.Int("queue.size", len(queue)))
	return queue, nil
}

// GetAllProblems returns every tracked problem keyed by slug, scored at the current time
func (s *ReviewService) GetAllProblems(ctx context.Context) (map[string]domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetAllProblems")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	problems, _, err := s.loadScored(ctx)
	if err != nil {
		return nil, err
	}
	all := make(map[string]domain.Problem, len(problems))
	for _, p := range problems {
		all[p.Slug] = p
	}
	return all, nil
}

// GetProblem returns a single problem with a fresh score
func (s *ReviewService) GetProblem(ctx context.Context, slug string) (*domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetProblem")
	defer span.End()

	span.SetAttributes(attribute.String("problem.slug", slug))

	s.mu.Lock()
	defer s.mu.Unlock()

	problem, err := s.store.GetProblem(ctx, slug)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	problem.PriorityScore = domain.CalculatePriority(problem, settings.TagWeights, s.now())
	return problem, nil
}

// GetActivityLog returns the per-day ingestion counts
func (s *ReviewService) GetActivityLog(ctx context.Context) (domain.ActivityLog, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetActivityLog")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.GetActivityLog(ctx)
}

// GetMasteredProblems returns mastered problems, most recently reviewed first
func (s *ReviewService) GetMasteredProblems(ctx context.Context) ([]domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetMasteredProblems")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	problems, _, err := s.loadScored(ctx)
	if err != nil {
		return nil, err
	}

	mastered := make([]domain.Problem, 0)
	for _, p := range problems {
		if p.IsMastered() {
			mastered = append(mastered, p)
		}
	}
	sort.SliceStable(mastered, func(i, j int) bool {
		return mastered[i].LastReviewTime > mastered[j].LastReviewTime
	})
	return mastered, nil
}

// GetRecentActivity returns problems accepted or reviewed within RecentWindow,
// most recently touched first
func (s *ReviewService) GetRecentActivity(ctx context.Context) ([]domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetRecentActivity")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	problems, _, err := s.loadScored(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-RecentWindow).UnixMilli()
	recent := make([]domain.Problem, 0)
	for _, p := range problems {
		if p.LastTouched() >= cutoff {
			recent = append(recent, p)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].LastTouched() > recent[j].LastTouched()
	})
	return recent, nil
}

// GetStats summarizes the schedule for the dashboard
func (s *ReviewService) GetStats(ctx context.Context) (*domain.ProblemStats, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetStats")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	problems, _, err := s.loadScored(ctx)
	if err != nil {
		return nil, err
	}
	log, err := s.store.GetActivityLog(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.ProblemStats{
		Total:         len(problems),
		CurrentStreak: log.CurrentStreak(s.now(), s.location),
		LongestStreak: log.LongestStreak(),
		ByDifficulty:  make(map[domain.Difficulty]int),
		ByStage:       make(map[int]int),
	}
	for _, p := range problems {
		stats.ByDifficulty[p.Difficulty]++
		stats.ByStage[p.Stage]++
		switch {
		case p.IsMastered():
			stats.Mastered++
		case p.PriorityScore > 0:
			stats.Due++
		}
	}
	return stats, nil
}

// GetStagesInfo describes the review schedule
func (s *ReviewService) GetStagesInfo() []domain.StageInfo {
	return domain.StagesInfo()
}

// ExportData captures the whole state as a snapshot document
func (s *ReviewService) ExportData(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.ExportData")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := domain.CollectSnapshot(ctx, s.store)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for slug, p := range snapshot.Problems {
		p.PriorityScore = domain.CalculatePriority(&p, snapshot.Settings.TagWeights, now)
		snapshot.Problems[slug] = p
	}
	snapshot.ExportTime = now.UTC().Format(time.RFC3339)

	span.SetAttributes(attribute.Int("snapshot.problems", len(snapshot.Problems)))
	return snapshot, nil
}

// ImportData replaces the whole state with the snapshot. An invalid snapshot
// is rejected before anything is written. Missing settings or activity log
// keep the current ones.
func (s *ReviewService) ImportData(ctx context.Context, snapshot *domain.Snapshot) (int, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.ImportData")
	defer span.End()

	if snapshot == nil {
		return 0, domain.NewDomainError(domain.ErrInvalidSnapshot, "snapshot is required")
	}
	if err := snapshot.Validate(); err != nil {
		s.logger.Warn("Rejected import", zap.Error(err))
		return 0, err
	}
	span.SetAttributes(attribute.Int("snapshot.problems", len(snapshot.Problems)))

	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Settings == nil {
		current, err := s.store.GetSettings(ctx)
		if err != nil {
			return 0, err
		}
		snapshot.Settings = current
	}
	if snapshot.ActivityLog == nil {
		current, err := s.store.GetActivityLog(ctx)
		if err != nil {
			return 0, err
		}
		snapshot.ActivityLog = current
	}

	if err := s.store.ReplaceAll(ctx, snapshot); err != nil {
		s.logger.Error("Import failed", zap.Error(err))
		return 0, err
	}
	s.committed(ctx, true)

	s.logger.Info("Data imported", zap.Int("problems", len(snapshot.Problems)))
	return len(snapshot.Problems), nil
}

// ClearAllData forgets every problem, setting and activity entry
func (s *ReviewService) ClearAllData(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "ReviewService.ClearAllData")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	empty := &domain.Snapshot{
		Version:     domain.SnapshotVersion,
		Problems:    map[string]domain.Problem{},
		Settings:    domain.DefaultSettings(),
		ActivityLog: domain.ActivityLog{},
	}
	if err := s.store.ReplaceAll(ctx, empty); err != nil {
		return err
	}
	s.committed(ctx, false)

	s.logger.Warn("All review data cleared")
	return nil
}
