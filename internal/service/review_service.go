package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/leetcurve/backend/internal/domain"
	"github.com/leetcurve/backend/internal/infrastructure"
)

// BackupNotifier is told after every committed mutation so the secondary
// store can catch up. Implementations must not block.
type BackupNotifier interface {
	NotifyBackup()
}

const msPerMinute = int64(time.Minute / time.Millisecond)

type noopNotifier struct{}

func (noopNotifier) NotifyBackup() {}

// ReviewService owns the review schedule: ingestion, queue building and
// every mutation of the store go through it one at a time.
type ReviewService struct {
	mu       sync.Mutex
	store    domain.ScheduleStore
	notifier BackupNotifier
	cooldown time.Duration
	location *time.Location
	now      func() time.Time
	metrics  *infrastructure.TelemetryMetrics
	tracer   trace.Tracer
	logger   *zap.Logger

	onSummary func(domain.QueueSummary)
}

// NewReviewService creates a new review service
func NewReviewService(
	store domain.ScheduleStore,
	notifier BackupNotifier,
	scheduleConfig *infrastructure.ScheduleConfig,
	metrics *infrastructure.TelemetryMetrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *ReviewService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ReviewService{
		store:    store,
		notifier: notifier,
		cooldown: scheduleConfig.Cooldown,
		location: scheduleConfig.Location(),
		now:      time.Now,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// WithClock replaces the time source, for tests and replays
func (s *ReviewService) WithClock(now func() time.Time) *ReviewService {
	s.now = now
	return s
}

// OnSummary registers fn to receive fresh queue counts whenever the schedule
// changes or is rescored. fn runs with the service lock held and must not
// call back into the service.
func (s *ReviewService) OnSummary(fn func(domain.QueueSummary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSummary = fn
}

// IngestAcceptedSubmission applies one accepted submission to the schedule.
// A submission inside the cooldown window succeeds without changing anything.
func (s *ReviewService) IngestAcceptedSubmission(ctx context.Context, event *domain.SubmissionEvent) (*domain.IngestResult, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.IngestAcceptedSubmission")
	defer span.End()

	slug := strings.TrimSpace(event.Slug)
	span.SetAttributes(attribute.String("problem.slug", slug))
	if slug == "" {
		s.recordIngest(ctx, "invalid")
		return nil, domain.InvalidInput("submission has no problem slug")
	}

	normalized := s.normalizeEvent(event)
	event = &normalized

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	ts := event.Timestamp
	if ts <= 0 {
		ts = now.UnixMilli()
	}

	existing, err := s.store.GetProblem(ctx, slug)
	if err != nil && !errors.Is(err, domain.ErrProblemNotFound) {
		s.logger.Error("Failed to load problem", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	var result *domain.IngestResult
	if existing == nil {
		result, err = s.createFromSubmission(ctx, slug, ts, event, settings, now)
	} else {
		result, err = s.advanceFromSubmission(ctx, existing, ts, event, settings, now)
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("ingest.outcome", string(result.Outcome)))
	s.recordIngest(ctx, string(result.Outcome))
	if result.Outcome != domain.IngestCooldown {
		s.committed(ctx, true)
	}
	return result, nil
}

// normalizeEvent returns a copy of event with difficulty and origin in their
// canonical form. Unknown values are dropped so the stored or default value wins.
func (s *ReviewService) normalizeEvent(event *domain.SubmissionEvent) domain.SubmissionEvent {
	normalized := *event
	normalized.Slug = strings.TrimSpace(event.Slug)

	if event.Difficulty != "" {
		d, ok := domain.ParseDifficulty(string(event.Difficulty))
		if !ok {
			s.logger.Warn("Ignoring unknown difficulty",
				zap.String("slug", normalized.Slug),
				zap.String("difficulty", string(event.Difficulty)),
			)
		}
		normalized.Difficulty = d
	}
	if event.Origin != "" {
		o, ok := domain.ParseOrigin(string(event.Origin))
		if !ok {
			s.logger.Warn("Ignoring unknown origin",
				zap.String("slug", normalized.Slug),
				zap.String("origin", string(event.Origin)),
			)
		}
		normalized.Origin = o
	}
	return normalized
}

func (s *ReviewService) createFromSubmission(
	ctx context.Context,
	slug string,
	ts int64,
	event *domain.SubmissionEvent,
	settings *domain.Settings,
	now time.Time,
) (*domain.IngestResult, error) {
	origin := event.Origin
	if origin == "" {
		origin = domain.OriginCom
	}

	problem := &domain.Problem{
		Slug:              slug,
		QuestionID:        event.QuestionID,
		Title:             orDefault(event.Title, slug),
		Difficulty:        domain.Difficulty(orDefault(string(event.Difficulty), string(domain.DifficultyMedium))),
		Tags:              datatypes.JSONSlice[string](append([]string{}, event.Tags...)),
		URL:               orDefault(event.URL, origin.ProblemURL(slug)),
		Origin:            origin,
		Stage:             0,
		FirstAcceptedTime: ts,
		LastReviewTime:    ts,
		ReviewHistory:     datatypes.JSONSlice[int64]{ts},
		CodeHistory:       datatypes.JSONSlice[domain.CodeEntry]{},
	}
	if code := strings.TrimSpace(event.SubmittedCode); code != "" {
		problem.Code = code
		problem.CodeHistory = append(problem.CodeHistory, domain.CodeEntry{Code: code, Lang: event.SubmittedLang, Time: ts})
	}
	problem.PriorityScore = domain.CalculatePriority(problem, settings.TagWeights, now)

	if err := s.store.PutProblem(ctx, problem); err != nil {
		s.logger.Error("Failed to save new problem", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	s.logActivity(ctx, now)

	s.logger.Info("Problem added to review queue",
		zap.String("slug", slug),
		zap.String("difficulty", string(problem.Difficulty)),
		zap.String("origin", string(problem.Origin)),
	)

	return &domain.IngestResult{
		Outcome: domain.IngestCreated,
		Message: "New problem added to the review queue",
		Problem: problem,
	}, nil
}

func (s *ReviewService) advanceFromSubmission(
	ctx context.Context,
	problem *domain.Problem,
	ts int64,
	event *domain.SubmissionEvent,
	settings *domain.Settings,
	now time.Time,
) (*domain.IngestResult, error) {
	cooldownMs := s.cooldown.Milliseconds()
	if elapsedMs := ts - problem.LastReviewTime; elapsedMs < cooldownMs {
		// an event older than the last review waits out the full cooldown
		remainingMs := min(cooldownMs-elapsedMs, cooldownMs)
		remaining := (remainingMs + msPerMinute - 1) / msPerMinute
		problem.PriorityScore = domain.CalculatePriority(problem, settings.TagWeights, now)
		return &domain.IngestResult{
			Outcome: domain.IngestCooldown,
			Message: fmt.Sprintf("Still in cooldown, %d minutes remain", remaining),
			Problem: problem,
		}, nil
	}

	problem.Stage = domain.NextStage(problem.Stage)
	problem.LastReviewTime = ts
	problem.ReviewHistory = append(problem.ReviewHistory, ts)

	if len(event.Tags) > 0 {
		problem.Tags = datatypes.JSONSlice[string](append([]string{}, event.Tags...))
	}
	if event.Difficulty != "" {
		problem.Difficulty = event.Difficulty
	}
	if event.Title != "" {
		problem.Title = event.Title
	}
	if event.Origin != "" {
		problem.Origin = event.Origin
	}
	if event.URL != "" {
		problem.URL = event.URL
	}
	if event.QuestionID != "" {
		problem.QuestionID = event.QuestionID
	}
	if code := strings.TrimSpace(event.SubmittedCode); code != "" {
		problem.CodeHistory = append(problem.CodeHistory, domain.CodeEntry{Code: code, Lang: event.SubmittedLang, Time: ts})
		problem.Code = code
	}
	problem.PriorityScore = domain.CalculatePriority(problem, settings.TagWeights, now)

	if err := s.store.PutProblem(ctx, problem); err != nil {
		s.logger.Error("Failed to save problem", zap.String("slug", problem.Slug), zap.Error(err))
		return nil, err
	}
	s.logActivity(ctx, now)

	label := domain.StageAt(problem.Stage).Label
	s.logger.Info("Problem advanced",
		zap.String("slug", problem.Slug),
		zap.Int("stage", problem.Stage),
		zap.String("label", label),
	)

	return &domain.IngestResult{
		Outcome: domain.IngestAdvanced,
		Message: "Advanced to stage " + label,
		Problem: problem,
	}, nil
}

// AddProblem tracks a problem entered by hand. The slug is derived from the title.
func (s *ReviewService) AddProblem(ctx context.Context, req *domain.AddProblemRequest) (*domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.AddProblem")
	defer span.End()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.InvalidInput("title is required")
	}
	if req.Difficulty != "" && !req.Difficulty.IsValid() {
		return nil, domain.InvalidInput("unknown difficulty %q", req.Difficulty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	slug := domain.Slugify(title, now)
	span.SetAttributes(attribute.String("problem.slug", slug))

	if _, err := s.store.GetProblem(ctx, slug); err == nil {
		return nil, domain.NewDomainError(domain.ErrProblemExists, "problem "+slug+" is already tracked")
	} else if !errors.Is(err, domain.ErrProblemNotFound) {
		return nil, err
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	origin := domain.OriginFromURL(req.URL)
	ts := now.UnixMilli()
	problem := &domain.Problem{
		Slug:              slug,
		QuestionID:        req.QuestionID,
		Title:             title,
		Difficulty:        domain.Difficulty(orDefault(string(req.Difficulty), string(domain.DifficultyMedium))),
		Tags:              datatypes.JSONSlice[string](append([]string{}, req.Tags...)),
		URL:               orDefault(req.URL, origin.ProblemURL(slug)),
		Origin:            origin,
		FirstAcceptedTime: ts,
		LastReviewTime:    ts,
		ReviewHistory:     datatypes.JSONSlice[int64]{ts},
		Note:              req.Note,
		CodeHistory:       datatypes.JSONSlice[domain.CodeEntry]{},
	}
	problem.PriorityScore = domain.CalculatePriority(problem, settings.TagWeights, now)

	if err := s.store.PutProblem(ctx, problem); err != nil {
		return nil, err
	}
	s.logActivity(ctx, now)
	s.committed(ctx, true)

	s.logger.Info("Problem added manually", zap.String("slug", slug))
	return problem, nil
}

// UpdateNote edits the note and latest code of a problem
func (s *ReviewService) UpdateNote(ctx context.Context, req *domain.UpdateNoteRequest) error {
	ctx, span := s.tracer.Start(ctx, "ReviewService.UpdateNote")
	defer span.End()

	span.SetAttributes(attribute.String("problem.slug", req.Slug))
	if req.Slug == "" {
		return domain.InvalidInput("slug is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	problem, err := s.store.GetProblem(ctx, req.Slug)
	if err != nil {
		return err
	}
	if req.Note != nil {
		problem.Note = *req.Note
	}
	if req.Code != nil {
		problem.Code = *req.Code
	}
	if err := s.store.PutProblem(ctx, problem); err != nil {
		return err
	}
	s.notifier.NotifyBackup()
	return nil
}

// DeleteProblem stops tracking a problem. Deleting an unknown slug succeeds.
func (s *ReviewService) DeleteProblem(ctx context.Context, slug string) error {
	ctx, span := s.tracer.Start(ctx, "ReviewService.DeleteProblem")
	defer span.End()

	span.SetAttributes(attribute.String("problem.slug", slug))
	if slug == "" {
		return domain.InvalidInput("slug is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteProblem(ctx, slug); err != nil {
		return err
	}
	s.committed(ctx, true)

	s.logger.Info("Problem deleted", zap.String("slug", slug))
	return nil
}

// ResetProblem sends a problem back to the first stage, starting now.
// History, note and code are kept.
func (s *ReviewService) ResetProblem(ctx context.Context, slug string) (*domain.Problem, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.ResetProblem")
	defer span.End()

	span.SetAttributes(attribute.String("problem.slug", slug))
	if slug == "" {
		return nil, domain.InvalidInput("slug is required")
	}

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

	now := s.now()
	problem.Stage = 0
	problem.LastReviewTime = now.UnixMilli()
	problem.PriorityScore = domain.CalculatePriority(problem, settings.TagWeights, now)

	if err := s.store.PutProblem(ctx, problem); err != nil {
		return nil, err
	}
	s.committed(ctx, true)

	s.logger.Info("Problem reset", zap.String("slug", slug))
	return problem, nil
}

// GetSettings returns the current settings
func (s *ReviewService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.GetSettings")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.GetSettings(ctx)
}

// SaveSettings validates and stores new settings. Priorities follow the new
// weights on the next read.
func (s *ReviewService) SaveSettings(ctx context.Context, settings *domain.Settings) (*domain.QueueSummary, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.SaveSettings")
	defer span.End()

	if settings == nil {
		return nil, domain.InvalidInput("settings are required")
	}
	if settings.TagWeights == nil {
		settings.TagWeights = map[string]float64{}
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("settings.tag_weights", len(settings.TagWeights)))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.PutSettings(ctx, settings); err != nil {
		return nil, err
	}
	s.notifier.NotifyBackup()

	return s.refreshLocked(ctx)
}

// RefreshPriorities recomputes every score at the current time and reports
// the badge counts
func (s *ReviewService) RefreshPriorities(ctx context.Context) (*domain.QueueSummary, error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.RefreshPriorities")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	summary, err := s.refreshLocked(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("queue.due", summary.Due),
		attribute.Int("queue.mastered", summary.Mastered),
	)
	return summary, nil
}

func (s *ReviewService) refreshLocked(ctx context.Context) (*domain.QueueSummary, error) {
	problems, _, err := s.loadScored(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.QueueSummary{Total: len(problems)}
	for i := range problems {
		switch {
		case problems[i].IsMastered():
			summary.Mastered++
		case problems[i].PriorityScore > 0:
			summary.Due++
		}
	}

	if s.metrics != nil {
		s.metrics.ProblemsDue.Record(ctx, int64(summary.Due))
		s.metrics.ProblemsMastered.Record(ctx, int64(summary.Mastered))
	}
	if s.onSummary != nil {
		s.onSummary(*summary)
	}
	return summary, nil
}

// committed runs after a mutation is written. Caller holds s.mu.
func (s *ReviewService) committed(ctx context.Context, backup bool) {
	if backup {
		s.notifier.NotifyBackup()
	}
	if s.onSummary == nil {
		return
	}
	if _, err := s.refreshLocked(ctx); err != nil {
		s.logger.Warn("Failed to recount queue after change", zap.Error(err))
	}
}

// loadScored reads every problem with its priority computed at the current time
func (s *ReviewService) loadScored(ctx context.Context) ([]domain.Problem, *domain.Settings, error) {
	problems, err := s.store.ListProblems(ctx)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, nil, err
	}
	domain.RefreshPriorities(problems, settings.TagWeights, s.now())
	return problems, settings, nil
}

func (s *ReviewService) logActivity(ctx context.Context, now time.Time) {
	day := domain.DayKey(now, s.location)
	if err := s.store.IncrementActivity(ctx, day); err != nil {
		// The review itself is already committed.
		s.logger.Warn("Failed to record activity", zap.String("day", day), zap.Error(err))
	}
}

func (s *ReviewService) recordIngest(ctx context.Context, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.SubmissionsIngested.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
