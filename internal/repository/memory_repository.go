package repository

import (
	"context"
	"sync"

	"github.com/leetcurve/backend/internal/domain"
)

// memoryRepository implements domain.ScheduleStore in process memory.
// Records are copied on the way in and out.
type memoryRepository struct {
	mu       sync.RWMutex
	problems map[string]domain.Problem
	settings *domain.Settings
	activity domain.ActivityLog
}

// NewMemoryRepository creates an empty in-memory schedule store
func NewMemoryRepository() domain.ScheduleStore {
	return &memoryRepository{
		problems: make(map[string]domain.Problem),
		settings: domain.DefaultSettings(),
		activity: make(domain.ActivityLog),
	}
}

func (r *memoryRepository) GetProblem(_ context.Context, slug string) (*domain.Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.problems[slug]
	if !ok {
		return nil, domain.ErrProblemNotFound
	}
	c := p.Clone()
	return &c, nil
}

func (r *memoryRepository) PutProblem(_ context.Context, problem *domain.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.problems[problem.Slug] = problem.Clone()
	return nil
}

func (r *memoryRepository) DeleteProblem(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.problems, slug)
	return nil
}

func (r *memoryRepository) ListProblems(_ context.Context) ([]domain.Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]domain.Problem, 0, len(r.problems))
	for _, p := range r.problems {
		list = append(list, p.Clone())
	}
	domain.SortByEnumeration(list)
	return list, nil
}

func (r *memoryRepository) CountProblems(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.problems)), nil
}

func (r *memoryRepository) GetSettings(_ context.Context) (*domain.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.settings.Clone(), nil
}

func (r *memoryRepository) PutSettings(_ context.Context, settings *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = settings.Clone()
	return nil
}

func (r *memoryRepository) GetActivityLog(_ context.Context) (domain.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.activity.Clone(), nil
}

func (r *memoryRepository) IncrementActivity(_ context.Context, day string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activity[day]++
	return nil
}

func (r *memoryRepository) ReplaceAll(_ context.Context, snapshot *domain.Snapshot) error {
	problems := make(map[string]domain.Problem, len(snapshot.Problems))
	for slug, p := range snapshot.Problems {
		problems[slug] = p.Clone()
	}
	settings := domain.DefaultSettings()
	if snapshot.Settings != nil {
		settings = snapshot.Settings.Clone()
	}
	activity := snapshot.ActivityLog.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.problems = problems
	r.settings = settings
	r.activity = activity
	return nil
}
