package domain

import (
	"context"
	"sort"
)

// ScheduleStore defines durable access to the review schedule.
// Every method is atomic with respect to the whole collection: readers never
// observe a partially applied write.
type ScheduleStore interface {
	GetProblem(ctx context.Context, slug string) (*Problem, error)
	// PutProblem inserts or fully replaces the record keyed by problem.Slug
	PutProblem(ctx context.Context, problem *Problem) error
	// DeleteProblem is idempotent; deleting a missing slug is not an error
	DeleteProblem(ctx context.Context, slug string) error
	// ListProblems returns every record in enumeration order
	ListProblems(ctx context.Context) ([]Problem, error)
	CountProblems(ctx context.Context) (int64, error)

	GetSettings(ctx context.Context) (*Settings, error)
	PutSettings(ctx context.Context, settings *Settings) error

	GetActivityLog(ctx context.Context) (ActivityLog, error)
	IncrementActivity(ctx context.Context, day string) error

	// ReplaceAll swaps the entire state for the snapshot's content in one step
	ReplaceAll(ctx context.Context, snapshot *Snapshot) error
}

// SortByEnumeration orders problems the way stores enumerate them:
// oldest first acceptance first, slug as tie-breaker.
func SortByEnumeration(problems []Problem) {
	sort.SliceStable(problems, func(i, j int) bool {
		if problems[i].FirstAcceptedTime != problems[j].FirstAcceptedTime {
			return problems[i].FirstAcceptedTime < problems[j].FirstAcceptedTime
		}
		return problems[i].Slug < problems[j].Slug
	})
}
