package domain

import (
	"context"
	"time"
)

// SnapshotVersion is the schema version written into every snapshot
const SnapshotVersion = "1.0.0"

// Snapshot is the versioned document holding the whole persisted state.
// It is the export format, the import format and the backup format.
type Snapshot struct {
	Version     string             `json:"version"`
	ExportTime  string             `json:"exportTime,omitempty"`
	BackupTime  int64              `json:"backupTime,omitempty"`
	Problems    map[string]Problem `json:"problems"`
	Settings    *Settings          `json:"settings,omitempty"`
	ActivityLog ActivityLog        `json:"activityLog,omitempty"`
}

// Validate checks the snapshot and normalizes its records in place.
// Nothing may be written from a snapshot that fails validation.
func (s *Snapshot) Validate() error {
	if s.Problems == nil {
		return NewDomainError(ErrInvalidSnapshot, "snapshot has no problems collection")
	}
	for key, p := range s.Problems {
		if key == "" {
			return NewDomainError(ErrInvalidSnapshot, "snapshot contains a problem without slug")
		}
		if p.Slug == "" {
			p.Slug = key
		}
		if p.Slug != key {
			return NewDomainError(ErrInvalidSnapshot, "problem key "+key+" does not match slug "+p.Slug)
		}
		if p.Stage < 0 || p.Stage > MasteredStage {
			return NewDomainError(ErrInvalidSnapshot, "problem "+key+" has a stage outside the schedule")
		}
		p.normalize()
		s.Problems[key] = p
	}
	if s.Settings != nil {
		if s.Settings.TagWeights == nil {
			s.Settings.TagWeights = map[string]float64{}
		}
		if err := s.Settings.Validate(); err != nil {
			return NewDomainError(ErrInvalidSnapshot, err.Error())
		}
	}
	for day, count := range s.ActivityLog {
		if _, err := time.Parse(DayLayout, day); err != nil || count < 0 {
			return NewDomainError(ErrInvalidSnapshot, "activity log entry "+day+" is malformed")
		}
	}
	return nil
}

// ProblemList returns the snapshot's problems in store enumeration order
func (s *Snapshot) ProblemList() []Problem {
	list := make([]Problem, 0, len(s.Problems))
	for _, p := range s.Problems {
		list = append(list, p)
	}
	SortByEnumeration(list)
	return list
}

// CollectSnapshot reads the full state of store into a new snapshot
func CollectSnapshot(ctx context.Context, store ScheduleStore) (*Snapshot, error) {
	problems, err := store.ListProblems(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	log, err := store.GetActivityLog(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		Problems:    make(map[string]Problem, len(problems)),
		Settings:    settings,
		ActivityLog: log,
	}
	for _, p := range problems {
		snapshot.Problems[p.Slug] = p
	}
	return snapshot, nil
}
