package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/leetcurve/backend/internal/domain"
)

// scheduleRepository implements domain.ScheduleStore using GORM
type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *gorm.DB) domain.ScheduleStore {
	return &scheduleRepository{db: db}
}

// GetProblem finds a problem by its slug
func (r *scheduleRepository) GetProblem(ctx context.Context, slug string) (*domain.Problem, error) {
	var problem domain.Problem
	result := r.db.WithContext(ctx).Where("slug = ?", slug).First(&problem)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProblemNotFound
		}
		return nil, domain.StorageError("get problem", result.Error)
	}
	return &problem, nil
}

// PutProblem inserts the problem or overwrites every column of the existing row
func (r *scheduleRepository) PutProblem(ctx context.Context, problem *domain.Problem) error {
	record := problem.Clone()
	return domain.StorageError("put problem", r.db.WithContext(ctx).Save(&record).Error)
}

// DeleteProblem removes a problem by its slug
func (r *scheduleRepository) DeleteProblem(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&domain.Problem{})
	return domain.StorageError("delete problem", result.Error)
}

// ListProblems returns all problems in enumeration order
func (r *scheduleRepository) ListProblems(ctx context.Context) ([]domain.Problem, error) {
	var problems []domain.Problem
	result := r.db.WithContext(ctx).
		Order("first_accepted_time ASC").
		Order("slug ASC").
		Find(&problems)
	if result.Error != nil {
		return nil, domain.StorageError("list problems", result.Error)
	}
	return problems, nil
}

// CountProblems returns the total number of problems
func (r *scheduleRepository) CountProblems(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.Problem{}).Count(&count)
	return count, domain.StorageError("count problems", result.Error)
}

// GetSettings assembles the settings from the tag weight rows
func (r *scheduleRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var rows []domain.TagWeight
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, domain.StorageError("get settings", err)
	}
	settings := domain.DefaultSettings()
	for _, row := range rows {
		settings.TagWeights[row.Tag] = row.Weight
	}
	return settings, nil
}

// PutSettings replaces every tag weight row in one transaction
func (r *scheduleRepository) PutSettings(ctx context.Context, settings *domain.Settings) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return writeSettings(tx, settings)
	})
	return domain.StorageError("put settings", err)
}

// GetActivityLog returns the per-day event counts
func (r *scheduleRepository) GetActivityLog(ctx context.Context) (domain.ActivityLog, error) {
	var rows []domain.ActivityDay
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, domain.StorageError("get activity log", err)
	}
	log := make(domain.ActivityLog, len(rows))
	for _, row := range rows {
		log[row.Day] = row.Events
	}
	return log, nil
}

// IncrementActivity adds one event to day, creating the row on first use
func (r *scheduleRepository) IncrementActivity(ctx context.Context, day string) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"events": gorm.Expr("activity_log.events + 1"),
			}),
		}).
		Create(&domain.ActivityDay{Day: day, Events: 1})
	return domain.StorageError("increment activity", result.Error)
}

// ReplaceAll clears every table and loads the snapshot inside one transaction
func (r *scheduleRepository) ReplaceAll(ctx context.Context, snapshot *domain.Snapshot) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Problem{}).Error; err != nil {
			return err
		}
		if problems := snapshot.ProblemList(); len(problems) > 0 {
			if err := tx.CreateInBatches(&problems, 50).Error; err != nil {
				return err
			}
		}

		settings := snapshot.Settings
		if settings == nil {
			settings = domain.DefaultSettings()
		}
		if err := writeSettings(tx, settings); err != nil {
			return err
		}

		if err := tx.Where("1 = 1").Delete(&domain.ActivityDay{}).Error; err != nil {
			return err
		}
		days := make([]domain.ActivityDay, 0, len(snapshot.ActivityLog))
		for day, events := range snapshot.ActivityLog {
			days = append(days, domain.ActivityDay{Day: day, Events: events})
		}
		if len(days) > 0 {
			return tx.CreateInBatches(&days, 100).Error
		}
		return nil
	})
	return domain.StorageError("replace all", err)
}

func writeSettings(tx *gorm.DB, settings *domain.Settings) error {
	if err := tx.Where("1 = 1").Delete(&domain.TagWeight{}).Error; err != nil {
		return err
	}
	rows := make([]domain.TagWeight, 0, len(settings.TagWeights))
	for tag, weight := range settings.TagWeights {
		rows = append(rows, domain.TagWeight{Tag: tag, Weight: weight})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
