package planning

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/internal/apperr"
	"planboard/internal/models"
)

// ScheduleService manages the per-day entries under a weekly planning and the
// completion counts the compliance calculation feeds on.
type ScheduleService struct {
	db        *gorm.DB
	lg        *zap.SugaredLogger
	threshold float64
}

func NewScheduleService(db *gorm.DB, lg *zap.SugaredLogger, complianceThreshold float64) *ScheduleService {
	return &ScheduleService{db: db, lg: lg, threshold: complianceThreshold}
}

func (s *ScheduleService) Create(ctx context.Context, planningID int64, day models.DayOfWeek, taskID *int64) (*models.DailyTaskSchedule, error) {
	if !day.Valid() {
		return nil, apperr.Validation("unknown day of week %q", day)
	}
	if _, err := getPlanning(s.db.WithContext(ctx), planningID); err != nil {
		return nil, err
	}
	d := models.DailyTaskSchedule{PlanningID: planningID, DayOfWeek: day, TaskID: taskID}
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *ScheduleService) Update(ctx context.Context, id int64, day models.DayOfWeek, taskID *int64) (*models.DailyTaskSchedule, error) {
	if !day.Valid() {
		return nil, apperr.Validation("unknown day of week %q", day)
	}
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.DayOfWeek = day
	d.TaskID = taskID
	d.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.DailyTaskSchedule{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("schedule %d not found", id)
	}
	return nil
}

func (s *ScheduleService) GetByID(ctx context.Context, id int64) (*models.DailyTaskSchedule, error) {
	var d models.DailyTaskSchedule
	if err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("schedule %d not found", id)
		}
		return nil, err
	}
	return &d, nil
}

func (s *ScheduleService) ListAll(ctx context.Context) ([]models.DailyTaskSchedule, error) {
	var ds []models.DailyTaskSchedule
	err := s.db.WithContext(ctx).Order("planning_id, id").Find(&ds).Error
	return ds, err
}

func (s *ScheduleService) ListByPlanning(ctx context.Context, planningID int64) ([]models.DailyTaskSchedule, error) {
	var ds []models.DailyTaskSchedule
	err := s.db.WithContext(ctx).Where("planning_id = ?", planningID).Order("id").Find(&ds).Error
	return ds, err
}

// ListByDate returns every user's entries for the given calendar date,
// joining through the owning plannings for that ISO week.
func (s *ScheduleService) ListByDate(ctx context.Context, date time.Time) ([]models.DailyTaskSchedule, error) {
	year, week := date.ISOWeek()
	var ds []models.DailyTaskSchedule
	err := s.db.WithContext(ctx).
		Joins("JOIN weekly_plannings wp ON wp.id = daily_task_schedules.planning_id").
		Where("wp.week_number = ? AND wp.year = ? AND daily_task_schedules.day_of_week = ?",
			week, year, dayFor(date)).
		Find(&ds).Error
	return ds, err
}

func (s *ScheduleService) ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]models.DailyTaskSchedule, error) {
	year, week := date.ISOWeek()
	var ds []models.DailyTaskSchedule
	err := s.db.WithContext(ctx).
		Joins("JOIN weekly_plannings wp ON wp.id = daily_task_schedules.planning_id").
		Where("wp.user_id = ? AND wp.week_number = ? AND wp.year = ? AND daily_task_schedules.day_of_week = ?",
			userID, week, year, dayFor(date)).
		Find(&ds).Error
	return ds, err
}

// ListByUserAndWeek resolves the owning planning first, then returns its
// children; an absent planning is a NotFoundError, not an empty list.
func (s *ScheduleService) ListByUserAndWeek(ctx context.Context, userID string, weekNumber, year int) ([]models.DailyTaskSchedule, error) {
	var p models.WeeklyPlanning
	err := s.db.WithContext(ctx).
		First(&p, "user_id = ? AND week_number = ? AND year = ?", userID, weekNumber, year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("no planning for user %s week %d/%d", userID, weekNumber, year)
	}
	if err != nil {
		return nil, err
	}
	return s.ListByPlanning(ctx, p.ID)
}

// MarkCompleted flips the completion flag and refreshes the owning planning's
// compliance status in the same transaction, so a concurrent recomputation
// never reads a half-applied toggle.
func (s *ScheduleService) MarkCompleted(ctx context.Context, id int64) (*models.DailyTaskSchedule, error) {
	return s.setCompleted(ctx, id, true)
}

func (s *ScheduleService) MarkIncomplete(ctx context.Context, id int64) (*models.DailyTaskSchedule, error) {
	return s.setCompleted(ctx, id, false)
}

func (s *ScheduleService) setCompleted(ctx context.Context, id int64, completed bool) (*models.DailyTaskSchedule, error) {
	var out *models.DailyTaskSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.DailyTaskSchedule
		if err := tx.First(&d, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("schedule %d not found", id)
			}
			return err
		}
		d.IsCompleted = completed
		d.UpdatedAt = time.Now()
		if err := tx.Save(&d).Error; err != nil {
			return err
		}
		p, err := getPlanning(tx, d.PlanningID)
		if err != nil {
			return err
		}
		status, err := complianceFor(tx, p, s.threshold)
		if err != nil {
			return err
		}
		if status != p.ComplianceStatus {
			if err := tx.Model(p).Update("compliance_status", status).Error; err != nil {
				return err
			}
		}
		out = &d
		return nil
	})
	return out, err
}

func (s *ScheduleService) CountCompleted(ctx context.Context, planningID int64) (int64, error) {
	return s.countByFlag(ctx, planningID, true)
}

func (s *ScheduleService) CountPending(ctx context.Context, planningID int64) (int64, error) {
	return s.countByFlag(ctx, planningID, false)
}

func (s *ScheduleService) countByFlag(ctx context.Context, planningID int64, completed bool) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.DailyTaskSchedule{}).
		Where("planning_id = ? AND is_completed = ?", planningID, completed).
		Count(&n).Error
	return n, err
}

func dayFor(date time.Time) models.DayOfWeek {
	switch date.Weekday() {
	case time.Monday:
		return models.Monday
	case time.Tuesday:
		return models.Tuesday
	case time.Wednesday:
		return models.Wednesday
	case time.Thursday:
		return models.Thursday
	case time.Friday:
		return models.Friday
	case time.Saturday:
		return models.Saturday
	default:
		return models.Sunday
	}
}
