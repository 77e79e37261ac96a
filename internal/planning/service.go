// Package planning owns the weekly-planning workflow: the draft → submitted →
// approved/rejected lifecycle, the compliance calculation against daily task
// schedules, and the query surface both are read through.
package planning

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/internal/apperr"
	"planboard/internal/models"
)

// Service runs the weekly-planning state machine against the store.
type Service struct {
	db        *gorm.DB
	lg        *zap.SugaredLogger
	threshold float64
}

func NewService(db *gorm.DB, lg *zap.SugaredLogger, complianceThreshold float64) *Service {
	return &Service{db: db, lg: lg, threshold: complianceThreshold}
}

// Create opens a draft planning for (user, week, year). The pair is checked
// before insert and additionally guarded by the store's unique index, so a
// concurrent duplicate surfaces as a ValidationError either way.
func (s *Service) Create(ctx context.Context, userID string, weekNumber, year, totalTasksPlanned int) (*models.WeeklyPlanning, error) {
	if weekNumber < 1 || weekNumber > WeeksIn(year) {
		return nil, apperr.Validation("week %d is out of range for %d", weekNumber, year)
	}
	if totalTasksPlanned < 0 {
		return nil, apperr.Validation("total tasks planned must not be negative")
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s not found", userID)
		}
		return nil, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.WeeklyPlanning{}).
		Where("user_id = ? AND week_number = ? AND year = ?", userID, weekNumber, year).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Validation("planning already exists for user %s week %d/%d", userID, weekNumber, year)
	}
	start, end := WeekBounds(year, weekNumber)
	p := models.WeeklyPlanning{
		UserID:            userID,
		WeekNumber:        weekNumber,
		Year:              year,
		WeekStartDate:     start,
		WeekEndDate:       end,
		TotalTasksPlanned: totalTasksPlanned,
		ComplianceStatus:  models.NonCompliant,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation("planning already exists for user %s week %d/%d", userID, weekNumber, year)
		}
		return nil, err
	}
	return &p, nil
}

// Update changes the planned task count. Only drafts are mutable.
func (s *Service) Update(ctx context.Context, id int64, totalTasksPlanned int) (*models.WeeklyPlanning, error) {
	if totalTasksPlanned < 0 {
		return nil, apperr.Validation("total tasks planned must not be negative")
	}
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SubmittedAt != nil {
		return nil, apperr.InvalidState("planning %d is submitted and can no longer be edited", id)
	}
	p.TotalTasksPlanned = totalTasksPlanned
	p.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Submit locks the draft and recomputes compliance against the current
// schedule state, both inside one transaction.
func (s *Service) Submit(ctx context.Context, id int64) (*models.WeeklyPlanning, error) {
	var out *models.WeeklyPlanning
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := getPlanning(tx, id)
		if err != nil {
			return err
		}
		if p.SubmittedAt != nil {
			return apperr.InvalidState("planning %d is already submitted", id)
		}
		now := time.Now()
		status, err := complianceFor(tx, p, s.threshold)
		if err != nil {
			return err
		}
		p.SubmittedAt = &now
		p.ComplianceStatus = status
		p.UpdatedAt = now
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Approve records the decision on a submitted planning.
func (s *Service) Approve(ctx context.Context, id int64, approverID string) (*models.WeeklyPlanning, error) {
	var out *models.WeeklyPlanning
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := reviewable(tx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		p.IsApproved = true
		p.ApprovedAt = &now
		p.ApproverID = &approverID
		p.UpdatedAt = now
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Reject closes the review cycle without approval. A rejected planning is
// terminal; retrying the week means creating a new row.
func (s *Service) Reject(ctx context.Context, id int64, approverID, reason string) (*models.WeeklyPlanning, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("rejection reason must not be blank")
	}
	var out *models.WeeklyPlanning
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := reviewable(tx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		p.RejectedAt = &now
		p.ApproverID = &approverID
		p.RejectionReason = &reason
		p.UpdatedAt = now
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// CalculateCompliance recomputes and persists the compliance status from the
// current completed-schedule count. Idempotent; safe to call standalone. The
// read and the write share one transaction so a concurrent completion toggle
// cannot produce a stale ratio.
func (s *Service) CalculateCompliance(ctx context.Context, id int64) (models.ComplianceStatus, error) {
	var status models.ComplianceStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := getPlanning(tx, id)
		if err != nil {
			return err
		}
		status, err = complianceFor(tx, p, s.threshold)
		if err != nil {
			return err
		}
		if status == p.ComplianceStatus {
			return nil
		}
		return tx.Model(p).Updates(map[string]any{
			"compliance_status": status,
			"updated_at":        time.Now(),
		}).Error
	})
	return status, err
}

// Delete removes the planning and its schedule children. Referential cleanup
// is this engine's job, not the store's.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getPlanning(tx, id); err != nil {
			return err
		}
		if err := tx.Where("planning_id = ?", id).Delete(&models.DailyTaskSchedule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.WeeklyPlanning{}, "id = ?", id).Error
	})
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.WeeklyPlanning, error) {
	return getPlanning(s.db.WithContext(ctx), id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.WeeklyPlanning, error) {
	var ps []models.WeeklyPlanning
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("year desc, week_number desc").
		Find(&ps).Error
	return ps, err
}

func (s *Service) GetByUserWeek(ctx context.Context, userID string, weekNumber, year int) (*models.WeeklyPlanning, error) {
	var p models.WeeklyPlanning
	err := s.db.WithContext(ctx).
		First(&p, "user_id = ? AND week_number = ? AND year = ?", userID, weekNumber, year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("no planning for user %s week %d/%d", userID, weekNumber, year)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByDate maps the date to its ISO week and delegates to the unique lookup.
func (s *Service) GetByDate(ctx context.Context, userID string, date time.Time) (*models.WeeklyPlanning, error) {
	year, week := date.ISOWeek()
	return s.GetByUserWeek(ctx, userID, week, year)
}

func (s *Service) ListByStatus(ctx context.Context, status models.ComplianceStatus) ([]models.WeeklyPlanning, error) {
	var ps []models.WeeklyPlanning
	err := s.db.WithContext(ctx).
		Where("compliance_status = ?", status).
		Order("year desc, week_number desc").
		Find(&ps).Error
	return ps, err
}

// ListPendingApproval returns submitted plannings awaiting a decision.
func (s *Service) ListPendingApproval(ctx context.Context) ([]models.WeeklyPlanning, error) {
	var ps []models.WeeklyPlanning
	err := s.db.WithContext(ctx).
		Where("submitted_at IS NOT NULL AND approved_at IS NULL AND rejected_at IS NULL").
		Order("submitted_at asc").
		Find(&ps).Error
	return ps, err
}

func (s *Service) ListApprovedByUser(ctx context.Context, userID string) ([]models.WeeklyPlanning, error) {
	var ps []models.WeeklyPlanning
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_approved", userID).
		Order("year desc, week_number desc").
		Find(&ps).Error
	return ps, err
}

// ListInRange returns plannings whose week overlaps [from, to].
func (s *Service) ListInRange(ctx context.Context, from, to time.Time) ([]models.WeeklyPlanning, error) {
	var ps []models.WeeklyPlanning
	err := s.db.WithContext(ctx).
		Where("week_start_date <= ? AND week_end_date >= ?", to, from).
		Order("week_start_date asc").
		Find(&ps).Error
	return ps, err
}

func (s *Service) CountCompliantByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.WeeklyPlanning{}).
		Where("user_id = ? AND compliance_status = ?", userID, models.Compliant).
		Count(&n).Error
	return n, err
}

func getPlanning(tx *gorm.DB, id int64) (*models.WeeklyPlanning, error) {
	var p models.WeeklyPlanning
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("planning %d not found", id)
		}
		return nil, err
	}
	return &p, nil
}

// reviewable loads a planning that is submitted and still undecided.
func reviewable(tx *gorm.DB, id int64) (*models.WeeklyPlanning, error) {
	p, err := getPlanning(tx, id)
	if err != nil {
		return nil, err
	}
	if p.SubmittedAt == nil {
		return nil, apperr.InvalidState("planning %d has not been submitted", id)
	}
	if p.ApprovedAt != nil || p.RejectedAt != nil {
		return nil, apperr.InvalidState("planning %d has already been decided", id)
	}
	return p, nil
}

// complianceFor computes the status from the live completed count. A planning
// with zero planned tasks is vacuously compliant. A failing count aborts the
// surrounding transaction rather than reading as zero completions.
func complianceFor(tx *gorm.DB, p *models.WeeklyPlanning, threshold float64) (models.ComplianceStatus, error) {
	if p.TotalTasksPlanned == 0 {
		return models.Compliant, nil
	}
	var completed int64
	if err := tx.Model(&models.DailyTaskSchedule{}).
		Where("planning_id = ? AND is_completed", p.ID).
		Count(&completed).Error; err != nil {
		return "", err
	}
	if float64(completed)/float64(p.TotalTasksPlanned) >= threshold {
		return models.Compliant, nil
	}
	return models.NonCompliant, nil
}
