package planning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/internal/apperr"
	"planboard/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Task{},
		&models.WeeklyPlanning{}, &models.DailyTaskSchedule{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role models.Role) models.User {
	t.Helper()
	u := models.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		Username:     uuid.NewString(),
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func newServices(t *testing.T) (*Service, *ScheduleService, *gorm.DB) {
	db := testDB(t)
	lg := zap.NewNop().Sugar()
	return NewService(db, lg, 0.8), NewScheduleService(db, lg, 0.8), db
}

func TestCreatePlanning(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)

	p, err := svc.Create(ctx, u.ID, 1, 2024, 5)
	require.NoError(t, err)
	assert.Equal(t, models.NonCompliant, p.ComplianceStatus)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), p.WeekStartDate)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), p.WeekEndDate)
	assert.Nil(t, p.SubmittedAt)
	assert.False(t, p.IsApproved)
}

func TestCreatePlanningDuplicateWeek(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)

	_, err := svc.Create(ctx, u.ID, 1, 2024, 5)
	require.NoError(t, err)
	_, err = svc.Create(ctx, u.ID, 1, 2024, 8)
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))

	// A different week or another user is fine.
	_, err = svc.Create(ctx, u.ID, 2, 2024, 5)
	assert.NoError(t, err)
	other := seedUser(t, db, models.RoleUser)
	_, err = svc.Create(ctx, other.ID, 1, 2024, 5)
	assert.NoError(t, err)
}

func TestCreatePlanningValidation(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)

	var ve *apperr.ValidationError
	_, err := svc.Create(ctx, u.ID, 0, 2024, 5)
	require.True(t, errors.As(err, &ve))
	_, err = svc.Create(ctx, u.ID, 54, 2024, 5)
	require.True(t, errors.As(err, &ve))
	_, err = svc.Create(ctx, u.ID, 1, 2024, -1)
	require.True(t, errors.As(err, &ve))

	var nf *apperr.NotFoundError
	_, err = svc.Create(ctx, uuid.NewString(), 1, 2024, 5)
	require.True(t, errors.As(err, &nf))
}

func TestUpdateLockedAfterSubmit(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)
	p, err := svc.Create(ctx, u.ID, 3, 2024, 5)
	require.NoError(t, err)

	p, err = svc.Update(ctx, p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, p.TotalTasksPlanned)

	_, err = svc.Submit(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, 9)
	var is *apperr.InvalidStateError
	require.True(t, errors.As(err, &is))
}

func TestSubmitUnknownAndTwice(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)

	var nf *apperr.NotFoundError
	_, err := svc.Submit(ctx, 404)
	require.True(t, errors.As(err, &nf))

	p, err := svc.Create(ctx, u.ID, 3, 2024, 0)
	require.NoError(t, err)
	p, err = svc.Submit(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, p.SubmittedAt)

	_, err = svc.Submit(ctx, p.ID)
	var is *apperr.InvalidStateError
	require.True(t, errors.As(err, &is))
}

func seedSchedules(t *testing.T, db *gorm.DB, planningID int64, completed, pending int) {
	t.Helper()
	days := []models.DayOfWeek{models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday, models.Saturday, models.Sunday}
	for i := 0; i < completed+pending; i++ {
		d := models.DailyTaskSchedule{
			PlanningID:  planningID,
			DayOfWeek:   days[i%len(days)],
			IsCompleted: i < completed,
		}
		require.NoError(t, db.Create(&d).Error)
	}
}

func TestComplianceThreshold(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)

	p, err := svc.Create(ctx, u.ID, 10, 2024, 10)
	require.NoError(t, err)

	// 8 of 10 meets the 80% threshold.
	seedSchedules(t, db, p.ID, 8, 2)
	status, err := svc.CalculateCompliance(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Compliant, status)

	// Idempotent without schedule changes.
	status, err = svc.CalculateCompliance(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Compliant, status)

	// 7 of 10 does not.
	var one models.DailyTaskSchedule
	require.NoError(t, db.First(&one, "planning_id = ? AND is_completed", p.ID).Error)
	require.NoError(t, db.Model(&one).Update("is_completed", false).Error)
	status, err = svc.CalculateCompliance(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NonCompliant, status)
}

func TestComplianceSurfacesStoreFailure(t *testing.T) {
	svc, sched, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)

	p, err := svc.Create(ctx, u.ID, 15, 2024, 2)
	require.NoError(t, err)
	d1, err := sched.Create(ctx, p.ID, models.Monday, nil)
	require.NoError(t, err)
	d2, err := sched.Create(ctx, p.ID, models.Tuesday, nil)
	require.NoError(t, err)
	_, err = sched.MarkCompleted(ctx, d1.ID)
	require.NoError(t, err)
	_, err = sched.MarkCompleted(ctx, d2.ID)
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, models.Compliant, got.ComplianceStatus)

	// An unreadable completed count must abort the recomputation, not be
	// treated as zero completions.
	require.NoError(t, db.Migrator().DropTable(&models.DailyTaskSchedule{}))
	_, err = svc.CalculateCompliance(ctx, p.ID)
	require.Error(t, err)

	got, err = svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Compliant, got.ComplianceStatus)
}

func TestComplianceZeroPlanned(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)

	p, err := svc.Create(ctx, u.ID, 11, 2024, 0)
	require.NoError(t, err)
	status, err := svc.CalculateCompliance(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Compliant, status)
}

func TestApproveRequiresSubmission(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)
	mgr := seedUser(t, db, models.RoleProjectManager)

	p, err := svc.Create(ctx, u.ID, 12, 2024, 5)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, p.ID, mgr.ID)
	var is *apperr.InvalidStateError
	require.True(t, errors.As(err, &is))

	_, err = svc.Submit(ctx, p.ID)
	require.NoError(t, err)
	p, err = svc.Approve(ctx, p.ID, mgr.ID)
	require.NoError(t, err)
	assert.True(t, p.IsApproved)
	require.NotNil(t, p.ApprovedAt)
	require.NotNil(t, p.SubmittedAt)
	assert.False(t, p.ApprovedAt.Before(*p.SubmittedAt))
	require.NotNil(t, p.ApproverID)
	assert.Equal(t, mgr.ID, *p.ApproverID)

	// Decided plannings are terminal for the review cycle.
	_, err = svc.Approve(ctx, p.ID, mgr.ID)
	require.True(t, errors.As(err, &is))
	_, err = svc.Reject(ctx, p.ID, mgr.ID, "late")
	require.True(t, errors.As(err, &is))
}

func TestRejectNeedsReason(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)
	mgr := seedUser(t, db, models.RoleProjectManager)

	p, err := svc.Create(ctx, u.ID, 13, 2024, 5)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, p.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctx, p.ID, mgr.ID, "   ")
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))

	p, err = svc.Reject(ctx, p.ID, mgr.ID, "plan too thin")
	require.NoError(t, err)
	assert.False(t, p.IsApproved)
	require.NotNil(t, p.RejectedAt)
	require.NotNil(t, p.RejectionReason)
	assert.Equal(t, "plan too thin", *p.RejectionReason)
}

func TestDeleteCascadesSchedules(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)

	p, err := svc.Create(ctx, u.ID, 14, 2024, 3)
	require.NoError(t, err)
	seedSchedules(t, db, p.ID, 1, 2)

	require.NoError(t, svc.Delete(ctx, p.ID))

	var n int64
	db.Model(&models.DailyTaskSchedule{}).Where("planning_id = ?", p.ID).Count(&n)
	assert.Zero(t, n)

	var nf *apperr.NotFoundError
	err = svc.Delete(ctx, p.ID)
	require.True(t, errors.As(err, &nf))
}

func TestPlanningQueries(t *testing.T) {
	svc, _, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)
	mgr := seedUser(t, db, models.RoleProjectManager)

	p1, err := svc.Create(ctx, u.ID, 1, 2024, 0)
	require.NoError(t, err)
	p2, err := svc.Create(ctx, u.ID, 2, 2024, 5)
	require.NoError(t, err)

	byWeek, err := svc.GetByUserWeek(ctx, u.ID, 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, byWeek.ID)

	// 2024-01-10 is a Wednesday in ISO week 2.
	byDate, err := svc.GetByDate(ctx, u.ID, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, p2.ID, byDate.ID)

	mine, err := svc.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = svc.Submit(ctx, p1.ID)
	require.NoError(t, err)
	pending, err := svc.ListPendingApproval(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, p1.ID, pending[0].ID)

	_, err = svc.Approve(ctx, p1.ID, mgr.ID)
	require.NoError(t, err)
	pending, err = svc.ListPendingApproval(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	approved, err := svc.ListApprovedByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, p1.ID, approved[0].ID)

	compliant, err := svc.ListByStatus(ctx, models.Compliant)
	require.NoError(t, err)
	require.Len(t, compliant, 1) // p1 went compliant on submit (0 planned)
	assert.Equal(t, p1.ID, compliant[0].ID)

	n, err := svc.CountCompliantByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	inRange, err := svc.ListInRange(ctx,
		time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.Equal(t, p2.ID, inRange[0].ID)
}

func TestSubmitApproveEndToEnd(t *testing.T) {
	svc, sched, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)
	mgr := seedUser(t, db, models.RoleProjectManager)

	p, err := svc.Create(ctx, u.ID, 1, 2024, 5)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		d, err := sched.Create(ctx, p.ID, models.Monday, nil)
		require.NoError(t, err)
		if i < 4 {
			_, err = sched.MarkCompleted(ctx, d.ID)
			require.NoError(t, err)
		}
	}

	p, err = svc.Submit(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Compliant, p.ComplianceStatus) // 4/5 = 0.8
	require.NotNil(t, p.SubmittedAt)

	p, err = svc.Approve(ctx, p.ID, mgr.ID)
	require.NoError(t, err)
	assert.True(t, p.IsApproved)
	require.NotNil(t, p.ApprovedAt)
	assert.False(t, p.ApprovedAt.Before(*p.SubmittedAt))
}
