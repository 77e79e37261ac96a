package planning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/apperr"
	"planboard/internal/models"
)

func TestScheduleCRUD(t *testing.T) {
	svc, sched, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)
	p, err := svc.Create(ctx, u.ID, 5, 2024, 3)
	require.NoError(t, err)

	var nf *apperr.NotFoundError
	_, err = sched.Create(ctx, 404, models.Monday, nil)
	require.True(t, errors.As(err, &nf))

	var ve *apperr.ValidationError
	_, err = sched.Create(ctx, p.ID, "FUNDAY", nil)
	require.True(t, errors.As(err, &ve))

	taskID := int64(7)
	d, err := sched.Create(ctx, p.ID, models.Monday, &taskID)
	require.NoError(t, err)
	assert.False(t, d.IsCompleted)

	d, err = sched.Update(ctx, d.ID, models.Friday, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Friday, d.DayOfWeek)
	assert.Nil(t, d.TaskID)

	got, err := sched.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	require.NoError(t, sched.Delete(ctx, d.ID))
	err = sched.Delete(ctx, d.ID)
	require.True(t, errors.As(err, &nf))
}

func TestScheduleListings(t *testing.T) {
	svc, sched, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)
	other := seedUser(t, db, models.RoleUser)

	// ISO week 2 of 2024 runs Mon Jan 8 .. Sun Jan 14.
	p, err := svc.Create(ctx, u.ID, 2, 2024, 2)
	require.NoError(t, err)
	po, err := svc.Create(ctx, other.ID, 2, 2024, 1)
	require.NoError(t, err)

	_, err = sched.Create(ctx, p.ID, models.Wednesday, nil)
	require.NoError(t, err)
	_, err = sched.Create(ctx, p.ID, models.Friday, nil)
	require.NoError(t, err)
	_, err = sched.Create(ctx, po.ID, models.Wednesday, nil)
	require.NoError(t, err)

	byPlanning, err := sched.ListByPlanning(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, byPlanning, 2)

	all, err := sched.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	wed := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	byDate, err := sched.ListByDate(ctx, wed)
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	mineWed, err := sched.ListByUserAndDate(ctx, u.ID, wed)
	require.NoError(t, err)
	assert.Len(t, mineWed, 1)

	byWeek, err := sched.ListByUserAndWeek(ctx, u.ID, 2, 2024)
	require.NoError(t, err)
	assert.Len(t, byWeek, 2)

	var nf *apperr.NotFoundError
	_, err = sched.ListByUserAndWeek(ctx, u.ID, 9, 2024)
	require.True(t, errors.As(err, &nf))
}

func TestCompletionTogglesUpdateCompliance(t *testing.T) {
	svc, sched, db := newServices(t)
	ctx := context.Background()
	u := seedUser(t, db, models.RoleUser)
	p, err := svc.Create(ctx, u.ID, 6, 2024, 2)
	require.NoError(t, err)

	d1, err := sched.Create(ctx, p.ID, models.Monday, nil)
	require.NoError(t, err)
	d2, err := sched.Create(ctx, p.ID, models.Tuesday, nil)
	require.NoError(t, err)

	_, err = sched.MarkCompleted(ctx, d1.ID)
	require.NoError(t, err)
	got, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NonCompliant, got.ComplianceStatus) // 1/2 < 0.8

	_, err = sched.MarkCompleted(ctx, d2.ID)
	require.NoError(t, err)
	got, err = svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Compliant, got.ComplianceStatus)

	_, err = sched.MarkIncomplete(ctx, d2.ID)
	require.NoError(t, err)
	got, err = svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NonCompliant, got.ComplianceStatus)

	done, err := sched.CountCompleted(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, done)
	pending, err := sched.CountPending(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)
}
