package services_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/services"
)

func sick(start, end string) services.ApplyInput {
	return services.ApplyInput{LeaveType: "Sick", StartDate: start, EndDate: end, Reason: "unwell"}
}

func TestApply_Validation(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	tests := []struct {
		name string
		in   services.ApplyInput
		code string
	}{
		{"missing reason", services.ApplyInput{LeaveType: "Sick", StartDate: "2025-06-10", EndDate: "2025-06-11", Reason: "  "}, apperror.CodeInvalidInput},
		{"unknown type", services.ApplyInput{LeaveType: "Vacation", StartDate: "2025-06-10", EndDate: "2025-06-11", Reason: "x"}, apperror.CodeInvalidInput},
		{"bad date", sick("2025-13-10", "2025-06-11"), apperror.CodeInvalidInput},
		{"reversed range", sick("2025-06-12", "2025-06-11"), apperror.CodeInvalidDateRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.leaves.Apply(ctx, emp.ID, tt.in)
			requireAppError(t, err, apperror.KindValidation, tt.code, http.StatusBadRequest)
		})
	}
}

func TestApply_Overlap(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	other := f.addEmployee(t, "ben")
	ctx := context.Background()

	first, err := f.leaves.Apply(ctx, emp.ID, sick("2025-06-10", "2025-06-12"))
	require.NoError(t, err)
	assert.Equal(t, models.LeavePending, first.Status)
	assert.True(t, first.AppliedAt.Equal(fixtureStart))

	// Shared boundary day counts as overlap.
	_, err = f.leaves.Apply(ctx, emp.ID, sick("2025-06-12", "2025-06-14"))
	requireAppError(t, err, apperror.KindConflict, apperror.CodeLeaveOverlap, http.StatusBadRequest)

	_, err = f.leaves.Apply(ctx, emp.ID, sick("2025-06-13", "2025-06-14"))
	require.NoError(t, err)

	// Another employee is unaffected.
	_, err = f.leaves.Apply(ctx, other.ID, sick("2025-06-10", "2025-06-12"))
	require.NoError(t, err)

	// A rejected leave frees its range.
	_, err = f.leaves.Review(ctx, first.ID, "Rejected", "busy week", "admin@example.com")
	require.NoError(t, err)
	_, err = f.leaves.Apply(ctx, emp.ID, sick("2025-06-11", "2025-06-11"))
	require.NoError(t, err)
}

func TestApply_ConcurrentOverlappingOnlyOneSurvives(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every range contains 20 June.
			start := fmt.Sprintf("2025-06-%02d", 13+i)
			_, err := f.leaves.Apply(ctx, emp.ID, sick(start, "2025-06-20"))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, apperror.HasCode(err, apperror.CodeLeaveOverlap), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)

	mine, err := f.leaves.Mine(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestApply_ConcurrentDisjointAllSucceed(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	const workers = 4
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			day := fmt.Sprintf("2025-07-%02d", 1+i*2)
			_, err := f.leaves.Apply(ctx, emp.ID, sick(day, day))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	mine, err := f.leaves.Mine(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, mine, workers)
}

func TestReview(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	leave, err := f.leaves.Apply(ctx, emp.ID, sick("2025-06-10", "2025-06-10"))
	require.NoError(t, err)

	_, err = f.leaves.Review(ctx, leave.ID, "Pending", "", "admin@example.com")
	requireAppError(t, err, apperror.KindValidation, apperror.CodeInvalidStatus, http.StatusBadRequest)

	_, err = f.leaves.Review(ctx, primitive.NewObjectID(), "Approved", "", "admin@example.com")
	requireAppError(t, err, apperror.KindNotFound, apperror.CodeNotFound, http.StatusNotFound)

	reviewed, err := f.leaves.Review(ctx, leave.ID, "Approved", " enjoy ", "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, reviewed.Status)
	assert.Equal(t, "enjoy", reviewed.AdminRemarks)
	assert.Equal(t, "admin@example.com", reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)

	_, err = f.leaves.Review(ctx, leave.ID, "Rejected", "", "admin@example.com")
	requireAppError(t, err, apperror.KindConflict, apperror.CodeAlreadyReviewed, http.StatusBadRequest)

	stored, err := f.store.Leaves().FindByID(ctx, leave.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeaveApproved, stored.Status)
}

func TestReview_ConcurrentExactlyOnce(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	leave, err := f.leaves.Apply(ctx, emp.ID, sick("2025-06-10", "2025-06-10"))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := "Approved"
			if i%2 == 1 {
				status = "Rejected"
			}
			_, err := f.leaves.Review(ctx, leave.ID, status, "", "admin@example.com")
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyReviewed))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	other := f.addEmployee(t, "ben")
	ctx := context.Background()

	pending, err := f.leaves.Apply(ctx, emp.ID, sick("2025-06-10", "2025-06-10"))
	require.NoError(t, err)

	err = f.leaves.Cancel(ctx, pending.ID, other.ID)
	requireAppError(t, err, apperror.KindNotFound, apperror.CodeNotFound, http.StatusNotFound)

	require.NoError(t, f.leaves.Cancel(ctx, pending.ID, emp.ID))
	err = f.leaves.Cancel(ctx, pending.ID, emp.ID)
	requireAppError(t, err, apperror.KindNotFound, apperror.CodeNotFound, http.StatusNotFound)

	approved, err := f.leaves.Apply(ctx, emp.ID, sick("2025-06-10", "2025-06-10"))
	require.NoError(t, err)
	_, err = f.leaves.Review(ctx, approved.ID, "Approved", "", "admin@example.com")
	require.NoError(t, err)

	err = f.leaves.Cancel(ctx, approved.ID, emp.ID)
	requireAppError(t, err, apperror.KindValidation, apperror.CodeNotPending, http.StatusBadRequest)
}

func TestList_FilterByStatus(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	a, err := f.leaves.Apply(ctx, emp.ID, sick("2025-06-10", "2025-06-10"))
	require.NoError(t, err)
	_, err = f.leaves.Apply(ctx, emp.ID, sick("2025-06-11", "2025-06-11"))
	require.NoError(t, err)
	_, err = f.leaves.Review(ctx, a.ID, "Approved", "", "admin@example.com")
	require.NoError(t, err)

	all, err := f.leaves.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.leaves.List(ctx, "Pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "asha", pending[0].FullName)

	_, err = f.leaves.List(ctx, "Lost")
	requireAppError(t, err, apperror.KindValidation, apperror.CodeInvalidStatus, http.StatusBadRequest)
}
