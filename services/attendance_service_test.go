package services_test

import (
	"context"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/pkg/geo"
	"geo-attendance/services"
)

// metersNorth returns the latitude that lies d meters north of the office.
func metersNorth(d float64) float64 {
	return officeLat + d/(geo.EarthRadiusMeters*3.141592653589793/180)
}

func TestCheckIn_InsideGeofence(t *testing.T) {
	f := newFixture(t)
	f.configureOffice(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	rec, err := f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPresent, rec.Status)
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), rec.Date)
	require.NotNil(t, rec.CheckInTime)
	assert.True(t, rec.CheckInTime.Equal(fixtureStart))
	assert.Nil(t, rec.CheckOutTime)
	assert.Equal(t, services.CheckedIn, services.DeriveState(rec))
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.CheckIns.WithLabelValues("accepted")), 0)
}

func TestCheckIn_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("missing location", func(t *testing.T) {
		f := newFixture(t)
		f.configureOffice(t)
		emp := f.addEmployee(t, "asha")

		_, err := f.attendance.CheckIn(ctx, emp.ID, nil, ptr(officeLon))
		requireAppError(t, err, apperror.KindValidation, apperror.CodeLocationRequired, http.StatusBadRequest)
	})

	t.Run("malformed location", func(t *testing.T) {
		f := newFixture(t)
		f.configureOffice(t)
		emp := f.addEmployee(t, "asha")

		_, err := f.attendance.CheckIn(ctx, emp.ID, ptr(91.0), ptr(officeLon))
		requireAppError(t, err, apperror.KindValidation, apperror.CodeInvalidLocation, http.StatusBadRequest)
	})

	t.Run("office not configured", func(t *testing.T) {
		f := newFixture(t)
		emp := f.addEmployee(t, "asha")

		_, err := f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
		requireAppError(t, err, apperror.KindDependency, apperror.CodeOfficeNotConfigured, http.StatusInternalServerError)
	})

	t.Run("outside geofence reports distance", func(t *testing.T) {
		f := newFixture(t)
		f.configureOffice(t)
		emp := f.addEmployee(t, "asha")

		_, err := f.attendance.CheckIn(ctx, emp.ID, ptr(12.98), ptr(77.60))
		appErr := requireAppError(t, err, apperror.KindForbidden, apperror.CodeOutsideGeofence, http.StatusForbidden)

		distance, ok := appErr.Details["distance"].(float64)
		require.True(t, ok)
		assert.Greater(t, distance, 900.0)
		assert.InDelta(t, 1102, distance, 10)
		assert.Contains(t, appErr.Message, "away from the office")

		rec, err := f.store.Attendances().FindByEmployeeAndDate(ctx, emp.ID, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Nil(t, rec, "rejected check-in must not create a record")
	})
}

func TestCheckIn_RadiusBoundary(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		meters float64
		ok     bool
	}{
		{"well inside", 50, true},
		{"just inside", 99.5, true},
		{"just outside", 100.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.configureOffice(t)
			emp := f.addEmployee(t, "asha")

			_, err := f.attendance.CheckIn(ctx, emp.ID, ptr(metersNorth(tt.meters)), ptr(officeLon))
			if tt.ok {
				require.NoError(t, err)
				return
			}
			appErr := requireAppError(t, err, apperror.KindForbidden, apperror.CodeOutsideGeofence, http.StatusForbidden)
			assert.InDelta(t, tt.meters, appErr.Details["distance"].(float64), 1)
		})
	}
}

func TestCheckInCheckOut_StateMachine(t *testing.T) {
	f := newFixture(t)
	f.configureOffice(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	_, err := f.attendance.CheckOut(ctx, emp.ID)
	requireAppError(t, err, apperror.KindValidation, apperror.CodeNoCheckIn, http.StatusBadRequest)

	_, err = f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
	require.NoError(t, err)

	_, err = f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
	requireAppError(t, err, apperror.KindConflict, apperror.CodeAlreadyCheckedIn, http.StatusBadRequest)

	f.clock.Advance(8*time.Hour + 30*time.Minute + 59*time.Second)
	rec, err := f.attendance.CheckOut(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 510, rec.WorkingMinutes)
	assert.Equal(t, services.CheckedOut, services.DeriveState(rec))

	_, err = f.attendance.CheckOut(ctx, emp.ID)
	requireAppError(t, err, apperror.KindConflict, apperror.CodeAlreadyCheckedOut, http.StatusBadRequest)

	_, err = f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
	requireAppError(t, err, apperror.KindConflict, apperror.CodeAlreadyCheckedIn, http.StatusBadRequest)

	// Next day starts from NoRecord again.
	f.clock.Advance(16 * time.Hour)
	_, err = f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
	require.NoError(t, err)

	history, err := f.attendance.History(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Date.After(history[1].Date), "history is newest first")
}

func TestCheckIn_ConcurrentSameDay(t *testing.T) {
	f := newFixture(t)
	f.configureOffice(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyCheckedIn), "unexpected error: %v", err)
		conflicts++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)

	history, err := f.attendance.History(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCheckOut_ConcurrentOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	f.configureOffice(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	_, err := f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.attendance.CheckOut(ctx, emp.ID); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.True(t, apperror.HasCode(err, apperror.CodeAlreadyCheckedOut))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestOverride(t *testing.T) {
	f := newFixture(t)
	f.configureOffice(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	rec, err := f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
	require.NoError(t, err)
	f.clock.Advance(4 * time.Hour)
	rec, err = f.attendance.CheckOut(ctx, emp.ID)
	require.NoError(t, err)

	updated, err := f.attendance.Override(ctx, rec.ID, "Half Day", ptr("left early"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusHalfDay, updated.Status)
	assert.Equal(t, "left early", updated.Remarks)
	assert.Equal(t, rec.WorkingMinutes, updated.WorkingMinutes)
	assert.True(t, rec.CheckInTime.Equal(*updated.CheckInTime))
	assert.True(t, rec.CheckOutTime.Equal(*updated.CheckOutTime))

	_, err = f.attendance.Override(ctx, rec.ID, "Sleeping", nil)
	requireAppError(t, err, apperror.KindValidation, apperror.CodeInvalidStatus, http.StatusBadRequest)

	_, err = f.attendance.Override(ctx, primitive.NewObjectID(), "Absent", nil)
	requireAppError(t, err, apperror.KindNotFound, apperror.CodeNotFound, http.StatusNotFound)
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	statuses := []models.AttendanceStatus{
		models.StatusPresent, models.StatusPresent, models.StatusPresent,
		models.StatusLeave, models.StatusHalfDay, models.StatusAbsent,
	}
	for i, st := range statuses {
		require.NoError(t, f.store.Attendances().Create(ctx, &models.Attendance{
			EmployeeID: emp.ID,
			Date:       time.Date(2025, 5, 1+i, 0, 0, 0, 0, time.UTC),
			Status:     st,
		}))
	}

	summary, err := f.attendance.Summary(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), summary.TotalDays)
	assert.Equal(t, int64(3), summary.PresentDays)
	assert.InDelta(t, 50, summary.PresentRatio, 0)
	assert.Equal(t, models.SummaryBreakdown{LeaveDays: 1, HalfDays: 1, AbsentDays: 1}, summary.Breakdown)

	empty, err := f.attendance.Summary(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Zero(t, empty.TotalDays)
	assert.Zero(t, empty.PresentRatio)
}

func TestList_LimitCap(t *testing.T) {
	f := newFixture(t)
	emp := f.addEmployee(t, "asha")
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		require.NoError(t, f.store.Attendances().Create(ctx, &models.Attendance{
			EmployeeID: emp.ID,
			Date:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Status:     models.StatusPresent,
		}))
	}

	page, err := f.attendance.List(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(services.MaxPageLimit), page.Limit)
	assert.Len(t, page.Data, services.MaxPageLimit)
	assert.Equal(t, int64(60), page.Total)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Equal(t, "asha", page.Data[0].FullName)

	page, err = f.attendance.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Page)
	assert.Equal(t, int64(services.DefaultPageLimit), page.Limit)

	page, err = f.attendance.List(ctx, 4, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Data)

	for _, huge := range []struct{ page, limit int64 }{
		{math.MaxInt64 / 25, 50},
		{math.MaxInt64, 1},
		{math.MaxInt64, 50},
	} {
		page, err = f.attendance.List(ctx, huge.page, huge.limit)
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.Equal(t, int64(60), page.Total)
		assert.Positive(t, page.Page)
	}
}

func TestToday(t *testing.T) {
	f := newFixture(t)
	f.configureOffice(t)
	present := f.addEmployee(t, "asha")
	f.addEmployee(t, "ben")
	ctx := context.Background()

	_, err := f.attendance.CheckIn(ctx, present.ID, ptr(officeLat), ptr(officeLon))
	require.NoError(t, err)

	rows, err := f.attendance.Today(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byName := map[string]models.DailyAttendanceRow{}
	for _, r := range rows {
		byName[r.FullName] = r
	}
	assert.Equal(t, models.StatusPresent, byName["asha"].Status)
	assert.NotNil(t, byName["asha"].AttendanceID)
	assert.Equal(t, models.StatusAbsent, byName["ben"].Status)
	assert.Nil(t, byName["ben"].AttendanceID)
}
