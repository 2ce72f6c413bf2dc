package services_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/services"
)

func TestConfigure_Defaults(t *testing.T) {
	f := newFixture(t)

	office := f.configureOffice(t)
	assert.Equal(t, int64(1), office.Version)
	assert.True(t, office.IsActive)
	assert.InDelta(t, models.DefaultRadiusMeters, office.AllowedRadiusMeters, 0)
	assert.Equal(t, models.DefaultWorkdayRule, office.WorkdayRule)
	assert.Equal(t, []float64{officeLon, officeLat}, office.Coordinates.Coordinates)

	active, err := f.offices.Active(context.Background())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, office.ID, active.ID)
}

func TestConfigure_ReplacesActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.configureOffice(t)

	second, err := f.offices.Configure(ctx, services.ConfigureInput{
		Name:         "Mysore Annex",
		Latitude:     ptr(12.2958),
		Longitude:    ptr(76.6394),
		RadiusMeters: ptr(250.0),
		WorkdayRule:  "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR,SA",
		AdminEmail:   "admin@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)

	active, err := f.offices.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.InDelta(t, 250, active.AllowedRadiusMeters, 0)

	// Check-ins are now measured against the new office.
	emp := f.addEmployee(t, "asha")
	_, err = f.attendance.CheckIn(ctx, emp.ID, ptr(officeLat), ptr(officeLon))
	requireAppError(t, err, apperror.KindForbidden, apperror.CodeOutsideGeofence, http.StatusForbidden)
	assert.NotEqual(t, first.ID, active.ID)

	cal, err := f.offices.Calendar(ctx)
	require.NoError(t, err)
	assert.True(t, cal.IsWorkday(time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)), "Saturday is a workday under the new rule")
}

func TestConfigure_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   services.ConfigureInput
		code string
	}{
		{"missing name", services.ConfigureInput{Latitude: ptr(1.0), Longitude: ptr(1.0)}, apperror.CodeInvalidInput},
		{"missing latitude", services.ConfigureInput{Name: "HQ", Longitude: ptr(1.0)}, apperror.CodeInvalidInput},
		{"latitude out of range", services.ConfigureInput{Name: "HQ", Latitude: ptr(-91.0), Longitude: ptr(1.0)}, apperror.CodeInvalidLocation},
		{"longitude out of range", services.ConfigureInput{Name: "HQ", Latitude: ptr(1.0), Longitude: ptr(181.0)}, apperror.CodeInvalidLocation},
		{"zero radius", services.ConfigureInput{Name: "HQ", Latitude: ptr(1.0), Longitude: ptr(1.0), RadiusMeters: ptr(0.0)}, apperror.CodeInvalidInput},
		{"bad rule", services.ConfigureInput{Name: "HQ", Latitude: ptr(1.0), Longitude: ptr(1.0), WorkdayRule: "FREQ=SOMETIMES"}, apperror.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.offices.Configure(ctx, tt.in)
			requireAppError(t, err, apperror.KindValidation, tt.code, http.StatusBadRequest)
		})
	}

	active, err := f.offices.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestConfigure_ConcurrentSingleActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 6
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.offices.Configure(ctx, services.ConfigureInput{
				Name: "HQ", Latitude: ptr(officeLat), Longitude: ptr(officeLon),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	active, err := f.offices.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, int64(workers), active.Version)

	latest, err := f.store.Offices().LatestVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), latest)
}

func TestCalendar_DefaultsWithoutOffice(t *testing.T) {
	f := newFixture(t)

	cal, err := f.offices.Calendar(context.Background())
	require.NoError(t, err)
	assert.True(t, cal.IsWorkday(time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsWorkday(time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)))
}
