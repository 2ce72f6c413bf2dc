package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/pkg/metrics"
	"geo-attendance/repository/memory"
	"geo-attendance/services"
)

const (
	officeLat = 12.9716
	officeLon = 77.5946
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	store      *memory.Store
	clock      *fakeClock
	metrics    *metrics.Metrics
	rt         services.Runtime
	offices    *services.OfficeService
	attendance *services.AttendanceService
	leaves     *services.LeaveService
	employees  *services.EmployeeService
}

// Wednesday 4 June 2025, 09:00 UTC.
var fixtureStart = time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	clock := &fakeClock{t: fixtureStart}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	rt := services.Runtime{
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:  m,
		Location: time.UTC,
		Now:      clock.Now,
	}
	offices := services.NewOfficeService(store.Offices(), rt)

	return &fixture{
		store:      store,
		clock:      clock,
		metrics:    m,
		rt:         rt,
		offices:    offices,
		attendance: services.NewAttendanceService(store.Attendances(), store.Employees(), store.Leaves(), offices, rt),
		leaves:     services.NewLeaveService(store.Leaves(), store.Employees(), rt),
		employees:  services.NewEmployeeService(store.Employees(), rt),
	}
}

func (f *fixture) addEmployee(t *testing.T, name string) models.Employee {
	t.Helper()
	emp := models.Employee{
		FullName:   name,
		Email:      name + "@example.com",
		Department: "Engineering",
		Role:       models.RoleEmployee,
		IsActive:   true,
		CreatedAt:  fixtureStart.AddDate(0, -1, 0),
	}
	require.NoError(t, f.store.Employees().Create(context.Background(), &emp))
	return emp
}

func (f *fixture) configureOffice(t *testing.T) *models.OfficeLocation {
	t.Helper()
	lat, lon := officeLat, officeLon
	office, err := f.offices.Configure(context.Background(), services.ConfigureInput{
		Name:       "Bangalore HQ",
		Latitude:   &lat,
		Longitude:  &lon,
		AdminEmail: "admin@example.com",
	})
	require.NoError(t, err)
	return office
}

func ptr[T any](v T) *T { return &v }

func requireAppError(t *testing.T, err error, kind apperror.Kind, code string, status int) *apperror.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind)
	require.Equal(t, code, appErr.Code)
	require.Equal(t, status, appErr.Status())
	return appErr
}
