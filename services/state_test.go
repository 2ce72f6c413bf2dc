package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"geo-attendance/models"
	"geo-attendance/services"
)

func TestComputeWorkingMinutes(t *testing.T) {
	in := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		out  time.Time
		want int
	}{
		{"same instant", in, 0},
		{"under a minute", in.Add(59 * time.Second), 0},
		{"just over a minute", in.Add(61 * time.Second), 1},
		{"full day", in.Add(8*time.Hour + 30*time.Minute + 59*time.Second), 510},
		{"clock skew clamps to zero", in.Add(-5 * time.Minute), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.ComputeWorkingMinutes(in, tt.out))
		})
	}
}

func TestDeriveState(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		rec  *models.Attendance
		want services.DayState
	}{
		{"no record", nil, services.NoRecord},
		{"checked in", &models.Attendance{CheckInTime: &now}, services.CheckedIn},
		{"checked out", &models.Attendance{CheckInTime: &now, CheckOutTime: &now}, services.CheckedOut},
		{"closed by close-out", &models.Attendance{Status: models.StatusAbsent}, services.Closed},
		{"status is ignored", &models.Attendance{CheckInTime: &now, Status: models.StatusLeave}, services.CheckedIn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, services.DeriveState(tt.rec))
		})
	}
}

func TestPresentRatio(t *testing.T) {
	assert.InDelta(t, 0, services.PresentRatio(0, 0), 0)
	assert.InDelta(t, 75, services.PresentRatio(3, 4), 0)
	assert.InDelta(t, 66.67, services.PresentRatio(2, 3), 1e-9)
}
