package services

import (
	"math"
	"time"

	"geo-attendance/models"
)

// DayState is where an employee stands for one calendar day.
type DayState int

const (
	NoRecord DayState = iota
	CheckedIn
	CheckedOut
	// Closed means a record exists without a check-in, written by close-out.
	Closed
)

func (s DayState) String() string {
	switch s {
	case NoRecord:
		return "NoRecord"
	case CheckedIn:
		return "CheckedIn"
	case CheckedOut:
		return "CheckedOut"
	case Closed:
		return "Closed"
	}
	return "Unknown"
}

// DeriveState reads the day state from the record's timestamps only; the
// status field is an administrative label and plays no part here.
func DeriveState(rec *models.Attendance) DayState {
	switch {
	case rec == nil:
		return NoRecord
	case rec.CheckOutTime != nil:
		return CheckedOut
	case rec.CheckInTime != nil:
		return CheckedIn
	default:
		return Closed
	}
}

// ComputeWorkingMinutes returns whole minutes between in and out, never negative.
func ComputeWorkingMinutes(in, out time.Time) int {
	d := out.Sub(in)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// PresentRatio is the percentage of Present days, rounded to two decimals.
func PresentRatio(present, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*10000) / 100
}
