package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusHalfDay AttendanceStatus = "Half Day"
	StatusLeave   AttendanceStatus = "Leave"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave:
		return true
	}
	return false
}

type Attendance struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID     primitive.ObjectID `json:"employee" bson:"employee_id"`
	Date           time.Time          `json:"date" bson:"date"`
	CheckInTime    *time.Time         `json:"checkInTime,omitempty" bson:"check_in_time,omitempty"`
	CheckOutTime   *time.Time         `json:"checkOutTime" bson:"check_out_time"`
	WorkingMinutes int                `json:"workingMinutes" bson:"working_minutes"`
	Status         AttendanceStatus   `json:"status" bson:"status"`
	Remarks        string             `json:"remarks,omitempty" bson:"remarks,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
}

type CheckInPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type AttendanceStatusPayload struct {
	Status  string  `json:"status" validate:"required"`
	Remarks *string `json:"remarks" validate:"omitempty,max=500"`
}

type CloseOutPayload struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type AttendanceWithEmployee struct {
	Attendance  `bson:",inline"`
	FullName    string `json:"fullName" bson:"full_name"`
	Email       string `json:"email" bson:"email"`
	Department  string `json:"department" bson:"department"`
	Designation string `json:"designation" bson:"designation"`
}

// StatusCounts are the raw per-status totals of one employee's records.
type StatusCounts struct {
	Total   int64 `bson:"total_days"`
	Present int64 `bson:"present_days"`
	Leave   int64 `bson:"leave_days"`
	HalfDay int64 `bson:"half_days"`
	Absent  int64 `bson:"absent_days"`
}

type SummaryBreakdown struct {
	LeaveDays  int64 `json:"leaveDays"`
	HalfDays   int64 `json:"halfDays"`
	AbsentDays int64 `json:"absentDays"`
}

type AttendanceSummary struct {
	TotalDays    int64            `json:"totalDays"`
	PresentDays  int64            `json:"presentDays"`
	PresentRatio float64          `json:"presentRatio"`
	Breakdown    SummaryBreakdown `json:"breakdown"`
}

type PaginatedAttendance struct {
	Data       []AttendanceWithEmployee `json:"data"`
	Page       int64                    `json:"page"`
	Limit      int64                    `json:"limit"`
	Total      int64                    `json:"total"`
	TotalPages int64                    `json:"totalPages"`
}

// DailyAttendanceRow is one line of the admin "today" view.
type DailyAttendanceRow struct {
	EmployeeID     primitive.ObjectID  `json:"employeeId"`
	FullName       string              `json:"fullName"`
	Email          string              `json:"email"`
	Department     string              `json:"department"`
	Designation    string              `json:"designation"`
	AttendanceID   *primitive.ObjectID `json:"attendanceId,omitempty"`
	Status         AttendanceStatus    `json:"status"`
	CheckInTime    *time.Time          `json:"checkInTime,omitempty"`
	CheckOutTime   *time.Time          `json:"checkOutTime,omitempty"`
	WorkingMinutes int                 `json:"workingMinutes"`
}

type CloseOutResult struct {
	Date         time.Time `json:"date"`
	Workday      bool      `json:"workday"`
	MarkedAbsent int       `json:"markedAbsent"`
	MarkedLeave  int       `json:"markedLeave"`
	Skipped      int       `json:"skipped"`
}
