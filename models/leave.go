package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeaveType string

const (
	LeaveSick   LeaveType = "Sick"
	LeaveCasual LeaveType = "Casual"
	LeavePaid   LeaveType = "Paid"
	LeaveUnpaid LeaveType = "Unpaid"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveSick, LeaveCasual, LeavePaid, LeaveUnpaid:
		return true
	}
	return false
}

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "Pending"
	LeaveApproved LeaveStatus = "Approved"
	LeaveRejected LeaveStatus = "Rejected"
)

type LeaveRequest struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID   primitive.ObjectID `json:"employee" bson:"employee_id"`
	LeaveType    LeaveType          `json:"leaveType" bson:"leave_type"`
	StartDate    time.Time          `json:"startDate" bson:"start_date"`
	EndDate      time.Time          `json:"endDate" bson:"end_date"`
	Reason       string             `json:"reason" bson:"reason"`
	Status       LeaveStatus        `json:"status" bson:"status"`
	AppliedAt    time.Time          `json:"appliedAt" bson:"applied_at"`
	ReviewedBy   string             `json:"reviewedBy,omitempty" bson:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time         `json:"reviewedAt,omitempty" bson:"reviewed_at,omitempty"`
	AdminRemarks string             `json:"adminRemarks,omitempty" bson:"admin_remarks,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Overlaps uses inclusive bounds on both ends.
func (l *LeaveRequest) Overlaps(start, end time.Time) bool {
	return !l.StartDate.After(end) && !l.EndDate.Before(start)
}

// Covers reports whether day falls inside the request's range.
func (l *LeaveRequest) Covers(day time.Time) bool {
	return l.Overlaps(day, day)
}

type LeaveApplyPayload struct {
	LeaveType string `json:"leaveType" validate:"required"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required,max=500"`
}

type LeaveReviewPayload struct {
	Status       string `json:"status" validate:"required"`
	AdminRemarks string `json:"adminRemarks" validate:"max=500"`
}

type LeaveWithEmployee struct {
	LeaveRequest `bson:",inline"`
	FullName     string `json:"fullName" bson:"full_name"`
	Email        string `json:"email" bson:"email"`
	Department   string `json:"department" bson:"department"`
}
