package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Admin struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"-" bson:"password"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// Claims are the identity fields carried by a session token.
type Claims struct {
	SubjectID primitive.ObjectID `json:"sub"`
	Email     string             `json:"email"`
	Role      string             `json:"role"`
}

type DashboardStats struct {
	TotalEmployees       int64 `json:"totalEmployees"`
	ActiveEmployees      int64 `json:"activeEmployees"`
	PresentToday         int64 `json:"presentToday"`
	OnLeaveToday         int64 `json:"onLeaveToday"`
	PendingLeaveRequests int64 `json:"pendingLeaveRequests"`
	OfficeConfigured     bool  `json:"officeConfigured"`

	Departments []DepartmentCount `json:"departments"`
}
