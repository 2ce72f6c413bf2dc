package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

type Address struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zip_code,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

type EmergencyContact struct {
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Relation string `json:"relation,omitempty" bson:"relation,omitempty"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,min=5,max=20"`
}

type Employee struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FullName            string             `json:"fullName" bson:"full_name"`
	Email               string             `json:"email" bson:"email"`
	Password            string             `json:"-" bson:"password"`
	Department          string             `json:"department" bson:"department"`
	Designation         string             `json:"designation" bson:"designation"`
	CreatedByAdminEmail string             `json:"createdByAdminEmail" bson:"created_by_admin_email"`
	Address             *Address           `json:"address,omitempty" bson:"address,omitempty"`
	EmergencyContact    *EmergencyContact  `json:"emergencyContact,omitempty" bson:"emergency_contact,omitempty"`
	Role                string             `json:"role" bson:"role"`
	IsActive            bool               `json:"isActive" bson:"is_active"`
	LeaveVersion        int64              `json:"-" bson:"leave_version"`
	CreatedAt           time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updated_at"`
}

type EmployeeRegisterPayload struct {
	FullName    string `json:"fullName" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72,hasuppercase"`
	Department  string `json:"department" validate:"required"`
	Designation string `json:"designation" validate:"required"`
}

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdatePayload struct {
	Address          *Address          `json:"address"`
	EmergencyContact *EmergencyContact `json:"emergencyContact" validate:"omitempty"`
}

type EmployeeStatusPayload struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// EmployeeProfile is what an employee sees about themselves.
type EmployeeProfile struct {
	FullName         string            `json:"fullName"`
	Email            string            `json:"email"`
	Department       string            `json:"department"`
	Designation      string            `json:"designation"`
	Address          *Address          `json:"address,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
}

func (e *Employee) Profile() EmployeeProfile {
	return EmployeeProfile{
		FullName:         e.FullName,
		Email:            e.Email,
		Department:       e.Department,
		Designation:      e.Designation,
		Address:          e.Address,
		EmergencyContact: e.EmergencyContact,
	}
}
