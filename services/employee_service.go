package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/pkg/password"
	"geo-attendance/repository"
)

type EmployeeService struct {
	employees repository.EmployeeRepository
	rt        Runtime
}

func NewEmployeeService(employees repository.EmployeeRepository, rt Runtime) *EmployeeService {
	return &EmployeeService{employees: employees, rt: rt.withDefaults()}
}

// Register creates an active employee on behalf of an admin.
func (s *EmployeeService) Register(ctx context.Context, in models.EmployeeRegisterPayload, adminEmail string) (*models.Employee, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.FullName) == "" || email == "" || in.Password == "" {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Full name, email and password are required")
	}

	existing, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Internal("failed to check email", err)
	}
	if existing != nil {
		return nil, errDuplicateEmployee()
	}

	hashed, err := password.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	now := s.rt.now()
	emp := &models.Employee{
		FullName:            strings.TrimSpace(in.FullName),
		Email:               email,
		Password:            hashed,
		Department:          strings.TrimSpace(in.Department),
		Designation:         strings.TrimSpace(in.Designation),
		CreatedByAdminEmail: adminEmail,
		Role:                models.RoleEmployee,
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err = s.employees.Create(ctx, emp); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, errDuplicateEmployee()
		}
		return nil, apperror.Internal("failed to register employee", err)
	}

	s.rt.Log.InfoContext(ctx, "employee registered", "employee_id", emp.ID.Hex(), "admin", adminEmail)
	return emp, nil
}

func errDuplicateEmployee() *apperror.Error {
	return apperror.Conflict(apperror.CodeDuplicate, "Employee with this email already exists").
		WithStatus(http.StatusConflict)
}

func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.employees.FindAll(ctx, false)
	if err != nil {
		return nil, apperror.Internal("failed to fetch employees", err)
	}
	return employees, nil
}

func (s *EmployeeService) Get(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	emp, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to fetch employee", err)
	}
	if emp == nil {
		return nil, apperror.NotFound("Employee not found")
	}
	return emp, nil
}

// SetStatus activates or deactivates an employee. Employees are never deleted.
func (s *EmployeeService) SetStatus(ctx context.Context, id primitive.ObjectID, active bool) (*models.Employee, error) {
	emp, err := s.employees.UpdateStatus(ctx, id, active)
	if err != nil {
		return nil, apperror.Internal("failed to update employee status", err)
	}
	if emp == nil {
		return nil, apperror.NotFound("Employee not found")
	}
	s.rt.Log.InfoContext(ctx, "employee status changed", "employee_id", id.Hex(), "active", active)
	return emp, nil
}

// UpdateProfile lets an employee edit their address and emergency contact.
func (s *EmployeeService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in models.ProfileUpdatePayload) (*models.Employee, error) {
	if in.Address == nil && in.EmergencyContact == nil {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "Nothing to update")
	}
	emp, err := s.employees.UpdateProfile(ctx, id, in.Address, in.EmergencyContact)
	if err != nil {
		return nil, apperror.Internal("failed to update profile", err)
	}
	if emp == nil {
		return nil, apperror.NotFound("Employee not found")
	}
	return emp, nil
}
