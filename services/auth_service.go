package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/pkg/paseto"
	"geo-attendance/pkg/password"
	"geo-attendance/repository"
)

const (
	AdminTokenTTL    = 7 * 24 * time.Hour
	EmployeeTokenTTL = 14 * 24 * time.Hour
)

type AuthService struct {
	admins    repository.AdminRepository
	employees repository.EmployeeRepository
	maker     *paseto.Maker
	rt        Runtime
}

func NewAuthService(admins repository.AdminRepository, employees repository.EmployeeRepository, maker *paseto.Maker, rt Runtime) *AuthService {
	return &AuthService{admins: admins, employees: employees, maker: maker, rt: rt.withDefaults()}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func errInvalidCredentials() *apperror.Error {
	return apperror.Auth("Invalid email or password")
}

// AdminLogin verifies the credentials and issues an admin session token.
func (s *AuthService) AdminLogin(ctx context.Context, email, plain string) (string, *models.Admin, error) {
	admin, err := s.admins.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, apperror.Internal("failed to fetch admin", err)
	}
	if admin == nil || !password.CheckPasswordHash(plain, admin.Password) {
		return "", nil, errInvalidCredentials()
	}

	token, err := s.maker.GenerateToken(admin.ID, admin.Email, models.RoleAdmin, AdminTokenTTL)
	if err != nil {
		return "", nil, apperror.Internal("failed to issue token", err)
	}
	s.rt.Log.InfoContext(ctx, "admin logged in", "admin", admin.Email)
	return token, admin, nil
}

// EmployeeLogin verifies the credentials of an active employee and issues a
// session token.
func (s *AuthService) EmployeeLogin(ctx context.Context, email, plain string) (string, *models.Employee, error) {
	emp, err := s.employees.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, apperror.Internal("failed to fetch employee", err)
	}
	if emp == nil || !password.CheckPasswordHash(plain, emp.Password) {
		return "", nil, errInvalidCredentials()
	}
	if !emp.IsActive {
		return "", nil, apperror.Forbidden(apperror.CodeAccountDeactivated, "Your account has been deactivated")
	}

	token, err := s.maker.GenerateToken(emp.ID, emp.Email, models.RoleEmployee, EmployeeTokenTTL)
	if err != nil {
		return "", nil, apperror.Internal("failed to issue token", err)
	}
	s.rt.Log.InfoContext(ctx, "employee logged in", "employee_id", emp.ID.Hex())
	return token, emp, nil
}

// Admin returns the admin behind a session.
func (s *AuthService) Admin(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to fetch admin", err)
	}
	if admin == nil {
		return nil, apperror.NotFound("Admin not found")
	}
	return admin, nil
}
