package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/pkg/paseto"
	"geo-attendance/repository"
)

const (
	AdminCookie    = "adminToken"
	EmployeeCookie = "employeeToken"

	localsClaims   = "user"
	localsEmployee = "employee"
)

// tokenFrom reads the session cookie, falling back to an
// "Authorization: Bearer <token>" header.
func tokenFrom(c *fiber.Ctx, cookie string) (string, error) {
	if token := c.Cookies(cookie); token != "" {
		return token, nil
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", apperror.Auth("Not authenticated")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperror.Auth("Authorization header format must be Bearer <token>")
	}
	return strings.TrimSpace(parts[1]), nil
}

func authenticate(c *fiber.Ctx, maker *paseto.Maker, cookie, role string) (*models.Claims, error) {
	tokenString, err := tokenFrom(c, cookie)
	if err != nil {
		return nil, err
	}

	claims, err := maker.ValidateToken(tokenString, role)
	if err != nil {
		return nil, apperror.Auth("Invalid or expired token").Wrap(err)
	}

	c.Locals(localsClaims, claims)
	return claims, nil
}

// AuthMiddleware accepts requests carrying a valid token issued for role and
// stores its claims under "user".
func AuthMiddleware(maker *paseto.Maker, cookie, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := authenticate(c, maker, cookie, role); err != nil {
			return err
		}
		return c.Next()
	}
}

// EmployeeMiddleware authenticates an employee and rejects accounts that were
// deactivated after the token was issued.
func EmployeeMiddleware(maker *paseto.Maker, employees repository.EmployeeRepository, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := authenticate(c, maker, EmployeeCookie, models.RoleEmployee)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()

		emp, err := employees.FindByID(ctx, claims.SubjectID)
		if err != nil {
			return apperror.Internal("failed to load employee", err)
		}
		if emp == nil {
			return apperror.Auth("Employee not found")
		}
		if !emp.IsActive {
			return apperror.Forbidden(apperror.CodeAccountDeactivated, "Your account has been deactivated")
		}

		c.Locals(localsEmployee, emp)
		return c.Next()
	}
}

// Claims returns the token claims stored by AuthMiddleware, or nil.
func Claims(c *fiber.Ctx) *models.Claims {
	claims, _ := c.Locals(localsClaims).(*models.Claims)
	return claims
}

// Employee returns the employee loaded by EmployeeMiddleware, or nil.
func Employee(c *fiber.Ctx) *models.Employee {
	emp, _ := c.Locals(localsEmployee).(*models.Employee)
	return emp
}
