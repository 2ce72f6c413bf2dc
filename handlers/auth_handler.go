package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"geo-attendance/config/middleware"
	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/services"
)

type AuthHandler struct {
	auth         *services.AuthService
	timeout      time.Duration
	cookieSecure bool
}

func NewAuthHandler(auth *services.AuthService, timeout time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, timeout: timeout, cookieSecure: cookieSecure}
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.cookieSecure {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: sameSite,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
	})
}

// AdminLogin godoc
// @Summary Admin login
// @Description Verifies admin credentials and sets the adminToken session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginPayload true "Admin credentials"
// @Success 200 {object} models.LoginSuccessResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/login [post]
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var payload models.LoginPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	token, admin, err := h.auth.AdminLogin(ctx, payload.Email, payload.Password)
	if err != nil {
		return err
	}

	h.setCookie(c, middleware.AdminCookie, token, services.AdminTokenTTL)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Login successful",
		"role":    models.RoleAdmin,
		"email":   admin.Email,
		"token":   token,
	})
}

// AdminLogout godoc
// @Summary Admin logout
// @Tags Auth
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /admin/logout [post]
func (h *AuthHandler) AdminLogout(c *fiber.Ctx) error {
	h.clearCookie(c, middleware.AdminCookie)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// AdminProfile godoc
// @Summary Current admin
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Admin
// @Failure 401 {object} models.ErrorResponse
// @Router /admin/profile [get]
func (h *AuthHandler) AdminProfile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return apperror.Auth("Not authenticated")
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	admin, err := h.auth.Admin(ctx, claims.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(admin)
}

// EmployeeLogin godoc
// @Summary Employee login
// @Description Verifies employee credentials and sets the employeeToken session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginPayload true "Employee credentials"
// @Success 200 {object} models.LoginSuccessResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse "Account deactivated"
// @Router /employee/login [post]
func (h *AuthHandler) EmployeeLogin(c *fiber.Ctx) error {
	var payload models.LoginPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	token, emp, err := h.auth.EmployeeLogin(ctx, payload.Email, payload.Password)
	if err != nil {
		return err
	}

	h.setCookie(c, middleware.EmployeeCookie, token, services.EmployeeTokenTTL)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Login successful",
		"role":    models.RoleEmployee,
		"email":   emp.Email,
		"token":   token,
	})
}

// EmployeeLogout godoc
// @Summary Employee logout
// @Tags Auth
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /employee/logout [post]
func (h *AuthHandler) EmployeeLogout(c *fiber.Ctx) error {
	h.clearCookie(c, middleware.EmployeeCookie)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
