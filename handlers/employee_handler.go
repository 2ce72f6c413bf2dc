package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"geo-attendance/config/middleware"
	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/services"
)

type EmployeeHandler struct {
	employees  *services.EmployeeService
	attendance *services.AttendanceService
	timeout    time.Duration
}

func NewEmployeeHandler(employees *services.EmployeeService, attendance *services.AttendanceService, timeout time.Duration) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, attendance: attendance, timeout: timeout}
}

// Register godoc
// @Summary Register employee
// @Description Creates an active employee account (admin only)
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param employee body models.EmployeeRegisterPayload true "Employee data"
// @Success 201 {object} models.RegisterSuccessResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 409 {object} models.ErrorResponse "Email already registered"
// @Router /employee/register [post]
func (h *EmployeeHandler) Register(c *fiber.Ctx) error {
	var payload models.EmployeeRegisterPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}
	claims := middleware.Claims(c)

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	emp, err := h.employees.Register(ctx, payload, claims.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Employee registered successfully",
		"employee": emp,
	})
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Employee
// @Router /admin/employees [get]
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	employees, err := h.employees.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(employees)
}

// Get godoc
// @Summary Get employee
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} models.Employee
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/employees/{id} [get]
func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	emp, err := h.employees.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(emp)
}

// SetStatus godoc
// @Summary Activate or deactivate employee
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param status body models.EmployeeStatusPayload true "New status"
// @Success 200 {object} models.Employee
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/employees/{id}/status [patch]
func (h *EmployeeHandler) SetStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload models.EmployeeStatusPayload
	if err = parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	emp, err := h.employees.SetStatus(ctx, id, *payload.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Employee status updated", "employee": emp})
}

// Attendance godoc
// @Summary Employee attendance history
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} object{employee=models.Employee,attendance=[]models.Attendance}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/employees/{id}/attendance [get]
func (h *EmployeeHandler) Attendance(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	emp, records, err := h.attendance.EmployeeHistory(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"employee": emp, "attendance": records})
}

// Profile godoc
// @Summary Own profile
// @Tags Employees
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.EmployeeProfile
// @Router /employee/profile [get]
func (h *EmployeeHandler) Profile(c *fiber.Ctx) error {
	emp := middleware.Employee(c)
	if emp == nil {
		return apperror.Auth("Not authenticated")
	}
	return c.JSON(emp.Profile())
}

// UpdateProfile godoc
// @Summary Update own address and emergency contact
// @Tags Employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body models.ProfileUpdatePayload true "Profile fields"
// @Success 200 {object} models.EmployeeProfile
// @Failure 400 {object} models.ErrorResponse
// @Router /employee/profile [put]
func (h *EmployeeHandler) UpdateProfile(c *fiber.Ctx) error {
	emp := middleware.Employee(c)
	if emp == nil {
		return apperror.Auth("Not authenticated")
	}
	var payload models.ProfileUpdatePayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	updated, err := h.employees.UpdateProfile(ctx, emp.ID, payload)
	if err != nil {
		return err
	}
	return c.JSON(updated.Profile())
}
