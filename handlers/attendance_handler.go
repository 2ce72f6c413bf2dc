package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"geo-attendance/config/middleware"
	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	util "geo-attendance/pkg/utils"
	"geo-attendance/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler struct {
	attendance *services.AttendanceService
	timeout    time.Duration
}

func NewAttendanceHandler(attendance *services.AttendanceService, timeout time.Duration) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, timeout: timeout}
}

func currentEmployee(c *fiber.Ctx) (*models.Employee, error) {
	emp := middleware.Employee(c)
	if emp == nil {
		return nil, apperror.Auth("Not authenticated")
	}
	return emp, nil
}

// CheckIn godoc
// @Summary Check in
// @Description Records today's arrival when the device is inside the office geofence
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param location body models.CheckInPayload true "Device coordinates"
// @Success 201 {object} models.AttendanceResponse
// @Failure 400 {object} models.ErrorResponse "Missing location or already checked in"
// @Failure 403 {object} models.ErrorResponse "Outside the office geofence"
// @Failure 500 {object} models.ErrorResponse "Office location not configured"
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	emp, err := currentEmployee(c)
	if err != nil {
		return err
	}
	var payload models.CheckInPayload
	if len(c.Body()) > 0 {
		if err = c.BodyParser(&payload); err != nil {
			return apperror.Validation(apperror.CodeInvalidInput, "Invalid request body")
		}
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	rec, err := h.attendance.CheckIn(ctx, emp.ID, payload.Latitude, payload.Longitude)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Checked in successfully",
		"attendance": rec,
	})
}

// CheckOut godoc
// @Summary Check out
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AttendanceResponse
// @Failure 400 {object} models.ErrorResponse "No check-in today or already checked out"
// @Router /attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c *fiber.Ctx) error {
	emp, err := currentEmployee(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	rec, err := h.attendance.CheckOut(ctx, emp.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":    "Checked out successfully",
		"attendance": rec,
	})
}

// My godoc
// @Summary Own attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Attendance
// @Router /attendance/my [get]
func (h *AttendanceHandler) My(c *fiber.Ctx) error {
	emp, err := currentEmployee(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	records, err := h.attendance.History(ctx, emp.ID)
	if err != nil {
		return err
	}
	return c.JSON(records)
}

// MySummary godoc
// @Summary Own attendance summary
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AttendanceSummary
// @Router /attendance/my/summary [get]
func (h *AttendanceHandler) MySummary(c *fiber.Ctx) error {
	emp, err := currentEmployee(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	summary, err := h.attendance.Summary(ctx, emp.ID)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// List godoc
// @Summary All attendance records
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 50"
// @Success 200 {object} models.PaginatedAttendance
// @Router /admin/attendance [get]
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	page, limit := util.ParsePagination(c.Query("page"), c.Query("limit"), services.DefaultPageLimit, services.MaxPageLimit)

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	result, err := h.attendance.List(ctx, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Today godoc
// @Summary Today's attendance of every active employee
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.DailyAttendanceRow
// @Router /admin/attendance/today [get]
func (h *AttendanceHandler) Today(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	rows, err := h.attendance.Today(ctx)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// Override godoc
// @Summary Override attendance status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Param status body models.AttendanceStatusPayload true "New status"
// @Success 200 {object} models.AttendanceResponse
// @Failure 400 {object} models.ErrorResponse "Invalid status"
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/attendance/{id} [patch]
func (h *AttendanceHandler) Override(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload models.AttendanceStatusPayload
	if err = parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	rec, err := h.attendance.Override(ctx, id, payload.Status, payload.Remarks)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Attendance updated", "attendance": rec})
}

// CloseOut godoc
// @Summary Close out a past day
// @Description Marks every active employee without a record as Absent, or Leave when an approved leave covers the day
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param day body models.CloseOutPayload true "Day to close, YYYY-MM-DD"
// @Success 200 {object} models.CloseOutResult
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/attendance/close-out [post]
func (h *AttendanceHandler) CloseOut(c *fiber.Ctx) error {
	var payload models.CloseOutPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	result, err := h.attendance.CloseOut(ctx, payload.Date, middleware.Claims(c).Email)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Export godoc
// @Summary Export attendance workbook
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param from query string true "First day, YYYY-MM-DD"
// @Param to query string true "Last day, YYYY-MM-DD"
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "No records in range"
// @Router /admin/attendance/export [get]
func (h *AttendanceHandler) Export(c *fiber.Ctx) error {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		return apperror.Validation(apperror.CodeInvalidInput, "Query parameters 'from' and 'to' are required")
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	buf, err := h.attendance.Export(ctx, from, to)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="attendance_%s_%s.xlsx"`, from, to))
	return c.Send(buf.Bytes())
}
