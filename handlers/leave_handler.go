package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"geo-attendance/config/middleware"
	"geo-attendance/models"
	"geo-attendance/services"
)

type LeaveHandler struct {
	leaves  *services.LeaveService
	timeout time.Duration
}

func NewLeaveHandler(leaves *services.LeaveService, timeout time.Duration) *LeaveHandler {
	return &LeaveHandler{leaves: leaves, timeout: timeout}
}

// Apply godoc
// @Summary Apply for leave
// @Tags Leave
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param leave body models.LeaveApplyPayload true "Leave request"
// @Success 201 {object} models.LeaveResponse
// @Failure 400 {object} models.ErrorResponse "Invalid range or overlapping leave"
// @Router /leaves/apply [post]
func (h *LeaveHandler) Apply(c *fiber.Ctx) error {
	emp, err := currentEmployee(c)
	if err != nil {
		return err
	}
	var payload models.LeaveApplyPayload
	if err = parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	leave, err := h.leaves.Apply(ctx, emp.ID, services.ApplyInput{
		LeaveType: payload.LeaveType,
		StartDate: payload.StartDate,
		EndDate:   payload.EndDate,
		Reason:    payload.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Leave applied successfully",
		"leave":   leave,
	})
}

// Mine godoc
// @Summary Own leave requests
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.LeaveRequest
// @Router /leaves/my [get]
func (h *LeaveHandler) Mine(c *fiber.Ctx) error {
	emp, err := currentEmployee(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	leaves, err := h.leaves.Mine(ctx, emp.ID)
	if err != nil {
		return err
	}
	return c.JSON(leaves)
}

// Cancel godoc
// @Summary Cancel a pending leave
// @Tags Leave
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Leave is not pending"
// @Failure 404 {object} models.ErrorResponse
// @Router /leaves/{id} [delete]
func (h *LeaveHandler) Cancel(c *fiber.Ctx) error {
	emp, err := currentEmployee(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	if err = h.leaves.Cancel(ctx, id, emp.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Leave cancelled"})
}

// List godoc
// @Summary All leave requests
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Pending, Approved or Rejected"
// @Success 200 {array} models.LeaveWithEmployee
// @Router /admin/leaves [get]
func (h *LeaveHandler) List(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	leaves, err := h.leaves.List(ctx, c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(leaves)
}

// Review godoc
// @Summary Approve or reject a leave
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Leave ID"
// @Param review body models.LeaveReviewPayload true "Decision"
// @Success 200 {object} models.LeaveResponse
// @Failure 400 {object} models.ErrorResponse "Invalid status or already reviewed"
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/leaves/{id} [patch]
func (h *LeaveHandler) Review(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var payload models.LeaveReviewPayload
	if err = parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	leave, err := h.leaves.Review(ctx, id, payload.Status, payload.AdminRemarks, middleware.Claims(c).Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Leave " + string(leave.Status),
		"leave":   leave,
	})
}
