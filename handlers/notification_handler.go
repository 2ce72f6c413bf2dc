package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"geo-attendance/models"
	"geo-attendance/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	timeout       time.Duration
}

func NewNotificationHandler(notifications *services.NotificationService, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, timeout: timeout}
}

// Create godoc
// @Summary Post a notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notification body models.NotificationPayload true "Notification"
// @Success 201 {object} models.Notification
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /admin/notifications [post]
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var payload models.NotificationPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	n, err := h.notifications.Create(ctx, payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

// All godoc
// @Summary Every notification
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Router /admin/notifications [get]
func (h *NotificationHandler) All(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	list, err := h.notifications.All(ctx)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Mine godoc
// @Summary Own notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Notification
// @Router /employee/notifications [get]
func (h *NotificationHandler) Mine(c *fiber.Ctx) error {
	emp, err := currentEmployee(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	list, err := h.notifications.ForEmployee(ctx, emp.ID)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /employee/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
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

	if err = h.notifications.MarkRead(ctx, id, emp.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}
