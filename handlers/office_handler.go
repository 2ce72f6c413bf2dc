package handlers

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	qrcode "github.com/skip2/go-qrcode"

	"geo-attendance/config/middleware"
	"geo-attendance/models"
	"geo-attendance/pkg/apperror"
	"geo-attendance/services"
)

const qrSize = 256

type OfficeHandler struct {
	offices *services.OfficeService
	timeout time.Duration
}

func NewOfficeHandler(offices *services.OfficeService, timeout time.Duration) *OfficeHandler {
	return &OfficeHandler{offices: offices, timeout: timeout}
}

// Configure godoc
// @Summary Set the office geofence
// @Description Stores a new active office location; the previous one is retired
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param office body models.OfficeLocationPayload true "Office location"
// @Success 201 {object} models.OfficeResponse
// @Failure 400 {object} models.ValidationErrorResponse
// @Router /admin/office-location [post]
func (h *OfficeHandler) Configure(c *fiber.Ctx) error {
	var payload models.OfficeLocationPayload
	if err := parseBody(c, &payload); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	office, err := h.offices.Configure(ctx, services.ConfigureInput{
		Name:         payload.Name,
		Latitude:     payload.Latitude,
		Longitude:    payload.Longitude,
		RadiusMeters: payload.AllowedRadiusMeters,
		WorkdayRule:  payload.WorkdayRule,
		AdminEmail:   middleware.Claims(c).Email,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Office location saved",
		"office":  office,
	})
}

func (h *OfficeHandler) active(c *fiber.Ctx) (*models.OfficeLocation, error) {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()

	office, err := h.offices.Active(ctx)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, apperror.NotFound("Office location is not configured")
	}
	return office, nil
}

// Get godoc
// @Summary Active office geofence
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.OfficeLocation
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/office-location [get]
func (h *OfficeHandler) Get(c *fiber.Ctx) error {
	office, err := h.active(c)
	if err != nil {
		return err
	}
	return c.JSON(office)
}

// QRCode godoc
// @Summary Check-in poster for the active office
// @Description PNG QR code, as a data URI, that opens the check-in screen for this office
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string,qr_code_image=string,version=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/office-location/qr [get]
func (h *OfficeHandler) QRCode(c *fiber.Ctx) error {
	office, err := h.active(c)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("geo-attendance://check-in?office=%s&v=%d", office.ID.Hex(), office.Version)
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return apperror.Internal("failed to render QR code", err)
	}

	return c.JSON(fiber.Map{
		"message":       "QR code generated",
		"qr_code_image": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		"version":       office.Version,
	})
}
