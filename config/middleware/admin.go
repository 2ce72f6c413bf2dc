package middleware

import (
	"github.com/gofiber/fiber/v2"

	"geo-attendance/models"
	"geo-attendance/pkg/paseto"
)

// AdminMiddleware only lets admin sessions through.
func AdminMiddleware(maker *paseto.Maker) fiber.Handler {
	return AuthMiddleware(maker, AdminCookie, models.RoleAdmin)
}
