package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"geo-attendance/pkg/apperror"
	util "geo-attendance/pkg/utils"
)

// ErrorHandler renders every error returned by a handler or middleware as
// {"error": message, "code": code, ...details}. Causes of internal errors are
// logged but never sent.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperror.As(err); ok {
			status := appErr.Status()
			if status >= fiber.StatusInternalServerError {
				log.ErrorContext(c.UserContext(), "request failed",
					"method", c.Method(), "path", c.Path(), "code", appErr.Code, "error", err,
					"request_id", c.Locals("requestid"))
			}
			body := fiber.Map{"error": appErr.Message, "code": appErr.Code}
			for k, v := range appErr.Details {
				body[k] = v
			}
			return c.Status(status).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code := apperror.CodeInvalidInput
			switch fiberErr.Code {
			case fiber.StatusNotFound:
				code = apperror.CodeNotFound
			case fiber.StatusInternalServerError:
				code = apperror.CodeInternal
			}
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message, "code": code})
		}

		log.ErrorContext(c.UserContext(), "unhandled error",
			"method", c.Method(), "path", c.Path(), "error", err, "request_id", c.Locals("requestid"))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
			"code":  apperror.CodeInternal,
		})
	}
}

// parseBody decodes and validates the JSON body into payload.
func parseBody(c *fiber.Ctx, payload interface{}) error {
	if err := c.BodyParser(payload); err != nil {
		return apperror.Validation(apperror.CodeInvalidInput, "Invalid request body")
	}
	if errs := util.ValidateStruct(payload); errs != nil {
		return apperror.Validation(apperror.CodeInvalidInput, "Validation failed").WithDetail("errors", errs)
	}
	return nil
}

func parseID(c *fiber.Ctx, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params(param))
	if err != nil {
		return primitive.NilObjectID, apperror.Validation(apperror.CodeInvalidInput, "Invalid id format")
	}
	return id, nil
}

// requestContext bounds the store calls of one request.
func requestContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), timeout)
}
