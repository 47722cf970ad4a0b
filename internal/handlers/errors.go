package handlers

import (
	"errors"
	"fmt"

	"dailydiet/internal/apperrors"
	"dailydiet/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// respondError maps a service error onto the HTTP taxonomy. notFoundStatus
// varies per route; subject names the missing resource in the message.
func respondError(c *fiber.Ctx, err error, notFoundStatus int, subject string) error {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid parameters",
			"error":   err.Error(),
		})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
		})
	case errors.Is(err, apperrors.ErrConflict):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "User already exists",
		})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(notFoundStatus).JSON(fiber.Map{
			"message": fmt.Sprintf("The %s does not exist", subject),
		})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	fields := logrus.Fields{"method": c.Method(), "route": c.Route().Path}
	if user := middleware.CurrentUser(c); user != nil {
		fields["user_id"] = user.ID
	}
	logrus.WithError(err).WithFields(fields).Error("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}
