package middleware

import (
	"errors"

	"dailydiet/internal/apperrors"
	"dailydiet/internal/models"
	"dailydiet/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "sessionId"

const userKey = "user"

// SessionRequired resolves the session cookie into a user and stores it in
// the Fiber context. Missing and unknown sessions both answer 401.
func SessionRequired(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := sessions.Resolve(c.UserContext(), c.Cookies(SessionCookie))
		if err != nil {
			if errors.Is(err, apperrors.ErrUnauthenticated) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Unauthorized",
				})
			}
			logrus.WithError(err).WithField("path", c.Path()).Error("session lookup failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by SessionRequired, or nil outside protected routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
