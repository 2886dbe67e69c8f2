package handlers

import (
	"errors"
	"net/http"

	"notesnexus-backend/internal/models"
	"notesnexus-backend/internal/services"
	"notesnexus-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GetProfileHandler returns the authenticated user's profile
func GetProfileHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		u, err := userService.GetProfile(c.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(u)
	}
}

// UpdateProfileHandler updates the display name and avatar URL of the
// authenticated user
func UpdateProfileHandler(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req models.UpdateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
		}
		if req.DisplayName == "" {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "display_name is required"})
		}

		u, err := userService.UpdateProfile(c.Context(), userID, req)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(u)
	}
}

// AdminMiddleware allows only admin users past it.
func AdminMiddleware(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		u, err := userService.GetProfile(c.Context(), userID)
		if err != nil || !u.IsAdmin {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
		}
		return c.Next()
	}
}
