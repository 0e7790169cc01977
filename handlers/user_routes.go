// handlers/user_routes.go
package handlers

import (
	"waste-rewards-system/middleware"
	"waste-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, notificationService *services.NotificationService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Idempotent login hook: creates the user row on first sight of an email.
	secured.Post("/users/ensure", func(c *fiber.Ctx) error {
		var body struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil || body.Email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
		}

		user, err := userService.EnsureUser(body.Email, body.Name)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to ensure user",
				"cause": err.Error(),
			})
		}
		return c.JSON(user)
	})

	secured.Get("/notifications", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		notifications, err := notificationService.Unread(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch notifications",
				"cause": err.Error(),
			})
		}
		return c.JSON(notifications)
	})

	secured.Post("/notifications/:id/read", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := notificationService.MarkRead(c.Params("id"), userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to mark notification read",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
}
