// handlers/challenge_routes.go
package handlers

import (
	"time"

	"waste-rewards-system/middleware"
	"waste-rewards-system/models"
	"waste-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService) {
	// 🔓 Public routes
	app.Get("/challenges", func(c *fiber.Ctx) error {
		challenges, err := challengeService.ActiveChallenges()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch challenges",
				"cause": err.Error(),
			})
		}
		return c.JSON(challenges)
	})

	app.Get("/challenges/all", func(c *fiber.Ctx) error {
		challenges, err := challengeService.AllChallenges()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch challenges",
				"cause": err.Error(),
			})
		}
		return c.JSON(challenges)
	})

	app.Get("/challenges/:id", func(c *fiber.Ctx) error {
		challenge, err := challengeService.GetChallenge(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(challenge)
	})

	// 🔐 Secured routes
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/challenges/mine", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		views, err := challengeService.UserChallenges(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch user challenges",
				"cause": err.Error(),
			})
		}
		return c.JSON(views)
	})

	secured.Post("/challenges/:id/join", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		participant, err := challengeService.Join(userID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(participant)
	})

	// Admin: create a challenge. The gateway restricts who can reach this.
	secured.Post("/challenges", func(c *fiber.Ctx) error {
		var body struct {
			Title        string           `json:"title"`
			Description  string           `json:"description"`
			GoalType     models.GoalType  `json:"goal_type"`
			GoalAmount   float64          `json:"goal_amount"`
			RewardPoints int              `json:"reward_points"`
			StartDate    time.Time        `json:"start_date"`
			EndDate      time.Time        `json:"end_date"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		challenge := models.Challenge{
			Title:        body.Title,
			Description:  body.Description,
			GoalType:     body.GoalType,
			GoalAmount:   body.GoalAmount,
			RewardPoints: body.RewardPoints,
			StartDate:    body.StartDate,
			EndDate:      body.EndDate,
			IsActive:     true,
		}
		if err := challengeService.CreateChallenge(&challenge); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid challenge",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(challenge)
	})
}
