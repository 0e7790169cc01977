// handlers/reward_routes.go
package handlers

import (
	"log"
	"strconv"

	"waste-rewards-system/middleware"
	"waste-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRewardRoutes(app *fiber.App, ledgerService *services.LedgerService, redemptionService *services.RedemptionService) {
	// 🔓 Public routes
	app.Get("/rewards/catalog", func(c *fiber.Ctx) error {
		rewards, err := redemptionService.CatalogRewards()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch reward catalog",
				"cause": err.Error(),
			})
		}
		return c.JSON(rewards)
	})

	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		entries, err := redemptionService.Leaderboard(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch leaderboard",
				"cause": err.Error(),
			})
		}
		return c.JSON(entries)
	})

	// 🔐 Secured routes
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/balance", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		balance, err := ledgerService.Balance(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to compute balance",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"balance": balance})
	})

	secured.Get("/transactions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		txs, err := ledgerService.RecentTransactions(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch transactions",
				"cause": err.Error(),
			})
		}
		return c.JSON(txs)
	})

	secured.Post("/rewards/:id/redeem", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		tx, err := redemptionService.RedeemCatalogReward(userID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		log.Printf("🎁 User %s redeemed reward %s", userID, c.Params("id"))
		return c.JSON(tx)
	})

	secured.Post("/rewards/redeem-wallet", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			WalletAddress string `json:"wallet_address"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		result, err := redemptionService.RedeemToWallet(c.Context(), userID, body.WalletAddress)
		if err != nil {
			return respondError(c, err)
		}
		log.Printf("💸 User %s cashed out to %s (tx %s)", userID, body.WalletAddress, result.TxHash)
		return c.JSON(result)
	})

	// Admin: seed catalog items. The gateway restricts who can reach this.
	secured.Post("/rewards/catalog", func(c *fiber.Ctx) error {
		var body struct {
			Name           string `json:"name"`
			Description    string `json:"description"`
			CollectionInfo string `json:"collection_info"`
			Points         int    `json:"points"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if body.Name == "" || body.Points <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and a positive points cost are required"})
		}

		reward, err := redemptionService.CreateCatalogReward(body.Name, body.Description, body.CollectionInfo, body.Points)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create reward",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(reward)
	})
}
