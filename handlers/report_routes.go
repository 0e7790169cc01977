// handlers/report_routes.go
package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	"waste-rewards-system/middleware"
	"waste-rewards-system/models"
	"waste-rewards-system/services"
	"waste-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupReportRoutes(app *fiber.App, reportService *services.ReportService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/reports/recent", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		reports, err := reportService.RecentReports(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch reports",
				"cause": err.Error(),
			})
		}
		return c.JSON(reports)
	})

	app.Get("/reports/:id", func(c *fiber.Ctx) error {
		report, err := reportService.GetReport(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(report)
	})

	// 🔐 Secured routes — require user context, enforced via middleware
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Classify a waste photo without creating a report. The client previews the
	// result and submits the report separately once the user confirms.
	secured.Post("/reports/classify", func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is required"})
		}
		data, contentType, err := utils.ReadPhoto(fileHeader)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to read image",
				"cause": err.Error(),
			})
		}

		payload, err := reportService.ClassifyImage(c.Context(), data, contentType)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(payload)
	})

	secured.Post("/reports", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			Location       string                       `json:"location"`
			Classification models.ClassificationPayload `json:"classification"`
			ImageURL       string                       `json:"image_url"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if strings.TrimSpace(body.Location) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "location is required"})
		}
		if err := body.Classification.Validate(); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid classification",
				"cause": err.Error(),
			})
		}

		report, err := reportService.CreateReport(userID, body.Location, &body.Classification, body.ImageURL)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create report",
				"cause": err.Error(),
			})
		}
		log.Printf("📝 Report %s created by user %s", report.ID, userID)
		return c.Status(fiber.StatusCreated).JSON(report)
	})

	// Upload the report photo and get back a public URL for the report body.
	secured.Post("/reports/photo", func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is required"})
		}
		data, contentType, err := utils.ReadPhoto(fileHeader)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to read image",
				"cause": err.Error(),
			})
		}
		url, err := utils.UploadPhotoBytes(context.Background(), "reports", data, contentType)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to upload photo",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"url": url})
	})

	secured.Get("/reports/mine", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		reports, err := reportService.ReportsByUser(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch reports",
				"cause": err.Error(),
			})
		}
		return c.JSON(reports)
	})
}
