// handlers/task_routes.go
package handlers

import (
	"log"
	"strconv"

	"waste-rewards-system/middleware"
	"waste-rewards-system/models"
	"waste-rewards-system/services"
	"waste-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
)

// geolocationError maps the capture failure reported by the client into the
// corresponding service error. The collector's device resolves GPS locally;
// when it fails, the client forwards the failure kind instead of coordinates.
func geolocationError(kind string) error {
	switch kind {
	case "denied":
		return services.ErrGeolocationDenied
	case "timeout":
		return services.ErrGeolocationTimeout
	default:
		return services.ErrGeolocationUnavailable
	}
}

func SetupTaskRoutes(app *fiber.App, reportService *services.ReportService, verificationService *services.VerificationService) {
	// 🔓 Public — collection tasks are visible to anyone behind the gateway
	app.Get("/tasks", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		tasks, err := reportService.CollectionTasks(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch tasks",
				"cause": err.Error(),
			})
		}
		return c.JSON(tasks)
	})

	// 🔐 Secured — claiming and verifying require user context
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/tasks/:id/start", func(c *fiber.Ctx) error {
		collectorID := c.Locals("user_id").(string)

		report, err := reportService.StartCollection(c.Params("id"), collectorID)
		if err != nil {
			return respondError(c, err)
		}
		log.Printf("🧹 Report %s claimed by collector %s", report.ID, collectorID)
		return c.JSON(report)
	})

	secured.Post("/tasks/:id/verify", func(c *fiber.Ctx) error {
		collectorID := c.Locals("user_id").(string)

		// Client-side geolocation failed; no verification attempt is possible.
		if kind := c.FormValue("gps_error"); kind != "" {
			return respondError(c, geolocationError(kind))
		}

		lat, latErr := strconv.ParseFloat(c.FormValue("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.FormValue("lng"), 64)
		if latErr != nil || lngErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat and lng are required"})
		}
		accuracy, _ := strconv.ParseFloat(c.FormValue("accuracy"), 64)

		fileHeader, err := c.FormFile("image")
		if err != nil {
			return respondError(c, services.ErrNotVerifiable)
		}
		data, contentType, err := utils.ReadPhoto(fileHeader)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to read image",
				"cause": err.Error(),
			})
		}

		// Keep the collector's evidence photo. Best effort: a storage outage
		// must not block the verification itself.
		photoURL, err := utils.UploadPhotoBytes(c.Context(), "verifications", data, contentType)
		if err != nil {
			log.Printf("⚠️ Failed to store verification photo: %v", err)
			photoURL = ""
		}

		outcome, err := verificationService.VerifyCollection(
			c.Context(),
			c.Params("id"),
			collectorID,
			data,
			contentType,
			photoURL,
			models.GeoPoint{Lat: lat, Lng: lng, Accuracy: accuracy},
		)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(outcome)
	})
}
