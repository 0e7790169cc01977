// handlers/errors.go
package handlers

import (
	"errors"

	"waste-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto HTTP statuses. Every failure is local
// to the one action that triggered it; retries are always user-initiated.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrChallengeNotFound),
		errors.Is(err, services.ErrRewardNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrAlreadyClaimed),
		errors.Is(err, services.ErrAlreadyJoined):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrNotCollector):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrMalformedResponse):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotVerifiable),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrGeolocationDenied),
		errors.Is(err, services.ErrGeolocationUnavailable),
		errors.Is(err, services.ErrGeolocationTimeout):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrPaymentRail):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
