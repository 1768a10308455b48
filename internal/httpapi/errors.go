package httpapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/signalsfoundry/antenna-workbench/internal/editor"
	"github.com/signalsfoundry/antenna-workbench/internal/solver"
	"github.com/signalsfoundry/antenna-workbench/necio"
	"github.com/signalsfoundry/antenna-workbench/templates"
)

// toStatus maps domain sentinel errors onto HTTP status codes so every
// handler reports the same code for the same failure.
func toStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, editor.ErrWireNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrWireExists):
		return http.StatusConflict
	case errors.Is(err, editor.ErrInvalidWire),
		errors.Is(err, editor.ErrInvalidReference),
		errors.Is(err, solver.ErrEmptyGeometry),
		errors.Is(err, solver.ErrExcitationCount),
		errors.Is(err, solver.ErrInvalidSweep),
		errors.Is(err, templates.ErrUnknownKind),
		errors.Is(err, templates.ErrFrequency),
		errors.Is(err, necio.ErrBadDeck):
		return http.StatusBadRequest
	case errors.Is(err, solver.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// jsonError renders err as the standard {error} payload under its mapped
// status code.
func jsonError(c fiber.Ctx, err error) error {
	return c.Status(toStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": msg})
}
