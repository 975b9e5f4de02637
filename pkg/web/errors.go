package web

import (
	"errors"

	"github.com/dukex/operion-canvas/pkg/clipboard"
	"github.com/dukex/operion-canvas/pkg/editor"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// handleEditorError maps gesture and history failures to problem responses.
// Conflicts are checked first: a redo that fails on a missing node is
// inconsistent history, not a missing resource.
func handleEditorError(c fiber.Ctx, err error) error {
	switch {
	case editor.IsConflict(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.Is(err, editor.ErrCanvasNotFound):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("canvas_not_found").
			WithDetail("canvas not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case errors.Is(err, clipboard.ErrEmpty):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("clipboard_empty").
			WithDetail("nothing was copied")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case editor.IsNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case editor.IsInvalid(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("invalid_command").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
