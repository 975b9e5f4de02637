// Package web provides HTTP handlers that drive canvas gestures and history.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/dukex/operion-canvas/pkg/clipboard"
	"github.com/dukex/operion-canvas/pkg/editor"
	"github.com/dukex/operion-canvas/pkg/graph"
	"github.com/dukex/operion-canvas/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	sessions  *editor.Sessions
	clipboard clipboard.Store
	validator *validator.Validate
}

func NewAPIHandlers(
	sessions *editor.Sessions,
	clipboardStore clipboard.Store,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		sessions:  sessions,
		clipboard: clipboardStore,
		validator: validator,
	}
}

// RegisterRoutes mounts the canvas endpoints on router.
func RegisterRoutes(router fiber.Router, h *APIHandlers) {
	w := router.Group("/canvases")
	w.Get("/", h.ListCanvases)
	w.Post("/", h.CreateCanvas)
	w.Get("/:id", h.GetCanvas)
	w.Put("/:id", h.LoadCanvas)
	w.Delete("/:id", h.DeleteCanvas)

	w.Post("/:id/nodes", h.AddNode)
	w.Post("/:id/nodes/insert", h.InsertNode)
	w.Post("/:id/nodes/delete", h.DeleteNodes)
	w.Post("/:id/nodes/move", h.MoveNodes)
	w.Post("/:id/nodes/toggle", h.ToggleNodes)
	w.Post("/:id/nodes/duplicate", h.DuplicateNodes)
	w.Patch("/:id/nodes/:nodeId/name", h.RenameNode)

	w.Post("/:id/connections", h.Connect)
	w.Post("/:id/connections/delete", h.Disconnect)

	w.Post("/:id/details/close", h.CloseNodeDetails)
	w.Post("/:id/details/:nodeId", h.OpenNodeDetails)
	w.Patch("/:id/details", h.EditNodeDetails)
	w.Delete("/:id/details", h.CancelNodeDetails)

	w.Post("/:id/drag", h.BeginDrag)
	w.Patch("/:id/drag", h.MoveDrag)
	w.Post("/:id/drag/finish", h.FinishDrag)
	w.Delete("/:id/drag", h.CancelDrag)

	w.Post("/:id/copy", h.Copy)
	w.Post("/:id/paste", h.Paste)

	w.Get("/:id/history", h.GetHistory)
	w.Post("/:id/undo", h.Undo)
	w.Post("/:id/redo", h.Redo)
	w.Post("/:id/shortcut", h.Shortcut)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"sessions":  h.sessions.Len(),
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) ListCanvases(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"canvases": h.sessions.List()})
}

func (h *APIHandlers) CreateCanvas(c fiber.Ctx) error {
	var state *graph.State

	if len(c.Body()) > 0 {
		var req GraphRequest
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}

		if err := h.validator.Struct(req); err != nil {
			return badRequest(c, err.Error())
		}

		state = &graph.State{Nodes: req.Nodes, Connections: req.Connections}
	}

	canvas, err := h.sessions.Create(c.Context(), state)
	if err != nil {
		return handleEditorError(c, err)
	}

	var resp CanvasResponse

	err = h.sessions.With(canvas.ID(), func(cv *editor.Canvas) error {
		resp = canvasResponse(cv)

		return nil
	})
	if err != nil {
		return handleEditorError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *APIHandlers) GetCanvas(c fiber.Ctx) error {
	return h.apply(c, func(context.Context, *editor.Canvas) error { return nil })
}

func (h *APIHandlers) LoadCanvas(c fiber.Ctx) error {
	var req GraphRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		return cv.Load(ctx, graph.State{Nodes: req.Nodes, Connections: req.Connections})
	})
}

func (h *APIHandlers) DeleteCanvas(c fiber.Ctx) error {
	if !h.sessions.Delete(c.Params("id")) {
		return handleEditorError(c, editor.ErrCanvasNotFound)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) AddNode(c fiber.Ctx) error {
	var req CreateNodeRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.applyNodes(c, func(ctx context.Context, cv *editor.Canvas) ([]*models.Node, error) {
		node, err := cv.AddNode(ctx, req.toEditor())
		if err != nil {
			return nil, err
		}

		return []*models.Node{node}, nil
	})
}

func (h *APIHandlers) InsertNode(c fiber.Ctx) error {
	var req InsertNodeRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.applyNodes(c, func(ctx context.Context, cv *editor.Canvas) ([]*models.Node, error) {
		node, err := cv.InsertNodeBetween(ctx, req.Connection, req.Node.toEditor())
		if err != nil {
			return nil, err
		}

		return []*models.Node{node}, nil
	})
}

func (h *APIHandlers) DeleteNodes(c fiber.Ctx) error {
	var req SelectionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		return cv.DeleteNodes(ctx, req.IDs...)
	})
}

func (h *APIHandlers) MoveNodes(c fiber.Ctx) error {
	var req MoveNodesRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		return cv.MoveNodes(ctx, req.Positions)
	})
}

func (h *APIHandlers) ToggleNodes(c fiber.Ctx) error {
	var req SelectionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		return cv.ToggleDisabled(ctx, req.IDs...)
	})
}

func (h *APIHandlers) DuplicateNodes(c fiber.Ctx) error {
	var req SelectionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.applyNodes(c, func(ctx context.Context, cv *editor.Canvas) ([]*models.Node, error) {
		return cv.DuplicateNodes(ctx, req.IDs...)
	})
}

func (h *APIHandlers) RenameNode(c fiber.Ctx) error {
	var req RenameNodeRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	nodeID := c.Params("nodeId")

	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		return cv.RenameNode(ctx, nodeID, req.Name)
	})
}

func (h *APIHandlers) Connect(c fiber.Ctx) error {
	var req models.Connection
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		return cv.Connect(ctx, req)
	})
}

func (h *APIHandlers) Disconnect(c fiber.Ctx) error {
	var req models.Connection
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		return cv.Disconnect(ctx, req)
	})
}

func (h *APIHandlers) OpenNodeDetails(c fiber.Ctx) error {
	nodeID := c.Params("nodeId")

	return h.apply(c, func(_ context.Context, cv *editor.Canvas) error {
		_, err := cv.OpenNodeDetails(nodeID)

		return err
	})
}

func (h *APIHandlers) EditNodeDetails(c fiber.Ctx) error {
	var req NodeDetailsRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		details, ok := cv.ActiveNodeDetails()
		if !ok {
			return editor.ErrNoActiveDialog
		}

		if req.Name != nil {
			if err := details.Rename(ctx, *req.Name); err != nil {
				return err
			}
		}

		if req.Disabled != nil {
			return details.SetDisabled(ctx, *req.Disabled)
		}

		return nil
	})
}

func (h *APIHandlers) CloseNodeDetails(c fiber.Ctx) error {
	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		details, ok := cv.ActiveNodeDetails()
		if !ok {
			return editor.ErrNoActiveDialog
		}

		_, err := details.Close(ctx)

		return err
	})
}

func (h *APIHandlers) CancelNodeDetails(c fiber.Ctx) error {
	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		details, ok := cv.ActiveNodeDetails()
		if !ok {
			return editor.ErrNoActiveDialog
		}

		return details.Cancel(ctx)
	})
}

func (h *APIHandlers) BeginDrag(c fiber.Ctx) error {
	var req SelectionRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.apply(c, func(_ context.Context, cv *editor.Canvas) error {
		_, err := cv.BeginDrag(req.IDs...)

		return err
	})
}

func (h *APIHandlers) MoveDrag(c fiber.Ctx) error {
	var req DragRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		drag, ok := cv.ActiveDrag()
		if !ok {
			return editor.ErrNoActiveDialog
		}

		return drag.MoveBy(ctx, req.DX, req.DY)
	})
}

func (h *APIHandlers) FinishDrag(c fiber.Ctx) error {
	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		drag, ok := cv.ActiveDrag()
		if !ok {
			return editor.ErrNoActiveDialog
		}

		_, err := drag.Finish(ctx)

		return err
	})
}

func (h *APIHandlers) CancelDrag(c fiber.Ctx) error {
	return h.apply(c, func(ctx context.Context, cv *editor.Canvas) error {
		drag, ok := cv.ActiveDrag()
		if !ok {
			return editor.ErrNoActiveDialog
		}

		return drag.Cancel(ctx)
	})
}

// Copy stores the selection (or the whole canvas when no ids are given) on
// the canvas clipboard and returns the snapshot.
func (h *APIHandlers) Copy(c fiber.Ctx) error {
	var req SelectionRequest

	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	id := c.Params("id")

	var snapshot *clipboard.Workflow

	err := h.sessions.With(id, func(cv *editor.Canvas) error {
		wf, err := cv.Copy(req.IDs...)
		if err != nil {
			return err
		}

		data, err := clipboard.Encode(wf)
		if err != nil {
			return err
		}

		snapshot = wf

		return h.clipboard.Put(c.Context(), id, data)
	})
	if err != nil {
		return handleEditorError(c, err)
	}

	return c.JSON(snapshot)
}

// Paste adds the snapshot in the request body, or the canvas clipboard when
// the body is empty.
func (h *APIHandlers) Paste(c fiber.Ctx) error {
	id := c.Params("id")
	body := c.Body()

	return h.applyNodes(c, func(ctx context.Context, cv *editor.Canvas) ([]*models.Node, error) {
		if len(body) == 0 {
			return cv.PasteFrom(ctx, h.clipboard, id)
		}

		return cv.Paste(ctx, body)
	})
}

func (h *APIHandlers) GetHistory(c fiber.Ctx) error {
	var summary editor.Summary

	err := h.sessions.With(c.Params("id"), func(cv *editor.Canvas) error {
		summary = cv.History()

		return nil
	})
	if err != nil {
		return handleEditorError(c, err)
	}

	return c.JSON(summary)
}

func (h *APIHandlers) Undo(c fiber.Ctx) error {
	return h.step(c, func(ctx context.Context, cv *editor.Canvas) (editor.Outcome, error) {
		return cv.Undo(ctx)
	})
}

func (h *APIHandlers) Redo(c fiber.Ctx) error {
	return h.step(c, func(ctx context.Context, cv *editor.Canvas) (editor.Outcome, error) {
		return cv.Redo(ctx)
	})
}

func (h *APIHandlers) Shortcut(c fiber.Ctx) error {
	var req ShortcutRequest
	if ok, err := h.bind(c, &req); !ok {
		return err
	}

	return h.step(c, func(ctx context.Context, cv *editor.Canvas) (editor.Outcome, error) {
		return cv.Controller().Shortcut(ctx, req.Keys)
	})
}

// bind decodes and validates the JSON body. When it reports false the problem
// response is already written and the handler returns the given error.
func (h *APIHandlers) bind(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return false, badRequest(c, err.Error())
	}

	return true, nil
}

// apply runs fn on the canvas named by the id parameter and responds with the
// resulting canvas.
func (h *APIHandlers) apply(c fiber.Ctx, fn func(ctx context.Context, cv *editor.Canvas) error) error {
	var resp CanvasResponse

	err := h.sessions.With(c.Params("id"), func(cv *editor.Canvas) error {
		if err := fn(c.Context(), cv); err != nil {
			return err
		}

		resp = canvasResponse(cv)

		return nil
	})
	if err != nil {
		return handleEditorError(c, err)
	}

	return c.JSON(resp)
}

// applyNodes is apply for gestures that create nodes.
func (h *APIHandlers) applyNodes(c fiber.Ctx, fn func(ctx context.Context, cv *editor.Canvas) ([]*models.Node, error)) error {
	var resp NodesResponse

	err := h.sessions.With(c.Params("id"), func(cv *editor.Canvas) error {
		nodes, err := fn(c.Context(), cv)
		if err != nil {
			return err
		}

		resp = NodesResponse{Nodes: nodes, Canvas: canvasResponse(cv)}

		return nil
	})
	if err != nil {
		return handleEditorError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(resp)
}

func (h *APIHandlers) step(c fiber.Ctx, fn func(ctx context.Context, cv *editor.Canvas) (editor.Outcome, error)) error {
	var resp HistoryResponse

	err := h.sessions.With(c.Params("id"), func(cv *editor.Canvas) error {
		outcome, err := fn(c.Context(), cv)
		if err != nil {
			return err
		}

		resp = HistoryResponse{Outcome: outcome, Canvas: canvasResponse(cv)}

		return nil
	})
	if err != nil {
		return handleEditorError(c, err)
	}

	return c.JSON(resp)
}
