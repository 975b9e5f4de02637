// Package web provides HTTP request and response types for the canvas API.
package web

import (
	"github.com/dukex/operion-canvas/pkg/editor"
	"github.com/dukex/operion-canvas/pkg/models"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// GraphRequest carries a whole graph, for opening or reloading a canvas.
type GraphRequest struct {
	Nodes       []models.Node       `json:"nodes"       validate:"dive"`
	Connections []models.Connection `json:"connections" validate:"dive"`
}

// CreateNodeRequest represents the request body for placing a node.
type CreateNodeRequest struct {
	Type       string           `json:"type" validate:"required"`
	Name       string           `json:"name,omitempty"`
	Position   *models.Position `json:"position,omitempty"`
	Parameters map[string]any   `json:"parameters,omitempty"`
	Disabled   bool             `json:"disabled,omitempty"`
	After      string           `json:"after,omitempty"`
}

func (r CreateNodeRequest) toEditor() editor.AddNodeRequest {
	return editor.AddNodeRequest{
		Type:       r.Type,
		Name:       r.Name,
		Position:   r.Position,
		Parameters: r.Parameters,
		Disabled:   r.Disabled,
		After:      r.After,
	}
}

// InsertNodeRequest splits a connection with a new node.
type InsertNodeRequest struct {
	Connection models.Connection `json:"connection" validate:"required"`
	Node       CreateNodeRequest `json:"node"       validate:"required"`
}

// SelectionRequest names the nodes a gesture applies to.
type SelectionRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// MoveNodesRequest moves nodes to absolute positions.
type MoveNodesRequest struct {
	Positions map[string]models.Position `json:"positions" validate:"required,min=1"`
}

// DragRequest shifts the dragged nodes by an offset.
type DragRequest struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// RenameNodeRequest renames a node.
type RenameNodeRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// NodeDetailsRequest previews edits in the open node editing view.
type NodeDetailsRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=1"`
	Disabled *bool   `json:"disabled,omitempty"`
}

// ShortcutRequest carries a key combination such as "ctrl+z".
type ShortcutRequest struct {
	Keys string `json:"keys" validate:"required"`
}

// CanvasResponse is the state of a canvas after a request.
type CanvasResponse struct {
	ID          string              `json:"id"`
	Nodes       []models.Node       `json:"nodes"`
	Connections []models.Connection `json:"connections"`
	History     editor.Summary      `json:"history"`
}

// NodesResponse lists the nodes a gesture created, with the resulting canvas.
type NodesResponse struct {
	Nodes  []*models.Node `json:"nodes"`
	Canvas CanvasResponse `json:"canvas"`
}

// HistoryResponse reports an undo or redo.
type HistoryResponse struct {
	editor.Outcome

	Canvas CanvasResponse `json:"canvas"`
}

func canvasResponse(c *editor.Canvas) CanvasResponse {
	state := c.State()

	return CanvasResponse{
		ID:          c.ID(),
		Nodes:       state.Nodes,
		Connections: state.Connections,
		History:     c.History(),
	}
}
