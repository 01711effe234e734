package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/makonda/offering-cards/internal/model"
	xhttp "github.com/makonda/offering-cards/pkg/http"
)

type AssignmentService interface {
	Assign(ctx context.Context, p model.AssignRequest) (*model.CardAssignment, error)
	Update(ctx context.Context, id int64, p model.AssignmentUpdate) (*model.CardAssignment, error)
	Get(ctx context.Context, id int64) (*model.CardAssignment, error)
}

type AssignmentHandler struct {
	svc AssignmentService
}

func RegisterAssignmentRoutes(e *router.Group, h *AssignmentHandler) {
	e.POST("/assignments", h.CreateAssignment)
	e.PATCH("/assignments/{id}", h.UpdateAssignment)
	e.GET("/assignments/{id}", h.GetAssignment)
}

func NewAssignmentHandler(svc AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		svc: svc,
	}
}

func (h *AssignmentHandler) CreateAssignment(ctx *xhttp.RequestCtx) {
	var req model.AssignRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	assignment, err := h.svc.Assign(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, assignment)
}

func (h *AssignmentHandler) UpdateAssignment(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid assignment id")
		return
	}

	var req model.AssignmentUpdate
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	assignment, err := h.svc.Update(ctx, id, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, assignment)
}

func (h *AssignmentHandler) GetAssignment(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid assignment id")
		return
	}

	assignment, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, assignment)
}
