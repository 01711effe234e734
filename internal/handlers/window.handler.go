package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/makonda/offering-cards/internal/model"
	xhttp "github.com/makonda/offering-cards/pkg/http"
)

type WindowService interface {
	Open(ctx context.Context, p model.WindowOpenRequest) (*model.RegistrationWindow, error)
	Close(ctx context.Context) error
	Status(ctx context.Context) (*model.WindowStatus, error)
}

type WindowHandler struct {
	svc WindowService
}

func RegisterWindowRoutes(e *router.Group, h *WindowHandler) {
	e.POST("/registration-window/open", h.OpenWindow)
	e.POST("/registration-window/close", h.CloseWindow)
	e.GET("/registration-window", h.WindowStatus)
}

func NewWindowHandler(svc WindowService) *WindowHandler {
	return &WindowHandler{
		svc: svc,
	}
}

func (h *WindowHandler) OpenWindow(ctx *xhttp.RequestCtx) {
	var req model.WindowOpenRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	window, err := h.svc.Open(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, window)
}

func (h *WindowHandler) CloseWindow(ctx *xhttp.RequestCtx) {
	if err := h.svc.Close(ctx); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]string{"status": "closed"})
}

func (h *WindowHandler) WindowStatus(ctx *xhttp.RequestCtx) {
	status, err := h.svc.Status(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, status)
}
