package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/makonda/offering-cards/internal/model"
	xhttp "github.com/makonda/offering-cards/pkg/http"
)

type ApplicationService interface {
	Submit(ctx context.Context, p model.ApplicationCreateRequest) (*model.CardApplication, error)
	List(ctx context.Context, f model.ApplicationFilter) ([]*model.CardApplication, int64, error)
	Approve(ctx context.Context, id int64, p model.ApplicationApproveRequest) (*model.CardApplication, error)
	Reject(ctx context.Context, id int64, reason string) (*model.CardApplication, error)
	Get(ctx context.Context, id int64) (*model.CardApplication, error)
}

type ApplicationHandler struct {
	svc ApplicationService
}

func RegisterApplicationRoutes(e *router.Group, h *ApplicationHandler) {
	e.POST("/applications", h.SubmitApplication)
	e.GET("/applications", h.ListApplications)
	e.GET("/applications/{id}", h.GetApplication)
	e.POST("/applications/{id}/approve", h.ApproveApplication)
	e.POST("/applications/{id}/reject", h.RejectApplication)
}

func NewApplicationHandler(svc ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		svc: svc,
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type applicationListResponse struct {
	Items []*model.CardApplication `json:"items"`
	Total int64                    `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ApplicationHandler) SubmitApplication(ctx *xhttp.RequestCtx) {
	var req model.ApplicationCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	app, err := h.svc.Submit(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, app)
}

func (h *ApplicationHandler) ListApplications(ctx *xhttp.RequestCtx) {
	var f model.ApplicationFilter

	f.Status = query(ctx, "status")
	if y, ok := queryInt(ctx, "year"); ok {
		f.Year = &y
	}
	if id, ok := queryInt64(ctx, "member_id"); ok {
		f.MemberID = &id
	}
	if n, ok := queryInt(ctx, "limit"); ok {
		f.Limit = n
	}
	if n, ok := queryInt(ctx, "offset"); ok {
		f.Offset = n
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, applicationListResponse{Items: items, Total: total})
}

func (h *ApplicationHandler) GetApplication(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid application id")
		return
	}

	app, err := h.svc.Get(ctx, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, app)
}

func (h *ApplicationHandler) ApproveApplication(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid application id")
		return
	}

	var req model.ApplicationApproveRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.CardID == 0 {
		writeError(ctx, 400, "card_id is required")
		return
	}

	app, err := h.svc.Approve(ctx, id, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, app)
}

func (h *ApplicationHandler) RejectApplication(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid application id")
		return
	}

	var req rejectRequest
	if len(ctx.PostBody()) > 0 {
		if err := readJSON(ctx, &req); err != nil {
			writeError(ctx, 400, "invalid JSON: "+err.Error())
			return
		}
	}

	app, err := h.svc.Reject(ctx, id, req.Reason)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, app)
}
