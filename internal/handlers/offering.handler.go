package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/makonda/offering-cards/internal/model"
	xhttp "github.com/makonda/offering-cards/pkg/http"
)

type OfferingService interface {
	RecordEntry(ctx context.Context, p model.EntryCreateRequest) (*model.OfferingEntry, error)
	RecordBatch(ctx context.Context, p model.BatchCreateRequest) (*model.BatchResult, error)
	MemberHistory(ctx context.Context, memberID int64, year int) (*model.MemberOfferingHistory, error)
}

type OfferingHandler struct {
	svc     OfferingService
	reports ReportService
}

func RegisterOfferingRoutes(e *router.Group, h *OfferingHandler) {
	e.POST("/offerings", h.RecordEntry)
	e.POST("/offerings/batch", h.RecordBatch)
	e.GET("/members/{id}/offerings", h.MemberOfferings)
	e.GET("/members/{id}/card-state", h.MemberCardState)
}

func NewOfferingHandler(svc OfferingService, reports ReportService) *OfferingHandler {
	return &OfferingHandler{
		svc:     svc,
		reports: reports,
	}
}

func (h *OfferingHandler) RecordEntry(ctx *xhttp.RequestCtx) {
	var req model.EntryCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	entry, err := h.svc.RecordEntry(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, entry)
}

func (h *OfferingHandler) RecordBatch(ctx *xhttp.RequestCtx) {
	var req model.BatchCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	result, err := h.svc.RecordBatch(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, result)
}

func (h *OfferingHandler) MemberOfferings(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid member id")
		return
	}
	year, _ := queryInt(ctx, "year")

	history, err := h.svc.MemberHistory(ctx, id, year)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, history)
}

func (h *OfferingHandler) MemberCardState(ctx *xhttp.RequestCtx) {
	id, err := pathID(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid member id")
		return
	}
	year, _ := queryInt(ctx, "year")

	state, err := h.reports.MemberCardState(ctx, id, year)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, state)
}
