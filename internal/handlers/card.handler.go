package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/makonda/offering-cards/internal/model"
	xhttp "github.com/makonda/offering-cards/pkg/http"
)

type CardService interface {
	Create(ctx context.Context, p model.CardCreateRequest) (*model.OfferingCard, error)
	BulkGenerate(ctx context.Context, p model.BulkGenerateRequest) (*model.BulkGenerateResult, error)
	AvailableNumbers(ctx context.Context, streetID *int64) ([]model.AvailableNumber, error)
	Suggestions(ctx context.Context, streetID int64, number, radius, limit int) (*model.NumberSuggestions, error)
}

type ReportService interface {
	CardViews(ctx context.Context, f model.CardFilter, year int) ([]model.CardView, int64, error)
	Overview(ctx context.Context, year int, streetID *int64) (*model.CardsOverview, error)
	MemberCardState(ctx context.Context, memberID int64, year int) (*model.MemberCardState, error)
}

type CardHandler struct {
	svc     CardService
	reports ReportService
}

func RegisterCardRoutes(e *router.Group, h *CardHandler) {
	e.POST("/cards", h.CreateCard)
	e.POST("/cards/bulk-generate", h.BulkGenerate)
	e.GET("/cards", h.ListCards)
	e.GET("/cards/available", h.ListAvailable)
	e.GET("/cards/suggestions", h.Suggestions)
	e.GET("/cards/overview", h.Overview)
}

func NewCardHandler(svc CardService, reports ReportService) *CardHandler {
	return &CardHandler{
		svc:     svc,
		reports: reports,
	}
}

type cardListResponse struct {
	Items []model.CardView `json:"items"`
	Total int64            `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *CardHandler) CreateCard(ctx *xhttp.RequestCtx) {
	var req model.CardCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	card, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, card)
}

func (h *CardHandler) BulkGenerate(ctx *xhttp.RequestCtx) {
	var req model.BulkGenerateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	result, err := h.svc.BulkGenerate(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, result)
}

func (h *CardHandler) ListCards(ctx *xhttp.RequestCtx) {
	var f model.CardFilter

	if id, ok := queryInt64(ctx, "street_id"); ok {
		f.StreetID = &id
	}
	if v := query(ctx, "taken"); v == "true" || v == "false" {
		taken := v == "true"
		f.Taken = &taken
	}
	f.Search = query(ctx, "search")
	if n, ok := queryInt(ctx, "limit"); ok {
		f.Limit = n
	}
	if n, ok := queryInt(ctx, "offset"); ok {
		f.Offset = n
	}

	year, _ := queryInt(ctx, "year")

	items, total, err := h.reports.CardViews(ctx, f, year)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, cardListResponse{Items: items, Total: total})
}

func (h *CardHandler) ListAvailable(ctx *xhttp.RequestCtx) {
	var streetID *int64
	if id, ok := queryInt64(ctx, "street_id"); ok {
		streetID = &id
	}

	numbers, err := h.svc.AvailableNumbers(ctx, streetID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, map[string]any{"items": numbers})
}

func (h *CardHandler) Suggestions(ctx *xhttp.RequestCtx) {
	streetID, ok := queryInt64(ctx, "street_id")
	if !ok {
		writeError(ctx, 400, "street_id is required")
		return
	}
	number, ok := queryInt(ctx, "number")
	if !ok {
		writeError(ctx, 400, "number is required")
		return
	}
	radius, _ := queryInt(ctx, "radius")
	limit, _ := queryInt(ctx, "limit")

	out, err := h.svc.Suggestions(ctx, streetID, number, radius, limit)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, out)
}

func (h *CardHandler) Overview(ctx *xhttp.RequestCtx) {
	year, _ := queryInt(ctx, "year")

	var streetID *int64
	if id, ok := queryInt64(ctx, "street_id"); ok {
		streetID = &id
	}

	overview, err := h.reports.Overview(ctx, year, streetID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, overview)
}
