package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/makonda/offering-cards/internal/repository"
	"github.com/makonda/offering-cards/internal/services"
	xhttp "github.com/makonda/offering-cards/pkg/http"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeServiceError maps domain errors onto HTTP statuses: missing
// rows are 404, uniqueness and workflow clashes are 409, bad input is
// 400, anything unrecognized is 500.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, repository.ErrCardNotFound),
		errors.Is(err, repository.ErrStreetNotFound),
		errors.Is(err, repository.ErrMemberNotFound),
		errors.Is(err, repository.ErrAssignmentNotFound),
		errors.Is(err, repository.ErrApplicationNotFound),
		errors.Is(err, repository.ErrEntryNotFound),
		errors.Is(err, repository.ErrBatchNotFound),
		errors.Is(err, repository.ErrWindowNotFound):
		writeKindError(ctx, 404, "not_found", err)

	case errors.Is(err, repository.ErrDuplicateCard),
		errors.Is(err, repository.ErrDuplicateAssignment),
		errors.Is(err, services.ErrDuplicatePending),
		errors.Is(err, services.ErrAlreadyAssigned),
		errors.Is(err, services.ErrAlreadyApproved),
		errors.Is(err, services.ErrNoCardAvailable):
		writeKindError(ctx, 409, "conflict", err)

	case errors.Is(err, services.ErrInvalidNumber),
		errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrInvalidYear),
		errors.Is(err, services.ErrInvalidPledges),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidTimestamp),
		errors.Is(err, services.ErrInvalidWindowRange),
		errors.Is(err, services.ErrInvalidEntryType),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidMassType),
		errors.Is(err, services.ErrInvalidMassConfig),
		errors.Is(err, services.ErrStreetMismatch),
		errors.Is(err, services.ErrEmptyBatch),
		errors.Is(err, services.ErrMemberRequired),
		errors.Is(err, services.ErrFullNameRequired),
		errors.Is(err, services.ErrHolderRequired):
		writeKindError(ctx, 400, "validation", err)

	default:
		writeKindError(ctx, 500, "internal", err)
	}
}

func writeKindError(ctx *xhttp.RequestCtx, status int, kind string, err error) {
	writeJSON(ctx, status, errorResponse{Error: err.Error(), Kind: kind})
}

/* ------------------------------ Shared helpers ------------------------------ */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryInt(ctx *xhttp.RequestCtx, key string) (int, bool) {
	v := query(ctx, key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func queryInt64(ctx *xhttp.RequestCtx, key string) (int64, bool) {
	v := query(ctx, key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// pathID reads a numeric path parameter set by the router.
func pathID(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, _ := ctx.UserValue(name).(string)
	return strconv.ParseInt(v, 10, 64)
}
