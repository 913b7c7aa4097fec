package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/parttrack/parttrack-backend/api/middleware"
	"github.com/parttrack/parttrack-backend/api/responses"
	"github.com/parttrack/parttrack-backend/api/validators"
	"github.com/parttrack/parttrack-backend/internal/ledger"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
)

type restockPayload struct {
	Amount int `json:"amount" validate:"required,gt=0"`
}

type stockResetPayload struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// PartsList returns the inventory. ?q= narrows by id or name substring,
// ?location= narrows to one rack-row-bin slot.
func PartsList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		if location := strings.TrimSpace(r.URL.Query().Get("location")); location != "" {
			parts, err := svc.PartsAtLocation(ctx, location)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteData(w, parts)
			return
		}

		parts, err := svc.Search(ctx, r.URL.Query().Get("q"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteData(w, parts)
	}
}

// PartGet returns one part by id.
func PartGet(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		part, err := svc.Get(ctx, chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteData(w, part)
	}
}

// PartCreate registers a new part.
func PartCreate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload ledger.CreatePartInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		part, err := svc.Create(ctx, middleware.OperatorIDFromContext(ctx), payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "part created", part)
	}
}

// PartUpdate applies a partial edit to one part.
func PartUpdate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload ledger.UpdatePartInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		part, err := svc.Update(ctx, middleware.OperatorIDFromContext(ctx), chi.URLParam(r, "id"), payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, "part updated", part)
	}
}

// PartDelete removes a part and writes off its remaining stock.
func PartDelete(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		if err := svc.Remove(ctx, middleware.OperatorIDFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, "part deleted", nil)
	}
}

// PartTake removes exactly one unit for the authenticated operator.
func PartTake(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		part, err := svc.Take(ctx, middleware.OperatorIDFromContext(ctx), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, "part taken", part)
	}
}

// PartRestock adds stock to one part.
func PartRestock(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload restockPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		part, err := svc.Restock(ctx, middleware.OperatorIDFromContext(ctx), chi.URLParam(r, "id"), payload.Amount)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, "part restocked", part)
	}
}

// StockReset forces every part to the same quantity.
func StockReset(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var payload stockResetPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		touched, err := svc.ResetAll(ctx, middleware.OperatorIDFromContext(ctx), payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, "stock reset", map[string]any{"parts": touched, "quantity": payload.Quantity})
	}
}

// PartsLowStock returns parts at or under the low-stock threshold.
func PartsLowStock(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		parts, err := svc.LowStock(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteData(w, parts)
	}
}
