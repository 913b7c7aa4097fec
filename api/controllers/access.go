package controllers

import (
	"net/http"

	"github.com/parttrack/parttrack-backend/api/responses"
	"github.com/parttrack/parttrack-backend/api/validators"
	"github.com/parttrack/parttrack-backend/internal/access"
	"github.com/parttrack/parttrack-backend/internal/ledger"
	"github.com/parttrack/parttrack-backend/pkg/db/models"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
)

type scanPayload struct {
	Token string `json:"token" validate:"required"`
}

type pinPayload struct {
	ChallengeID string `json:"challengeId" validate:"required"`
	Pin         string `json:"pin" validate:"required"`
}

type scanResponse struct {
	*access.ScanResult
	Parts []models.Part `json:"parts,omitempty"`
}

// AccessScan resolves a scanned token. Location scans come back with the
// parts stored at that slot so the kiosk can render them in one round trip.
func AccessScan(svc access.Service, stock ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "access service unavailable"))
			return
		}

		var payload scanPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Scan(ctx, validators.SanitizeString(payload.Token, 128))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := scanResponse{ScanResult: result}
		if result.Kind == access.ScanKindLocation && stock != nil {
			parts, err := stock.PartsAtLocation(ctx, result.Location)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			resp.Parts = parts
		}

		responses.WriteSuccess(w, "scan resolved", resp)
	}
}

// AccessPin completes a pending supervisor PIN challenge.
func AccessPin(svc access.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "access service unavailable"))
			return
		}

		var payload pinPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.SubmitPin(ctx, payload.ChallengeID, payload.Pin)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, "supervisor authenticated", result)
	}
}
