package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/parttrack/parttrack-backend/pkg/types"
)

// WriteData writes a read payload as-is.
func WriteData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// WriteSuccess writes the mutation envelope.
func WriteSuccess(w http.ResponseWriter, message string, data any) {
	WriteSuccessStatus(w, http.StatusOK, message, data)
}

// WriteSuccessStatus writes the mutation envelope with an explicit status.
func WriteSuccessStatus(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, types.APIResponse{Success: true, Message: message, Data: data})
}

// WriteError maps a typed error onto the failure envelope. Messages for
// internal errors stay generic; codes whose details are allowed carry them
// through for the kiosk to display.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	// Expected refusals during normal kiosk use: an empty bin, a bad badge,
	// a typo in a form. Their messages pass through and they never log at
	// Error level.
	expected := false
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeDuplicateID,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeOutOfStock,
		pkgerrors.CodeAccessDenied,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeForbidden:
		expected = true
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.APIResponse{
		Success: false,
		Message: msg,
		Code:    string(typed.Code()),
	}
	if meta.DetailsAllowed {
		payload.Details = typed.Details()
	}

	if logg != nil {
		ctx = logg.WithField(ctx, "error_code", string(typed.Code()))
		if expected {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "request refused")
		} else {
			logg.Error(ctx, "request failed", err)
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
