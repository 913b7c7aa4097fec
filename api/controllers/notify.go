package controllers

import (
	"net/http"

	"github.com/parttrack/parttrack-backend/api/responses"
	"github.com/parttrack/parttrack-backend/internal/notify"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
)

// NotifyLowStockReport returns the renderable low-stock summary without
// sending anything.
func NotifyLowStockReport(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}

		report, err := svc.LowStockReport(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteData(w, report)
	}
}

// NotifyLowStockSend pushes the low-stock alert to the configured Telegram
// chat.
func NotifyLowStockSend(svc notify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notify service unavailable"))
			return
		}

		result, err := svc.SendLowStockAlert(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		message := "low stock alert sent"
		if result.Skipped {
			message = "all stock levels healthy, nothing sent"
		}
		responses.WriteSuccess(w, message, result)
	}
}
