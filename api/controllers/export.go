package controllers

import (
	"net/http"

	"github.com/parttrack/parttrack-backend/api/responses"
	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/internal/export"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
)

// ExportStockCSV streams the inventory as a CSV download.
func ExportStockCSV(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="stock.csv"`)
		if err := svc.StockCSV(ctx, w); err != nil && logg != nil {
			logg.Error(ctx, "stock csv export failed", err)
		}
	}
}

// ExportLogsCSV streams the audit trail as a CSV download.
func ExportLogsCSV(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="logs.csv"`)
		if err := svc.LogsCSV(ctx, w, auditlog.Filter{}); err != nil && logg != nil {
			logg.Error(ctx, "logs csv export failed", err)
		}
	}
}
