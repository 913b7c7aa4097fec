package controllers

import (
	"net/http"
	"strings"

	"github.com/parttrack/parttrack-backend/api/responses"
	"github.com/parttrack/parttrack-backend/api/validators"
	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/pkg/enums"
	pkgerrors "github.com/parttrack/parttrack-backend/pkg/errors"
	"github.com/parttrack/parttrack-backend/pkg/logger"
)

// LogsList returns audit entries newest-first. Supported filters: operatorId,
// action, since, until (RFC3339) and limit.
func LogsList(svc auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit log service unavailable"))
			return
		}

		filter := auditlog.Filter{
			OperatorID: strings.TrimSpace(r.URL.Query().Get("operatorId")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			action, err := enums.ParseLogAction(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action filter"))
				return
			}
			filter.Action = action
		}

		since, err := validators.ParseQueryTime(r, "since")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter.Since = since

		until, err := validators.ParseQueryTime(r, "until")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter.Until = until

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 5000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter.Limit = limit

		entries, err := svc.List(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteData(w, entries)
	}
}
