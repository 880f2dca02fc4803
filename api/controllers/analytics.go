package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/crumbandco/cakeshop-backend/api/responses"
	analyticssvc "github.com/crumbandco/cakeshop-backend/internal/analytics"
	pkgerrors "github.com/crumbandco/cakeshop-backend/pkg/errors"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
)

const reportDateLayout = "2006-01-02"

// AdminSalesReport serves the back-office dashboard. Omitting the window
// defaults to the last thirty days.
func AdminSalesReport(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		var req analyticssvc.SalesRequest
		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			from, err := time.Parse(reportDateLayout, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "from must be YYYY-MM-DD"))
				return
			}
			req.From = from
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			to, err := time.Parse(reportDateLayout, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "to must be YYYY-MM-DD"))
				return
			}
			// Include the whole end day.
			req.To = to.Add(24 * time.Hour)
		}

		report, err := svc.SalesReport(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
