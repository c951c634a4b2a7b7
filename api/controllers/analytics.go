package controllers

import (
	"net/http"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	analyticssvc "github.com/stockroomhq/stockroom-backend/internal/analytics"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

// AnalyticsDashboard returns the inventory overview.
func AnalyticsDashboard(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}

// AnalyticsTransactions returns ledger totals plus a per-day breakdown.
func AnalyticsTransactions(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, from, to, err := parseStatsWindow(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Transactions(r.Context(), analyticssvc.TransactionsParams{
			ProductID: productID,
			From:      from,
			To:        to,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
