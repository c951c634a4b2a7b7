package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	stocksvc "github.com/stockroomhq/stockroom-backend/internal/stock"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type stockEntryRequest struct {
	ProductID      uuid.UUID        `json:"product_id" validate:"required"`
	Quantity       int              `json:"quantity" validate:"required"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	CounterpartyID *string          `json:"counterparty_id,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
}

type recordEntryFunc func(ctx context.Context, input stocksvc.RecordEntryInput) (*stocksvc.RecordEntryResult, error)

func recordStockEntry(record recordEntryFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := record(r.Context(), stocksvc.RecordEntryInput{
			ProductID:      payload.ProductID,
			Quantity:       payload.Quantity,
			UnitPrice:      payload.UnitPrice,
			CounterpartyID: payload.CounterpartyID,
			Notes:          payload.Notes,
			UserID:         userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// StockIn books incoming units against the ledger.
func StockIn(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return recordStockEntry(svc.RecordStockIn, logg)
}

// StockOut books outgoing units. Rejected when it would drive stock negative.
func StockOut(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return recordStockEntry(svc.RecordStockOut, logg)
}

// StockReturn books returned units back into stock.
func StockReturn(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return recordStockEntry(svc.RecordReturn, logg)
}

// StockAdjust books a signed correction against the ledger.
func StockAdjust(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return recordStockEntry(svc.RecordAdjustment, logg)
}

// StockHistory returns a cursor page of the ledger. On the product-scoped
// route the path narrows it to one product; the bare route lists across all
// products.
func StockHistory(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var productID uuid.UUID
		if chi.URLParam(r, "productId") != "" {
			parsed, err := parsePathID(r, "productId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			productID = parsed
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := stocksvc.HistoryParams{
			ProductID: productID,
			Limit:     limit,
			Cursor:    strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			txType, err := enums.ParseTransactionType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
				return
			}
			params.Type = &txType
		}

		result, err := svc.History(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseStatsWindow(r *http.Request) (*uuid.UUID, time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, err := validators.ParseQueryDate(r, "from", now.AddDate(0, 0, -30))
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	to, err := validators.ParseQueryDate(r, "to", now)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return nil, time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "to must not precede from")
	}

	var productID *uuid.UUID
	if raw := strings.TrimSpace(r.URL.Query().Get("product_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, time.Time{}, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id")
		}
		productID = &id
	}
	return productID, from, to, nil
}

// StockDailySummary aggregates ledger activity per day over a window.
func StockDailySummary(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, from, to, err := parseStatsWindow(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.DailySummary(r.Context(), productID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// StockRangeStats aggregates ledger totals over a window.
func StockRangeStats(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, from, to, err := parseStatsWindow(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.RangeStats(r.Context(), productID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// StockReconcile compares the cached counter with the ledger sum.
func StockReconcile(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parsePathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Reconcile(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
