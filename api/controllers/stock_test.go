package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/api/middleware"
	stocksvc "github.com/stockroomhq/stockroom-backend/internal/stock"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type fakeStockService struct {
	recordFn  func(ctx context.Context, input stocksvc.RecordEntryInput) (*stocksvc.RecordEntryResult, error)
	historyFn func(ctx context.Context, params stocksvc.HistoryParams) (*stocksvc.HistoryResult, error)
}

func (f *fakeStockService) RecordStockIn(ctx context.Context, input stocksvc.RecordEntryInput) (*stocksvc.RecordEntryResult, error) {
	return f.recordFn(ctx, input)
}

func (f *fakeStockService) RecordStockOut(ctx context.Context, input stocksvc.RecordEntryInput) (*stocksvc.RecordEntryResult, error) {
	return f.recordFn(ctx, input)
}

func (f *fakeStockService) RecordReturn(ctx context.Context, input stocksvc.RecordEntryInput) (*stocksvc.RecordEntryResult, error) {
	return f.recordFn(ctx, input)
}

func (f *fakeStockService) RecordAdjustment(ctx context.Context, input stocksvc.RecordEntryInput) (*stocksvc.RecordEntryResult, error) {
	return f.recordFn(ctx, input)
}

func (f *fakeStockService) History(ctx context.Context, params stocksvc.HistoryParams) (*stocksvc.HistoryResult, error) {
	return f.historyFn(ctx, params)
}

func (f *fakeStockService) DailySummary(context.Context, *uuid.UUID, time.Time, time.Time) ([]stocksvc.DailySummaryRow, error) {
	return nil, nil
}

func (f *fakeStockService) RangeStats(context.Context, *uuid.UUID, time.Time, time.Time) (*stocksvc.RangeStats, error) {
	return &stocksvc.RangeStats{}, nil
}

func (f *fakeStockService) Reconcile(context.Context, uuid.UUID) (*stocksvc.ReconciliationReport, error) {
	return &stocksvc.ReconciliationReport{}, nil
}

func withActor(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestStockInRecordsMovement(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	var captured stocksvc.RecordEntryInput
	svc := &fakeStockService{
		recordFn: func(_ context.Context, input stocksvc.RecordEntryInput) (*stocksvc.RecordEntryResult, error) {
			captured = input
			return &stocksvc.RecordEntryResult{}, nil
		},
	}
	handler := StockIn(svc, nil)

	body, _ := json.Marshal(map[string]any{"product_id": productID, "quantity": 5})
	req := withActor(httptest.NewRequest(http.MethodPost, "/stock/in", bytes.NewReader(body)), userID)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if captured.UserID != userID {
		t.Fatalf("expected actor %s got %s", userID, captured.UserID)
	}
	if captured.ProductID != productID || captured.Quantity != 5 {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestStockOutRequiresUserContext(t *testing.T) {
	svc := &fakeStockService{
		recordFn: func(context.Context, stocksvc.RecordEntryInput) (*stocksvc.RecordEntryResult, error) {
			t.Fatal("record should not run without an actor")
			return nil, nil
		},
	}
	handler := StockOut(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/stock/out", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestStockOutSurfacesGuardRejection(t *testing.T) {
	svc := &fakeStockService{
		recordFn: func(context.Context, stocksvc.RecordEntryInput) (*stocksvc.RecordEntryResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "stock out of 9 exceeds current stock 3")
		},
	}
	handler := StockOut(svc, nil)

	body, _ := json.Marshal(map[string]any{"product_id": uuid.New(), "quantity": 9})
	req := withActor(httptest.NewRequest(http.MethodPost, "/stock/out", bytes.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "stock out of 9 exceeds current stock 3" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestStockHistoryParsesQuery(t *testing.T) {
	productID := uuid.New()
	var captured stocksvc.HistoryParams
	svc := &fakeStockService{
		historyFn: func(_ context.Context, params stocksvc.HistoryParams) (*stocksvc.HistoryResult, error) {
			captured = params
			return &stocksvc.HistoryResult{}, nil
		},
	}

	router := chi.NewRouter()
	router.Get("/stock/{productId}/history", StockHistory(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/stock/"+productID.String()+"/history?limit=10&type=out", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if captured.ProductID != productID || captured.Limit != 10 {
		t.Fatalf("unexpected params %+v", captured)
	}
	if captured.Type == nil || string(*captured.Type) != "out" {
		t.Fatalf("expected type filter, got %+v", captured.Type)
	}
}

func TestStockHistoryWithoutProductPathListsAll(t *testing.T) {
	var captured stocksvc.HistoryParams
	svc := &fakeStockService{
		historyFn: func(_ context.Context, params stocksvc.HistoryParams) (*stocksvc.HistoryResult, error) {
			captured = params
			return &stocksvc.HistoryResult{}, nil
		},
	}

	router := chi.NewRouter()
	router.Get("/stock/history", StockHistory(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/stock/history?limit=25", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if captured.ProductID != uuid.Nil {
		t.Fatalf("expected no product scope, got %s", captured.ProductID)
	}
	if captured.Limit != 25 {
		t.Fatalf("unexpected limit %d", captured.Limit)
	}
}

func TestStockHistoryRejectsBadType(t *testing.T) {
	svc := &fakeStockService{
		historyFn: func(context.Context, stocksvc.HistoryParams) (*stocksvc.HistoryResult, error) {
			t.Fatal("history should not run for a bad type filter")
			return nil, nil
		},
	}

	router := chi.NewRouter()
	router.Get("/stock/{productId}/history", StockHistory(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/stock/"+uuid.NewString()+"/history?type=sideways", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
