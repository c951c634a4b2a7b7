package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/internal/analytics"
	authsvc "github.com/stockroomhq/stockroom-backend/internal/auth"
	"github.com/stockroomhq/stockroom-backend/internal/notifications"
	"github.com/stockroomhq/stockroom-backend/internal/orders"
	"github.com/stockroomhq/stockroom-backend/internal/products"
	"github.com/stockroomhq/stockroom-backend/internal/stock"
	"github.com/stockroomhq/stockroom-backend/internal/users"
	pkgAuth "github.com/stockroomhq/stockroom-backend/pkg/auth"
	"github.com/stockroomhq/stockroom-backend/pkg/auth/session"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionManager struct{}

func (stubSessionManager) HasSession(context.Context, string) (bool, error) { return true, nil }
func (stubSessionManager) Rotate(context.Context, string, string) (string, string, error) {
	return "", "", nil
}
func (stubSessionManager) Revoke(context.Context, string) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{}, nil
}

type stubProductService struct{}

func (stubProductService) Create(context.Context, products.CreateProductInput) (*models.Product, error) {
	return &models.Product{}, nil
}
func (stubProductService) Get(context.Context, uuid.UUID) (*models.Product, error) {
	return &models.Product{}, nil
}
func (stubProductService) Update(context.Context, uuid.UUID, products.UpdateProductInput) (*models.Product, error) {
	return &models.Product{}, nil
}
func (stubProductService) Delete(context.Context, uuid.UUID) error { return nil }
func (stubProductService) List(context.Context, products.ListParams) (*products.ListResult, error) {
	return &products.ListResult{}, nil
}
func (stubProductService) LowStock(context.Context) ([]models.Product, error) { return nil, nil }
func (stubProductService) OutOfStock(context.Context) ([]models.Product, error) { return nil, nil }
func (stubProductService) CountByCategory(context.Context) ([]products.CategoryCount, error) {
	return nil, nil
}

type stubStockService struct{}

func (stubStockService) RecordStockIn(context.Context, stock.RecordEntryInput) (*stock.RecordEntryResult, error) {
	return &stock.RecordEntryResult{}, nil
}
func (stubStockService) RecordStockOut(context.Context, stock.RecordEntryInput) (*stock.RecordEntryResult, error) {
	return &stock.RecordEntryResult{}, nil
}
func (stubStockService) RecordReturn(context.Context, stock.RecordEntryInput) (*stock.RecordEntryResult, error) {
	return &stock.RecordEntryResult{}, nil
}
func (stubStockService) RecordAdjustment(context.Context, stock.RecordEntryInput) (*stock.RecordEntryResult, error) {
	return &stock.RecordEntryResult{}, nil
}
func (stubStockService) History(context.Context, stock.HistoryParams) (*stock.HistoryResult, error) {
	return &stock.HistoryResult{}, nil
}
func (stubStockService) DailySummary(context.Context, *uuid.UUID, time.Time, time.Time) ([]stock.DailySummaryRow, error) {
	return nil, nil
}
func (stubStockService) RangeStats(context.Context, *uuid.UUID, time.Time, time.Time) (*stock.RangeStats, error) {
	return &stock.RangeStats{}, nil
}
func (stubStockService) Reconcile(context.Context, uuid.UUID) (*stock.ReconciliationReport, error) {
	return &stock.ReconciliationReport{}, nil
}

type stubOrderService struct{}

func (stubOrderService) Create(context.Context, orders.CreateOrderInput) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{}, nil
}
func (stubOrderService) Get(context.Context, uuid.UUID) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{}, nil
}
func (stubOrderService) List(context.Context, orders.ListParams) (*orders.ListResult, error) {
	return &orders.ListResult{}, nil
}
func (stubOrderService) UpdateStatus(context.Context, orders.UpdateStatusInput) (*models.PurchaseOrder, error) {
	return &models.PurchaseOrder{}, nil
}

type stubNotificationService struct{}

func (stubNotificationService) Create(context.Context, notifications.CreateInput) (*models.Notification, error) {
	return &models.Notification{}, nil
}
func (stubNotificationService) List(context.Context, notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}
func (stubNotificationService) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubNotificationService) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}
func (stubNotificationService) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (stubNotificationService) UnreadCount(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

type stubAnalyticsService struct{}

func (stubAnalyticsService) Dashboard(context.Context) (*analytics.Dashboard, error) {
	return &analytics.Dashboard{}, nil
}
func (stubAnalyticsService) Transactions(context.Context, analytics.TransactionsParams) (*analytics.TransactionsReport, error) {
	return &analytics.TransactionsReport{}, nil
}

type stubUserService struct{}

func (stubUserService) Create(context.Context, users.CreateUserInput) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}
func (stubUserService) List(context.Context) ([]users.UserDTO, error) { return nil, nil }

func newTestRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()
	jwtCfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: jwtCfg,
	}
	logg := logger.New(logger.Options{ServiceName: "router-test"})

	router := NewRouter(cfg, logg, stubPinger{}, nil, stubSessionManager{}, Services{
		Auth:          stubAuthService{},
		Products:      stubProductService{},
		Stock:         stubStockService{},
		Orders:        stubOrderService{},
		Notifications: stubNotificationService{},
		Analytics:     stubAnalyticsService{},
		Users:         stubUserService{},
	})
	return router, jwtCfg
}

func TestRouterHealthLive(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []string{
		"/api/v1/products",
		"/api/v1/stock/summary/range",
		"/api/v1/orders",
		"/api/v1/notifications",
		"/api/v1/analytics/dashboard",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rec.Code)
		}
	}
}

func TestRouterRoleGates(t *testing.T) {
	router, jwtCfg := newTestRouter(t)

	mint := func(role enums.UserRole) string {
		token, err := pkgAuth.MintAccessToken(jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
			UserID: uuid.New(),
			Role:   role,
			JTI:    session.NewAccessID(),
		})
		if err != nil {
			t.Fatalf("mint token: %v", err)
		}
		return token
	}

	cases := []struct {
		name   string
		method string
		path   string
		role   enums.UserRole
		body   string
		want   int
	}{
		{name: "staff reads products", method: http.MethodGet, path: "/api/v1/products", role: enums.UserRoleStaff, want: http.StatusOK},
		{name: "staff cannot create products", method: http.MethodPost, path: "/api/v1/products", role: enums.UserRoleStaff, want: http.StatusForbidden},
		{name: "staff cannot adjust stock", method: http.MethodPost, path: "/api/v1/stock/adjust", role: enums.UserRoleStaff, want: http.StatusForbidden},
		{name: "manager cannot manage users", method: http.MethodGet, path: "/api/v1/users", role: enums.UserRoleManager, want: http.StatusForbidden},
		{name: "admin lists users", method: http.MethodGet, path: "/api/v1/users", role: enums.UserRoleAdmin, want: http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+mint(tc.role))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, rec.Code)
		}
	}
}
