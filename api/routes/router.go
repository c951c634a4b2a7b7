package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroomhq/stockroom-backend/api/controllers"
	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/internal/analytics"
	authsvc "github.com/stockroomhq/stockroom-backend/internal/auth"
	"github.com/stockroomhq/stockroom-backend/internal/notifications"
	"github.com/stockroomhq/stockroom-backend/internal/orders"
	"github.com/stockroomhq/stockroom-backend/internal/products"
	"github.com/stockroomhq/stockroom-backend/internal/stock"
	"github.com/stockroomhq/stockroom-backend/internal/users"
	"github.com/stockroomhq/stockroom-backend/pkg/auth/session"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles everything the router wires into controllers.
type Services struct {
	Auth          authsvc.Service
	Products      products.Service
	Stock         stock.Service
	Orders        orders.Service
	Notifications notifications.Service
	Analytics     analytics.Service
	Users         users.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.HealthDep{
			"database": dbP,
			"redis":    redisClient,
		}))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Get("/low-stock", controllers.LowStockProducts(svcs.Products, logg))
			r.Get("/out-of-stock", controllers.OutOfStockProducts(svcs.Products, logg))
			r.Get("/categories", controllers.ProductCategories(svcs.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(svcs.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleManager, logg))
				r.Post("/", controllers.CreateProduct(svcs.Products, logg))
				r.Put("/{productId}", controllers.UpdateProduct(svcs.Products, logg))
				r.Delete("/{productId}", controllers.DeleteProduct(svcs.Products, logg))
			})
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/history", controllers.StockHistory(svcs.Stock, logg))
			r.Get("/{productId}/history", controllers.StockHistory(svcs.Stock, logg))
			r.Get("/summary/daily", controllers.StockDailySummary(svcs.Stock, logg))
			r.Get("/summary/range", controllers.StockRangeStats(svcs.Stock, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleStaff, logg))
				r.Post("/in", controllers.StockIn(svcs.Stock, logg))
				r.Post("/out", controllers.StockOut(svcs.Stock, logg))
				r.Post("/return", controllers.StockReturn(svcs.Stock, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleManager, logg))
				r.Post("/adjust", controllers.StockAdjust(svcs.Stock, logg))
				r.Post("/{productId}/reconcile", controllers.StockReconcile(svcs.Stock, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(svcs.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleManager, logg))
				r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
				r.Patch("/{orderId}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(svcs.Notifications, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", controllers.AnalyticsDashboard(svcs.Analytics, logg))
			r.Get("/transactions", controllers.AnalyticsTransactions(svcs.Analytics, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
			r.Get("/", controllers.ListUsers(svcs.Users, logg))
			r.Post("/", controllers.CreateUser(svcs.Users, logg))
		})
	})

	return r
}
