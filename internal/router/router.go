package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jwg-resto/pos-api/internal/config"
	"github.com/jwg-resto/pos-api/internal/database"
	"github.com/jwg-resto/pos-api/internal/enum"
	"github.com/jwg-resto/pos-api/internal/handler"
	mw "github.com/jwg-resto/pos-api/internal/middleware"
	"github.com/jwg-resto/pos-api/internal/service"
	"github.com/sirupsen/logrus"
)

// New creates a Chi router with all application routes wired up.
// Staff routes require a bearer token and a role; customer QR routes accept
// anonymous requests.
func New(cfg *config.Config, pool *pgxpool.Pool, rec service.ActivityRecorder, logger logrus.FieldLogger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	queries := database.New(pool)
	settings := service.NewSettings(service.Pricing{
		TaxPercentage:           cfg.TaxPercentage,
		ServiceChargePercentage: cfg.ServiceChargePercentage,
		AutoDeductInventory:     cfg.AutoDeductInventory,
	})

	fulfillment := service.NewFulfillmentService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, settings, rec)
	payments := service.NewPaymentService(pool, func(db database.DBTX) service.PaymentStore {
		return database.New(db)
	}, rec)
	inventory := service.NewInventoryService(pool, func(db database.DBTX) service.InventoryStore {
		return database.New(db)
	}, rec)
	kitchen := service.NewKitchenService(queries)

	// Customer QR routes (anonymous; a staff token is honoured if present)
	r.Group(func(r chi.Router) {
		r.Use(mw.OptionalAuthenticate(cfg.JWTSecret))
		r.Route("/customer/orders", handler.NewCustomerOrderHandler(fulfillment, logger).RegisterRoutes)
	})

	// Staff routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleCashier, enum.UserRoleWaiter, enum.UserRoleKitchen))
			r.Route("/orders", handler.NewOrderHandler(fulfillment, logger).RegisterRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleKitchen))
			r.Route("/kitchen", handler.NewKitchenHandler(kitchen, fulfillment, logger).RegisterRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleCashier))
			r.Route("/payments", handler.NewPaymentHandler(payments, logger).RegisterRoutes)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			r.Route("/inventory", handler.NewInventoryHandler(inventory, logger).RegisterRoutes)
		})
	})

	logger.Info("router initialized")
	return r
}
