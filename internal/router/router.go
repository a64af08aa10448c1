package router

import (
	"log/slog"
	"net/http"

	"github.com/currymessina/api/internal/auth"
	"github.com/currymessina/api/internal/config"
	"github.com/currymessina/api/internal/database"
	"github.com/currymessina/api/internal/handler"
	"github.com/currymessina/api/internal/metrics"
	mw "github.com/currymessina/api/internal/middleware"
	"github.com/currymessina/api/internal/payment"
	"github.com/currymessina/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New creates a Chi router with all application routes wired up.
// Checkout and the catalog are public; the kitchen endpoints require an
// admin token.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, gateway payment.Gateway, m *metrics.Registry) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})
	r.Handle("/metrics", m.Handler())

	catalogHandler := handler.NewCatalogHandler(queries)
	r.Route("/catalog", catalogHandler.RegisterRoutes)

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Orders
	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	pricer := service.NewPricer(queries, cfg.StrictOptions)
	orderService := service.NewOrderService(pool, newOrderStore, queries, pricer, gateway, m)
	orderHandler := handler.NewOrderHandler(orderService)

	r.Route("/orders", func(r chi.Router) {
		orderHandler.RegisterPublicRoutes(r)

		// Kitchen routes (admin only)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireRole(auth.RoleAdmin))
			orderHandler.RegisterAdminRoutes(r)
		})
	})

	slog.Info("router initialized", "strict_options", cfg.StrictOptions, "cors_origins", cfg.CORSOrigins)
	return r
}
