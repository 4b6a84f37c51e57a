package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/selular-pos/till/internal/backoffice"
	"github.com/selular-pos/till/internal/cart"
	"github.com/selular-pos/till/internal/cashsession"
	"github.com/selular-pos/till/internal/checkout"
	"github.com/selular-pos/till/internal/config"
	"github.com/selular-pos/till/internal/enum"
	"github.com/selular-pos/till/internal/handler"
	mw "github.com/selular-pos/till/internal/middleware"
	"github.com/selular-pos/till/internal/purchasing"
	"github.com/selular-pos/till/internal/ws"
)

// New creates a Chi router with all till endpoints wired up.
func New(
	cfg *config.Config,
	api *backoffice.Client,
	basket *cart.Cart,
	gate *cashsession.Gate,
	orchestrator *checkout.Orchestrator,
	workflow *purchasing.Workflow,
	hub *ws.Hub,
	notifier *ws.RefreshNotifier,
) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, // register UI dev server
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/registers/{rid}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Register operations (technicians don't run the drawer)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleOwner, enum.UserRoleCashier))

			cartHandler := handler.NewCartHandler(basket, api)
			r.Route("/cart", cartHandler.RegisterRoutes)

			checkoutHandler := handler.NewCheckoutHandler(orchestrator)
			r.Route("/checkout", checkoutHandler.RegisterRoutes)

			sessionHandler := handler.NewCashSessionHandler(gate, notifier)
			r.Route("/cash-sessions", sessionHandler.RegisterRoutes)
		})

		// Receiving is open to all staff; cancel is OWNER only
		orderHandler := handler.NewPurchaseOrderHandler(workflow)
		r.Route("/purchase-orders", func(r chi.Router) {
			orderHandler.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleOwner))
				orderHandler.RegisterOwnerRoutes(r)
			})
		})

		productHandler := handler.NewProductHandler(api)
		r.Route("/products", productHandler.RegisterRoutes)
	})

	return r
}
