package handler

import (
	"log/slog"
	"net/http"

	"github.com/mbracken/njord/internal/auth"
	"github.com/mbracken/njord/internal/billing"
	"github.com/mbracken/njord/internal/middleware"
	"github.com/mbracken/njord/internal/router"
	"github.com/mbracken/njord/internal/service"
	"github.com/mbracken/njord/internal/storage"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Accounts   *service.AccountService
	Products   *service.ProductService
	Categories *service.CategoryService
	Cart       *service.CartService
	Checkout   *service.CheckoutService
	Coupons    *service.CouponService
	Orders     *service.OrderService
	Reviews    *service.ReviewService
	Users      *service.UserService
	Analytics  *service.AnalyticsService

	Billing billing.Provider
	Storage storage.Storage
	JWT     *auth.JWTService
	Logger  *slog.Logger
	Metrics *middleware.Metrics

	AllowedOrigins []string
}

// NewRouter assembles the full API surface.
func NewRouter(deps Deps) *router.Router {
	r := router.New(
		middleware.RequestID,
		middleware.WithRequestLogger(deps.Logger),
		middleware.Recovery,
		deps.Metrics.Middleware,
		middleware.AccessLog,
		router.CORS(deps.AllowedOrigins),
		middleware.WithUser(deps.JWT),
	)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle(http.MethodGet, "/metrics", deps.Metrics.Handler())

	authH := NewAuthHandler(deps.Accounts)
	products := NewProductHandler(deps.Products)
	categories := NewCategoryHandler(deps.Categories)
	cart := NewCartHandler(deps.Cart, deps.Checkout)
	coupons := NewCouponHandler(deps.Coupons)
	orders := NewOrderHandler(deps.Orders)
	reviews := NewReviewHandler(deps.Reviews)
	users := NewUserHandler(deps.Users)
	payments := NewPaymentHandler(deps.Billing, deps.Orders)
	uploads := NewUploadHandler(deps.Storage)
	analytics := NewAnalyticsHandler(deps.Analytics)

	api := r.Group("/api/v1")

	// Public surface.
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)

	api.Get("/products", products.List)
	api.Get("/products/slug/{slug}", products.GetBySlug)
	api.Get("/products/{id}", products.Get)
	api.Get("/products/{id}/reviews", reviews.ListForProduct)
	api.Get("/categories", categories.List)
	api.Get("/categories/{id}", categories.Get)

	api.Post("/cart/validate", cart.Validate)
	api.Post("/checkout/quote", cart.Quote)
	api.Post("/coupons/validate", coupons.Validate)

	// Billing webhook: signature-verified, never token-authenticated.
	api.Post("/webhooks/billing", payments.Webhook)

	// Authenticated surface.
	account := api.Group("", middleware.RequireAuth)
	account.Get("/me", users.Me)
	account.Put("/me", users.UpdateMe)
	account.Get("/me/addresses", users.ListAddresses)
	account.Post("/me/addresses", users.AddAddress)
	account.Put("/me/addresses/{id}", users.UpdateAddress)
	account.Delete("/me/addresses/{id}", users.DeleteAddress)
	account.Get("/me/wishlist", users.ListWishlist)
	account.Post("/me/wishlist/{id}", users.AddToWishlist)
	account.Delete("/me/wishlist/{id}", users.RemoveFromWishlist)

	account.Post("/orders", orders.Create)
	account.Get("/orders", orders.List)
	account.Get("/orders/{id}", orders.Get)
	account.Post("/orders/{id}/cancel", orders.Cancel)
	account.Post("/payments/intent", payments.CreateIntent)

	account.Post("/reviews", reviews.Create)
	account.Post("/reviews/{id}/helpful", reviews.MarkHelpful)

	// Staff surface: catalog, orders, uploads.
	staff := api.Group("", middleware.RequireStaff)
	staff.Post("/products", products.Create)
	staff.Put("/products/{id}", products.Update)
	staff.Delete("/products/{id}", products.Delete)
	staff.Post("/categories", categories.Create)
	staff.Put("/categories/{id}", categories.Update)
	staff.Delete("/categories/{id}", categories.Delete)
	staff.Patch("/orders/{id}/status", orders.UpdateStatus)
	staff.Put("/orders/{id}/tracking", orders.UpdateTracking)
	staff.Post("/uploads", uploads.Upload)
	staff.Delete("/uploads/{key...}", uploads.Delete)

	// Admin surface: coupons, users, analytics.
	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.Get("/coupons", coupons.List)
	admin.Post("/coupons", coupons.Create)
	admin.Put("/coupons/{id}", coupons.Update)
	admin.Delete("/coupons/{id}", coupons.Delete)
	admin.Get("/users", users.ListUsers)
	admin.Get("/users/{id}", users.GetUser)
	admin.Patch("/users/{id}/role", users.SetRole)
	admin.Patch("/users/{id}/status", users.SetActive)
	admin.Get("/dashboard", analytics.Dashboard)
	admin.Get("/reports/sales", analytics.SalesReport)

	return r
}
