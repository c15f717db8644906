package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/homeservices-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/homeservices-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/homeservices-backend/api/controllers/orders"
	"github.com/angelmondragon/homeservices-backend/api/middleware"
	"github.com/angelmondragon/homeservices-backend/internal/analytics"
	"github.com/angelmondragon/homeservices-backend/internal/assignment"
	"github.com/angelmondragon/homeservices-backend/internal/cart"
	"github.com/angelmondragon/homeservices-backend/internal/orders"
	products "github.com/angelmondragon/homeservices-backend/internal/products"
	"github.com/angelmondragon/homeservices-backend/internal/staff"
	"github.com/angelmondragon/homeservices-backend/pkg/config"
	"github.com/angelmondragon/homeservices-backend/pkg/db"
	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/metrics"
	"github.com/angelmondragon/homeservices-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	idempotencyStore redis.IdempotencyStore,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	productService products.Service,
	staffService staff.Service,
	cartService cart.Service,
	ordersService orders.Service,
	assignmentService assignment.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	reject := ordercontrollers.Transition(ordersService.Reject, logg)

	// Older clients post rejections outside the /api prefix.
	r.Post("/bookings/{id}/reject", reject)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Get("/stats", controllers.ProductStats(productService, logg))
			r.Get("/batch", controllers.BatchProducts(productService, logg))
			r.Get("/{id}", controllers.GetProduct(productService, logg))
			r.Put("/{id}", controllers.UpdateProduct(productService, logg))
			r.Patch("/{id}/stock", controllers.AdjustProductStock(productService, logg))
			r.Delete("/{id}", controllers.DeleteProduct(productService, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Post("/register", controllers.RegisterStaff(staffService, logg))
			r.Get("/", controllers.ListStaff(staffService, logg))
			r.Get("/{id}", controllers.GetStaff(staffService, logg))
			r.Patch("/{id}", controllers.UpdateStaff(staffService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/add", cartcontrollers.CartAdd(cartService, logg))
			r.Put("/update", cartcontrollers.CartSetQuantity(cartService, logg))
			r.Put("/update/{userId}/{productId}/{quantity}", cartcontrollers.CartSetQuantityPath(cartService, logg))
			r.Post("/remove", cartcontrollers.CartRemove(cartService, logg))
			r.Delete("/remove/{userId}/{productId}", cartcontrollers.CartRemovePath(cartService, logg))
			r.Post("/clear", cartcontrollers.CartClear(cartService, logg))
			r.Delete("/clear/{userId}", cartcontrollers.CartClearPath(cartService, logg))
			r.Get("/{userId}", cartcontrollers.CartFetch(cartService, logg))
		})

		r.Post("/orders/create", ordercontrollers.Create(ordersService, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.Get("/assigned/{staffId}", ordercontrollers.ListAssigned(assignmentService, logg))
			r.Get("/{id}", ordercontrollers.ListByUser(ordersService, logg))
			r.Patch("/{id}/assign", ordercontrollers.Assign(assignmentService, logg))
			r.Post("/{id}/accept", ordercontrollers.Transition(ordersService.Accept, logg))
			r.Post("/{id}/reject", reject)
			r.Post("/{id}/complete", ordercontrollers.Transition(ordersService.Complete, logg))
			r.Post("/{id}/not_completed", ordercontrollers.Transition(ordersService.MarkNotCompleted, logg))
		})

		r.Get("/dashboard/stats/{staffId}", controllers.StaffDashboard(analyticsService, logg))
	})

	return r
}
