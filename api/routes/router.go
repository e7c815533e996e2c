package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/cartsync/api/controllers"
	"github.com/angelmondragon/cartsync/api/middleware"
	"github.com/angelmondragon/cartsync/internal/shop"
	"github.com/angelmondragon/cartsync/pkg/config"
	"github.com/angelmondragon/cartsync/pkg/logger"
)

// Params wires the router's collaborators. RateLimit, Ready and Metrics are
// optional.
type Params struct {
	Shop      shop.Service
	RateLimit middleware.RateLimitStore
	Ready     map[string]controllers.Pinger
	Metrics   http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, params Params) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Server.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Ready))
	})

	if params.Metrics != nil && cfg.Metrics.Enabled {
		r.Handle("/metrics", params.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(params.Shop))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(cfg.AuthRateLimit, params.RateLimit, logg)).
				Post("/login", controllers.AuthLogin(params.Shop, cfg, logg))
			r.Post("/logout", controllers.AuthLogout(cfg, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(params.Shop, logg))
				r.Post("/", controllers.CartAdd(params.Shop, logg))
				r.Delete("/", controllers.CartRemove(params.Shop, logg))
				r.Put("/{productId}", controllers.CartUpdateQuantity(params.Shop, logg))
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.CouponBest(params.Shop, logg))
				r.Post("/validate", controllers.CouponValidate(params.Shop, logg))
			})
		})
	})

	return r
}
