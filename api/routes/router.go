package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/preferences"
	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/reviews"
	"github.com/angelmondragon/storefront/internal/searches"
	"github.com/angelmondragon/storefront/internal/wishlist"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/kv"
	"github.com/angelmondragon/storefront/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storePinger controllers.Pinger,
	idempotencyStore kv.ExpiringStore,
	gatherer prometheus.Gatherer,
	catalog *product.Catalog,
	cartService cart.Service,
	wishlistService wishlist.Service,
	reviewService reviews.Service,
	searchService searches.Service,
	preferenceService preferences.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	r.Get("/healthz", controllers.Healthz(cfg, storePinger, logg))
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	var popularity product.PopularityFunc
	if reviewService != nil {
		popularity = reviewService.Popularity
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Storage.Namespace, cfg.HTTP.IdempotencyTTL, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Delete("/items/{index}", controllers.CartRemoveItem(cartService, logg))
			r.Patch("/items/{index}", controllers.CartUpdateQuantity(cartService, logg))
			r.Post("/checkout", controllers.CartCheckout(cartService, logg))
		})

		r.Get("/wishlist", controllers.WishlistList(wishlistService, logg))
		r.Post("/wishlist/toggle", controllers.WishlistToggle(wishlistService, logg))
		r.Get("/compare", controllers.CompareList(wishlistService, logg))
		r.Post("/compare/toggle", controllers.CompareToggle(wishlistService, logg))

		r.Get("/reviews/{product}", controllers.ReviewsList(reviewService, logg))
		r.Post("/reviews/{product}", controllers.ReviewsAdd(reviewService, logg))

		r.Get("/products", controllers.ProductsList(catalog, popularity, cfg.Storefront.PageSize, logg))
		r.Get("/products/categories", controllers.ProductCategories(catalog, logg))

		r.Get("/searches", controllers.SearchesList(searchService, logg))
		r.Post("/searches", controllers.SearchesRecord(searchService, logg))

		r.Get("/preferences/dark-mode", controllers.DarkModeFetch(preferenceService, logg))
		r.Put("/preferences/dark-mode", controllers.DarkModeUpdate(preferenceService, logg))
	})

	return r
}
