package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/collections"
	"github.com/angelmondragon/storefront/internal/preferences"
	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/reviews"
	"github.com/angelmondragon/storefront/internal/searches"
	"github.com/angelmondragon/storefront/internal/wishlist"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/kv"
	"github.com/angelmondragon/storefront/pkg/logger"
)

var testLogger = logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

func newStore(t *testing.T) *collections.Store {
	t.Helper()
	store, err := collections.New(collections.Params{KV: kv.NewMemory()})
	if err != nil {
		t.Fatalf("collection store: %v", err)
	}
	return store
}

func serve(handler http.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func TestCartEndpoints(t *testing.T) {
	svc, err := cart.NewService(context.Background(), cart.ServiceParams{Store: newStore(t)})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	rec := serve(CartAddItem(svc, testLogger), http.MethodPost, "/api/v1/cart/items", `{"name":"Rose Perfume","price":49.99,"quantity":2}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary cart.Summary
	decode(t, rec, &summary)
	if summary.Count != 2 || summary.Total.StringFixed(2) != "99.98" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	rec = serve(CartAddItem(svc, testLogger), http.MethodPost, "/api/v1/cart/items", `{"name":"Free","price":0}`, nil)
	if env := decode(t, rec, nil); rec.Code != http.StatusBadRequest || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 400 validation error, got %d %+v", rec.Code, env.Error)
	}

	rec = serve(CartUpdateQuantity(svc, testLogger), http.MethodPatch, "/api/v1/cart/items/0", `{"delta":-1}`, map[string]string{"index": "0"})
	decode(t, rec, &summary)
	if rec.Code != http.StatusOK || summary.Total.StringFixed(2) != "49.99" {
		t.Fatalf("unexpected update %d %+v", rec.Code, summary)
	}

	rec = serve(CartUpdateQuantity(svc, testLogger), http.MethodPatch, "/api/v1/cart/items/0", `{}`, map[string]string{"index": "0"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected delta to be required, got %d", rec.Code)
	}

	rec = serve(CartRemoveItem(svc, testLogger), http.MethodDelete, "/api/v1/cart/items/5", "", map[string]string{"index": "5"})
	if env := decode(t, rec, nil); rec.Code != http.StatusNotFound || env.Error.Code != "OUT_OF_RANGE" {
		t.Fatalf("expected 404 out of range, got %d %+v", rec.Code, env.Error)
	}
	rec = serve(CartRemoveItem(svc, testLogger), http.MethodDelete, "/api/v1/cart/items/x", "", map[string]string{"index": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric index, got %d", rec.Code)
	}

	rec = serve(CartCheckout(svc, testLogger), http.MethodPost, "/api/v1/cart/checkout", `{"payment_method":""}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected checkout without payment method to fail, got %d", rec.Code)
	}
	rec = serve(CartCheckout(svc, testLogger), http.MethodPost, "/api/v1/cart/checkout", `{"payment_method":"card"}`, nil)
	var receipt cart.Receipt
	decode(t, rec, &receipt)
	if rec.Code != http.StatusCreated || receipt.ItemCount != 1 || receipt.PaymentMethod != "card" {
		t.Fatalf("unexpected checkout %d %+v", rec.Code, receipt)
	}

	rec = serve(CartFetch(svc, testLogger), http.MethodGet, "/api/v1/cart", "", nil)
	decode(t, rec, &summary)
	if summary.Count != 0 || len(summary.Lines) != 0 {
		t.Fatalf("expected empty cart after checkout, got %+v", summary)
	}

	rec = serve(CartClear(svc, testLogger), http.MethodDelete, "/api/v1/cart", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected clear to succeed, got %d", rec.Code)
	}
}

func TestCompareToggleCapacity(t *testing.T) {
	svc, err := wishlist.NewService(context.Background(), wishlist.ServiceParams{Store: newStore(t), CompareLimit: 3})
	if err != nil {
		t.Fatalf("wishlist service: %v", err)
	}

	for _, name := range []string{"A", "B", "C"} {
		rec := serve(CompareToggle(svc, testLogger), http.MethodPost, "/api/v1/compare/toggle", `{"name":"`+name+`"}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle %s: got %d", name, rec.Code)
		}
	}
	rec := serve(CompareToggle(svc, testLogger), http.MethodPost, "/api/v1/compare/toggle", `{"name":"D"}`, nil)
	if env := decode(t, rec, nil); rec.Code != http.StatusConflict || env.Error.Code != "CAPACITY_EXCEEDED" {
		t.Fatalf("expected 409 capacity exceeded, got %d %+v", rec.Code, env.Error)
	}

	var list struct {
		Items []string `json:"items"`
		Limit int      `json:"limit"`
	}
	decode(t, serve(CompareList(svc, testLogger), http.MethodGet, "/api/v1/compare", "", nil), &list)
	if len(list.Items) != 3 || list.Limit != 3 {
		t.Fatalf("unexpected compare list %+v", list)
	}

	var toggled toggleResponse
	rec = serve(WishlistToggle(svc, testLogger), http.MethodPost, "/api/v1/wishlist/toggle", `{"name":"Rose Perfume"}`, nil)
	decode(t, rec, &toggled)
	if toggled.Result != "added" || len(toggled.Items) != 1 {
		t.Fatalf("unexpected wishlist toggle %+v", toggled)
	}
	decode(t, serve(WishlistList(svc, testLogger), http.MethodGet, "/api/v1/wishlist", "", nil), &list)
	if len(list.Items) != 1 || list.Items[0] != "Rose Perfume" {
		t.Fatalf("unexpected wishlist %+v", list)
	}
}

func TestReviewsEndpoints(t *testing.T) {
	svc, err := reviews.NewService(context.Background(), reviews.ServiceParams{Store: newStore(t)})
	if err != nil {
		t.Fatalf("reviews service: %v", err)
	}
	params := map[string]string{"product": "Rose Perfume"}

	rec := serve(ReviewsAdd(svc, testLogger), http.MethodPost, "/api/v1/reviews/Rose%20Perfume", `{"rating":0,"text":""}`, params)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected empty review to be rejected, got %d", rec.Code)
	}

	rec = serve(ReviewsAdd(svc, testLogger), http.MethodPost, "/api/v1/reviews/Rose%20Perfume", `{"rating":4,"text":"Lovely"}`, params)
	var resp reviewsResponse
	decode(t, rec, &resp)
	if rec.Code != http.StatusCreated || resp.Product != "Rose Perfume" || resp.Popularity != 1 {
		t.Fatalf("unexpected add response %d %+v", rec.Code, resp)
	}
	if resp.Reviews[0].Stars != "★★★★☆" {
		t.Fatalf("unexpected stars %q", resp.Reviews[0].Stars)
	}

	decode(t, serve(ReviewsList(svc, testLogger), http.MethodGet, "/api/v1/reviews/Other", "", map[string]string{"product": "Other"}), &resp)
	if resp.Popularity != 0 || len(resp.Reviews) != 0 {
		t.Fatalf("expected no reviews for Other, got %+v", resp)
	}
}

func TestReviewsProductNameDecodedOnce(t *testing.T) {
	svc, err := reviews.NewService(context.Background(), reviews.ServiceParams{Store: newStore(t)})
	if err != nil {
		t.Fatalf("reviews service: %v", err)
	}
	r := chi.NewRouter()
	r.Post("/api/v1/reviews/{product}", ReviewsAdd(svc, testLogger))

	tests := []struct {
		target  string
		product string
	}{
		{"/api/v1/reviews/Rose%20Perfume", "Rose Perfume"},
		{"/api/v1/reviews/Rose%2541", "Rose%41"},
		{"/api/v1/reviews/Rose%2FMusk", "Rose/Musk"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(`{"rating":5,"text":"Great"}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		var resp reviewsResponse
		decode(t, rec, &resp)
		if rec.Code != http.StatusCreated || resp.Product != tt.product {
			t.Fatalf("%s: expected product %q, got %d %q", tt.target, tt.product, rec.Code, resp.Product)
		}
	}
}

func TestProductsList(t *testing.T) {
	catalog, err := product.LoadCatalog("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	popularity := func(name string) int {
		if name == "Cedar Mist" {
			return 9
		}
		return 0
	}
	handler := ProductsList(catalog, popularity, 8, testLogger)

	var page product.Page
	rec := serve(handler, http.MethodGet, "/api/v1/products?category=floral&sort=price-asc", "", nil)
	decode(t, rec, &page)
	if rec.Code != http.StatusOK || page.TotalItems != 3 || page.Items[0].Name != "Peony Blush" {
		t.Fatalf("unexpected floral page %d %+v", rec.Code, page)
	}

	decode(t, serve(handler, http.MethodGet, "/api/v1/products?sort=popularity-desc&page_size=2", "", nil), &page)
	if page.Items[0].Name != "Cedar Mist" || page.TotalPages != 5 || len(page.Items) != 2 {
		t.Fatalf("unexpected popularity page %+v", page)
	}

	decode(t, serve(handler, http.MethodGet, "/api/v1/products?page=9", "", nil), &page)
	if len(page.Items) != 0 || page.TotalPages != 2 {
		t.Fatalf("expected empty out-of-range page, got %+v", page)
	}

	decode(t, serve(handler, http.MethodGet, "/api/v1/products?price=40-50&sort=unknown", "", nil), &page)
	if page.TotalItems != 3 || page.Items[0].Name != "Rose Perfume" {
		t.Fatalf("unexpected price filtered page %+v", page)
	}

	rec = serve(handler, http.MethodGet, "/api/v1/products?price=cheap", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad price range rejected, got %d", rec.Code)
	}
	rec = serve(handler, http.MethodGet, "/api/v1/products?page=abc", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad page rejected, got %d", rec.Code)
	}

	var cats struct {
		Categories []string `json:"categories"`
	}
	decode(t, serve(ProductCategories(catalog, testLogger), http.MethodGet, "/api/v1/products/categories", "", nil), &cats)
	if len(cats.Categories) != 5 || cats.Categories[0] != "all" {
		t.Fatalf("unexpected categories %v", cats.Categories)
	}
}

func TestSearchesAndPreferences(t *testing.T) {
	store := newStore(t)
	searchSvc, _ := searches.NewService(context.Background(), searches.ServiceParams{Store: store})
	prefSvc, _ := preferences.NewService(context.Background(), preferences.ServiceParams{Store: store})

	var list struct {
		Items []string `json:"items"`
	}
	for _, q := range []string{"rose", "oud", "rose"} {
		decode(t, serve(SearchesRecord(searchSvc, testLogger), http.MethodPost, "/api/v1/searches", `{"query":"`+q+`"}`, nil), &list)
	}
	if len(list.Items) != 2 || list.Items[0] != "rose" {
		t.Fatalf("unexpected searches %v", list.Items)
	}
	decode(t, serve(SearchesList(searchSvc, testLogger), http.MethodGet, "/api/v1/searches", "", nil), &list)
	if len(list.Items) != 2 {
		t.Fatalf("unexpected listed searches %v", list.Items)
	}

	var mode map[string]bool
	decode(t, serve(DarkModeUpdate(prefSvc, testLogger), http.MethodPut, "/api/v1/preferences/dark-mode", `{"enabled":true}`, nil), &mode)
	if !mode["enabled"] {
		t.Fatalf("expected dark mode enabled")
	}
	decode(t, serve(DarkModeFetch(prefSvc, testLogger), http.MethodGet, "/api/v1/preferences/dark-mode", "", nil), &mode)
	if !mode["enabled"] {
		t.Fatalf("expected dark mode to stay enabled")
	}
	rec := serve(DarkModeUpdate(prefSvc, testLogger), http.MethodPut, "/api/v1/preferences/dark-mode", `{}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected enabled to be required, got %d", rec.Code)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestHealthz(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}, Storage: config.StorageConfig{Driver: "memory"}}

	rec := serve(Healthz(cfg, newStore(t), testLogger), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Storefront-Env") != "dev" {
		t.Fatalf("expected healthy response, got %d", rec.Code)
	}

	rec = serve(Healthz(cfg, failingPinger{}, testLogger), http.MethodGet, "/healthz", "", nil)
	if env := decode(t, rec, nil); rec.Code != http.StatusServiceUnavailable || env.Error.Code != "DEPENDENCY_ERROR" {
		t.Fatalf("expected 503, got %d %+v", rec.Code, env.Error)
	}
}

func TestNilServicesReportInternalError(t *testing.T) {
	rec := serve(CartFetch(nil, testLogger), http.MethodGet, "/api/v1/cart", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
