package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

const (
	maxSearchTermLength = 200
	maxPageNumber       = 100000
)

// ProductsList serves one page of the filtered and sorted catalog.
// Unknown sort keys fall back to catalog order; out-of-range pages are empty.
func ProductsList(catalog *product.Catalog, popularity product.PopularityFunc, pageSize int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if catalog == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		q := r.URL.Query()
		page, err := validators.ParseQueryInt(r, "page", 1, 0, maxPageNumber)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		size, err := validators.ParseQueryInt(r, "page_size", pageSize, 0, pagination.MaxPageSize)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		priceRange, err := product.ParsePriceRange(q.Get("price"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		sortKey, err := enums.ParseSortKey(q.Get("sort"))
		if err != nil {
			sortKey = enums.SortDefault
		}

		view := product.View(catalog.Products(), product.Query{
			SearchTerm: validators.SanitizeString(q.Get("q"), maxSearchTermLength),
			Category:   validators.SanitizeString(q.Get("category"), maxSearchTermLength),
			Sort:       sortKey,
			Page:       page,
			PageSize:   pagination.NormalizePageSize(size, pageSize),
			PriceRange: priceRange,
		}, popularity)
		responses.WriteSuccess(w, view)
	}
}

func ProductCategories(catalog *product.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"categories": append([]string{product.CategoryAll}, catalog.Categories()...),
		})
	}
}
