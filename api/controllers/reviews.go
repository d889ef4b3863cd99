package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/reviews"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type addReviewRequest struct {
	Rating int    `json:"rating"`
	Text   string `json:"text" validate:"max=4000"`
}

type reviewView struct {
	reviews.Review
	Stars string `json:"stars"`
}

type reviewsResponse struct {
	Product    string       `json:"product"`
	Popularity int          `json:"popularity"`
	Reviews    []reviewView `json:"reviews"`
}

func ReviewsList(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}
		product := productParam(r)
		if product == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product name is required"))
			return
		}
		responses.WriteSuccess(w, buildReviewsResponse(svc, product))
	}
}

func ReviewsAdd(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		var req addReviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product := productParam(r)
		if _, err := svc.AddReview(ctx, product, req.Rating, req.Text); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, buildReviewsResponse(svc, product))
	}
}

func buildReviewsResponse(svc reviews.Service, product string) reviewsResponse {
	list := svc.Reviews(product)
	views := make([]reviewView, 0, len(list))
	for _, review := range list {
		views = append(views, reviewView{Review: review, Stars: reviews.Stars(int(review.Rating))})
	}
	return reviewsResponse{
		Product:    product,
		Popularity: len(list),
		Reviews:    views,
	}
}

// productParam returns the {product} route parameter. chi matches against
// RawPath when the request carries one, so only then is the value still escaped.
func productParam(r *http.Request) string {
	raw := chi.URLParam(r, "product")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(raw); err == nil {
			raw = decoded
		}
	}
	return strings.TrimSpace(raw)
}
