package reviews

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/collections"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/google/uuid"
)

// Service owns the persisted review collection.
type Service interface {
	AddReview(ctx context.Context, product string, rating int, text string) (Review, error)
	Reviews(product string) []Review
	Popularity(product string) int
}

// ServiceParams groups dependencies for the review service.
type ServiceParams struct {
	Store   *collections.Store
	Logger  *logger.Logger
	Metrics *metrics.CollectionMetrics
	// StrictRatings rejects ratings outside 1..MaxStars.
	StrictRatings bool
	Now           func() time.Time
}

type service struct {
	mu      sync.Mutex
	byName  map[string][]Review
	store   *collections.Store
	logg    *logger.Logger
	metrics *metrics.CollectionMetrics
	strict  bool
	now     func() time.Time
}

// NewService loads saved reviews and returns a service that owns them.
func NewService(ctx context.Context, params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	byName := collections.Load[map[string][]Review](ctx, params.Store, collections.KeyReviews)
	if byName == nil {
		byName = map[string][]Review{}
	}
	for product, list := range byName {
		for i := range list {
			if list[i].ID == uuid.Nil {
				list[i].ID = uuid.New()
			}
		}
		byName[product] = list
	}

	return &service{
		byName:  byName,
		store:   params.Store,
		logg:    logg,
		metrics: params.Metrics,
		strict:  params.StrictRatings,
		now:     now,
	}, nil
}

// AddReview appends a review to the product's list.
func (s *service) AddReview(ctx context.Context, product string, rating int, text string) (Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		s.metrics.ObserveOperation("reviews.add", "rejected")
		return Review{}, pkgerrors.New(pkgerrors.CodeValidation, "review text is required")
	}
	if strings.TrimSpace(product) == "" {
		s.metrics.ObserveOperation("reviews.add", "rejected")
		return Review{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if s.strict && (rating < 1 || rating > MaxStars) {
		s.metrics.ObserveOperation("reviews.add", "rejected")
		return Review{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5").
			WithDetails(map[string]any{"rating": rating})
	}

	review := Review{
		ID:        uuid.New(),
		Rating:    Rating(rating),
		Text:      text,
		Timestamp: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[product] = append(s.byName[product], review)
	s.store.Save(ctx, collections.KeyReviews, s.byName)

	s.metrics.ObserveOperation("reviews.add", "ok")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"collection": collections.KeyReviews,
		"product":    product,
		"review_id":  review.ID.String(),
		"rating":     rating,
	}), "reviews.added")
	return review, nil
}

// Reviews returns the product's reviews in insertion order, or an empty list.
func (s *service) Reviews(product string) []Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := slices.Clone(s.byName[product])
	if list == nil {
		return []Review{}
	}
	return list
}

// Popularity is the number of reviews for the product.
func (s *service) Popularity(product string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byName[product])
}
