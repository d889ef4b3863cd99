package searches

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/angelmondragon/storefront/internal/collections"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

// DefaultLimit is the number of recent searches kept when none is configured.
const DefaultLimit = 5

// Service keeps the most recent distinct search queries, newest first.
type Service interface {
	Record(ctx context.Context, query string) []string
	List() []string
}

type ServiceParams struct {
	Store   *collections.Store
	Logger  *logger.Logger
	Metrics *metrics.CollectionMetrics
	Limit   int
}

type service struct {
	mu      sync.Mutex
	queries []string
	limit   int
	store   *collections.Store
	logg    *logger.Logger
	metrics *metrics.CollectionMetrics
}

func NewService(ctx context.Context, params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection store is required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	svc := &service{
		queries: []string{},
		limit:   limit,
		store:   params.Store,
		logg:    logg,
		metrics: params.Metrics,
	}
	loaded := collections.Load[[]string](ctx, params.Store, collections.KeyRecentSearches)
	// replay oldest first so the saved order is kept
	for i := len(loaded) - 1; i >= 0; i-- {
		svc.push(loaded[i])
	}
	return svc, nil
}

// Record moves the trimmed query to the front. Blank queries are ignored.
func (s *service) Record(ctx context.Context, query string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.push(query) {
		s.metrics.ObserveOperation("searches.record", "ignored")
		return slices.Clone(s.queries)
	}
	s.store.Save(ctx, collections.KeyRecentSearches, s.queries)
	s.metrics.ObserveOperation("searches.record", "ok")
	s.logg.Debug(s.logg.WithCollection(ctx, collections.KeyRecentSearches), "searches.recorded")
	return slices.Clone(s.queries)
}

func (s *service) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queries)
}

func (s *service) push(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}
	if idx := slices.Index(s.queries, query); idx >= 0 {
		s.queries = slices.Delete(s.queries, idx, idx+1)
	}
	s.queries = slices.Insert(s.queries, 0, query)
	if len(s.queries) > s.limit {
		s.queries = s.queries[:s.limit]
	}
	return true
}
