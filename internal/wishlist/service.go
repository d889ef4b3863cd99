package wishlist

import (
	"context"
	"slices"
	"sync"

	"github.com/angelmondragon/storefront/internal/collections"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

// DefaultCompareLimit bounds the compare list when no limit is configured.
const DefaultCompareLimit = 3

// Service owns the wishlist and compare collections.
type Service interface {
	ToggleWishlist(ctx context.Context, name string) (enums.ToggleResult, error)
	ToggleCompare(ctx context.Context, name string) (enums.ToggleResult, error)
	Wishlist() []string
	CompareList() []string
	InWishlist(name string) bool
	InCompare(name string) bool
	CompareLimit() int
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Store        *collections.Store
	Logger       *logger.Logger
	Metrics      *metrics.CollectionMetrics
	CompareLimit int
}

type service struct {
	mu       sync.Mutex
	wishlist *set
	compare  *set
	store    *collections.Store
	logg     *logger.Logger
	metrics  *metrics.CollectionMetrics
}

// NewService loads both sets and returns a service that owns them.
func NewService(ctx context.Context, params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection store is required")
	}
	if params.CompareLimit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "compare limit must be positive")
	}
	limit := params.CompareLimit
	if limit == 0 {
		limit = DefaultCompareLimit
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		wishlist: newSet(collections.Load[[]string](ctx, params.Store, collections.KeyWishlist), 0),
		compare:  newSet(collections.Load[[]string](ctx, params.Store, collections.KeyCompareList), limit),
		store:    params.Store,
		logg:     logg,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) ToggleWishlist(ctx context.Context, name string) (enums.ToggleResult, error) {
	return s.toggle(ctx, collections.KeyWishlist, s.wishlist, name)
}

// ToggleCompare fails with CapacityExceeded when adding to a full compare list.
func (s *service) ToggleCompare(ctx context.Context, name string) (enums.ToggleResult, error) {
	return s.toggle(ctx, collections.KeyCompareList, s.compare, name)
}

func (s *service) toggle(ctx context.Context, key string, target *set, name string) (enums.ToggleResult, error) {
	operation := key + ".toggle"
	if name == "" {
		s.metrics.ObserveOperation(operation, "rejected")
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := target.toggle(name)
	if err != nil {
		s.metrics.ObserveOperation(operation, "rejected")
		return "", err
	}
	s.store.Save(ctx, key, target.items())

	s.metrics.ObserveOperation(operation, string(result))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"collection": key,
		"product":    name,
		"result":     result.String(),
	}), "wishlist.toggled")
	return result, nil
}

func (s *service) Wishlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.items()
}

func (s *service) CompareList() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compare.items()
}

func (s *service) InWishlist(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.contains(name)
}

func (s *service) InCompare(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compare.contains(name)
}

func (s *service) CompareLimit() int {
	return s.compare.limit
}

// set is an insertion-ordered set of product names. A limit of 0 means unbounded.
type set struct {
	members []string
	limit   int
}

func newSet(loaded []string, limit int) *set {
	s := &set{members: make([]string, 0, len(loaded)), limit: limit}
	for _, name := range loaded {
		if name == "" || s.contains(name) {
			continue
		}
		if s.full() {
			break
		}
		s.members = append(s.members, name)
	}
	return s
}

func (s *set) contains(name string) bool {
	return slices.Contains(s.members, name)
}

func (s *set) full() bool {
	return s.limit > 0 && len(s.members) >= s.limit
}

func (s *set) toggle(name string) (enums.ToggleResult, error) {
	if idx := slices.Index(s.members, name); idx >= 0 {
		s.members = slices.Delete(s.members, idx, idx+1)
		return enums.ToggleRemoved, nil
	}
	if s.full() {
		return "", pkgerrors.New(pkgerrors.CodeCapacityExceeded, "compare list is full").
			WithDetails(map[string]any{"limit": s.limit, "members": s.items()})
	}
	s.members = append(s.members, name)
	return enums.ToggleAdded, nil
}

func (s *set) items() []string {
	return slices.Clone(s.members)
}
