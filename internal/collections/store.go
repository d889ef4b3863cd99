package collections

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/kv"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

// Storage keys of the persisted collections.
const (
	KeyCart           = "cart"
	KeyWishlist       = "wishlist"
	KeyReviews        = "reviews"
	KeyCompareList    = "compareList"
	KeyRecentSearches = "recentSearches"
	KeyDarkMode       = "darkMode"
)

// Params groups dependencies for the collection store.
type Params struct {
	KV        kv.Store
	Namespace string
	Logger    *logger.Logger
	Metrics   *metrics.CollectionMetrics
}

// Store loads and saves named collections as JSON documents. Reads fall back
// to the empty value and writes never fail observably: a collection that cannot
// be decoded or persisted is logged and counted, nothing more.
type Store struct {
	kv        kv.Store
	namespace string
	logg      *logger.Logger
	metrics   *metrics.CollectionMetrics
}

// New builds a collection store over the provided key-value backend.
func New(params Params) (*Store, error) {
	if params.KV == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		kv:        params.KV,
		namespace: strings.TrimSpace(params.Namespace),
		logg:      logg,
		metrics:   params.Metrics,
	}, nil
}

// Key returns the backend key for a collection name.
func (s *Store) Key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

// Load returns the saved value for name, or the zero value of T when the
// entry is absent, unreadable or malformed.
func Load[T any](ctx context.Context, s *Store, name string) T {
	var zero T
	ctx = s.logg.WithCollection(ctx, name)

	raw, ok, err := s.kv.Get(ctx, s.Key(name))
	if err != nil {
		s.metrics.ObserveLoad(name, metrics.LoadUnavailable)
		s.logg.Error(ctx, "collection.load_failed", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read collection"))
		return zero
	}
	if !ok || strings.TrimSpace(raw) == "" {
		s.metrics.ObserveLoad(name, metrics.LoadMiss)
		return zero
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.metrics.ObserveLoad(name, metrics.LoadMalformed)
		malformed := pkgerrors.Wrap(pkgerrors.CodeMalformedStorage, err, "decode collection")
		s.logg.Warn(s.logg.WithField(ctx, "error", malformed.Error()), "collection.malformed")
		return zero
	}
	s.metrics.ObserveLoad(name, metrics.LoadHit)
	return out
}

// Save serializes value and writes it under name. Failures are dropped.
func (s *Store) Save(ctx context.Context, name string, value any) {
	ctx = s.logg.WithCollection(ctx, name)
	start := time.Now()

	payload, err := json.Marshal(value)
	if err != nil {
		s.metrics.ObserveSave(name, metrics.SaveDropped, time.Since(start))
		s.logg.Error(ctx, "collection.encode_failed", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode collection"))
		return
	}

	if err := s.kv.Set(ctx, s.Key(name), string(payload)); err != nil {
		s.metrics.ObserveSave(name, metrics.SaveDropped, time.Since(start))
		s.logg.Error(ctx, "collection.save_dropped", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write collection"))
		return
	}
	s.metrics.ObserveSave(name, metrics.SaveOK, time.Since(start))
}

// Clear removes the stored entry for name; like Save, failures are logged and dropped.
func (s *Store) Clear(ctx context.Context, name string) {
	ctx = s.logg.WithCollection(ctx, name)
	if err := s.kv.Delete(ctx, s.Key(name)); err != nil {
		s.logg.Error(ctx, "collection.clear_dropped", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete collection"))
	}
}

// Ping reports backend health when the backend supports it.
func (s *Store) Ping(ctx context.Context) error {
	if pinger, ok := s.kv.(kv.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}
