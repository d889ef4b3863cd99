package preferences

import (
	"context"
	"sync"

	"github.com/angelmondragon/storefront/internal/collections"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Service persists presentation preferences.
type Service interface {
	DarkMode() bool
	SetDarkMode(ctx context.Context, enabled bool) bool
	ToggleDarkMode(ctx context.Context) bool
}

type ServiceParams struct {
	Store  *collections.Store
	Logger *logger.Logger
}

type service struct {
	mu       sync.Mutex
	darkMode bool
	store    *collections.Store
	logg     *logger.Logger
}

func NewService(ctx context.Context, params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collection store is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		darkMode: collections.Load[bool](ctx, params.Store, collections.KeyDarkMode),
		store:    params.Store,
		logg:     logg,
	}, nil
}

func (s *service) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.darkMode
}

func (s *service) SetDarkMode(ctx context.Context, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(ctx, enabled)
}

func (s *service) ToggleDarkMode(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(ctx, !s.darkMode)
}

func (s *service) setLocked(ctx context.Context, enabled bool) bool {
	s.darkMode = enabled
	s.store.Save(ctx, collections.KeyDarkMode, enabled)
	s.logg.Info(s.logg.WithField(ctx, "dark_mode", enabled), "preferences.dark_mode_set")
	return enabled
}
