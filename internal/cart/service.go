package cart

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/collections"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Service owns the persisted cart collection.
type Service interface {
	AddItem(ctx context.Context, input AddItemInput) (Line, error)
	RemoveItem(ctx context.Context, index int) (Line, error)
	UpdateQuantity(ctx context.Context, index, delta int) ([]Line, error)
	Clear(ctx context.Context)
	Checkout(ctx context.Context, paymentMethod string) (Receipt, error)
	Total() decimal.Decimal
	Count() int
	Lines() []Line
	Summary() Summary
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Store   *collections.Store
	Logger  *logger.Logger
	Metrics *metrics.CollectionMetrics
	Now     func() time.Time
}

type service struct {
	mu      sync.Mutex
	lines   []Line
	store   *collections.Store
	logg    *logger.Logger
	metrics *metrics.CollectionMetrics
	now     func() time.Time
}

// NewService loads the saved cart and returns a service that owns it.
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
	return &service{
		lines:   sanitize(collections.Load[[]Line](ctx, params.Store, collections.KeyCart)),
		store:   params.Store,
		logg:    logg,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// sanitize drops lines that could never have been produced by AddItem.
func sanitize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 || line.Price.IsNegative() {
			continue
		}
		out = append(out, line)
	}
	return out
}

// AddItem appends a new line; lines with the same name are not merged.
func (s *service) AddItem(ctx context.Context, input AddItemInput) (Line, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		s.metrics.ObserveOperation("cart.add_item", "rejected")
		return Line{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "product name is required")
	}
	if !input.Price.IsPositive() {
		s.metrics.ObserveOperation("cart.add_item", "rejected")
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero").
			WithDetails(map[string]any{"price": input.Price.String()})
	}
	if input.Quantity < 1 {
		input.Quantity = 1
	}

	line := Line{
		Name:     input.Name,
		Price:    input.Price,
		Quantity: input.Quantity,
		Image:    strings.TrimSpace(input.Image),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	s.persist(ctx)

	s.metrics.ObserveOperation("cart.add_item", "ok")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"collection": collections.KeyCart,
		"product":    line.Name,
		"quantity":   line.Quantity,
	}), "cart.item_added")
	return line, nil
}

// RemoveItem removes the line at index and returns it.
func (s *service) RemoveItem(ctx context.Context, index int) (Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		s.metrics.ObserveOperation("cart.remove_item", "rejected")
		return Line{}, err
	}
	removed := s.lines[index]
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	s.persist(ctx)

	s.metrics.ObserveOperation("cart.remove_item", "ok")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"collection": collections.KeyCart,
		"product":    removed.Name,
		"index":      index,
	}), "cart.item_removed")
	return removed, nil
}

// UpdateQuantity adds delta to the line quantity. A result of zero or less
// removes the line. The resulting lines are returned.
func (s *service) UpdateQuantity(ctx context.Context, index, delta int) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		s.metrics.ObserveOperation("cart.update_quantity", "rejected")
		return nil, err
	}
	current := s.lines[index].Quantity
	if delta > 0 && current > math.MaxInt-delta {
		s.metrics.ObserveOperation("cart.update_quantity", "rejected")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity change is too large").
			WithDetails(map[string]any{"quantity": current, "delta": delta})
	}
	next := current + delta
	if next > 0 {
		s.lines[index].Quantity = next
	} else {
		s.lines = append(s.lines[:index], s.lines[index+1:]...)
	}
	s.persist(ctx)

	s.metrics.ObserveOperation("cart.update_quantity", "ok")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"collection": collections.KeyCart,
		"index":      index,
		"quantity":   next,
	}), "cart.quantity_updated")
	return s.copyLines(), nil
}

func (s *service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(ctx)
	s.metrics.ObserveOperation("cart.clear", "ok")
}

func (s *service) clearLocked(ctx context.Context) {
	s.lines = []Line{}
	s.persist(ctx)
	s.logg.Info(s.logg.WithCollection(ctx, collections.KeyCart), "cart.cleared")
}

// Checkout snapshots the cart into a receipt and empties it.
func (s *service) Checkout(ctx context.Context, paymentMethod string) (Receipt, error) {
	paymentMethod = strings.TrimSpace(paymentMethod)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		s.metrics.ObserveOperation("cart.checkout", "rejected")
		return Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if paymentMethod == "" {
		s.metrics.ObserveOperation("cart.checkout", "rejected")
		return Receipt{}, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	receipt := Receipt{
		ID:            uuid.New(),
		PaymentMethod: paymentMethod,
		Total:         s.totalLocked(),
		ItemCount:     s.countLocked(),
		Lines:         s.copyLines(),
		PlacedAt:      s.now().UTC(),
	}
	s.clearLocked(ctx)

	s.metrics.ObserveOperation("cart.checkout", "ok")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"receipt_id":     receipt.ID.String(),
		"payment_method": paymentMethod,
		"total":          receipt.Total.StringFixed(2),
	}), "cart.checked_out")
	return receipt, nil
}

// Total returns the grand total rounded to 2 places.
func (s *service) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

// Count returns the sum of quantities.
func (s *service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

func (s *service) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLines()
}

func (s *service) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		Lines: s.copyLines(),
		Total: s.totalLocked(),
		Count: s.countLocked(),
	}
}

func (s *service) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Total())
	}
	return total.Round(2)
}

func (s *service) countLocked() int {
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

func (s *service) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *service) checkIndex(index int) error {
	if index < 0 || index >= len(s.lines) {
		return pkgerrors.New(pkgerrors.CodeOutOfRange, "cart line does not exist").
			WithDetails(map[string]any{"index": index, "lines": len(s.lines)})
	}
	return nil
}

func (s *service) persist(ctx context.Context) {
	s.store.Save(ctx, collections.KeyCart, s.lines)
}
