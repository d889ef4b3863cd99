package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one cart entry: a product name with a price snapshot and quantity.
type Line struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
}

// Total returns price × quantity at full precision.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AddItemInput carries the fields accepted by AddItem.
type AddItemInput struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty" validate:"omitempty,max=2048"`
}

// Summary is the rendered view of the cart.
type Summary struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Receipt describes a completed checkout.
type Receipt struct {
	ID            uuid.UUID       `json:"id"`
	PaymentMethod string          `json:"payment_method"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	Lines         []Line          `json:"lines"`
	PlacedAt      time.Time       `json:"placed_at"`
}
