package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// Product is one immutable catalog entry.
type Product struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	AddedAt     time.Time       `json:"added_at"`
}

// ProductView decorates a product with data owned by other collections.
type ProductView struct {
	Product
	Popularity int `json:"popularity"`
}
