package product

import (
	"slices"
	"strings"

	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/pagination"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// PopularityFunc reports how popular a product is, usually its review count.
type PopularityFunc func(name string) int

// PriceRange is an inclusive price filter.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func (r PriceRange) contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
}

// ParsePriceRange parses "min-max" or the open-ended "min+". Empty and "all"
// return nil, meaning no price filter.
func ParsePriceRange(value string) (*PriceRange, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, CategoryAll) {
		return nil, nil
	}
	invalid := func() error {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid price range").
			WithDetails(map[string]any{"price": value, "expected": "min-max"})
	}

	if lower, ok := strings.CutSuffix(value, "+"); ok {
		minPrice, err := decimal.NewFromString(strings.TrimSpace(lower))
		if err != nil || minPrice.IsNegative() {
			return nil, invalid()
		}
		return &PriceRange{Min: minPrice, Max: decimal.New(1, 18)}, nil
	}

	lower, upper, found := strings.Cut(value, "-")
	if !found {
		return nil, invalid()
	}
	minPrice, err := decimal.NewFromString(strings.TrimSpace(lower))
	if err != nil {
		return nil, invalid()
	}
	maxPrice, err := decimal.NewFromString(strings.TrimSpace(upper))
	if err != nil {
		return nil, invalid()
	}
	if minPrice.IsNegative() || maxPrice.LessThan(minPrice) {
		return nil, invalid()
	}
	return &PriceRange{Min: minPrice, Max: maxPrice}, nil
}

// Query selects one page of the catalog.
type Query struct {
	SearchTerm string
	Category   string
	Sort       enums.SortKey
	Page       int
	PageSize   int
	PriceRange *PriceRange
}

// Page is one page of a filtered and sorted product view.
type Page struct {
	Items      []ProductView `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	TotalItems int           `json:"total_items"`
}

// View filters, sorts and paginates products. It never mutates the input and
// returns the same page for the same arguments. Unknown sort keys keep the
// catalog order; pages outside 1..TotalPages come back empty.
func View(products []Product, query Query, popularity PopularityFunc) Page {
	if popularity == nil {
		popularity = func(string) int { return 0 }
	}
	pageSize := pagination.NormalizePageSize(query.PageSize, pagination.DefaultPageSize)

	term := strings.ToLower(strings.TrimSpace(query.SearchTerm))
	category := strings.TrimSpace(query.Category)

	matched := make([]ProductView, 0, len(products))
	for _, p := range products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if category != "" && category != CategoryAll && p.Category != category {
			continue
		}
		if query.PriceRange != nil && !query.PriceRange.contains(p.Price) {
			continue
		}
		matched = append(matched, ProductView{Product: p, Popularity: popularity(p.Name)})
	}

	sortViews(matched, query.Sort)

	page := Page{
		Items:      []ProductView{},
		Page:       query.Page,
		PageSize:   pageSize,
		TotalPages: pagination.TotalPages(len(matched), pageSize),
		TotalItems: len(matched),
	}
	if start, end, ok := pagination.Bounds(query.Page, pageSize, len(matched)); ok {
		page.Items = matched[start:end]
	}
	return page
}

func sortViews(items []ProductView, key enums.SortKey) {
	var cmp func(a, b ProductView) int
	switch key {
	case enums.SortPriceAsc:
		cmp = func(a, b ProductView) int { return a.Price.Cmp(b.Price) }
	case enums.SortPriceDesc:
		cmp = func(a, b ProductView) int { return b.Price.Cmp(a.Price) }
	case enums.SortNameAsc, enums.SortNameDesc:
		// collators keep per-call buffers
		col := collate.New(language.English, collate.IgnoreCase)
		if key == enums.SortNameAsc {
			cmp = func(a, b ProductView) int { return col.CompareString(a.Name, b.Name) }
		} else {
			cmp = func(a, b ProductView) int { return col.CompareString(b.Name, a.Name) }
		}
	case enums.SortPopularityDesc:
		cmp = func(a, b ProductView) int { return b.Popularity - a.Popularity }
	case enums.SortNewest:
		cmp = func(a, b ProductView) int { return b.AddedAt.Compare(a.AddedAt) }
	default:
		return
	}
	slices.SortStableFunc(items, cmp)
}
