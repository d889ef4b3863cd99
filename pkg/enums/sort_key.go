package enums

import "fmt"

// SortKey selects the ordering applied to a product view.
type SortKey string

const (
	SortDefault        SortKey = "default"
	SortPriceAsc       SortKey = "price-asc"
	SortPriceDesc      SortKey = "price-desc"
	SortNameAsc        SortKey = "name-asc"
	SortNameDesc       SortKey = "name-desc"
	SortPopularityDesc SortKey = "popularity-desc"
	SortNewest         SortKey = "newest"
)

var validSortKeys = []SortKey{
	SortDefault,
	SortPriceAsc,
	SortPriceDesc,
	SortNameAsc,
	SortNameDesc,
	SortPopularityDesc,
	SortNewest,
}

// legacy values emitted by the older storefront price dropdown
var sortKeyAliases = map[string]SortKey{
	"low-high": SortPriceAsc,
	"high-low": SortPriceDesc,
}

// String implements fmt.Stringer.
func (s SortKey) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SortKey.
func (s SortKey) IsValid() bool {
	for _, candidate := range validSortKeys {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortKey converts raw input into a SortKey.
func ParseSortKey(value string) (SortKey, error) {
	for _, candidate := range validSortKeys {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	if alias, ok := sortKeyAliases[value]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}
