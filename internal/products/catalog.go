package product

import (
	_ "embed"
	"encoding/json"
	"os"
	"slices"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
)

//go:embed catalog.json
var embeddedCatalog []byte

var validate = validator.New()

// Catalog is the read-only product list served by the storefront.
type Catalog struct {
	products []Product
}

// LoadCatalog reads the catalog from path, or the built-in catalog when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	raw := embeddedCatalog
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read catalog")
		}
		raw = data
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates a JSON product array.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog")
	}
	seen := make(map[string]struct{}, len(products))
	for i := range products {
		products[i].Name = strings.TrimSpace(products[i].Name)
		if err := validate.Struct(products[i]); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid catalog product").
				WithDetails(map[string]any{"index": i})
		}
		if products[i].Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog price must be non-negative").
				WithDetails(map[string]any{"product": products[i].Name})
		}
		if _, dup := seen[products[i].Name]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate catalog product").
				WithDetails(map[string]any{"product": products[i].Name})
		}
		seen[products[i].Name] = struct{}{}
	}
	return &Catalog{products: products}, nil
}

// Products returns a copy of the catalog in its original order.
func (c *Catalog) Products() []Product {
	return slices.Clone(c.products)
}

// Find returns the product with the exact name.
func (c *Catalog) Find(name string) (Product, bool) {
	for _, p := range c.products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}

// Categories lists distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	var out []string
	for _, p := range c.products {
		if !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	return out
}
