package bundle

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/alecthomas/errors"

	"github.com/block/bundlepay/internal/products"
)

// PaymentsConfig is the validated set of products sold by a bundle, keyed by SKU.
//
// It is immutable once created.
type PaymentsConfig struct {
	products map[string]products.Product
}

// NewPaymentsConfig keys products by SKU. Later products replace earlier ones with the same SKU.
func NewPaymentsConfig(items []products.Product) PaymentsConfig {
	out := make(map[string]products.Product, len(items))
	for _, p := range items {
		out[p.SKU] = p.Clone()
	}
	return PaymentsConfig{products: out}
}

// Get the product with the given SKU.
func (c PaymentsConfig) Get(sku string) (products.Product, bool) {
	p, ok := c.products[sku]
	return p.Clone(), ok
}

// SKUs returns every SKU in sorted order.
func (c PaymentsConfig) SKUs() []string {
	return slices.Sorted(maps.Keys(c.products))
}

func (c PaymentsConfig) Len() int { return len(c.products) }

// Products returns a copy of the SKU to product mapping.
func (c PaymentsConfig) Products() map[string]products.Product {
	out := make(map[string]products.Product, len(c.products))
	for sku, p := range c.products {
		out[sku] = p.Clone()
	}
	return out
}

func (c PaymentsConfig) MarshalJSON() ([]byte, error) {
	out := c.products
	if out == nil {
		out = map[string]products.Product{}
	}
	data, err := json.Marshal(out)
	return data, errors.WithStack(err)
}

func (c *PaymentsConfig) UnmarshalJSON(data []byte) error {
	var out map[string]products.Product
	if err := json.Unmarshal(data, &out); err != nil {
		return errors.Wrap(err, "invalid payments config")
	}
	for sku, p := range out {
		if p.SKU != sku {
			return errors.Errorf("payments config key %q does not match product SKU %q", sku, p.SKU)
		}
	}
	c.products = out
	return nil
}
