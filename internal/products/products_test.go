package products

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/errors"

	"github.com/block/bundlepay/internal/log"
)

const validProducts = `{
  "$schema": "https://developers.reddit.com/schema/products.json",
  "products": [
    {
      "sku": "product-1",
      "displayName": "Gold pack",
      "description": "A pile of gold",
      "price": 25,
      "accountingType": "CONSUMABLE",
      "metadata": {"category": "currency"},
      "images": {"icon": "icon.jpg"}
    },
    {
      "sku": "product-2",
      "displayName": "Ad free",
      "price": 100,
      "accountingType": "DURABLE"
    }
  ]
}`

func TestParse(t *testing.T) {
	catalog, err := Parse([]byte(validProducts), "")
	assert.NoError(t, err)
	assert.Equal(t, Populated, catalog.State())
	assert.Equal(t, []Product{
		{
			SKU:            "product-1",
			DisplayName:    "Gold pack",
			Description:    "A pile of gold",
			Price:          25,
			AccountingType: AccountingConsumable,
			Metadata:       map[string]string{"category": "currency"},
			Images:         map[string]string{"icon": "icon.jpg"},
		},
		{
			SKU:            "product-2",
			DisplayName:    "Ad free",
			Price:          100,
			AccountingType: AccountingDurable,
		},
	}, catalog.Products())
}

func TestParseEmpty(t *testing.T) {
	catalog, err := Parse([]byte(`{"products": []}`), "")
	assert.NoError(t, err)
	assert.Equal(t, Empty, catalog.State())
	assert.Equal(t, 0, catalog.Len())
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{name: "PriceNotANumber",
			input:    `{"products": [{"sku": "a", "displayName": "A", "price": "not a number", "accountingType": "INSTANT"}]}`,
			contains: []string{"/products/0/price"}},
		{name: "NegativePrice",
			input:    `{"products": [{"sku": "a", "displayName": "A", "price": -1, "accountingType": "INSTANT"}]}`,
			contains: []string{"/products/0/price"}},
		{name: "UnknownAccountingType",
			input:    `{"products": [{"sku": "a", "displayName": "A", "price": 1, "accountingType": "FOREVER"}]}`,
			contains: []string{"/products/0/accountingType"}},
		{name: "MissingSKU",
			input:    `{"products": [{"displayName": "A", "price": 1, "accountingType": "INSTANT"}]}`,
			contains: []string{"/products/0", "sku"}},
		{name: "UnknownField",
			input:    `{"products": [{"sku": "a", "displayName": "A", "price": 1, "accountingType": "INSTANT", "colour": "red"}]}`,
			contains: []string{"colour"}},
		{name: "MetadataValueNotString",
			input:    `{"products": [{"sku": "a", "displayName": "A", "price": 1, "accountingType": "INSTANT", "metadata": {"n": 1}}]}`,
			contains: []string{"/products/0/metadata/n"}},
		{name: "MissingProducts",
			input:    `{}`,
			contains: []string{"products"}},
		{name: "MultipleProblems",
			input: `{"products": [
				{"sku": "a", "displayName": "A", "price": "free", "accountingType": "INSTANT"},
				{"sku": "b", "displayName": "B", "price": 1, "accountingType": "SOMETIMES"}
			]}`,
			contains: []string{"/products/0/price", "/products/1/accountingType"}},
		{name: "NotJSON",
			input:    `products: []`,
			contains: []string{"invalid JSON"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			catalog, err := Parse([]byte(test.input), "")
			var schemaErr *SchemaValidationError
			assert.True(t, errors.As(err, &schemaErr), "expected SchemaValidationError, got %T: %v", err, err)
			assert.NotEqual(t, 0, len(schemaErr.Diagnostics))
			assert.True(t, strings.HasPrefix(err.Error(), "products.json validation error: "), "%s", err)
			for _, want := range test.contains {
				assert.Contains(t, err.Error(), want)
			}
			assert.Equal(t, Absent, catalog.State())
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestParseReservedMetadataKeys(t *testing.T) {
	input := `{"products": [
		{"sku": "a", "displayName": "A", "price": 1, "accountingType": "INSTANT", "metadata": {"devvit-z": "1", "ok": "2", "devvit-x": "3"}},
		{"sku": "b", "displayName": "B", "price": 1, "accountingType": "INSTANT", "metadata": {"devvit-x": "4", "devvit-y": "5"}}
	]}`
	_, err := Parse([]byte(input), "")
	var reservedErr *ReservedMetadataKeyError
	assert.True(t, errors.As(err, &reservedErr), "expected ReservedMetadataKeyError, got %T", err)
	assert.Equal(t, []string{"devvit-x", "devvit-z", "devvit-y"}, reservedErr.Keys)
	assert.EqualError(t, err, `products.json validation error: metadata keys must not start with "devvit-": devvit-x, devvit-z, devvit-y`)

	_, err = Parse([]byte(`{"products": [{"sku": "a", "displayName": "A", "price": 1, "accountingType": "INSTANT", "metadata": {"devvit": "1", "x-devvit-y": "2"}}]}`), "")
	assert.NoError(t, err)

	_, err = Parse([]byte(`{"products": [{"sku": "a", "displayName": "A", "price": 1, "accountingType": "INSTANT", "metadata": {"acme-internal": "1"}}]}`), "acme-")
	assert.EqualError(t, err, `products.json validation error: metadata keys must not start with "acme-": acme-internal`)
}

func TestParseDuplicateSKUs(t *testing.T) {
	input := `{"products": [
		{"sku": "a", "displayName": "A", "price": 1, "accountingType": "INSTANT"},
		{"sku": "b", "displayName": "B", "price": 1, "accountingType": "INSTANT"},
		{"sku": "a", "displayName": "A again", "price": 2, "accountingType": "INSTANT"},
		{"sku": "a", "displayName": "A thrice", "price": 3, "accountingType": "INSTANT"}
	]}`
	catalog, err := Parse([]byte(input), "")
	assert.EqualError(t, err, "products.json validation error: duplicate product SKUs: a")
	assert.Equal(t, Absent, catalog.State())
}

type errFS struct{ err error }

func (e errFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: e.err}
}

func TestLoader(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())

	t.Run("Absent", func(t *testing.T) {
		catalog, err := Loader{FS: fstest.MapFS{}}.Load(ctx)
		assert.NoError(t, err)
		assert.Equal(t, Absent, catalog.State())
	})

	t.Run("Populated", func(t *testing.T) {
		fsys := fstest.MapFS{"src/products.json": {Data: []byte(validProducts)}}
		catalog, err := Loader{FS: fsys}.Load(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 2, catalog.Len())
	})

	t.Run("CustomPath", func(t *testing.T) {
		fsys := fstest.MapFS{"products.json": {Data: []byte(`{"products": []}`)}}
		catalog, err := Loader{FS: fsys, Path: "products.json"}.Load(ctx)
		assert.NoError(t, err)
		assert.Equal(t, Empty, catalog.State())
	})

	t.Run("InvalidPropagatesUnchanged", func(t *testing.T) {
		fsys := fstest.MapFS{"src/products.json": {Data: []byte(`{"products": [{"sku": "a", "displayName": "A", "price": "not a number", "accountingType": "INSTANT"}]}`)}}
		catalog, err := Loader{FS: fsys}.Load(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "products.json validation error")
		var schemaErr *SchemaValidationError
		assert.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, Absent, catalog.State())
	})

	t.Run("IOError", func(t *testing.T) {
		_, err := Loader{FS: errFS{err: fs.ErrPermission}}.Load(ctx)
		var ioErr *IOError
		assert.True(t, errors.As(err, &ioErr), "expected IOError, got %T", err)
		assert.Equal(t, "src/products.json", ioErr.Path)
		assert.IsError(t, err, fs.ErrPermission)
		assert.False(t, IsValidationError(err))
	})
}

func TestProductImages(t *testing.T) {
	product := Product{SKU: "a", Images: map[string]string{"icon": "icon.png", "banner": "banner.png"}}
	icon, ok := product.Icon().Get()
	assert.True(t, ok)
	assert.Equal(t, "icon.png", icon)
	assert.Equal(t, []string{"banner.png", "icon.png"}, product.ImageFiles())

	_, ok = Product{SKU: "b"}.Icon().Get()
	assert.False(t, ok)
	assert.Equal(t, []string{}, Product{SKU: "b"}.ImageFiles())
}

func TestSchemaIsValidJSON(t *testing.T) {
	assert.Contains(t, string(Schema()), `"accountingType"`)
	_, err := compiledSchema()
	assert.NoError(t, err)
}
