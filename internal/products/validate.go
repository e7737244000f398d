package products

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/alecthomas/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	islices "github.com/block/bundlepay/internal/slices"
)

// DefaultReservedPrefix is the metadata key prefix reserved for the platform.
const DefaultReservedPrefix = "devvit-"

const schemaURL = "products.schema.json"

//go:embed products.schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, errors.Wrap(err, "invalid products schema")
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid products schema")
	}
	return schema, nil
})

// Schema returns the JSON Schema that products.json must conform to.
func Schema() []byte { return bytes.Clone(schemaJSON) }

type productsFile struct {
	Schema   string    `json:"$schema,omitempty"`
	Products []Product `json:"products"`
}

// Parse validates the contents of a products.json file.
//
// Validation is all or nothing: if any product is invalid no catalog is returned.
// An empty reservedPrefix uses DefaultReservedPrefix.
func Parse(data []byte, reservedPrefix string) (Catalog, error) {
	if reservedPrefix == "" {
		reservedPrefix = DefaultReservedPrefix
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Catalog{}, &SchemaValidationError{Diagnostics: []string{"invalid JSON: " + err.Error()}, Err: err}
	}
	if err := validateSchema(raw); err != nil {
		return Catalog{}, err
	}
	var file productsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Catalog{}, &SchemaValidationError{Diagnostics: []string{err.Error()}, Err: err}
	}
	if keys := reservedKeys(file.Products, reservedPrefix); len(keys) > 0 {
		return Catalog{}, &ReservedMetadataKeyError{Prefix: reservedPrefix, Keys: keys}
	}
	if skus := duplicateSKUs(file.Products); len(skus) > 0 {
		return Catalog{}, &DuplicateSKUError{SKUs: skus}
	}
	return NewCatalog(file.Products...), nil
}

func validateSchema(raw any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	err = schema.Validate(raw)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &SchemaValidationError{Diagnostics: []string{err.Error()}, Err: err}
	}
	diagnostics := islices.Unique(leafDiagnostics(verr))
	sort.Strings(diagnostics)
	return &SchemaValidationError{Diagnostics: diagnostics, Err: err}
}

// leafDiagnostics flattens a validation error tree into "location: message" lines.
func leafDiagnostics(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		location := verr.InstanceLocation
		if location == "" {
			location = "/"
		}
		return []string{location + ": " + verr.Message}
	}
	var out []string
	for _, cause := range verr.Causes {
		out = append(out, leafDiagnostics(cause)...)
	}
	return out
}

func reservedKeys(products []Product, prefix string) []string {
	var keys []string
	for _, product := range products {
		var productKeys []string
		for key := range product.Metadata {
			if strings.HasPrefix(key, prefix) {
				productKeys = append(productKeys, key)
			}
		}
		sort.Strings(productKeys)
		keys = append(keys, productKeys...)
	}
	return islices.Unique(keys)
}

func duplicateSKUs(products []Product) []string {
	seen := map[string]int{}
	var dups []string
	for _, product := range products {
		seen[product.SKU]++
		if seen[product.SKU] == 2 {
			dups = append(dups, product.SKU)
		}
	}
	return dups
}
