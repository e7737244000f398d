package products

import (
	"strconv"
	"strings"

	"github.com/alecthomas/errors"
)

// ErrorMarker prefixes every validation failure for products.json.
const ErrorMarker = "products.json validation error"

// SchemaValidationError is returned when products.json does not match the product schema.
type SchemaValidationError struct {
	// Diagnostics are the individual structural failures, in stable order.
	Diagnostics []string
	Err         error
}

func (e *SchemaValidationError) Error() string {
	return ErrorMarker + ": " + strings.Join(e.Diagnostics, "; ")
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// ReservedMetadataKeyError lists every metadata key that uses the reserved prefix.
type ReservedMetadataKeyError struct {
	Prefix string
	Keys   []string
}

func (e *ReservedMetadataKeyError) Error() string {
	return ErrorMarker + ": metadata keys must not start with " + strconv.Quote(e.Prefix) + ": " + strings.Join(e.Keys, ", ")
}

// DuplicateSKUError lists every SKU declared by more than one product.
type DuplicateSKUError struct {
	SKUs []string
}

func (e *DuplicateSKUError) Error() string {
	return ErrorMarker + ": duplicate product SKUs: " + strings.Join(e.SKUs, ", ")
}

// IOError is returned when products.json exists but cannot be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return "failed to read " + e.Path + ": " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// IsValidationError returns true if err is any products.json validation failure.
func IsValidationError(err error) bool {
	var (
		schemaErr   *SchemaValidationError
		reservedErr *ReservedMetadataKeyError
		dupErr      *DuplicateSKUError
	)
	return errors.As(err, &schemaErr) || errors.As(err, &reservedErr) || errors.As(err, &dupErr)
}
