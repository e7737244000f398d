package payments

import (
	"strings"

	"github.com/alecthomas/errors"
)

var (
	// ErrMissingCapability is returned when products are declared but the app has no payment processor.
	ErrMissingCapability = errors.New("products are declared but your app does not handle payment processing, add a payment processor to your app")
	// ErrEmptyCatalog is returned when the app handles payments but sells nothing.
	ErrEmptyCatalog = errors.New("your app handles payment processing but you must specify products in the config file")
)

// MissingAssetsError lists every product image that is not in the bundle's asset manifest.
type MissingAssetsError struct {
	// Files in the order they are first referenced.
	Files []string
}

func (e *MissingAssetsError) Error() string {
	return "product images were not found in the bundle assets: " + strings.Join(e.Files, ", ")
}
