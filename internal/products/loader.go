package products

import (
	"context"
	"io/fs"

	"github.com/alecthomas/errors"

	"github.com/block/bundlepay/internal/log"
)

// DefaultPath is where products.json lives, relative to the project root.
const DefaultPath = "src/products.json"

// Loader reads products.json from a project.
type Loader struct {
	// FS is rooted at the project root.
	FS fs.FS
	// Path of products.json within FS. Defaults to DefaultPath.
	Path string
	// ReservedPrefix for metadata keys. Defaults to DefaultReservedPrefix.
	ReservedPrefix string
}

// Load the catalog.
//
// A missing products.json is not an error: the returned catalog is Absent.
func (l Loader) Load(ctx context.Context) (Catalog, error) {
	logger := log.FromContext(ctx).Scope("products")
	path := l.Path
	if path == "" {
		path = DefaultPath
	}
	data, err := fs.ReadFile(l.FS, path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debugf("No %s, application declares no products", path)
		return Catalog{}, nil
	} else if err != nil {
		return Catalog{}, &IOError{Path: path, Err: err}
	}
	catalog, err := Parse(data, l.ReservedPrefix)
	if err != nil {
		return Catalog{}, err
	}
	logger.Debugf("Loaded %d products from %s", catalog.Len(), path)
	return catalog, nil
}
