package bundle

import (
	"io/fs"

	"github.com/alecthomas/errors"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/block/bundlepay/internal/sha256"
)

// ScanAssets builds an asset manifest for every file in fsys, keyed by slash
// separated path and identified by the SHA256 of its content.
//
// Bundles built by the build pipeline carry their own manifest. This is for checking
// products against an assets directory before a bundle exists.
func ScanAssets(fsys fs.FS) (AssetIDs, error) {
	files, err := doublestar.Glob(fsys, "**", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list assets")
	}
	out := make(AssetIDs, len(files))
	for _, name := range files {
		sum, err := hashFile(fsys, name)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		out[name] = sum.String()
	}
	return out, nil
}

func hashFile(fsys fs.FS, name string) (sha256.SHA256, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return sha256.SHA256{}, errors.WithStack(err)
	}
	defer f.Close() //nolint:errcheck
	return sha256.SumReader(f)
}
