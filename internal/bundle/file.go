package bundle

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alecthomas/errors"
	"github.com/tidwall/pretty"
)

// Load a bundle from a JSON file.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read bundle")
	}
	bundle := &Bundle{}
	if err := json.Unmarshal(data, bundle); err != nil {
		return nil, errors.Wrapf(err, "%s: invalid bundle", path)
	}
	return bundle, nil
}

// Save a bundle to a JSON file atomically.
//
// An existing file keeps its permissions. New files are created 0644.
func Save(bundle *Bundle, path string) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return errors.Wrap(err, "failed to encode bundle")
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.WithStack(err)
	}
	w, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return errors.WithStack(err)
	}
	defer os.Remove(w.Name()) //nolint:errcheck
	defer w.Close()           //nolint:errcheck

	if _, err := w.Write(pretty.Pretty(data)); err != nil {
		return errors.WithStack(err)
	}
	if err := w.Chmod(mode); err != nil {
		return errors.WithStack(err)
	}
	if err := w.Close(); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.Rename(w.Name(), path))
}
