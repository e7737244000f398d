package projectconfig

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/errors"
	"github.com/alecthomas/types/optional"

	"github.com/block/bundlepay"
	"github.com/block/bundlepay/internal/icon"
	"github.com/block/bundlepay/internal/log"
	"github.com/block/bundlepay/internal/payments"
	"github.com/block/bundlepay/internal/products"
)

// FileName of the project config, found in the project root.
const FileName = "bundlepay.toml"

// Config is the bundlepay configuration for a project.
type Config struct {
	// Path to the config file. Empty if the project has no config file.
	Path string `toml:"-"`
	// Root directory of the project.
	Root string `toml:"-"`

	// ProductsFile is the path of products.json relative to the project root.
	ProductsFile string `toml:"products-file"`
	// AssetsDir is the directory holding product images, relative to the project root.
	AssetsDir string `toml:"assets-dir"`
	// ReservedMetadataPrefix may not begin any product metadata key.
	ReservedMetadataPrefix string `toml:"reserved-metadata-prefix"`
	// PaymentProcessor is the fully qualified service definition that handles payments.
	PaymentProcessor string `toml:"payment-processor"`
	MinIconSize      int    `toml:"min-icon-size"`
	// VerifyAssets checks product images against the bundle's asset manifest. Defaults to true.
	VerifyAssets *bool `toml:"verify-assets"`
	// Parallelism bounds concurrent icon validation. Zero uses the number of CPUs.
	Parallelism int    `toml:"parallelism"`
	MinVersion  string `toml:"min-version"`
}

// FillDefaults sets values for empty fields.
func (c Config) FillDefaults() Config {
	if c.ProductsFile == "" {
		c.ProductsFile = products.DefaultPath
	}
	if c.AssetsDir == "" {
		c.AssetsDir = "assets"
	}
	if c.ReservedMetadataPrefix == "" {
		c.ReservedMetadataPrefix = products.DefaultReservedPrefix
	}
	if c.PaymentProcessor == "" {
		c.PaymentProcessor = payments.DefaultPaymentProcessor
	}
	if c.MinIconSize == 0 {
		c.MinIconSize = icon.MinSize
	}
	if c.VerifyAssets == nil {
		verify := true
		c.VerifyAssets = &verify
	}
	return c
}

// ShouldVerifyAssets returns the effective verify-assets setting.
func (c Config) ShouldVerifyAssets() bool {
	return c.VerifyAssets == nil || *c.VerifyAssets
}

// AbsAssetsDir returns the absolute path of the assets directory.
func (c Config) AbsAssetsDir() string {
	return filepath.Join(c.Root, c.AssetsDir)
}

// DefaultConfigPath returns the absolute default path for the project config file, if one exists.
//
// The BUNDLEPAY_CONFIG environment variable takes precedence. Otherwise the nearest
// bundlepay.toml in dir or its parents is used.
func DefaultConfigPath(dir string) optional.Option[string] {
	if envar, ok := os.LookupEnv("BUNDLEPAY_CONFIG"); ok {
		absPath, err := filepath.Abs(envar)
		if err != nil {
			return optional.None[string]()
		}
		return optional.Some(absPath)
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return optional.None[string]()
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return optional.Some(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return optional.None[string]()
		}
		dir = parent
	}
}

// Load project config.
//
// If path is empty the config is discovered from projectRoot with DefaultConfigPath. If no
// config file exists, defaults rooted at projectRoot are returned.
func Load(ctx context.Context, path, projectRoot string) (Config, error) {
	logger := log.FromContext(ctx)
	if path == "" {
		maybePath, ok := DefaultConfigPath(projectRoot).Get()
		if !ok {
			root, err := filepath.Abs(projectRoot)
			if err != nil {
				return Config{}, errors.WithStack(err)
			}
			logger.Debugf("No %s found, using defaults", FileName)
			return Config{Root: root}.FillDefaults(), nil
		}
		path = maybePath
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return Config{}, errors.WithStack(err)
	}
	logger.Tracef("Loading config from %s", path)
	config := Config{}
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%s", path)
	}
	if len(md.Undecoded()) > 0 {
		keys := make([]string, len(md.Undecoded()))
		for i, key := range md.Undecoded() {
			keys[i] = key.String()
		}
		return Config{}, errors.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	if !bundlepay.IsVersionAtLeastMin(bundlepay.Version, config.MinVersion) {
		return config, errors.Errorf("bundlepay version %q predates the minimum version %q", bundlepay.Version, config.MinVersion)
	}
	config.Path = path
	config.Root = filepath.Dir(path)
	for key, rel := range map[string]string{"products-file": config.ProductsFile, "assets-dir": config.AssetsDir} {
		if rel == "" {
			continue
		}
		if filepath.IsAbs(rel) || !isBeneath(config.Root, rel) {
			return Config{}, errors.Errorf("%s %q must be relative to the project root %q", key, rel, config.Root)
		}
	}
	if config.MinIconSize < 0 {
		return Config{}, errors.Errorf("min-icon-size must be positive, got %d", config.MinIconSize)
	}
	return config.FillDefaults(), nil
}

func isBeneath(root, path string) bool {
	resolved := filepath.Clean(filepath.Join(root, path))
	return strings.HasPrefix(resolved, strings.TrimSuffix(root, "/")+"/")
}
