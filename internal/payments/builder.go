// Package payments builds the payments configuration for a bundle from its product catalog.
package payments

import (
	"context"
	"io/fs"
	"runtime"

	"github.com/alecthomas/errors"
	"github.com/alecthomas/types/optional"
	"golang.org/x/sync/errgroup"

	"github.com/block/bundlepay/internal/bundle"
	"github.com/block/bundlepay/internal/icon"
	"github.com/block/bundlepay/internal/log"
	"github.com/block/bundlepay/internal/products"
	"github.com/block/bundlepay/internal/slices"
)

// DefaultPaymentProcessor is the fully qualified name of the payment processor service definition.
const DefaultPaymentProcessor = "devvit.payments.v1alpha.PaymentProcessor"

type localImages struct {
	fsys    fs.FS
	minSize int
}

type options struct {
	processor    string
	verifyAssets bool
	local        optional.Option[localImages]
	parallelism  int
}

type Option func(*options)

// WithoutAssetVerification skips checking product images against the bundle's asset manifest.
//
// Use this when assets have not yet been added to the manifest.
func WithoutAssetVerification() Option {
	return func(o *options) { o.verifyAssets = false }
}

// WithAssetVerification sets whether product images are checked against the bundle's asset manifest.
func WithAssetVerification(verify bool) Option {
	return func(o *options) { o.verifyAssets = verify }
}

// WithPaymentProcessor overrides the service definition that marks an app as handling payments.
func WithPaymentProcessor(fullName string) Option {
	return func(o *options) { o.processor = fullName }
}

// WithLocalImages validates each product icon from fsys before the bundle is built.
func WithLocalImages(fsys fs.FS, minSize int) Option {
	return func(o *options) { o.local = optional.Some(localImages{fsys: fsys, minSize: minSize}) }
}

// WithParallelism limits how many icons are validated concurrently.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

func newOptions(opts []Option) options {
	o := options{
		processor:    DefaultPaymentProcessor,
		verifyAssets: true,
		parallelism:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Build validates catalog against b and returns its payments configuration.
//
// Checks run in order and the first failure is returned: the payment processor
// capability, a non-empty catalog, then product images. The bundle is not modified.
func Build(ctx context.Context, b *bundle.Bundle, catalog products.Catalog, opts ...Option) (bundle.PaymentsConfig, error) {
	o := newOptions(opts)
	logger := log.FromContext(ctx).Scope("payments")

	if catalog.State() == products.Absent {
		return bundle.PaymentsConfig{}, errors.Errorf("cannot build payments config without a products catalog")
	}
	if !b.HasCapability(o.processor) {
		return bundle.PaymentsConfig{}, errors.WithStack(ErrMissingCapability)
	}
	if catalog.State() == products.Empty {
		return bundle.PaymentsConfig{}, errors.WithStack(ErrEmptyCatalog)
	}
	if o.verifyAssets {
		if err := CheckAssets(catalog, b.AssetIDs); err != nil {
			return bundle.PaymentsConfig{}, err
		}
	} else {
		logger.Debugf("Skipping asset verification")
	}
	if local, ok := o.local.Get(); ok {
		if err := ValidateIcons(ctx, local.fsys, catalog, local.minSize, o.parallelism); err != nil {
			return bundle.PaymentsConfig{}, err
		}
	}

	items := catalog.Products()
	seen := map[string]bool{}
	for _, p := range items {
		if seen[p.SKU] {
			logger.Warnf("Duplicate SKU %q, the last declaration wins", p.SKU)
		}
		seen[p.SKU] = true
	}
	config := bundle.NewPaymentsConfig(items)
	logger.Debugf("Built payments config with %d products", config.Len())
	return config, nil
}

// Inject builds the payments configuration for catalog and attaches it to b.
//
// An absent catalog is a no-op. On failure b is left untouched.
func Inject(ctx context.Context, b *bundle.Bundle, catalog products.Catalog, opts ...Option) error {
	if catalog.State() == products.Absent {
		log.FromContext(ctx).Scope("payments").Debugf("No products declared, not injecting payments config")
		return nil
	}
	config, err := Build(ctx, b, catalog, opts...)
	if err != nil {
		return err
	}
	return b.AttachPaymentsConfig(config)
}

// CheckAssets returns a MissingAssetsError naming every image referenced by the
// catalog that is not in assets.
func CheckAssets(catalog products.Catalog, assets bundle.AssetIDs) error {
	var missing []string
	for _, p := range catalog.Products() {
		for _, file := range p.ImageFiles() {
			if _, ok := assets.ID(file); !ok {
				missing = append(missing, file)
			}
		}
	}
	if len(missing) > 0 {
		return &MissingAssetsError{Files: slices.Unique(missing)}
	}
	return nil
}

// ValidateIcons validates every product icon in fsys concurrently.
//
// All failures are returned, in catalog order.
func ValidateIcons(ctx context.Context, fsys fs.FS, catalog products.Catalog, minSize, parallelism int) error {
	logger := log.FromContext(ctx).Scope("payments")
	items := catalog.Products()
	errs := make([]error, len(items))
	wg, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		wg.SetLimit(parallelism)
	}
	for i, p := range items {
		name, ok := p.Icon().Get()
		if !ok {
			continue
		}
		wg.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Tracef("Validating icon %s for %s", name, p.SKU)
			if err := icon.Validate(fsys, name, minSize); err != nil {
				errs[i] = errors.Wrapf(err, "product %q", p.SKU)
			}
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return errors.WithStack(err)
	}
	errs = slices.Filter(errs, func(err error) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
