package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/block/bundlepay/internal/bundle"
	"github.com/block/bundlepay/internal/log"
	"github.com/block/bundlepay/internal/payments"
	"github.com/block/bundlepay/internal/products"
	"github.com/block/bundlepay/internal/projectconfig"
)

type checkCmd struct{}

func (c *checkCmd) Run(ctx context.Context, config projectconfig.Config, out io.Writer) error {
	logger := log.FromContext(ctx)
	catalog, err := loadCatalog(ctx, config)
	if err != nil {
		return err
	}
	switch catalog.State() {
	case products.Absent:
		fmt.Fprintf(out, "No products declared (%s not found)\n", config.ProductsFile)
		return nil
	case products.Empty:
		return payments.ErrEmptyCatalog
	case products.Populated:
	}

	assets := os.DirFS(config.AbsAssetsDir())
	if config.ShouldVerifyAssets() {
		assetIDs, err := bundle.ScanAssets(assets)
		if err != nil {
			return err
		}
		logger.Debugf("Found %d assets in %s", len(assetIDs), config.AssetsDir)
		if err := payments.CheckAssets(catalog, assetIDs); err != nil {
			return err
		}
	}
	if err := payments.ValidateIcons(ctx, assets, catalog, config.MinIconSize, config.Parallelism); err != nil {
		return err
	}
	for _, p := range catalog.Products() {
		fmt.Fprintf(out, "%s\t%s\t%g\t%s\n", p.SKU, p.DisplayName, p.Price, p.AccountingType)
	}
	fmt.Fprintf(out, "%d products OK\n", catalog.Len())
	return nil
}

func loadCatalog(ctx context.Context, config projectconfig.Config) (products.Catalog, error) {
	loader := products.Loader{
		FS:             os.DirFS(config.Root),
		Path:           config.ProductsFile,
		ReservedPrefix: config.ReservedMetadataPrefix,
	}
	return loader.Load(ctx)
}
