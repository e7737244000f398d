package main

import (
	"context"
	"fmt"
	"io"

	"github.com/block/bundlepay/internal/bundle"
	"github.com/block/bundlepay/internal/payments"
	"github.com/block/bundlepay/internal/products"
	"github.com/block/bundlepay/internal/projectconfig"
)

type injectCmd struct {
	NoVerifyAssets bool   `help:"Do not check product images against the bundle's asset manifest."`
	Output         string `help:"Write the bundle to this file instead of updating it in place." short:"o" type:"path" placeholder:"FILE"`
	Bundle         string `arg:"" help:"Bundle file to inject products into." type:"existingfile"`
}

func (i *injectCmd) Run(ctx context.Context, config projectconfig.Config, out io.Writer) error {
	catalog, err := loadCatalog(ctx, config)
	if err != nil {
		return err
	}
	if catalog.State() == products.Absent {
		fmt.Fprintf(out, "No products declared, %s unchanged\n", i.Bundle)
		return nil
	}
	b, err := bundle.Load(i.Bundle)
	if err != nil {
		return err
	}
	err = payments.Inject(ctx, b, catalog,
		payments.WithPaymentProcessor(config.PaymentProcessor),
		payments.WithAssetVerification(config.ShouldVerifyAssets() && !i.NoVerifyAssets),
		payments.WithParallelism(config.Parallelism),
	)
	if err != nil {
		return err
	}
	output := i.Output
	if output == "" {
		output = i.Bundle
	}
	if err := bundle.Save(b, output); err != nil {
		return err
	}
	fmt.Fprintf(out, "Injected %d products into %s\n", catalog.Len(), output)
	return nil
}
