package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/block/bundlepay"
	"github.com/block/bundlepay/internal/log"
	"github.com/block/bundlepay/internal/projectconfig"
)

var cli struct {
	Version   kong.VersionFlag `help:"Show version information."`
	LogConfig log.Config       `embed:"" prefix:"log-" group:"Logging:"`
	Config    string           `help:"Path to ${configfile}. Discovered from the project root if not set." env:"BUNDLEPAY_CONFIG" placeholder:"FILE"`
	Root      string           `help:"Project root directory." default:"." type:"existingdir"`

	Check  checkCmd  `cmd:"" help:"Validate the project's products and product icons."`
	Inject injectCmd `cmd:"" help:"Inject the project's products into a built bundle."`
	Schema schemaCmd `cmd:"" help:"Print the JSON Schema for products.json."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Description(`bundlepay - validate in-app products and attach them to application bundles`),
		kong.UsageOnError(),
		kong.Vars{
			"version":    bundlepay.Version,
			"configfile": projectconfig.FileName,
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.Configure(os.Stderr, cli.LogConfig)
	ctx = log.ContextWithLogger(ctx, logger)

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigch
		logger.Debugf("Terminating with signal %s", sig)
		cancel()
		os.Exit(1)
	}()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(os.Stdout, (*io.Writer)(nil))
	err := kctx.BindToProvider(func() (projectconfig.Config, error) {
		return projectconfig.Load(ctx, cli.Config, cli.Root)
	})
	kctx.FatalIfErrorf(err)

	err = kctx.Run(ctx)
	kctx.FatalIfErrorf(err)
}
