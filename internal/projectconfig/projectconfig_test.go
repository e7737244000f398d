package projectconfig

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/block/bundlepay"
	"github.com/block/bundlepay/internal/log"
)

func TestProjectConfig(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	actual, err := Load(ctx, "testdata/bundlepay.toml", "")
	assert.NoError(t, err)
	root, err := filepath.Abs("testdata")
	assert.NoError(t, err)
	verify := false
	expected := Config{
		Path:                   filepath.Join(root, "bundlepay.toml"),
		Root:                   root,
		ProductsFile:           "config/products.json",
		AssetsDir:              "static",
		ReservedMetadataPrefix: "acme-",
		PaymentProcessor:       "acme.payments.v1.Processor",
		MinIconSize:            128,
		VerifyAssets:           &verify,
		Parallelism:            4,
	}
	assert.Equal(t, expected, actual)
	assert.False(t, actual.ShouldVerifyAssets())
	assert.Equal(t, filepath.Join(root, "static"), actual.AbsAssetsDir())
}

func TestProjectConfigDefaults(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	dir := t.TempDir()
	actual, err := Load(ctx, "", dir)
	assert.NoError(t, err)
	assert.Equal(t, "", actual.Path)
	assert.Equal(t, dir, actual.Root)
	assert.Equal(t, "src/products.json", actual.ProductsFile)
	assert.Equal(t, "assets", actual.AssetsDir)
	assert.Equal(t, "devvit-", actual.ReservedMetadataPrefix)
	assert.Equal(t, "devvit.payments.v1alpha.PaymentProcessor", actual.PaymentProcessor)
	assert.Equal(t, 256, actual.MinIconSize)
	assert.True(t, actual.ShouldVerifyAssets())
}

func TestProjectConfigDiscovery(t *testing.T) {
	ctx := log.ContextWithNewDefaultLogger(context.Background())
	actual, err := Load(ctx, "", "testdata/nested/a/b")
	assert.NoError(t, err)
	root, err := filepath.Abs("testdata/nested")
	assert.NoError(t, err)
	assert.Equal(t, root, actual.Root)
	assert.Equal(t, "public", actual.AssetsDir)

	t.Setenv("BUNDLEPAY_CONFIG", "testdata/bundlepay.toml")
	actual, err = Load(ctx, "", "testdata/nested/a/b")
	assert.NoError(t, err)
	assert.Equal(t, "static", actual.AssetsDir)
}

func TestProjectLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  string
	}{
		{name: "IsNonExistent", path: "testdata/bundlepay-nonexistent.toml", err: "no such file or directory"},
		{name: "UnknownKeys", path: "testdata/unknown/bundlepay.toml", err: "unknown configuration keys: colour"},
		{name: "EscapesRoot", path: "testdata/escape/bundlepay.toml", err: `assets-dir "../../elsewhere" must be relative to the project root`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(log.ContextWithNewDefaultLogger(context.Background()), test.path, "")
			assert.Error(t, err)
			assert.Contains(t, err.Error(), test.err)
		})
	}
}

func TestProjectConfigChecksMinVersion(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		v       string
		wantErr bool
	}{
		{"DevWithMinVersion", "testdata/minversion/bundlepay.toml", "dev", false},
		{"AboveMinVersion", "testdata/minversion/bundlepay.toml", "1.0.0", false},
		{"BelowMinVersion", "testdata/minversion/bundlepay.toml", "0.0.1", true},
		{"DevWithoutMinVersion", "testdata/bundlepay.toml", "dev", false},
		{"BelowWithoutMinVersion", "testdata/bundlepay.toml", "0.0.1", false},
	}

	oldVersion := bundlepay.Version
	t.Cleanup(func() { bundlepay.Version = oldVersion })

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bundlepay.Version = test.v
			_, err := Load(log.ContextWithNewDefaultLogger(context.Background()), test.path, "")
			if test.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "predates the minimum version")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
