package main

import (
	"io"

	"github.com/alecthomas/errors"
	"github.com/tidwall/pretty"

	"github.com/block/bundlepay/internal/products"
)

type schemaCmd struct{}

func (s *schemaCmd) Run(out io.Writer) error {
	_, err := out.Write(pretty.Pretty(products.Schema()))
	return errors.WithStack(err)
}
