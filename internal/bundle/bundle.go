// Package bundle models the parts of a built application bundle that payments
// configuration reads and writes.
package bundle

import (
	"encoding/json"
	"maps"

	"github.com/alecthomas/errors"
	"github.com/alecthomas/types/optional"
)

// Definition names a service definition by its fully qualified name.
type Definition struct {
	FullName string `json:"fullName"`
}

// Capability is a service an application provides or uses.
type Capability struct {
	Definition Definition `json:"definition"`
}

type Dependencies struct {
	Provides []Capability `json:"provides,omitempty"`
	Uses     []Capability `json:"uses,omitempty"`
}

// AssetIDs maps asset filenames to content addressed IDs.
type AssetIDs map[string]string

// ID returns the content ID of the named asset.
func (a AssetIDs) ID(name string) (string, bool) {
	id, ok := a[name]
	return id, ok
}

// Bundle is a deployable application bundle.
//
// Bundles are built elsewhere; only the asset manifest, capability declarations and
// payments configuration are modelled here. Everything else in a decoded bundle,
// including its code, is carried through unchanged when it is encoded again.
type Bundle struct {
	AssetIDs     AssetIDs     `json:"assetIds"`
	Dependencies Dependencies `json:"dependencies"`
	// PaymentsConfig is set once, when products are injected into the bundle.
	PaymentsConfig optional.Option[PaymentsConfig] `json:"paymentsConfig"`

	// raw is the document the bundle was decoded from.
	raw map[string]json.RawMessage
}

// bundleFields has Bundle's fields without its JSON methods.
type bundleFields Bundle

func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WithStack(err)
	}
	var fields bundleFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return errors.WithStack(err)
	}
	*b = Bundle(fields)
	b.raw = raw
	return nil
}

// MarshalJSON encodes the bundle over the document it was decoded from.
//
// Capability declarations are written back as they were read, since they may
// carry fields that Definition does not model.
func (b Bundle) MarshalJSON() ([]byte, error) {
	out := maps.Clone(b.raw)
	if out == nil {
		out = map[string]json.RawMessage{}
	}
	set := func(key string, value any) error {
		data, err := json.Marshal(value)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s", key)
		}
		out[key] = data
		return nil
	}
	if _, ok := out["assetIds"]; ok || b.AssetIDs != nil {
		if err := set("assetIds", b.AssetIDs); err != nil {
			return nil, err
		}
	}
	if _, ok := out["dependencies"]; !ok {
		if err := set("dependencies", b.Dependencies); err != nil {
			return nil, err
		}
	}
	if config, ok := b.PaymentsConfig.Get(); ok {
		if err := set("paymentsConfig", config); err != nil {
			return nil, err
		}
	}
	data, err := json.Marshal(out)
	return data, errors.WithStack(err)
}

// HasCapability returns true if the bundle provides or uses the named service definition.
func (b *Bundle) HasCapability(fullName string) bool {
	for _, caps := range [][]Capability{b.Dependencies.Provides, b.Dependencies.Uses} {
		for _, c := range caps {
			if c.Definition.FullName == fullName {
				return true
			}
		}
	}
	return false
}

// AttachPaymentsConfig sets the bundle's payments configuration.
//
// The configuration can only be attached once.
func (b *Bundle) AttachPaymentsConfig(config PaymentsConfig) error {
	if b.PaymentsConfig.Ok() {
		return errors.Errorf("bundle already has a payments config")
	}
	b.PaymentsConfig = optional.Some(config)
	return nil
}
