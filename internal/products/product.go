// Package products loads and validates the in-app products an application declares.
package products

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/alecthomas/types/optional"
)

// IconSlot is the image slot holding a product's icon.
const IconSlot = "icon"

// AccountingType describes how a purchase of a product is accounted for.
type AccountingType string

const (
	AccountingInstant    AccountingType = "INSTANT"
	AccountingDurable    AccountingType = "DURABLE"
	AccountingConsumable AccountingType = "CONSUMABLE"
)

// Product is a sellable unit declared in products.json.
type Product struct {
	// SKU identifies the product and is stable across versions of the app.
	SKU            string         `json:"sku"`
	DisplayName    string         `json:"displayName"`
	Description    string         `json:"description,omitempty"`
	Price          float64        `json:"price"`
	AccountingType AccountingType `json:"accountingType"`
	// Metadata is free-form annotation. Keys must not use the reserved prefix.
	Metadata map[string]string `json:"metadata,omitempty"`
	// Images maps an image slot (eg. "icon") to an asset filename.
	Images map[string]string `json:"images,omitempty"`
}

func (p Product) String() string { return fmt.Sprintf("%s (%s)", p.SKU, p.DisplayName) }

// Clone returns a copy of p that shares no maps with it.
func (p Product) Clone() Product {
	p.Metadata = maps.Clone(p.Metadata)
	p.Images = maps.Clone(p.Images)
	return p
}

// Icon returns the asset filename of the product's icon, if any.
func (p Product) Icon() optional.Option[string] {
	if icon, ok := p.Images[IconSlot]; ok {
		return optional.Some(icon)
	}
	return optional.None[string]()
}

// ImageFiles returns the asset filenames referenced by the product, ordered by slot name.
func (p Product) ImageFiles() []string {
	slots := make([]string, 0, len(p.Images))
	for slot := range p.Images {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	files := make([]string, len(slots))
	for i, slot := range slots {
		files[i] = p.Images[slot]
	}
	return files
}

// State distinguishes a project without products.json from one that declares no products.
type State int

const (
	// Absent means the project has no products.json.
	Absent State = iota
	// Empty means products.json exists but lists no products.
	Empty
	// Populated means products.json lists at least one product.
	Populated
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Catalog is the ordered list of products declared by one application.
//
// The zero value is an absent catalog.
type Catalog struct {
	present  bool
	products []Product
}

// NewCatalog returns a present catalog holding products in order.
func NewCatalog(products ...Product) Catalog {
	return Catalog{present: true, products: slices.Clone(products)}
}

func (c Catalog) State() State {
	switch {
	case !c.present:
		return Absent
	case len(c.products) == 0:
		return Empty
	default:
		return Populated
	}
}

// Products returns a copy of the products in declaration order.
func (c Catalog) Products() []Product { return slices.Clone(c.products) }

func (c Catalog) Len() int { return len(c.products) }
