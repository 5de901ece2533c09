package library

import (
	"fmt"
	"strings"

	"github.com/dgallion1/libgest/internal/libdoc"
	"github.com/dgallion1/libgest/internal/merge"
	"github.com/dgallion1/libgest/internal/naming"
	"github.com/dgallion1/libgest/internal/shape"
)

// Device is one component to export: a named part with its symbol and
// footprint associations.
type Device struct {
	Name          string             `json:"name" yaml:"name"`
	UUID          string             `json:"uuid,omitempty" yaml:"uuid"`
	Designator    string             `json:"designator,omitempty" yaml:"designator"`
	LCSC          string             `json:"lcsc,omitempty" yaml:"lcsc"`
	SupplierID    string             `json:"supplierId,omitempty" yaml:"supplierId"`
	Manufacturer  string             `json:"manufacturer,omitempty" yaml:"manufacturer"`
	Description   string             `json:"description,omitempty" yaml:"description"`
	FootprintName string             `json:"footprintName,omitempty" yaml:"footprintName"`
	Symbol        *libdoc.LibraryRef `json:"symbol,omitempty" yaml:"symbol"`
	Footprint     *libdoc.LibraryRef `json:"footprint,omitempty" yaml:"footprint"`
}

// DisplayName falls back to the device UUID.
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.UUID
}

// Missing names the absent associations ("symbol", "footprint" or
// "symbol & footprint"), or "" when both are present.
func (d Device) Missing() string {
	var parts []string
	if d.Symbol == nil || !d.Symbol.Valid() {
		parts = append(parts, "symbol")
	}
	if d.Footprint == nil || !d.Footprint.Valid() {
		parts = append(parts, "footprint")
	}
	return strings.Join(parts, " & ")
}

// LCSCID picks the first valid LCSC id among the device's supplier fields.
// Fields holding free text ("LCSC: C6186 / Mouser ...") fall back to the
// first id found inside them.
func (d Device) LCSCID() string {
	if id := naming.FirstLCSCID(d.LCSC, d.SupplierID); id != "" {
		return id
	}
	if ids := naming.ExtractLCSCIDs(d.LCSC + " " + d.SupplierID); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// IDPart is the LCSC id, or the shortened device UUID.
func (d Device) IDPart() string {
	if id := d.LCSCID(); id != "" {
		return id
	}
	uuid := d.UUID
	if uuid == "" && d.Symbol != nil {
		uuid = d.Symbol.UUID
	}
	return naming.ShortenUUID(uuid)
}

// Component is a device with both documents merged into typed shapes.
type Component struct {
	Name            string           `json:"name"`
	FootprintName   string           `json:"footprintName"`
	Prefix          string           `json:"prefix"`
	LCSC            string           `json:"lcsc,omitempty"`
	Device          Device           `json:"device"`
	SymbolOrigin    shape.Point      `json:"symbolOrigin"`
	FootprintOrigin shape.Point      `json:"footprintOrigin"`
	Symbol          *shape.Symbol    `json:"symbol"`
	Footprint       *shape.Footprint `json:"footprint"`
}

// Names reserves unique symbol and footprint names across one batch.
type Names struct {
	Symbols    naming.NameSet
	Footprints naming.NameSet
}

func NewNames() *Names {
	return &Names{Symbols: naming.NameSet{}, Footprints: naming.NameSet{}}
}

// FootprintHint is the footprint's display name before uniquing: the
// device's explicit name, then the head's "package" or "name" parameter,
// then Footprint_<short uuid>.
func FootprintHint(d Device, fp *libdoc.Extraction) string {
	if d.FootprintName != "" {
		return d.FootprintName
	}
	if s, ok := fp.Head.CPara("package"); ok {
		return s
	}
	if s, ok := fp.Head.CPara("name"); ok {
		return s
	}
	var uuid string
	if d.Footprint != nil {
		uuid = d.Footprint.UUID
	}
	return "Footprint_" + naming.ShortenUUID(uuid)
}

// BuildComponent merges both documents and assigns batch-unique names.
func BuildComponent(d Device, sym, fp *libdoc.Extraction, m *merge.Merger, names *Names) (*Component, error) {
	symbol, err := m.Symbol(sym.Shape)
	if err != nil {
		return nil, fmt.Errorf("parse symbol shapes failed (%s): %w", refPath(d.Symbol), err)
	}
	footprint, err := m.Footprint(fp.Shape)
	if err != nil {
		return nil, fmt.Errorf("parse footprint shapes failed (%s): %w", refPath(d.Footprint), err)
	}

	idPart := d.IDPart()
	return &Component{
		Name:            names.Symbols.Unique(naming.SanitizeName(d.DisplayName() + "_" + idPart)),
		FootprintName:   names.Footprints.Unique(naming.SanitizeName(FootprintHint(d, fp) + "_" + idPart)),
		Prefix:          naming.ExtractPrefix(d.Designator),
		LCSC:            d.LCSCID(),
		Device:          d,
		SymbolOrigin:    origin(sym.Head),
		FootprintOrigin: origin(fp.Head),
		Symbol:          symbol,
		Footprint:       footprint,
	}, nil
}

// refPath renders a document reference as library/item for error messages.
func refPath(r *libdoc.LibraryRef) string {
	if r == nil {
		return "?/?"
	}
	return r.LibraryUUID + "/" + r.UUID
}

func origin(h libdoc.Head) shape.Point {
	return shape.Point{X: h.Number("x"), Y: h.Number("y")}
}
