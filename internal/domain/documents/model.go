// Package documents maps the document types of the application to their
// numbering series.
package documents

import (
	"fmt"
	"sort"
	"strings"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/numerator"
)

// Type identifies a kind of numbered document.
type Type string

const (
	TypeInvoice       Type = "invoice"
	TypeSale          Type = "sale"
	TypePurchaseOrder Type = "purchase_order"
	TypeRefund        Type = "refund"
)

// DefaultSeries returns the built-in numbering of every document type.
func DefaultSeries() map[Type]numerator.Series {
	return map[Type]numerator.Series{
		TypeInvoice:       {Prefix: "INV-", PadWidth: 4, Reset: numerator.ResetYear},
		TypeSale:          {Prefix: "SALE-", PadWidth: 4, Reset: numerator.ResetYear},
		TypePurchaseOrder: {Prefix: "PO-", PadWidth: 4, Reset: numerator.ResetNever},
		TypeRefund:        {Prefix: "RF-", PadWidth: 4, Reset: numerator.ResetYear},
	}
}

// SeriesInfo describes the numbering of one document type.
type SeriesInfo struct {
	Type     Type                  `json:"type"`
	Series   string                `json:"series"`
	Prefix   string                `json:"prefix"`
	PadWidth int                   `json:"pad_width"`
	Reset    numerator.ResetPeriod `json:"reset"`
}

// Catalog resolves document types to series. It is immutable after creation.
type Catalog struct {
	series map[Type]numerator.Series
}

// NewCatalog builds a catalog from the defaults with overrides applied.
// Override keys are document type names; unknown types are added.
// Two types may not share a counter namespace.
func NewCatalog(overrides map[string]numerator.Series) (*Catalog, error) {
	series := DefaultSeries()
	for name, s := range overrides {
		t := Type(strings.ToLower(strings.TrimSpace(name)))
		if t == "" {
			return nil, fmt.Errorf("series override with empty document type")
		}
		s = s.WithDefaults()
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("series of %s: %w", t, err)
		}
		series[t] = s
	}

	owners := make(map[string]Type, len(series))
	for t, s := range series {
		ns := s.Namespace()
		if other, ok := owners[ns]; ok {
			return nil, fmt.Errorf("document types %s and %s share series %s", other, t, ns)
		}
		owners[ns] = t
	}

	return &Catalog{series: series}, nil
}

// Lookup returns the series of t.
func (c *Catalog) Lookup(t Type) (numerator.Series, error) {
	s, ok := c.series[t]
	if !ok {
		return numerator.Series{}, apperror.NewInvalidArgument(fmt.Sprintf("unknown document type %q", t)).
			WithDetail("field", "type").
			WithCause(numerator.ErrInvalidArgument)
	}
	return s, nil
}

// List returns every configured series ordered by type.
func (c *Catalog) List() []SeriesInfo {
	out := make([]SeriesInfo, 0, len(c.series))
	for t, s := range c.series {
		out = append(out, SeriesInfo{
			Type:     t,
			Series:   s.Namespace(),
			Prefix:   s.Prefix,
			PadWidth: s.PadWidth,
			Reset:    s.Reset,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
