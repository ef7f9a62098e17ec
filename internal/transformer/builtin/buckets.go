package builtin

import (
	"fmt"
	"math"
	"sort"

	"retailetl/internal/logging"
	"retailetl/pkg/records"
)

// Bin is one bucket: values up to Upper (inclusive or not, per Bins.Right)
// get Label.
type Bin struct {
	Upper float64
	Label string
}

// Bins assigns labels to numbers by ordered edges above a lower bound.
//
// With Right unset intervals are [lo, hi); with Right set they are (lo, hi].
// IncludeLowest closes the first right-closed interval on the left so the
// lowest edge itself is labelled. Values outside every interval get no label.
type Bins struct {
	Lower         float64
	Bins          []Bin
	Right         bool
	IncludeLowest bool
}

// NewBins builds right-open Bins from edges and labels. Edges must be strictly
// increasing and there must be exactly one label fewer than edges.
func NewBins(edges []float64, labels []string) (Bins, error) {
	if len(edges) < 2 {
		return Bins{}, fmt.Errorf("%w: need at least 2 edges, got %d", ErrInvalidBins, len(edges))
	}
	if len(labels) != len(edges)-1 {
		return Bins{}, fmt.Errorf("%w: number of labels (%d) must be one less than number of bins (%d)",
			ErrInvalidBins, len(labels), len(edges))
	}
	if !sort.SliceIsSorted(edges, func(i, j int) bool { return edges[i] < edges[j] }) {
		return Bins{}, fmt.Errorf("%w: edges must increase monotonically", ErrInvalidBins)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] == edges[i-1] {
			return Bins{}, fmt.Errorf("%w: duplicate edge %g", ErrInvalidBins, edges[i])
		}
	}
	b := Bins{Lower: edges[0], Bins: make([]Bin, len(labels))}
	for i, l := range labels {
		b.Bins[i] = Bin{Upper: edges[i+1], Label: l}
	}
	return b, nil
}

// Label returns the label for v, or false when v falls in no interval.
func (b Bins) Label(v float64) (string, bool) {
	if math.IsNaN(v) {
		return "", false
	}
	lo := b.Lower
	for i, bin := range b.Bins {
		var in bool
		if b.Right {
			in = (v > lo || (i == 0 && b.IncludeLowest && v == lo)) && v <= bin.Upper
		} else {
			in = v >= lo && v < bin.Upper
		}
		if in {
			return bin.Label, true
		}
		lo = bin.Upper
	}
	return "", false
}

// LabelValue labels any numeric value; non-numbers and values outside the bins
// map to null.
func (b Bins) LabelValue(v any) any {
	f, ok := records.AsFloat(v)
	if !ok {
		return nil
	}
	if l, ok := b.Label(f); ok {
		return l
	}
	return nil
}

// SalesBuckets are the default revenue buckets: [0,100) Low, [100,500)
// Medium, [500,+Inf) High.
func SalesBuckets() Bins {
	b, _ := NewBins([]float64{0, 100, 500, math.Inf(1)}, []string{"Low", "Medium", "High"})
	b.IncludeLowest = true
	return b
}

// CreateSalesBuckets adds a sales_bucket column labelling col with bins, or
// with SalesBuckets when bins is nil.
func CreateSalesBuckets(log *logging.Logger, t records.Table, col string, bins *Bins) (records.Table, error) {
	log = logging.OrNop(log)
	if err := RequireColumns(t, []string{col}, "sales buckets"); err != nil {
		log.Error("sales column not found", "column", col)
		return records.Table{}, err
	}
	b := SalesBuckets()
	if bins != nil {
		b = *bins
	}
	out := t.WithColumn("sales_bucket", func(r records.Record) any { return b.LabelValue(r[col]) })
	log.Info("created sales buckets", "column", col, "categories", len(b.Bins))
	return out, nil
}
