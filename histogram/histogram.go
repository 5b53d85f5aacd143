// Package histogram provides binned event counts for template fits.
// A Histogram is the observed-data side of the fit: an ordered sequence
// of non-negative bin counts, optionally with the bin edges it was
// filled with.
package histogram

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram holds per-bin observed event counts. The bin layout is fixed
// for the lifetime of the histogram.
type Histogram struct {
	binEdges  []float64 // nil when constructed from raw counts
	binCounts []float64
}

// New wraps an existing slice of bin counts. The counts are copied.
// Each count must be non-negative.
func New(binCounts []float64) (*Histogram, error) {
	if len(binCounts) == 0 {
		return nil, errors.New("histogram: need at least one bin")
	}
	counts := make([]float64, len(binCounts))
	for i, c := range binCounts {
		if c < 0 {
			return nil, fmt.Errorf("histogram: bin %d has negative count %v", i, c)
		}
		counts[i] = c
	}
	return &Histogram{binCounts: counts}, nil
}

// Option configures histogram filling.
type Option func(*fillConfig)

type fillConfig struct {
	weights []float64
}

// WithWeights sets per-entry weights for NewFromData. The slice must have
// the same length as the data sample.
func WithWeights(weights []float64) Option {
	return func(c *fillConfig) {
		c.weights = weights
	}
}

// NewFromData fills a fixed-width histogram with nBins bins on [lo, hi)
// from a data sample. Entries outside [lo, hi) are ignored. Negative
// weights are rejected since the fit requires non-negative bin counts.
func NewFromData(nBins int, lo, hi float64, data []float64, opts ...Option) (*Histogram, error) {
	if nBins <= 0 {
		return nil, fmt.Errorf("histogram: number of bins must be positive, got %d", nBins)
	}
	if hi <= lo {
		return nil, fmt.Errorf("histogram: invalid range [%v, %v)", lo, hi)
	}

	var cfg fillConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.weights != nil && len(cfg.weights) != len(data) {
		return nil, fmt.Errorf("histogram: got %d weights for %d data entries", len(cfg.weights), len(data))
	}

	xs, ws := inRange(lo, hi, data, cfg.weights)
	for i, w := range ws {
		if w < 0 {
			return nil, fmt.Errorf("histogram: negative weight %v at entry %d", w, i)
		}
	}

	// stat.Histogram requires a sorted sample.
	if ws == nil {
		sort.Float64s(xs)
	} else {
		sort.Sort(weightedSample{xs: xs, ws: ws})
	}

	edges := floats.Span(make([]float64, nBins+1), lo, hi)
	counts := stat.Histogram(make([]float64, nBins), edges, xs, ws)

	return &Histogram{binEdges: edges, binCounts: counts}, nil
}

// inRange copies the entries of data (and the matching weights, when
// present) that fall inside [lo, hi).
func inRange(lo, hi float64, data, weights []float64) (xs, ws []float64) {
	xs = make([]float64, 0, len(data))
	if weights != nil {
		ws = make([]float64, 0, len(data))
	}
	for i, x := range data {
		if x < lo || x >= hi {
			continue
		}
		xs = append(xs, x)
		if weights != nil {
			ws = append(ws, weights[i])
		}
	}
	return xs, ws
}

type weightedSample struct {
	xs, ws []float64
}

func (s weightedSample) Len() int           { return len(s.xs) }
func (s weightedSample) Less(i, j int) bool { return s.xs[i] < s.xs[j] }
func (s weightedSample) Swap(i, j int) {
	s.xs[i], s.xs[j] = s.xs[j], s.xs[i]
	s.ws[i], s.ws[j] = s.ws[j], s.ws[i]
}

// BinCounts returns the observed count per bin. The returned slice is the
// histogram's backing storage and must not be modified by the caller.
func (h *Histogram) BinCounts() []float64 {
	return h.binCounts
}

// NumBins returns the number of bins.
func (h *Histogram) NumBins() int {
	return len(h.binCounts)
}

// BinEdges returns the nBins+1 bin edges, or nil when the histogram was
// constructed directly from counts.
func (h *Histogram) BinEdges() []float64 {
	return h.binEdges
}

// BinMids returns the center of each bin, or nil when no edges are known.
func (h *Histogram) BinMids() []float64 {
	if h.binEdges == nil {
		return nil
	}
	mids := make([]float64, len(h.binCounts))
	for i := range mids {
		mids[i] = 0.5 * (h.binEdges[i] + h.binEdges[i+1])
	}
	return mids
}

// Sum returns the total event count over all bins.
func (h *Histogram) Sum() float64 {
	return floats.Sum(h.binCounts)
}
