// Package templates provides the template model consumed by the fit: one
// Template per physical process, holding the expected per-bin shape with
// its correlated relative uncertainty, and a Collection combining the
// templates over a shared binning.
package templates

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Template describes the expected shape of one process: per-bin expected
// yields, per-bin relative uncertainties and their bin-to-bin correlation
// matrix. The inverse of the correlation matrix is computed once at
// construction.
type Template struct {
	id        string
	binCounts []float64
	relErrors []float64
	invCorr   *mat.Dense

	yield float64   // current yield, starts at the sum of binCounts
	nuiss []float64 // current nuisance parameters, start at zero
}

// TemplateOption configures template construction.
type TemplateOption func(*templateConfig)

type templateConfig struct {
	relErrors []float64
	corr      *mat.SymDense
}

// WithRelativeErrors sets the per-bin relative uncertainties of the
// template shape. Without this option the Poisson estimate sqrt(v)/v is
// used per bin (zero for empty bins).
func WithRelativeErrors(relErrors []float64) TemplateOption {
	return func(c *templateConfig) {
		c.relErrors = relErrors
	}
}

// WithCorrelationMatrix sets the bin-to-bin correlation matrix of the
// relative uncertainty. Without this option bins are uncorrelated
// (identity matrix).
func WithCorrelationMatrix(corr *mat.SymDense) TemplateOption {
	return func(c *templateConfig) {
		c.corr = corr
	}
}

// NewTemplate creates a template from per-bin expected yields. The counts
// are copied. Construction fails on an empty id, empty or negative
// counts, mis-sized relative errors, a mis-sized correlation matrix, or a
// singular correlation matrix.
func NewTemplate(id string, binCounts []float64, opts ...TemplateOption) (*Template, error) {
	if id == "" {
		return nil, errors.New("templates: template id must not be empty")
	}
	if len(binCounts) == 0 {
		return nil, fmt.Errorf("templates: template %q needs at least one bin", id)
	}

	var cfg templateConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	nBins := len(binCounts)
	counts := make([]float64, nBins)
	for i, c := range binCounts {
		if c < 0 {
			return nil, fmt.Errorf("templates: template %q bin %d has negative count %v", id, i, c)
		}
		counts[i] = c
	}

	relErrors := make([]float64, nBins)
	if cfg.relErrors != nil {
		if len(cfg.relErrors) != nBins {
			return nil, fmt.Errorf("templates: template %q got %d relative errors for %d bins", id, len(cfg.relErrors), nBins)
		}
		copy(relErrors, cfg.relErrors)
	} else {
		for i, c := range counts {
			if c > 0 {
				relErrors[i] = math.Sqrt(c) / c
			}
		}
	}

	invCorr := mat.NewDense(nBins, nBins, nil)
	if cfg.corr != nil {
		if n := cfg.corr.SymmetricDim(); n != nBins {
			return nil, fmt.Errorf("templates: template %q correlation matrix is %dx%d, want %dx%d", id, n, n, nBins, nBins)
		}
		if err := invCorr.Inverse(cfg.corr); err != nil {
			return nil, fmt.Errorf("templates: template %q correlation matrix is not invertible: %w", id, err)
		}
	} else {
		for i := 0; i < nBins; i++ {
			invCorr.Set(i, i, 1)
		}
	}

	return &Template{
		id:        id,
		binCounts: counts,
		relErrors: relErrors,
		invCorr:   invCorr,
		yield:     floats.Sum(counts),
		nuiss:     make([]float64, nBins),
	}, nil
}

// ID returns the template identifier.
func (t *Template) ID() string {
	return t.id
}

// NumBins returns the number of bins of the template shape.
func (t *Template) NumBins() int {
	return len(t.binCounts)
}

// Yield returns the current yield value of the template.
func (t *Template) Yield() float64 {
	return t.yield
}

// RelativeErrors returns a copy of the per-bin relative uncertainties.
func (t *Template) RelativeErrors() []float64 {
	relErrors := make([]float64, len(t.relErrors))
	copy(relErrors, t.relErrors)
	return relErrors
}

// InvCorrMat returns the inverse of the bin-to-bin correlation matrix.
// The returned matrix is the template's cached copy and must not be
// modified by the caller.
func (t *Template) InvCorrMat() *mat.Dense {
	return t.invCorr
}

// fractionsInto writes the template's bin fractions into dst, which must
// have length NumBins. With a nil nuisance vector the nominal fractions
// v_i / sum_j v_j are written; otherwise each bin is scaled by
// (1 + theta_i*eps_i) before normalizing, so the fractions always sum to
// one across bins.
func (t *Template) fractionsInto(dst, nuissParams []float64) {
	var norm float64
	if nuissParams == nil {
		norm = floats.Sum(t.binCounts)
		for i, c := range t.binCounts {
			dst[i] = c / norm
		}
		return
	}
	for i, c := range t.binCounts {
		dst[i] = c * (1 + nuissParams[i]*t.relErrors[i])
		norm += dst[i]
	}
	for i := range dst {
		dst[i] /= norm
	}
}
