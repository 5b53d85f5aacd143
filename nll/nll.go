// Package nll implements the negative log-likelihood cost functions
// minimized in a binned template fit. A cost function maps a parameter
// vector to the scalar value
//
//	-log(L) = sum_i nu_i - n_i*log(nu_i)
//
// where nu_i is the expected and n_i the observed number of events in
// bin i. The expected count is a linear combination of per-template bin
// fractions weighted by the fitted yields,
//
//	nu_i = sum_k poi_k * f_ik,
//
// optionally with per-template per-bin nuisance parameters floating the
// template shapes within their correlated uncertainties, penalized by a
// multivariate Gaussian constraint term.
//
// Cost functions are pure: evaluation never mutates instance state, so a
// single instance may be evaluated concurrently with disjoint parameter
// vectors, e.g. by a minimizer estimating finite-difference gradients in
// parallel.
package nll

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DataHistogram is the view of the observed data the cost functions
// need.
type DataHistogram interface {
	// BinCounts returns the observed event count per bin.
	BinCounts() []float64
}

// TemplateCollection is the view of the template model the cost
// functions need. It is satisfied by templates.Collection.
type TemplateCollection interface {
	// TemplateIDs returns the ordered, unique template identifiers.
	TemplateIDs() []string
	// YieldValues returns the starting yield per template.
	YieldValues() []float64
	// NuissParamValues returns the starting nuisance-parameter values,
	// template-major and bin-minor.
	NuissParamValues() []float64
	// NumBins returns the number of bins, matching the data histogram.
	NumBins() int
	// NumTemplates returns the number of templates.
	NumTemplates() int
	// InvCorrMats returns one inverse bin-to-bin correlation matrix per
	// template, each of size NumBins x NumBins.
	InvCorrMats() []*mat.Dense
	// BinFractions returns the NumTemplates x NumBins matrix of bin
	// fractions, nominal for a nil argument and nuisance-adjusted
	// otherwise. It must be a pure function of its argument.
	BinFractions(nuissParams []float64) (*mat.Dense, error)
}

// CostFunction is the surface a minimizer relies on, independent of the
// likelihood variant. ParamNames is aligned 1:1 and in the same order
// with X0 and with the vector accepted by Evaluate.
type CostFunction interface {
	// X0 returns the starting parameter vector for the minimization. It
	// fails when the underlying template collection supplies no yields.
	X0() ([]float64, error)
	// ParamNames returns one descriptive name per parameter.
	ParamNames() []string
	// Evaluate maps a parameter vector to the scalar NLL value. The
	// input length must equal len(X0); a mismatch is an error. Numeric
	// degeneracies (zero expected yield in a populated bin) propagate
	// as +Inf or NaN, never as an error.
	Evaluate(x []float64) (float64, error)
}

// poissonTerm computes sum_i nu_i - n_i*log(nu_i) with
// nu = fractions^T * poi. A zero expected count in a bin with observed
// events yields +Inf; no clamping is applied.
func poissonTerm(poi []float64, fractions *mat.Dense, observed []float64) float64 {
	nBins := len(observed)
	expected := mat.NewVecDense(nBins, nil)
	expected.MulVec(fractions.T(), mat.NewVecDense(len(poi), poi))

	var sum float64
	for i := 0; i < nBins; i++ {
		nu := expected.AtVec(i)
		sum += nu - observed[i]*math.Log(nu)
	}
	return sum
}
