package nll

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// AdvancedPoissonNLL is the Poisson negative log-likelihood of a
// template fit with one yield parameter per template plus one nuisance
// parameter per template and bin. Each template's shape floats within
// its correlated relative uncertainty, penalized by the Gaussian
// constraint term
//
//	0.5 * theta^T * BlockDiag(InvCorr_1, ..., InvCorr_K) * theta,
//
// so nuisance parameters of different templates are uncorrelated while
// within-template, cross-bin correlations are penalized through each
// template's inverse correlation matrix.
//
// The parameter vector is the concatenation of all yields followed by
// all nuisance parameters, template-major and bin-minor. This ordering
// matches the block-diagonal assembly and the argument order of
// TemplateCollection.BinFractions.
type AdvancedPoissonNLL struct {
	data      DataHistogram
	templates TemplateCollection

	// blockDiagInvCorr is assembled once at construction and is
	// immutable afterwards.
	blockDiagInvCorr *mat.SymDense
	numTemplates     int
	numBins          int
}

// NewAdvancedPoissonNLL creates a cost function over the given data
// histogram and template collection, assembling the block-diagonal
// inverse correlation matrix once. Construction fails unless the
// collection supplies exactly NumTemplates square inverse correlation
// matrices of size NumBins x NumBins.
func NewAdvancedPoissonNLL(data DataHistogram, templates TemplateCollection) (*AdvancedPoissonNLL, error) {
	numTemplates := templates.NumTemplates()
	numBins := templates.NumBins()
	if numTemplates == 0 {
		return nil, errors.New("nll: template collection has no templates")
	}
	if numBins <= 0 {
		return nil, fmt.Errorf("nll: template collection reports %d bins", numBins)
	}

	invCorrMats := templates.InvCorrMats()
	if len(invCorrMats) != numTemplates {
		return nil, fmt.Errorf("nll: got %d inverse correlation matrices for %d templates", len(invCorrMats), numTemplates)
	}
	blockDiag := mat.NewSymDense(numTemplates*numBins, nil)
	for k, m := range invCorrMats {
		r, c := m.Dims()
		if r != numBins || c != numBins {
			return nil, fmt.Errorf("nll: inverse correlation matrix %d is %dx%d, want %dx%d", k, r, c, numBins, numBins)
		}
		offset := k * numBins
		for i := 0; i < numBins; i++ {
			for j := i; j < numBins; j++ {
				blockDiag.SetSym(offset+i, offset+j, m.At(i, j))
			}
		}
	}

	return &AdvancedPoissonNLL{
		data:             data,
		templates:        templates,
		blockDiagInvCorr: blockDiag,
		numTemplates:     numTemplates,
		numBins:          numBins,
	}, nil
}

// X0 returns the starting yields followed by the starting nuisance
// parameters.
func (a *AdvancedPoissonNLL) X0() ([]float64, error) {
	yields := a.templates.YieldValues()
	if len(yields) == 0 {
		return nil, errors.New("nll: template collection supplies no yields")
	}
	nuiss := a.templates.NuissParamValues()
	x0 := make([]float64, 0, len(yields)+len(nuiss))
	x0 = append(x0, yields...)
	x0 = append(x0, nuiss...)
	return x0, nil
}

// ParamNames returns "yield_<template id>" per template followed by
// "theta_<template id>_<bin>" per template and bin, bin indices
// zero-based.
func (a *AdvancedPoissonNLL) ParamNames() []string {
	ids := a.templates.TemplateIDs()
	names := make([]string, 0, len(ids)+len(ids)*a.numBins)
	for _, id := range ids {
		names = append(names, "yield_"+id)
	}
	for _, id := range ids {
		for i := 0; i < a.numBins; i++ {
			names = append(names, fmt.Sprintf("theta_%s_%d", id, i))
		}
	}
	return names
}

// Evaluate returns the Poisson NLL at the given yields and nuisance
// parameters plus the Gaussian constraint term.
func (a *AdvancedPoissonNLL) Evaluate(x []float64) (float64, error) {
	want := a.numTemplates + a.numTemplates*a.numBins
	if len(x) != want {
		return 0, fmt.Errorf("nll: parameter vector has length %d, want %d", len(x), want)
	}
	poi := x[:a.numTemplates]
	nuissParams := x[a.numTemplates:]

	fractions, err := a.templates.BinFractions(nuissParams)
	if err != nil {
		return 0, err
	}
	poisson := poissonTerm(poi, fractions, a.data.BinCounts())

	theta := mat.NewVecDense(len(nuissParams), nuissParams)
	gauss := 0.5 * mat.Inner(theta, a.blockDiagInvCorr, theta)

	return poisson + gauss, nil
}
