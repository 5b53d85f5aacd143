package nll

import (
	"errors"
	"fmt"
)

// SimplePoissonNLL is the Poisson negative log-likelihood of a template
// fit with one yield parameter per template and no nuisance parameters.
// The bin fractions are the nominal template shapes.
type SimplePoissonNLL struct {
	data      DataHistogram
	templates TemplateCollection
}

// NewSimplePoissonNLL creates a cost function over the given data
// histogram and template collection. Both are held by reference: yields
// changed on the collection before the fit are reflected in X0, while
// evaluation depends only on the parameter vector passed in.
func NewSimplePoissonNLL(data DataHistogram, templates TemplateCollection) *SimplePoissonNLL {
	return &SimplePoissonNLL{data: data, templates: templates}
}

// X0 returns the starting yields, one per template.
func (s *SimplePoissonNLL) X0() ([]float64, error) {
	yields := s.templates.YieldValues()
	if len(yields) == 0 {
		return nil, errors.New("nll: template collection supplies no yields")
	}
	x0 := make([]float64, len(yields))
	copy(x0, yields)
	return x0, nil
}

// ParamNames returns "yield_<template id>" per template, in template
// order.
func (s *SimplePoissonNLL) ParamNames() []string {
	ids := s.templates.TemplateIDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = "yield_" + id
	}
	return names
}

// Evaluate returns the Poisson NLL at the given yields.
func (s *SimplePoissonNLL) Evaluate(x []float64) (float64, error) {
	if len(x) != s.templates.NumTemplates() {
		return 0, fmt.Errorf("nll: parameter vector has length %d, want %d", len(x), s.templates.NumTemplates())
	}
	fractions, err := s.templates.BinFractions(nil)
	if err != nil {
		return 0, err
	}
	return poissonTerm(x, fractions, s.data.BinCounts()), nil
}
