package nll

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/hepstats/go-template-fit/histogram"
	"github.com/hepstats/go-template-fit/templates"
)

func benchmarkSetup(b *testing.B, numTemplates, numBins int) (*histogram.Histogram, *templates.Collection) {
	b.Helper()

	rng := rand.New(rand.NewSource(42))
	tc, err := templates.NewCollection(numBins)
	if err != nil {
		b.Fatalf("NewCollection failed: %v", err)
	}
	for k := 0; k < numTemplates; k++ {
		counts := make([]float64, numBins)
		for i := range counts {
			counts[i] = 10 + 100*rng.Float64()
		}
		tmpl, err := templates.NewTemplate(fmt.Sprintf("process_%d", k), counts)
		if err != nil {
			b.Fatalf("NewTemplate failed: %v", err)
		}
		if err := tc.Add(tmpl); err != nil {
			b.Fatalf("Add failed: %v", err)
		}
	}

	observed := make([]float64, numBins)
	for i := range observed {
		observed[i] = 50 + 200*rng.Float64()
	}
	data, err := histogram.New(observed)
	if err != nil {
		b.Fatalf("histogram.New failed: %v", err)
	}
	return data, tc
}

// BenchmarkSimpleEvaluate measures one minimizer iteration of the simple
// likelihood.
func BenchmarkSimpleEvaluate(b *testing.B) {
	data, tc := benchmarkSetup(b, 5, 50)
	cost := NewSimplePoissonNLL(data, tc)
	x0, err := cost.X0()
	if err != nil {
		b.Fatalf("X0 failed: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := cost.Evaluate(x0); err != nil {
			b.Fatalf("Evaluate failed: %v", err)
		}
	}
}

// BenchmarkAdvancedEvaluate measures one minimizer iteration of the
// likelihood with nuisance parameters, including the quadratic form over
// the cached block-diagonal matrix.
func BenchmarkAdvancedEvaluate(b *testing.B) {
	data, tc := benchmarkSetup(b, 5, 50)
	cost, err := NewAdvancedPoissonNLL(data, tc)
	if err != nil {
		b.Fatalf("NewAdvancedPoissonNLL failed: %v", err)
	}
	x0, err := cost.X0()
	if err != nil {
		b.Fatalf("X0 failed: %v", err)
	}
	rng := rand.New(rand.NewSource(123))
	for i := tc.NumTemplates(); i < len(x0); i++ {
		x0[i] = 0.1 * rng.NormFloat64()
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := cost.Evaluate(x0); err != nil {
			b.Fatalf("Evaluate failed: %v", err)
		}
	}
}

// BenchmarkAdvancedConstruction measures the one-time block-diagonal
// assembly cost.
func BenchmarkAdvancedConstruction(b *testing.B) {
	data, tc := benchmarkSetup(b, 5, 50)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := NewAdvancedPoissonNLL(data, tc); err != nil {
			b.Fatalf("NewAdvancedPoissonNLL failed: %v", err)
		}
	}
}
