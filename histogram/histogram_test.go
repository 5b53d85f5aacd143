package histogram

import (
	"math"
	"testing"
)

const tol = 1e-12

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New accepted zero bins")
	}
	if _, err := New([]float64{1, -2, 3}); err == nil {
		t.Error("New accepted a negative bin count")
	}
}

func TestNewCopiesCounts(t *testing.T) {
	counts := []float64{1, 2, 3}
	h, err := New(counts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	counts[0] = 99
	if got := h.BinCounts()[0]; got != 1 {
		t.Errorf("bin 0 = %v after mutating the input slice, want 1", got)
	}
	if h.BinEdges() != nil {
		t.Error("BinEdges is non-nil for a histogram built from raw counts")
	}
	if h.BinMids() != nil {
		t.Error("BinMids is non-nil for a histogram built from raw counts")
	}
}

func TestNewFromDataValidation(t *testing.T) {
	if _, err := NewFromData(0, 0, 1, nil); err == nil {
		t.Error("NewFromData accepted zero bins")
	}
	if _, err := NewFromData(3, 1, 1, nil); err == nil {
		t.Error("NewFromData accepted an empty range")
	}
	if _, err := NewFromData(3, 0, 1, []float64{0.5}, WithWeights([]float64{1, 2})); err == nil {
		t.Error("NewFromData accepted mis-sized weights")
	}
	if _, err := NewFromData(3, 0, 1, []float64{0.5}, WithWeights([]float64{-1})); err == nil {
		t.Error("NewFromData accepted a negative weight")
	}
}

func TestNewFromDataFill(t *testing.T) {
	// Bins: [0,1), [1,2), [2,3). Entries at -5 and 3 are out of range.
	data := []float64{0.5, 0.2, 1.5, 2.9, -5, 3}
	h, err := NewFromData(3, 0, 3, data)
	if err != nil {
		t.Fatalf("NewFromData failed: %v", err)
	}

	want := []float64{2, 1, 1}
	for i, got := range h.BinCounts() {
		if math.Abs(got-want[i]) > tol {
			t.Errorf("bin %d = %v, want %v", i, got, want[i])
		}
	}
	if got := h.Sum(); math.Abs(got-4) > tol {
		t.Errorf("Sum = %v, want 4", got)
	}

	edges := h.BinEdges()
	wantEdges := []float64{0, 1, 2, 3}
	for i, got := range edges {
		if math.Abs(got-wantEdges[i]) > tol {
			t.Errorf("edge %d = %v, want %v", i, got, wantEdges[i])
		}
	}
	mids := h.BinMids()
	wantMids := []float64{0.5, 1.5, 2.5}
	for i, got := range mids {
		if math.Abs(got-wantMids[i]) > tol {
			t.Errorf("bin mid %d = %v, want %v", i, got, wantMids[i])
		}
	}
}

func TestNewFromDataWeighted(t *testing.T) {
	data := []float64{0.5, 1.5, 1.7, 2.5}
	weights := []float64{2, 0.5, 0.5, 3}
	h, err := NewFromData(3, 0, 3, data, WithWeights(weights))
	if err != nil {
		t.Fatalf("NewFromData failed: %v", err)
	}

	want := []float64{2, 1, 3}
	for i, got := range h.BinCounts() {
		if math.Abs(got-want[i]) > tol {
			t.Errorf("bin %d = %v, want %v", i, got, want[i])
		}
	}
}
