package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabreg/core/model"
	"github.com/YuminosukeSato/tabreg/pkg/errors"
)

var _ model.Transformer = (*StandardScaler)(nil)

func TestStandardScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	tests := []struct {
		name      string
		withMean  bool
		withStd   bool
		wantMean  []float64
		wantScale []float64
	}{
		{"mean and std", true, true, []float64{2.5, 25}, []float64{math.Sqrt(1.25), math.Sqrt(125)}},
		{"std only", false, true, []float64{0, 0}, []float64{math.Sqrt(1.25), math.Sqrt(125)}},
		{"mean only", true, false, []float64{2.5, 25}, []float64{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStandardScaler(tt.withMean, tt.withStd)
			out, err := s.FitTransform(X)
			if err != nil {
				t.Fatalf("FitTransform() error = %v", err)
			}
			for j := 0; j < 2; j++ {
				if math.Abs(s.Mean()[j]-tt.wantMean[j]) > 1e-12 {
					t.Errorf("Mean()[%d] = %v, want %v", j, s.Mean()[j], tt.wantMean[j])
				}
				if math.Abs(s.Scale()[j]-tt.wantScale[j]) > 1e-12 {
					t.Errorf("Scale()[%d] = %v, want %v", j, s.Scale()[j], tt.wantScale[j])
				}
			}

			back, err := s.InverseTransform(out)
			if err != nil {
				t.Fatalf("InverseTransform() error = %v", err)
			}
			if !mat.EqualApprox(back, X, 1e-12) {
				t.Errorf("InverseTransform did not restore X:\n%v", mat.Formatted(back))
			}
		})
	}
}

func TestStandardScaler_ConstantColumn(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})
	s := NewStandardScaler(true, true)
	out, err := s.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if out.At(i, 0) != 0 {
			t.Errorf("row %d = %v, want 0", i, out.At(i, 0))
		}
	}
	if s.Scale()[0] != 1 {
		t.Errorf("Scale()[0] = %v, want 1 for a constant column", s.Scale()[0])
	}
}

func TestStandardScaler_Errors(t *testing.T) {
	s := NewStandardScaler(true, true)

	var notFitted *errors.NotFittedError
	if _, err := s.Transform(mat.NewDense(1, 1, []float64{1})); !errors.As(err, &notFitted) {
		t.Errorf("expected NotFittedError, got %v", err)
	}

	if err := s.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	var dimErr *errors.DimensionError
	if _, err := s.Transform(mat.NewDense(1, 3, nil)); !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}

	var numErr *errors.NumericalInstabilityError
	if err := s.Fit(mat.NewDense(2, 1, []float64{1, math.Inf(-1)})); !errors.As(err, &numErr) {
		t.Errorf("expected NumericalInstabilityError, got %v", err)
	}
}
