package report

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/tabreg/pkg/errors"
)

func samplePredictions() (*mat.VecDense, *mat.VecDense) {
	yTrue := mat.NewVecDense(6, []float64{1, 2, 3, 4, 5, 6})
	yPred := mat.NewVecDense(6, []float64{1.2, 1.8, 3.1, 4.3, 4.6, 6.2})
	return yTrue, yPred
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
	if info.Size() == 0 {
		t.Errorf("%s is empty", path)
	}
}

func TestPredictionScatter(t *testing.T) {
	yTrue, yPred := samplePredictions()
	dir := t.TempDir()

	for _, name := range []string{"scatter.png", "scatter.svg", filepath.Join("nested", "deeper", "scatter.pdf")} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := PredictionScatter(yTrue, yPred, "Predicted vs actual", path); err != nil {
				t.Fatalf("PredictionScatter() error = %v", err)
			}
			assertFile(t, path)
		})
	}
}

func TestResidualHistogram(t *testing.T) {
	yTrue, yPred := samplePredictions()
	path := filepath.Join(t.TempDir(), "plots", "residuals.png")

	if err := ResidualHistogram(yTrue, yPred, 4, "Residuals", path); err != nil {
		t.Fatalf("ResidualHistogram() error = %v", err)
	}
	assertFile(t, path)
}

func TestPlotErrors(t *testing.T) {
	yTrue, yPred := samplePredictions()
	dir := t.TempDir()

	t.Run("length mismatch", func(t *testing.T) {
		err := PredictionScatter(yTrue, mat.NewVecDense(2, []float64{1, 2}), "", filepath.Join(dir, "a.png"))
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Errorf("expected DimensionError, got %v", err)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		err := PredictionScatter(yTrue, yPred, "", filepath.Join(dir, "a.bmp"))
		var valErr *errors.ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("NaN prediction", func(t *testing.T) {
		bad := mat.NewVecDense(6, []float64{1, 2, math.NaN(), 4, 5, 6})
		err := ResidualHistogram(yTrue, bad, 3, "", filepath.Join(dir, "b.png"))
		var numErr *errors.NumericalInstabilityError
		if !errors.As(err, &numErr) {
			t.Errorf("expected NumericalInstabilityError, got %v", err)
		}
	})

	t.Run("zero bins", func(t *testing.T) {
		err := Histogram([]float64{1, 2, 3}, 0, "", "x", filepath.Join(dir, "c.png"))
		var valErr *errors.ValidationError
		if !errors.As(err, &valErr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	defer Setup(DefaultStyle())

	Setup(Style{Width: 4 * vg.Inch})
	s := CurrentStyle()
	if s.Width != 4*vg.Inch {
		t.Errorf("Width = %v, want %v", s.Width, 4*vg.Inch)
	}
	if s.Height != DefaultStyle().Height {
		t.Errorf("zero Height should fall back to the default, got %v", s.Height)
	}
	if s.Grid {
		t.Error("Grid should be false when not requested")
	}

	yTrue, yPred := samplePredictions()
	path := filepath.Join(t.TempDir(), "small.png")
	if err := PredictionScatter(yTrue, yPred, "small", path); err != nil {
		t.Fatalf("PredictionScatter() error = %v", err)
	}
	assertFile(t, path)
}
