// Package report draws diagnostic plots for a fitted experiment.
package report

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/tabreg/pkg/errors"
)

// Style holds the settings shared by every plot.
type Style struct {
	Width       vg.Length
	Height      vg.Length
	Grid        bool
	PointRadius vg.Length
}

// DefaultStyle is a 10x6 inch figure with a background grid.
func DefaultStyle() Style {
	return Style{
		Width:       10 * vg.Inch,
		Height:      6 * vg.Inch,
		Grid:        true,
		PointRadius: vg.Points(2.5),
	}
}

var (
	styleMu sync.RWMutex
	current = DefaultStyle()
)

// Setup replaces the style used by later plots. Zero sizes keep their
// defaults.
func Setup(s Style) {
	d := DefaultStyle()
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.PointRadius <= 0 {
		s.PointRadius = d.PointRadius
	}

	styleMu.Lock()
	defer styleMu.Unlock()
	current = s
}

// CurrentStyle returns the style set by Setup.
func CurrentStyle() Style {
	styleMu.RLock()
	defer styleMu.RUnlock()
	return current
}

// 拡張子で出力形式が決まる
var formats = []string{".png", ".svg", ".pdf", ".jpg", ".jpeg", ".eps", ".tif", ".tiff"}

// PredictionScatter plots predicted against actual values with the identity
// line and saves it to path.
func PredictionScatter(yTrue, yPred mat.Vector, title, path string) error {
	n, err := checkPair("PredictionScatter", yTrue, yPred)
	if err != nil {
		return err
	}
	style := CurrentStyle()

	pts := make(plotter.XYs, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i], ys[i] = yTrue.AtVec(i), yPred.AtVec(i)
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}

	p := newPlot(style, title, "Actual", "Predicted")
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "build scatter")
	}
	scatter.GlyphStyle.Color = plotutil.Color(0)
	scatter.GlyphStyle.Radius = style.PointRadius

	lo := math.Min(floats.Min(xs), floats.Min(ys))
	hi := math.Max(floats.Max(xs), floats.Max(ys))
	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "build identity line")
	}
	identity.LineStyle.Color = plotutil.Color(1)
	identity.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(scatter, identity)
	p.Legend.Add("predictions", scatter)
	p.Legend.Add("y = x", identity)
	p.Legend.Top = true
	p.Legend.Left = true

	return save(p, style, path)
}

// ResidualHistogram plots the distribution of yTrue - yPred.
func ResidualHistogram(yTrue, yPred mat.Vector, bins int, title, path string) error {
	n, err := checkPair("ResidualHistogram", yTrue, yPred)
	if err != nil {
		return err
	}
	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	return Histogram(residuals, bins, title, "Residual", path)
}

// Histogram plots values in bins equal-width bins.
func Histogram(values []float64, bins int, title, xLabel, path string) error {
	if len(values) == 0 {
		return errors.NewValueError("Histogram", "no values to plot")
	}
	if bins < 1 {
		return errors.NewValidationError("bins", "must be at least 1", bins)
	}
	if err := errors.CheckNumericalStability("Histogram", values, 0); err != nil {
		return err
	}
	style := CurrentStyle()

	p := newPlot(style, title, xLabel, "Frequency")
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return errors.Wrap(err, "build histogram")
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)

	return save(p, style, path)
}

func newPlot(style Style, title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	if style.Grid {
		p.Add(plotter.NewGrid())
	}
	return p
}

// save は親ディレクトリを作ってから拡張子の形式で書き出す
func save(p *plot.Plot, style Style, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(formats, ext) {
		return errors.NewValidationError("path", "unsupported image format "+ext, path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	if err := p.Save(style.Width, style.Height, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

func checkPair(op string, yTrue, yPred mat.Vector) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	for i := 0; i < n; i++ {
		if err := errors.CheckScalar(op, yTrue.AtVec(i), i); err != nil {
			return 0, err
		}
		if err := errors.CheckScalar(op, yPred.AtVec(i), i); err != nil {
			return 0, err
		}
	}
	return n, nil
}
