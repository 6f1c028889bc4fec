// Package dataset loads tabular data from CSV and converts it into the
// matrices the estimators consume.
package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabreg/pkg/errors"
)

// Frame wraps a gota DataFrame. Columns excluded with Without are skipped
// when Features selects every numeric column.
type Frame struct {
	df       dataframe.DataFrame
	excluded map[string]bool
}

// NewFrame wraps an existing DataFrame.
func NewFrame(df dataframe.DataFrame) *Frame {
	return &Frame{df: df, excluded: map[string]bool{}}
}

// LoadCSV reads the CSV file at path. The first line is the header.
func LoadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	frame, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return frame, nil
}

// ReadCSV reads CSV from r. Column types are detected from the values;
// "NA" and "NaN" cells are missing values.
func ReadCSV(r io.Reader) (*Frame, error) {
	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "parse csv")
	}
	return NewFrame(df), nil
}

// SaveCSV writes the frame with its header to path, creating parent
// directories.
func SaveCSV(frame *Frame, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := frame.df.WriteCSV(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.WithStack(f.Close())
}

// DataFrame returns the underlying DataFrame.
func (f *Frame) DataFrame() dataframe.DataFrame {
	return f.df
}

// Names returns the column names in file order.
func (f *Frame) Names() []string {
	return f.df.Names()
}

// NumRows returns the number of data rows.
func (f *Frame) NumRows() int {
	return f.df.Nrow()
}

// NumericColumns は int または float 型の列名を返す
func (f *Frame) NumericColumns() []string {
	return f.columnsOf(series.Int, series.Float)
}

// CategoricalColumns は string 型の列名を返す
func (f *Frame) CategoricalColumns() []string {
	return f.columnsOf(series.String)
}

func (f *Frame) columnsOf(types ...series.Type) []string {
	var out []string
	for i, t := range f.df.Types() {
		if slices.Contains(types, t) {
			out = append(out, f.df.Names()[i])
		}
	}
	return out
}

// Without returns a frame whose default feature set skips names. The data
// is shared.
func (f *Frame) Without(names ...string) *Frame {
	excluded := make(map[string]bool, len(f.excluded)+len(names))
	for k := range f.excluded {
		excluded[k] = true
	}
	for _, n := range names {
		excluded[n] = true
	}
	return &Frame{df: f.df, excluded: excluded}
}

// Features returns the named columns as an n×k matrix. With no names it
// uses every numeric column not excluded by Without.
func (f *Frame) Features(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		for _, n := range f.NumericColumns() {
			if !f.excluded[n] {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			return nil, errors.NewValidationError("features", "frame has no numeric feature columns", f.Names())
		}
	}

	rows := f.df.Nrow()
	if rows == 0 {
		return nil, errors.NewModelError("Frame.Features", "empty data", errors.ErrEmptyData)
	}

	X := mat.NewDense(rows, len(names), nil)
	for j, name := range names {
		col, err := f.numericColumn(name)
		if err != nil {
			return nil, err
		}
		X.SetCol(j, col)
	}
	if err := errors.CheckMatrix("Frame.Features", X); err != nil {
		return nil, err
	}
	return X, nil
}

// Target returns the named column as a vector.
func (f *Frame) Target(name string) (*mat.VecDense, error) {
	col, err := f.numericColumn(name)
	if err != nil {
		return nil, err
	}
	if len(col) == 0 {
		return nil, errors.NewModelError("Frame.Target", "empty data", errors.ErrEmptyData)
	}
	for i, v := range col {
		if err := errors.CheckScalar("Frame.Target", v, i); err != nil {
			return nil, err
		}
	}
	return mat.NewVecDense(len(col), col), nil
}

func (f *Frame) numericColumn(name string) ([]float64, error) {
	s := f.df.Col(name)
	if s.Err != nil {
		return nil, errors.NewValidationError("column", "not found", name)
	}
	if t := s.Type(); t != series.Int && t != series.Float {
		return nil, errors.NewValidationError("column", fmt.Sprintf("has type %s, want a numeric column", t), name)
	}
	return s.Float(), nil
}

// MissingCounts returns the number of missing cells per column.
func (f *Frame) MissingCounts() map[string]int {
	counts := make(map[string]int, f.df.Ncol())
	for _, name := range f.df.Names() {
		n := 0
		for _, missing := range f.df.Col(name).IsNaN() {
			if missing {
				n++
			}
		}
		counts[name] = n
	}
	return counts
}

// HasDuplicates reports whether any two rows hold the same values.
func (f *Frame) HasDuplicates() bool {
	records := f.df.Records()
	seen := make(map[string]bool, len(records))
	// 先頭はヘッダ行
	for _, rec := range records[1:] {
		key := strings.Join(rec, "\x00")
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}

// Describe returns gota's summary statistics for the numeric columns.
func (f *Frame) Describe() (dataframe.DataFrame, error) {
	numeric := f.NumericColumns()
	if len(numeric) == 0 {
		return dataframe.DataFrame{}, errors.NewValidationError("describe", "frame has no numeric columns", f.Names())
	}
	desc := f.df.Select(numeric).Describe()
	if desc.Err != nil {
		return dataframe.DataFrame{}, errors.Wrap(desc.Err, "describe")
	}
	return desc, nil
}
