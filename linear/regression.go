// Package linear は最小二乗法による線形回帰を提供する
package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/tabreg/core/model"
	"github.com/YuminosukeSato/tabreg/core/parallel"
	"github.com/YuminosukeSato/tabreg/pkg/errors"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// machineEpsilon は float64 のマシンイプシロン
const machineEpsilon = 0x1p-52

// LinearRegression is ordinary least squares linear regression, matching
// scikit-learn's LinearRegression. It is deterministic and has no seed.
type LinearRegression struct {
	state *model.StateManager

	// Hyperparameters
	fitIntercept bool
	copyX        bool

	// Learned parameters
	coef      *mat.VecDense
	intercept float64
	rank      int
	singular  []float64
}

// NewLinearRegression は新しいLinearRegressionモデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
		copyX:        true,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit はモデルを訓練データで学習する。
//
// fitIntercept が有効な場合は X と y を列平均で中心化してから SVD で
// 最小ノルムの最小二乗解を求め、切片を mean(y) - mean(X)·coef として復元する。
// 定数列や従属な列、特徴量数がサンプル数を超える場合も失敗しない。
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != rows {
		return errors.NewDimensionError("LinearRegression.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}
	if err := errors.CheckMatrix("LinearRegression.Fit", X); err != nil {
		return err
	}
	if err := errors.CheckMatrix("LinearRegression.Fit", y); err != nil {
		return err
	}

	var XWork *mat.Dense
	if d, ok := X.(*mat.Dense); ok && !lr.copyX {
		XWork = d
	} else {
		XWork = mat.DenseCopyOf(X)
	}
	yWork := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yWork.SetVec(i, y.At(i, 0))
	}

	// 切片の処理: 中心化
	xMean := make([]float64, cols)
	var yMean float64
	if lr.fitIntercept {
		col := make([]float64, rows)
		for j := 0; j < cols; j++ {
			mat.Col(col, j, XWork)
			xMean[j] = stat.Mean(col, nil)
			for i := 0; i < rows; i++ {
				XWork.Set(i, j, col[i]-xMean[j])
			}
		}
		yMean = stat.Mean(yWork.RawVector().Data, nil)
		for i := 0; i < rows; i++ {
			yWork.SetVec(i, yWork.AtVec(i)-yMean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(XWork, mat.SVDThin); !ok {
		return errors.NewModelError("LinearRegression.Fit", "SVD factorization failed", errors.ErrSingularMatrix)
	}

	// rcond は numpy.linalg.lstsq の既定値 eps * max(M, N)
	rcond := machineEpsilon * float64(max(rows, cols))
	rank := svd.Rank(rcond)

	coef := mat.NewDense(cols, 1, nil)
	if rank > 0 {
		svd.SolveTo(coef, yWork, rank)
	}

	lr.coef = mat.NewVecDense(cols, nil)
	lr.coef.CopyVec(coef.ColView(0))
	lr.rank = rank
	lr.singular = svd.Values(nil)
	lr.intercept = 0
	if lr.fitIntercept {
		lr.intercept = yMean - mat.Dot(mat.NewVecDense(cols, xMean), lr.coef)
	}

	lr.state.SetFitted(cols, rows)
	return nil
}

// Predict は入力データに対する予測を n×1 の行列で返す
func (lr *LinearRegression) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "LinearRegression.Predict")

	if err := lr.state.CheckFeatures("LinearRegression", "Predict", X); err != nil {
		return nil, err
	}

	rows, cols := X.Dims()
	if rows == 0 {
		return nil, errors.NewModelError("LinearRegression.Predict", "empty data", errors.ErrEmptyData)
	}

	// y = X * coef + intercept
	predictions := mat.NewDense(rows, 1, nil)
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			sum := lr.intercept
			for j := 0; j < cols; j++ {
				sum += X.At(i, j) * lr.coef.AtVec(j)
			}
			predictions.Set(i, 0, sum)
		}
	})
	return predictions, nil
}

// Rank returns the effective rank of the (centered) training matrix.
func (lr *LinearRegression) Rank() int {
	return lr.rank
}

// Singular returns the singular values of the (centered) training matrix
// in descending order.
func (lr *LinearRegression) Singular() []float64 {
	if lr.singular == nil {
		return nil
	}
	out := make([]float64, len(lr.singular))
	copy(out, lr.singular)
	return out
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

// IsFitted returns whether the model has been fitted
func (lr *LinearRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// GetParams returns the model's hyperparameters (scikit-learn compatible)
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.fitIntercept,
		"copy_X":        lr.copyX,
	}
}

// String returns the string representation of the model
func (lr *LinearRegression) String() string {
	if !lr.state.IsFitted() {
		return fmt.Sprintf("LinearRegression(fit_intercept=%t, copy_X=%t)", lr.fitIntercept, lr.copyX)
	}
	nFeatures, _ := lr.state.Dimensions()
	return fmt.Sprintf("LinearRegression(fit_intercept=%t, n_features=%d, fitted=true)", lr.fitIntercept, nFeatures)
}
