// Package model_selection はデータ分割のユーティリティを提供する
package model_selection

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabreg/pkg/errors"
)

// Split holds the training and held-out partitions of one dataset.
// TrainIndex and TestIndex are row numbers in the original data, in the
// order the rows appear in the partitions.
type Split struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.VecDense
	YTest  *mat.VecDense

	TrainIndex []int
	TestIndex  []int
}

// TrainTestSplit は X と y を同じ行の対応を保ったまま無作為に分割する。
//
// 保留側の行数は scikit-learn と同じく ceil(testSize*n)。同じ randomState
// なら常に同じ分割になる。
func TrainTestSplit(X mat.Matrix, y mat.Vector, testSize float64, randomState int64) (*Split, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != rows {
		return nil, errors.NewDimensionError("TrainTestSplit", rows, y.Len(), 0)
	}
	if math.IsNaN(testSize) || testSize <= 0 || testSize >= 1 {
		return nil, errors.NewValidationError("test_size", "must be in the open interval (0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(rows)))
	nTrain := rows - nTest
	if nTest == 0 || nTrain == 0 {
		return nil, errors.NewValidationError("test_size",
			fmt.Sprintf("with n_samples=%d gives %d train and %d test samples; both must be non-empty", rows, nTrain, nTest),
			testSize)
	}

	rng := rand.New(rand.NewPCG(uint64(randomState), 0))
	perm := rng.Perm(rows)

	s := &Split{
		XTrain:     mat.NewDense(nTrain, cols, nil),
		XTest:      mat.NewDense(nTest, cols, nil),
		YTrain:     mat.NewVecDense(nTrain, nil),
		YTest:      mat.NewVecDense(nTest, nil),
		TestIndex:  perm[:nTest],
		TrainIndex: perm[nTest:],
	}
	for i, r := range s.TestIndex {
		copyRow(s.XTest, i, X, r)
		s.YTest.SetVec(i, y.AtVec(r))
	}
	for i, r := range s.TrainIndex {
		copyRow(s.XTrain, i, X, r)
		s.YTrain.SetVec(i, y.AtVec(r))
	}
	return s, nil
}

func copyRow(dst *mat.Dense, i int, src mat.Matrix, r int) {
	_, cols := src.Dims()
	for j := 0; j < cols; j++ {
		dst.Set(i, j, src.At(r, j))
	}
}
