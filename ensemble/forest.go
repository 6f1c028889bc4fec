// Package ensemble は回帰木のアンサンブルを提供する
package ensemble

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabreg/core/model"
	"github.com/YuminosukeSato/tabreg/core/parallel"
	"github.com/YuminosukeSato/tabreg/pkg/errors"
	"github.com/YuminosukeSato/tabreg/tree"
)

// DefaultNEstimators は scikit-learn の n_estimators の既定値
const DefaultNEstimators = 100

// RandomForestRegressor averages bootstrap-bagged regression trees,
// matching scikit-learn's RandomForestRegressor with max_features=1.0.
//
// Per-tree seeds are drawn from one master generator before any tree is
// fitted, so the result does not depend on the number of jobs.
type RandomForestRegressor struct {
	state *model.StateManager

	// Hyperparameters
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	bootstrap       bool
	randomState     int64
	nJobs           int

	// Learned parameters
	estimators []*tree.DecisionTreeRegressor
}

// NewRandomForestRegressor は新しいランダムフォレストを作成する
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	rf := &RandomForestRegressor{
		state:           model.NewStateManager(),
		nEstimators:     DefaultNEstimators,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		bootstrap:       true,
		nJobs:           -1,
	}
	for _, opt := range opts {
		opt(rf)
	}
	return rf
}

// Fit は各木をブートストラップ標本で並列に学習する
func (rf *RandomForestRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RandomForestRegressor.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("RandomForestRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != rows {
		return errors.NewDimensionError("RandomForestRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("RandomForestRegressor.Fit", "y must be a column vector")
	}

	// 各木は X を読むだけなので一度だけ Dense にして共有する
	XDense, ok := X.(*mat.Dense)
	if !ok {
		XDense = mat.DenseCopyOf(X)
	}

	master := rand.New(rand.NewPCG(uint64(rf.randomState), 0))
	seeds := make([]int64, rf.nEstimators)
	for i := range seeds {
		seeds[i] = master.Int64()
	}

	estimators := make([]*tree.DecisionTreeRegressor, rf.nEstimators)
	errs := make([]error, rf.nEstimators)
	parallel.ParallelizeN(rf.nEstimators, rf.nJobs, func(start, end int) {
		for i := start; i < end; i++ {
			estimators[i], errs[i] = rf.fitTree(XDense, y, seeds[i], rows)
		}
	})
	for i, e := range errs {
		if e != nil {
			return errors.Wrapf(e, "fitting tree %d", i)
		}
	}

	rf.estimators = estimators
	rf.state.SetFitted(cols, rows)
	return nil
}

func (rf *RandomForestRegressor) fitTree(X *mat.Dense, y mat.Matrix, seed int64, rows int) (_ *tree.DecisionTreeRegressor, err error) {
	defer errors.Recover(&err, "RandomForestRegressor.fitTree")

	dt := tree.NewDecisionTreeRegressor(
		tree.WithMaxDepth(rf.maxDepth),
		tree.WithMinSamplesSplit(rf.minSamplesSplit),
		tree.WithMinSamplesLeaf(rf.minSamplesLeaf),
		tree.WithMaxFeatures(rf.maxFeatures),
		tree.WithRandomState(seed),
	)

	sample := make([]int, rows)
	if rf.bootstrap {
		rng := rand.New(rand.NewPCG(uint64(seed), 1))
		for i := range sample {
			sample[i] = rng.IntN(rows)
		}
	} else {
		for i := range sample {
			sample[i] = i
		}
	}
	if err := dt.FitSample(X, y, sample); err != nil {
		return nil, err
	}
	return dt, nil
}

// Predict は全ての木の予測の平均を n×1 の行列で返す
func (rf *RandomForestRegressor) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "RandomForestRegressor.Predict")

	if err := rf.state.CheckFeatures("RandomForestRegressor", "Predict", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	if rows == 0 {
		return nil, errors.NewModelError("RandomForestRegressor.Predict", "empty data", errors.ErrEmptyData)
	}

	perTree := make([]mat.Matrix, len(rf.estimators))
	errs := make([]error, len(rf.estimators))
	parallel.ParallelizeN(len(rf.estimators), rf.nJobs, func(start, end int) {
		for i := start; i < end; i++ {
			perTree[i], errs[i] = rf.estimators[i].Predict(X)
		}
	})
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}

	// 木の順に足し合わせて並列度によらず同じ結果にする
	predictions := mat.NewDense(rows, 1, nil)
	n := float64(len(rf.estimators))
	for i := 0; i < rows; i++ {
		var sum float64
		for _, p := range perTree {
			sum += p.At(i, 0)
		}
		predictions.Set(i, 0, sum/n)
	}
	return predictions, nil
}

// Estimators returns the fitted trees.
func (rf *RandomForestRegressor) Estimators() []*tree.DecisionTreeRegressor {
	out := make([]*tree.DecisionTreeRegressor, len(rf.estimators))
	copy(out, rf.estimators)
	return out
}

// GetFeatureImportances は各木の重要度の平均を返す
func (rf *RandomForestRegressor) GetFeatureImportances() []float64 {
	if len(rf.estimators) == 0 {
		return nil
	}
	nFeatures, _ := rf.state.Dimensions()
	out := make([]float64, nFeatures)
	for _, est := range rf.estimators {
		for j, v := range est.GetFeatureImportances() {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(rf.estimators))
	}
	return out
}

// IsFitted returns whether the model has been fitted
func (rf *RandomForestRegressor) IsFitted() bool {
	return rf.state.IsFitted()
}

// GetParams returns the model's hyperparameters (scikit-learn compatible)
func (rf *RandomForestRegressor) GetParams() map[string]interface{} {
	var maxDepth interface{}
	if rf.maxDepth > 0 {
		maxDepth = rf.maxDepth
	}
	var maxFeatures interface{} = 1.0
	if rf.maxFeatures > 0 {
		maxFeatures = rf.maxFeatures
	}
	return map[string]interface{}{
		"n_estimators":      rf.nEstimators,
		"criterion":         "squared_error",
		"max_depth":         maxDepth,
		"min_samples_split": rf.minSamplesSplit,
		"min_samples_leaf":  rf.minSamplesLeaf,
		"max_features":      maxFeatures,
		"bootstrap":         rf.bootstrap,
		"random_state":      rf.randomState,
		"n_jobs":            rf.nJobs,
	}
}

// String returns the string representation of the model
func (rf *RandomForestRegressor) String() string {
	return fmt.Sprintf("RandomForestRegressor(n_estimators=%d, bootstrap=%t, random_state=%d, fitted=%t)",
		rf.nEstimators, rf.bootstrap, rf.randomState, rf.state.IsFitted())
}
