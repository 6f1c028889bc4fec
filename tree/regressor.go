// Package tree は CART による回帰木を提供する
package tree

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabreg/core/model"
	"github.com/YuminosukeSato/tabreg/pkg/errors"
)

// impurityEpsilon 以下の不純度のノードは分割しない
const impurityEpsilon = 1e-15

// node は配列で保持される木のノード。left == -1 なら葉
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
	nSamples  int
	impurity  float64
}

func (n *node) isLeaf() bool {
	return n.left < 0
}

// DecisionTreeRegressor is a CART regression tree using the squared error
// criterion, matching scikit-learn's DecisionTreeRegressor. Samples with
// x[feature] <= threshold go to the left child.
//
// Features are visited in a random order at every node and the first best
// split wins ties, so the fitted tree is a function of the random state.
type DecisionTreeRegressor struct {
	state *model.StateManager

	// Hyperparameters
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	randomState     int64

	// Learned structure
	nodes       []node
	depth       int
	nLeaves     int
	importances []float64
}

// NewDecisionTreeRegressor は新しい回帰木を作成する
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{
		state:           model.NewStateManager(),
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// Fit は訓練データ全体で木を構築する
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")

	rows, _ := X.Dims()
	sample := make([]int, rows)
	for i := range sample {
		sample[i] = i
	}
	return dt.fit(X, y, sample)
}

// FitSample builds the tree on the given rows of X and y. Rows may repeat,
// which is how a bootstrap sample is passed in. X is only read.
func (dt *DecisionTreeRegressor) FitSample(X, y mat.Matrix, sample []int) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.FitSample")
	return dt.fit(X, y, sample)
}

func (dt *DecisionTreeRegressor) fit(X, y mat.Matrix, sample []int) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 || len(sample) == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != rows {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("DecisionTreeRegressor.Fit", "y must be a column vector")
	}
	for _, r := range sample {
		if r < 0 || r >= rows {
			return errors.NewValueError("DecisionTreeRegressor.Fit", fmt.Sprintf("sample index %d out of range [0, %d)", r, rows))
		}
	}
	if err := errors.CheckMatrix("DecisionTreeRegressor.Fit", X); err != nil {
		return err
	}
	if err := errors.CheckMatrix("DecisionTreeRegressor.Fit", y); err != nil {
		return err
	}

	targets := make([]float64, rows)
	for i := range targets {
		targets[i] = y.At(i, 0)
	}

	maxFeatures := dt.maxFeatures
	if maxFeatures == 0 || maxFeatures > cols {
		maxFeatures = cols
	}

	b := &builder{
		X:           X,
		y:           targets,
		rng:         rand.New(rand.NewPCG(uint64(dt.randomState), 0)),
		maxDepth:    dt.maxDepth,
		minSplit:    dt.minSamplesSplit,
		minLeaf:     dt.minSamplesLeaf,
		maxFeatures: maxFeatures,
		nFeatures:   cols,
		importances: make([]float64, cols),
	}

	rowsCopy := make([]int, len(sample))
	copy(rowsCopy, sample)
	b.build(rowsCopy, 0)

	// 重要度は合計が1になるよう正規化する（根が葉なら全て0）
	var total float64
	for _, v := range b.importances {
		total += v
	}
	if total > 0 {
		for i := range b.importances {
			b.importances[i] /= total
		}
	}

	dt.nodes = b.nodes
	dt.depth = b.depth
	dt.nLeaves = b.nLeaves
	dt.importances = b.importances
	dt.state.SetFitted(cols, len(sample))
	return nil
}

// Predict は各行が到達した葉の平均値を n×1 の行列で返す
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Predict")

	if err := dt.state.CheckFeatures("DecisionTreeRegressor", "Predict", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	if rows == 0 {
		return nil, errors.NewModelError("DecisionTreeRegressor.Predict", "empty data", errors.ErrEmptyData)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		predictions.Set(i, 0, dt.predictRow(X, i))
	}
	return predictions, nil
}

// predictRow returns the prediction for row i of X without validation.
// Callers must have checked X against the fitted feature count.
func (dt *DecisionTreeRegressor) predictRow(X mat.Matrix, i int) float64 {
	idx := 0
	for {
		n := &dt.nodes[idx]
		if n.isLeaf() {
			return n.value
		}
		if X.At(i, n.feature) <= n.threshold {
			idx = n.left
		} else {
			idx = n.right
		}
	}
}

// GetDepth は木の深さを返す（根のみなら0）
func (dt *DecisionTreeRegressor) GetDepth() int {
	return dt.depth
}

// GetNLeaves は葉の数を返す
func (dt *DecisionTreeRegressor) GetNLeaves() int {
	return dt.nLeaves
}

// GetFeatureImportances returns the normalized total squared-error
// reduction contributed by each feature.
func (dt *DecisionTreeRegressor) GetFeatureImportances() []float64 {
	if dt.importances == nil {
		return nil
	}
	out := make([]float64, len(dt.importances))
	copy(out, dt.importances)
	return out
}

// IsFitted returns whether the model has been fitted
func (dt *DecisionTreeRegressor) IsFitted() bool {
	return dt.state.IsFitted()
}

// GetParams returns the model's hyperparameters (scikit-learn compatible)
func (dt *DecisionTreeRegressor) GetParams() map[string]interface{} {
	var maxDepth interface{}
	if dt.maxDepth > 0 {
		maxDepth = dt.maxDepth
	}
	var maxFeatures interface{}
	if dt.maxFeatures > 0 {
		maxFeatures = dt.maxFeatures
	}
	return map[string]interface{}{
		"criterion":         "squared_error",
		"max_depth":         maxDepth,
		"min_samples_split": dt.minSamplesSplit,
		"min_samples_leaf":  dt.minSamplesLeaf,
		"max_features":      maxFeatures,
		"random_state":      dt.randomState,
	}
}

// String returns the string representation of the model
func (dt *DecisionTreeRegressor) String() string {
	if !dt.state.IsFitted() {
		return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d, min_samples_split=%d, min_samples_leaf=%d, random_state=%d)",
			dt.maxDepth, dt.minSamplesSplit, dt.minSamplesLeaf, dt.randomState)
	}
	return fmt.Sprintf("DecisionTreeRegressor(depth=%d, n_leaves=%d, fitted=true)", dt.depth, dt.nLeaves)
}

// builder は一回の Fit の間だけ使う作業領域
type builder struct {
	X   mat.Matrix
	y   []float64
	rng *rand.Rand

	maxDepth    int
	minSplit    int
	minLeaf     int
	maxFeatures int
	nFeatures   int

	nodes       []node
	depth       int
	nLeaves     int
	importances []float64
}

type split struct {
	feature   int
	threshold float64
	pos       int
	proxy     float64
}

// build はノードを追加し、そのインデックスを返す。rows は並べ替えられる
func (b *builder) build(rows []int, depth int) int {
	n := len(rows)
	var sum, sumSq float64
	for _, r := range rows {
		sum += b.y[r]
		sumSq += b.y[r] * b.y[r]
	}
	mean := sum / float64(n)
	impurity := max(sumSq/float64(n)-mean*mean, 0)

	idx := len(b.nodes)
	b.nodes = append(b.nodes, node{feature: -1, left: -1, right: -1, value: mean, nSamples: n, impurity: impurity})
	if depth > b.depth {
		b.depth = depth
	}

	if (b.maxDepth > 0 && depth >= b.maxDepth) ||
		n < b.minSplit ||
		n < 2*b.minLeaf ||
		impurity <= impurityEpsilon {
		b.nLeaves++
		return idx
	}

	best, ok := b.bestSplit(rows, sum)
	if !ok {
		b.nLeaves++
		return idx
	}

	// best.feature で並べ替えた状態に戻して左右に分ける
	b.sortBy(rows, best.feature)
	left, right := rows[:best.pos], rows[best.pos:]

	leftImp := b.impurityOf(left)
	rightImp := b.impurityOf(right)
	b.importances[best.feature] += float64(n)*impurity - float64(len(left))*leftImp - float64(len(right))*rightImp

	b.nodes[idx].feature = best.feature
	b.nodes[idx].threshold = best.threshold
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[idx].left = l
	b.nodes[idx].right = r
	return idx
}

// bestSplit searches maxFeatures features in a fresh random order. The
// proxy sumL²/nL + sumR²/nR is maximized, which minimizes the summed
// squared error of the children.
func (b *builder) bestSplit(rows []int, total float64) (split, bool) {
	n := len(rows)
	best := split{feature: -1}
	found := false

	perm := b.rng.Perm(b.nFeatures)
	for _, f := range perm[:b.maxFeatures] {
		b.sortBy(rows, f)

		var sumLeft float64
		for i := 1; i < n; i++ {
			sumLeft += b.y[rows[i-1]]
			if i < b.minLeaf || n-i < b.minLeaf {
				continue
			}
			lo, hi := b.X.At(rows[i-1], f), b.X.At(rows[i], f)
			if lo == hi {
				continue
			}
			sumRight := total - sumLeft
			proxy := sumLeft*sumLeft/float64(i) + sumRight*sumRight/float64(n-i)
			if !found || proxy > best.proxy {
				threshold := lo/2 + hi/2
				if threshold == hi {
					threshold = lo
				}
				best = split{feature: f, threshold: threshold, pos: i, proxy: proxy}
				found = true
			}
		}
	}
	return best, found
}

func (b *builder) sortBy(rows []int, feature int) {
	slices.SortStableFunc(rows, func(a, c int) int {
		return cmp.Compare(b.X.At(a, feature), b.X.At(c, feature))
	})
}

func (b *builder) impurityOf(rows []int) float64 {
	var sum, sumSq float64
	for _, r := range rows {
		sum += b.y[r]
		sumSq += b.y[r] * b.y[r]
	}
	mean := sum / float64(len(rows))
	return max(sumSq/float64(len(rows))-mean*mean, 0)
}
