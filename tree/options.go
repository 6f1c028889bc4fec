package tree

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithMaxDepth limits the depth of the tree. 0 means unlimited, which is
// scikit-learn's max_depth=None.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeRegressor) {
		if depth >= 0 {
			dt.maxDepth = depth
		}
	}
}

// WithMinSamplesSplit sets the minimum number of samples required to split
// an internal node.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		if n >= 2 {
			dt.minSamplesSplit = n
		}
	}
}

// WithMinSamplesLeaf sets the minimum number of samples required at a leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		if n >= 1 {
			dt.minSamplesLeaf = n
		}
	}
}

// WithMaxFeatures sets how many features are examined per split. 0 means
// all features.
func WithMaxFeatures(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		if n >= 0 {
			dt.maxFeatures = n
		}
	}
}

// WithRandomState seeds the feature permutation drawn at every node.
func WithRandomState(seed int64) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.randomState = seed
	}
}
