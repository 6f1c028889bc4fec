package ensemble

// Option configures a RandomForestRegressor.
type Option func(*RandomForestRegressor)

// WithNEstimators sets the number of trees in the forest.
func WithNEstimators(n int) Option {
	return func(rf *RandomForestRegressor) {
		if n > 0 {
			rf.nEstimators = n
		}
	}
}

// WithRandomState seeds bootstrap sampling and every tree.
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestRegressor) {
		rf.randomState = seed
	}
}

// WithNJobs sets the number of goroutines used to fit and predict.
// Values below 1 use one goroutine per CPU core.
func WithNJobs(n int) Option {
	return func(rf *RandomForestRegressor) {
		rf.nJobs = n
	}
}

// WithMaxDepth limits the depth of every tree. 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestRegressor) {
		if depth >= 0 {
			rf.maxDepth = depth
		}
	}
}

// WithMinSamplesSplit sets min_samples_split for every tree.
func WithMinSamplesSplit(n int) Option {
	return func(rf *RandomForestRegressor) {
		if n >= 2 {
			rf.minSamplesSplit = n
		}
	}
}

// WithMinSamplesLeaf sets min_samples_leaf for every tree.
func WithMinSamplesLeaf(n int) Option {
	return func(rf *RandomForestRegressor) {
		if n >= 1 {
			rf.minSamplesLeaf = n
		}
	}
}

// WithMaxFeatures sets how many features each split examines. 0 means all.
func WithMaxFeatures(n int) Option {
	return func(rf *RandomForestRegressor) {
		if n >= 0 {
			rf.maxFeatures = n
		}
	}
}

// WithBootstrap sets whether each tree sees a bootstrap sample. When false
// every tree is fitted on the full training set.
func WithBootstrap(bootstrap bool) Option {
	return func(rf *RandomForestRegressor) {
		rf.bootstrap = bootstrap
	}
}
