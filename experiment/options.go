package experiment

import (
	"github.com/YuminosukeSato/tabreg/ensemble"
	"github.com/YuminosukeSato/tabreg/pkg/log"
)

// DefaultSeed は scikit-learn ラッパーの既定の random_state
const DefaultSeed int64 = 42

type settings struct {
	seed        int64
	forestSize  int
	nJobs       int
	standardize bool
	logger      log.Logger
}

func defaultSettings() *settings {
	return &settings{
		seed:       DefaultSeed,
		forestSize: ensemble.DefaultNEstimators,
		nJobs:      -1,
	}
}

// Option configures a RegressionExperiment.
type Option func(*settings)

// WithSeed sets the seed used for splitting and for the tree-based
// algorithms.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// WithLogger replaces the logger obtained from the package provider.
func WithLogger(logger log.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithForestSize sets n_estimators for random_forest. Other kinds ignore it.
func WithForestSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.forestSize = n
		}
	}
}

// WithNJobs sets the number of goroutines random_forest uses. Values below
// 1 use one per CPU core.
func WithNJobs(n int) Option {
	return func(s *settings) {
		s.nJobs = n
	}
}

// WithStandardize scales features to zero mean and unit variance before
// fitting. The scaler is fitted on the training partition only and applied
// to every later prediction input.
func WithStandardize(enabled bool) Option {
	return func(s *settings) {
		s.standardize = enabled
	}
}
