// Package log defines standard attribute keys for regression experiments.
//
// Keys follow a hierarchical naming convention ("model.name",
// "data.samples") so log output can be filtered by category.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the algorithm, e.g. "LinearRegression".
	ModelNameKey = "model.name"

	// ModelKindKey is the experiment-level kind, e.g. "random_forest".
	ModelKindKey = "model.kind"

	// EstimatorIDKey identifies a specific experiment or model instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "split", "fit", "predict", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"

	// StageKey records the experiment lifecycle stage after an operation.
	StageKey = "ml.stage"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// TrainSamplesKey is the number of rows in the training partition.
	TrainSamplesKey = "data.train_samples"

	// TestSamplesKey is the number of rows in the held-out partition.
	TestSamplesKey = "data.test_samples"

	// TestSizeKey is the requested held-out fraction.
	TestSizeKey = "data.test_size"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// R2ScoreKey records R² coefficient of determination for regression.
	// Range typically [-∞, 1.0], with 1.0 being perfect prediction.
	R2ScoreKey = "metrics.r2_score"

	// MSEKey records the mean squared error for regression.
	MSEKey = "metrics.mse"

	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// Configuration
const (
	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// EstimatorsKey records the ensemble size.
	EstimatorsKey = "config.n_estimators"

	// PathKey records an input or output file path.
	PathKey = "io.path"
)

// Standard attribute values.
const (
	OperationSplit   = "split"
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	PhaseTraining  = "training"
	PhaseTesting   = "testing"
	PhaseInference = "inference"
)
