// Package experiment runs one regression experiment: split a dataset, fit a
// chosen algorithm, predict and score.
//
// The calls must come in order. Split before Train, Train before Predict,
// Predict before Evaluate. Out-of-order calls fail with a typed error from
// pkg/errors and leave the experiment unchanged.
//
//	exp, err := experiment.New(experiment.KindRandomForest, experiment.WithSeed(7))
//	if err != nil { ... }
//	if err := exp.Split(X, y, experiment.DefaultTestSize); err != nil { ... }
//	if err := exp.Train(); err != nil { ... }
//	if _, err := exp.Predict(); err != nil { ... }
//	scores, err := exp.Evaluate()
package experiment

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/tabreg/core/model"
	"github.com/YuminosukeSato/tabreg/metrics"
	"github.com/YuminosukeSato/tabreg/model_selection"
	"github.com/YuminosukeSato/tabreg/pkg/errors"
	"github.com/YuminosukeSato/tabreg/pkg/log"
	"github.com/YuminosukeSato/tabreg/preprocessing"
)

// DefaultTestSize is the held-out fraction used when callers have no
// preference.
const DefaultTestSize = 0.2

// Metric keys returned by Evaluate.
const (
	MetricR2  = "R2"
	MetricMSE = "MSE"
)

// Stage is the lifecycle position of an experiment.
type Stage int

const (
	StageUnfitted Stage = iota
	StageSplit
	StageTrained
	StagePredicted
)

func (s Stage) String() string {
	switch s {
	case StageUnfitted:
		return "unfitted"
	case StageSplit:
		return "split"
	case StageTrained:
		return "trained"
	case StagePredicted:
		return "predicted"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// RegressionExperiment binds one algorithm to one dataset partition.
// Its methods are safe for concurrent use.
type RegressionExperiment struct {
	mu sync.Mutex

	id     string
	kind   Kind
	seed   int64
	logger log.Logger

	model       model.Regressor
	standardize bool
	scaler      *preprocessing.StandardScaler
	fitted      bool
	stage       Stage

	split       *model_selection.Split
	predictions *mat.VecDense
}

// New は kind の推定器を既定値で作り、空の実験を返す
func New(kind Kind, opts ...Option) (*RegressionExperiment, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	cfg := defaultSettings()
	for _, opt := range opts {
		opt(cfg)
	}

	id := uuid.NewString()
	logger := cfg.logger
	if logger == nil {
		logger = log.GetLoggerWithName("experiment")
	}
	logger = logger.With(
		log.EstimatorIDKey, id,
		log.ModelKindKey, string(kind),
		log.ModelNameKey, kind.AlgorithmName(),
		log.RandomSeedKey, cfg.seed,
	)

	exp := &RegressionExperiment{
		id:          id,
		kind:        kind,
		seed:        cfg.seed,
		logger:      logger,
		model:       kind.newRegressor(cfg),
		standardize: cfg.standardize,
		stage:       StageUnfitted,
	}
	if kind == KindRandomForest {
		logger.Debug("Experiment created", log.EstimatorsKey, cfg.forestSize)
	} else {
		logger.Debug("Experiment created")
	}
	return exp, nil
}

// NewFromName parses name with ParseKind and calls New.
func NewFromName(name string, opts ...Option) (*RegressionExperiment, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return New(kind, opts...)
}

// Split partitions X and y into training and held-out sets using the
// experiment seed. A successful split replaces any earlier partition and
// drops cached predictions; a fitted model is kept.
func (e *RegressionExperiment) Split(X mat.Matrix, y mat.Vector, testSize float64) error {
	start := time.Now()

	s, err := model_selection.TrainTestSplit(X, y, testSize, e.seed)
	if err != nil {
		e.logger.Warn("Split rejected", err, log.OperationKey, log.OperationSplit)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.split = s
	e.predictions = nil
	if e.fitted {
		e.stage = StageTrained
	} else {
		e.stage = StageSplit
	}

	rows, cols := X.Dims()
	e.logger.Info("Data split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.TrainSamplesKey, len(s.TrainIndex),
		log.TestSamplesKey, len(s.TestIndex),
		log.TestSizeKey, testSize,
		log.StageKey, e.stage.String(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Train fits the algorithm on the training partition.
func (e *RegressionExperiment) Train() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.split == nil {
		return errors.NewNotSplitError("Train")
	}

	start := time.Now()
	rows, cols := e.split.XTrain.Dims()
	e.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
	)

	var XTrain mat.Matrix = e.split.XTrain
	var scaler *preprocessing.StandardScaler
	if e.standardize {
		scaler = preprocessing.NewStandardScaler(true, true)
		scaled, err := scaler.FitTransform(XTrain)
		if err != nil {
			return err
		}
		XTrain = scaled
	}

	if err := e.model.Fit(XTrain, e.split.YTrain); err != nil {
		e.logger.Error("Training failed", err, log.OperationKey, log.OperationFit)
		return err
	}

	e.scaler = scaler
	e.fitted = true
	e.predictions = nil
	e.stage = StageTrained
	e.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.StageKey, e.stage.String(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict predicts the held-out partition.
func (e *RegressionExperiment) Predict() (*mat.VecDense, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.fitted {
		return nil, errors.NewNotFittedError(e.kind.AlgorithmName(), "Predict")
	}
	return e.predictLocked(e.split.XTest, log.PhaseTesting)
}

// PredictOn predicts caller-supplied features. The result replaces the
// cached predictions, so a following Evaluate compares it with the held-out
// targets.
func (e *RegressionExperiment) PredictOn(X mat.Matrix) (*mat.VecDense, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.fitted {
		return nil, errors.NewNotFittedError(e.kind.AlgorithmName(), "PredictOn")
	}
	return e.predictLocked(X, log.PhaseInference)
}

func (e *RegressionExperiment) predictLocked(X mat.Matrix, phase string) (*mat.VecDense, error) {
	start := time.Now()

	if e.scaler != nil {
		scaled, err := e.scaler.Transform(X)
		if err != nil {
			return nil, err
		}
		X = scaled
	}

	out, err := e.model.Predict(X)
	if err != nil {
		e.logger.Error("Prediction failed", err, log.OperationKey, log.OperationPredict)
		return nil, err
	}
	preds, err := metrics.ColumnVector(out)
	if err != nil {
		return nil, err
	}

	e.predictions = preds
	e.stage = StagePredicted
	e.logger.Info("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, phase,
		log.PredsKey, preds.Len(),
		log.StageKey, e.stage.String(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return mat.VecDenseCopyOf(preds), nil
}

// Evaluate scores the cached predictions against the held-out targets and
// returns R2 and MSE. It does not change the experiment.
func (e *RegressionExperiment) Evaluate() (map[string]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	hasTargets := e.split != nil
	hasPredictions := e.predictions != nil
	if !hasTargets || !hasPredictions {
		return nil, errors.NewNoPredictionError("Evaluate", hasTargets, hasPredictions)
	}

	yTrue := e.split.YTest
	if yTrue.Len() != e.predictions.Len() {
		return nil, errors.NewDimensionError("Evaluate", yTrue.Len(), e.predictions.Len(), 0)
	}

	r2, err := metrics.R2Score(yTrue, e.predictions)
	if err != nil {
		return nil, err
	}
	mse, err := metrics.MSE(yTrue, e.predictions)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Evaluation completed",
		log.OperationKey, log.OperationScore,
		log.SamplesKey, yTrue.Len(),
		log.R2ScoreKey, r2,
		log.MSEKey, mse,
	)
	return map[string]float64{MetricR2: r2, MetricMSE: mse}, nil
}

// Summary writes the evaluation summary to standard output.
func (e *RegressionExperiment) Summary() error {
	return e.WriteSummary(os.Stdout)
}

// WriteSummary writes the kind and both metrics to w, four decimals each.
func (e *RegressionExperiment) WriteSummary(w io.Writer) error {
	scores, err := e.Evaluate()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Model: %s\nR2: %.4f\nMSE: %.4f\n", e.kind, scores[MetricR2], scores[MetricMSE])
	return errors.WithStack(err)
}

// State returns the current lifecycle stage.
func (e *RegressionExperiment) State() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stage
}

// Kind returns the algorithm kind. It never changes.
func (e *RegressionExperiment) Kind() Kind {
	return e.kind
}

// Seed returns the seed used for splitting and fitting.
func (e *RegressionExperiment) Seed() int64 {
	return e.seed
}

// ID returns the identifier attached to every log record of the experiment.
func (e *RegressionExperiment) ID() string {
	return e.id
}

// TrainSize returns the number of training rows, or 0 before Split.
func (e *RegressionExperiment) TrainSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.split == nil {
		return 0
	}
	return len(e.split.TrainIndex)
}

// TestSize returns the number of held-out rows, or 0 before Split.
func (e *RegressionExperiment) TestSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.split == nil {
		return 0
	}
	return len(e.split.TestIndex)
}

// HeldOutTargets returns a copy of the held-out targets, or nil before Split.
func (e *RegressionExperiment) HeldOutTargets() *mat.VecDense {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.split == nil {
		return nil
	}
	return mat.VecDenseCopyOf(e.split.YTest)
}

// Predictions returns a copy of the last predictions, or nil if there are
// none.
func (e *RegressionExperiment) Predictions() *mat.VecDense {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.predictions == nil {
		return nil
	}
	return mat.VecDenseCopyOf(e.predictions)
}

// Model returns the bound estimator.
func (e *RegressionExperiment) Model() model.Regressor {
	return e.model
}
