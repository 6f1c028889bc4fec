package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/tabreg/dataset"
	"github.com/YuminosukeSato/tabreg/experiment"
	cfgpkg "github.com/YuminosukeSato/tabreg/internal/config"
	"github.com/YuminosukeSato/tabreg/pkg/log"
	"github.com/YuminosukeSato/tabreg/report"
)

// residualBins は残差ヒストグラムの既定のビン数
const residualBins = 20

type runFlags struct {
	cfgFile  string
	data     string
	target   string
	features []string
	model    string
	seed     int64
	testSize float64
	forest   int
	nJobs    int
	scale    bool
	plotDir  string
	logLevel string
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Split, train, predict and score one model",
		Example: `  tabreg run --data houses.csv --target price
  tabreg run --data houses.csv --target price --model random_forest --features rooms,area --plot-dir plots`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cfgpkg.Load(f.cfgFile)
			if err != nil {
				return err
			}
			applyFlags(cmd, &f, c)
			if err := c.Validate(); err != nil {
				return err
			}
			if err := log.SetupLogger(c.LogLevel, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return runExperiment(cmd, c)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.cfgFile, "config", "", "config file (default ./tabreg.yaml if present)")
	fl.StringVar(&f.data, "data", "", "CSV file with a header row")
	fl.StringVar(&f.target, "target", "", "target column")
	fl.StringSliceVar(&f.features, "features", nil, "feature columns (default: every other numeric column)")
	fl.StringVar(&f.model, "model", string(experiment.KindLinear), "model kind, one of the names printed by tabreg kinds")
	fl.Int64Var(&f.seed, "seed", experiment.DefaultSeed, "random seed")
	fl.Float64Var(&f.testSize, "test-size", experiment.DefaultTestSize, "held-out fraction in (0, 1)")
	fl.IntVar(&f.forest, "n-estimators", 100, "number of trees for random_forest")
	fl.IntVar(&f.nJobs, "n-jobs", -1, "goroutines for random_forest (-1 = one per CPU)")
	fl.BoolVar(&f.scale, "standardize", false, "scale features to zero mean and unit variance before fitting")
	fl.StringVar(&f.plotDir, "plot-dir", "", "write prediction.png and residuals.png here")
	fl.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	return cmd
}

// applyFlags は明示的に指定されたフラグだけで設定を上書きする
func applyFlags(cmd *cobra.Command, f *runFlags, c *cfgpkg.Experiment) {
	fl := cmd.Flags()
	if fl.Changed("data") {
		c.Data = f.data
	}
	if fl.Changed("target") {
		c.Target = f.target
	}
	if fl.Changed("features") {
		c.Features = f.features
	}
	if fl.Changed("model") {
		c.Model = f.model
	}
	if fl.Changed("seed") {
		c.Seed = f.seed
	}
	if fl.Changed("test-size") {
		c.TestSize = f.testSize
	}
	if fl.Changed("n-estimators") {
		c.NEstimators = f.forest
	}
	if fl.Changed("n-jobs") {
		c.NJobs = f.nJobs
	}
	if fl.Changed("standardize") {
		c.Standardize = f.scale
	}
	if fl.Changed("plot-dir") {
		c.PlotDir = f.plotDir
	}
	if fl.Changed("log-level") {
		c.LogLevel = f.logLevel
	}
}

func runExperiment(cmd *cobra.Command, c *cfgpkg.Experiment) error {
	logger := log.GetLoggerWithName("cli")

	frame, err := dataset.LoadCSV(c.Data)
	if err != nil {
		return err
	}
	y, err := frame.Target(c.Target)
	if err != nil {
		return err
	}
	X, err := frame.Without(c.Target).Features(c.Features...)
	if err != nil {
		return err
	}
	rows, cols := X.Dims()
	logger.Info("Dataset loaded", log.PathKey, c.Data, log.SamplesKey, rows, log.FeaturesKey, cols)

	exp, err := experiment.NewFromName(c.Model, c.Options()...)
	if err != nil {
		return err
	}
	if err := exp.Split(X, y, c.TestSize); err != nil {
		return err
	}
	if err := exp.Train(); err != nil {
		return err
	}
	preds, err := exp.Predict()
	if err != nil {
		return err
	}
	if err := exp.WriteSummary(cmd.OutOrStdout()); err != nil {
		return err
	}

	if c.PlotDir == "" {
		return nil
	}
	report.Setup(report.DefaultStyle())
	yTest := exp.HeldOutTargets()
	scatterPath := filepath.Join(c.PlotDir, "prediction.png")
	title := fmt.Sprintf("%s: predicted vs actual %s", exp.Kind(), c.Target)
	if err := report.PredictionScatter(yTest, preds, title, scatterPath); err != nil {
		return err
	}
	residualPath := filepath.Join(c.PlotDir, "residuals.png")
	bins := min(residualBins, yTest.Len())
	if err := report.ResidualHistogram(yTest, preds, bins, fmt.Sprintf("%s residuals", exp.Kind()), residualPath); err != nil {
		return err
	}
	logger.Info("Plots written", log.PathKey, c.PlotDir)
	return nil
}
