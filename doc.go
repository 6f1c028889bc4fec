// Package tabreg runs reproducible regression experiments on tabular data.
//
// tabreg wraps three regressors behind one lifecycle: split a dataset into
// training and held-out rows, fit, predict and score with R² and MSE. The
// algorithms follow scikit-learn's defaults so results line up with a
// Python workflow.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//
//	    "github.com/YuminosukeSato/tabreg/dataset"
//	    "github.com/YuminosukeSato/tabreg/experiment"
//	)
//
//	func main() {
//	    frame, err := dataset.LoadCSV("houses.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    y, err := frame.Target("price")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    X, err := frame.Without("price").Features()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    exp, err := experiment.New(experiment.KindRandomForest, experiment.WithSeed(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := exp.Split(X, y, experiment.DefaultTestSize); err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := exp.Train(); err != nil {
//	        log.Fatal(err)
//	    }
//	    if _, err := exp.Predict(); err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := exp.Summary(); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Packages
//
//   - experiment: the split, train, predict, evaluate lifecycle
//   - linear: ordinary least squares (LinearRegression)
//   - tree: CART regression tree (DecisionTreeRegressor)
//   - ensemble: bagged trees (RandomForestRegressor)
//   - model_selection: seeded train/test split
//   - metrics: MSE, RMSE, MAE, R²
//   - preprocessing: StandardScaler
//   - dataset: CSV loading through gota
//   - report: diagnostic plots through gonum/plot
//   - core/model: estimator interfaces and fitted-state tracking
//   - core/parallel: goroutine fan-out over index ranges
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// The tabreg command in cmd/tabreg runs an experiment from the shell.
package tabreg
