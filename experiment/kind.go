package experiment

import (
	"github.com/YuminosukeSato/tabreg/core/model"
	"github.com/YuminosukeSato/tabreg/ensemble"
	"github.com/YuminosukeSato/tabreg/linear"
	"github.com/YuminosukeSato/tabreg/pkg/errors"
	"github.com/YuminosukeSato/tabreg/tree"
)

// Kind names one of the supported regression algorithms.
type Kind string

const (
	KindLinear       Kind = "linear"
	KindDecisionTree Kind = "decision_tree"
	KindRandomForest Kind = "random_forest"
)

var kinds = []Kind{KindLinear, KindDecisionTree, KindRandomForest}

// Kinds returns every supported kind in a fixed order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind は名前を Kind に変換する。未対応の名前は UnsupportedModelKindError
func ParseKind(name string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == name {
			return k, nil
		}
	}
	supported := make([]string, len(kinds))
	for i, k := range kinds {
		supported[i] = string(k)
	}
	return "", errors.NewUnsupportedModelKindError(name, supported)
}

// AlgorithmName returns the estimator type name bound to the kind.
func (k Kind) AlgorithmName() string {
	switch k {
	case KindLinear:
		return "LinearRegression"
	case KindDecisionTree:
		return "DecisionTreeRegressor"
	case KindRandomForest:
		return "RandomForestRegressor"
	default:
		return string(k)
	}
}

// newRegressor は kind に対応する推定器を既定のハイパーパラメータで作る。
// linear は決定的なので seed を使わない
func (k Kind) newRegressor(cfg *settings) model.Regressor {
	switch k {
	case KindDecisionTree:
		return tree.NewDecisionTreeRegressor(tree.WithRandomState(cfg.seed))
	case KindRandomForest:
		return ensemble.NewRandomForestRegressor(
			ensemble.WithNEstimators(cfg.forestSize),
			ensemble.WithRandomState(cfg.seed),
			ensemble.WithNJobs(cfg.nJobs),
		)
	default:
		return linear.NewLinearRegression()
	}
}
