// Package config loads the tabreg CLI configuration with viper.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/tabreg/experiment"
	"github.com/YuminosukeSato/tabreg/pkg/errors"
)

// EnvPrefix prefixes every environment variable, e.g. TABREG_SEED.
const EnvPrefix = "TABREG"

// Experiment is the configuration of one CLI run.
type Experiment struct {
	Data     string   `mapstructure:"data" yaml:"data"`
	Target   string   `mapstructure:"target" yaml:"target"`
	Features []string `mapstructure:"features" yaml:"features,omitempty"`

	Model       string  `mapstructure:"model" yaml:"model"`
	Seed        int64   `mapstructure:"seed" yaml:"seed"`
	TestSize    float64 `mapstructure:"test_size" yaml:"test_size"`
	NEstimators int     `mapstructure:"n_estimators" yaml:"n_estimators"`
	NJobs       int     `mapstructure:"n_jobs" yaml:"n_jobs"`
	Standardize bool    `mapstructure:"standardize" yaml:"standardize"`

	PlotDir  string `mapstructure:"plot_dir" yaml:"plot_dir,omitempty"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
//
// With an empty cfgFile, ./tabreg.yaml is read if it exists.
func Load(cfgFile string) (*Experiment, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("data", "")
	v.SetDefault("target", "")
	v.SetDefault("features", []string{})
	v.SetDefault("model", string(experiment.KindLinear))
	v.SetDefault("seed", experiment.DefaultSeed)
	v.SetDefault("test_size", experiment.DefaultTestSize)
	v.SetDefault("n_estimators", 100)
	v.SetDefault("n_jobs", -1)
	v.SetDefault("standardize", false)
	v.SetDefault("plot_dir", "")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("tabreg")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var c Experiment
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &c, nil
}

// Validate checks the values Load cannot check on its own.
func (c *Experiment) Validate() error {
	if _, err := experiment.ParseKind(c.Model); err != nil {
		return err
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return errors.NewValidationError("test_size", "must be in the open interval (0, 1)", c.TestSize)
	}
	if c.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", c.NEstimators)
	}
	if c.Data == "" {
		return errors.NewValidationError("data", "a CSV path is required", c.Data)
	}
	if c.Target == "" {
		return errors.NewValidationError("target", "a target column is required", c.Target)
	}
	return nil
}

// Options converts the configuration into experiment options.
func (c *Experiment) Options() []experiment.Option {
	return []experiment.Option{
		experiment.WithSeed(c.Seed),
		experiment.WithForestSize(c.NEstimators),
		experiment.WithNJobs(c.NJobs),
		experiment.WithStandardize(c.Standardize),
	}
}

// Save writes c as YAML to path, creating the directory if necessary.
func Save(c *Experiment, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "mkdir config dir")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}
