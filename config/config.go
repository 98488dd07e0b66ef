package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go-ml.dev/pkg/cvtrain/fold"
	"go-ml.dev/pkg/cvtrain/metrics"
	"go-ml.dev/pkg/cvtrain/model"
	"golang.org/x/xerrors"
)

// Config holds cross-validation run configuration.
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Train   TrainConfig   `mapstructure:"train"`
	Model   ModelConfig   `mapstructure:"model"`
	Results ResultsConfig `mapstructure:"results"`
}

// DataConfig locates the folds dataset.
type DataConfig struct {
	Path               string `mapstructure:"path"`
	ValidationStrategy string `mapstructure:"validation_strategy"`
	Target             string `mapstructure:"target"`
	FoldColumn         string `mapstructure:"fold_column"`
	Folds              int    `mapstructure:"folds"`
}

// TrainConfig holds evaluation and preprocessing settings.
type TrainConfig struct {
	Metric              string `mapstructure:"metric"`
	Scale               bool   `mapstructure:"scale"`
	ScaleFit            string `mapstructure:"scale_fit"`
	EarlyStoppingRounds int    `mapstructure:"early_stopping_rounds"`
}

// ModelConfig holds model persistence settings and hyper-parameters.
type ModelConfig struct {
	Save     bool               `mapstructure:"save"`
	Output   string             `mapstructure:"output"`
	Compress bool               `mapstructure:"compress"`
	Params   map[string]float64 `mapstructure:"params"`
}

// ResultsConfig locates the results ledger, empty DB disables it.
type ResultsConfig struct {
	DB string `mapstructure:"db"`
}

// Load reads configuration from file and env. Env var overrides use prefix CVTRAIN_.
// Without explicit path CVTRAIN_CONFIG or ./cvtrain.toml is used if present.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("data.path", "input")
	v.SetDefault("data.validation_strategy", "kfold")
	v.SetDefault("data.target", "target")
	v.SetDefault("data.fold_column", fold.DefaultFoldColumn)
	v.SetDefault("data.folds", 5)
	v.SetDefault("train.metric", "rmse")
	v.SetDefault("train.scale", false)
	v.SetDefault("train.scale_fit", "train")
	v.SetDefault("train.early_stopping_rounds", fold.DefaultEarlyStoppingRounds)
	v.SetDefault("model.save", false)
	v.SetDefault("model.output", "")
	v.SetDefault("model.compress", false)
	v.SetDefault("results.db", "")

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("CVTRAIN_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("cvtrain")
	}

	v.SetEnvPrefix("CVTRAIN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !xerrors.As(err, &notFound) {
			return Config{}, xerrors.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, xerrors.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// DatasetPath returns the folds file path.
func (c Config) DatasetPath() string {
	return filepath.Join(c.Data.Path, fmt.Sprintf("train_%s_folds.csv", c.Data.ValidationStrategy))
}

// Runner builds fold runner configuration.
func (c Config) Runner(verbose func(string)) (fold.Config, error) {
	m, err := metrics.Parse(c.Train.Metric)
	if err != nil {
		return fold.Config{}, err
	}
	sf, err := fold.ParseScaleFit(c.Train.ScaleFit)
	if err != nil {
		return fold.Config{}, err
	}
	return fold.Config{
		Target:              c.Data.Target,
		FoldColumn:          c.Data.FoldColumn,
		Metric:              m,
		Scale:               c.Train.Scale,
		ScaleFit:            sf,
		Save:                c.Model.Save,
		Compress:            c.Model.Compress,
		Output:              c.Model.Output,
		EarlyStoppingRounds: c.Train.EarlyStoppingRounds,
		Params:              model.Params(c.Model.Params),
		Verbose:             verbose,
	}, nil
}
