package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"go-ml.dev/pkg/cvtrain/fold"
	"go-ml.dev/pkg/cvtrain/metrics"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

const sample = `
[data]
path = "/data/house"
validation_strategy = "stratified"
target = "price"
folds = 3

[train]
metric = "mse"
scale = true
scale_fit = "all"

[model]
save = true
compress = true
output = "/tmp/models"

[model.params]
max_depth = 6
learning_rate = 0.05
`

func write(t *testing.T, s string) string {
	path := filepath.Join(t.TempDir(), "cvtrain.toml")
	assert.NilError(t, os.WriteFile(path, []byte(s), 0o644))
	return path
}

func Test_LoadFile(t *testing.T) {
	c, err := Load(write(t, sample))
	assert.NilError(t, err)
	assert.Equal(t, c.Data.Target, "price")
	assert.Equal(t, c.Data.FoldColumn, "kfold")
	assert.Equal(t, c.Data.Folds, 3)
	assert.Equal(t, c.DatasetPath(), filepath.Join("/data/house", "train_stratified_folds.csv"))
	assert.Equal(t, c.Model.Params["max_depth"], 6.0)

	r, err := c.Runner(nil)
	assert.NilError(t, err)
	assert.Equal(t, r.Metric, metrics.MSE)
	assert.Equal(t, r.ScaleFit, fold.ScaleAll)
	assert.Assert(t, r.Scale && r.Save && r.Compress)
	assert.Equal(t, r.EarlyStoppingRounds, fold.DefaultEarlyStoppingRounds)
	assert.Equal(t, r.Params.Get("learning_rate", 0), 0.05)
}

func Test_LoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CVTRAIN_CONFIG", "")
	c, err := Load("")
	assert.NilError(t, err)
	assert.Equal(t, c.Data.Folds, 5)
	assert.Equal(t, c.Train.Metric, "rmse")
	assert.Equal(t, c.DatasetPath(), filepath.Join("input", "train_kfold_folds.csv"))
}

func Test_LoadEnvOverride(t *testing.T) {
	t.Setenv("CVTRAIN_TRAIN_METRIC", "f1")
	c, err := Load(write(t, sample))
	assert.NilError(t, err)
	assert.Equal(t, c.Train.Metric, "f1")
}

func Test_LoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorContains(t, err, "read config")
	assert.Assert(t, xerrors.Is(err, fs.ErrNotExist))
}

func Test_RunnerRejectsUnknownMetric(t *testing.T) {
	c, err := Load(write(t, "[train]\nmetric = \"auc\"\n"))
	assert.NilError(t, err)
	_, err = c.Runner(nil)
	assert.Assert(t, xerrors.Is(err, metrics.ErrUnknownMetric))
}
