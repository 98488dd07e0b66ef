package fold

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"go-ml.dev/pkg/cvtrain/metrics"
	"go-ml.dev/pkg/cvtrain/model"
	"go-ml.dev/pkg/cvtrain/tables"
	"golang.org/x/xerrors"
	"gotest.tools/assert"
)

// 100 rows, folds 0..4 of 20 contiguous rows each
func dataset(t *testing.T) *tables.Table {
	n := 100
	id, a, b, k, y := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		id[i] = float64(i)
		a[i] = float64((i * 37) % 101)
		b[i] = float64((i * 7) % 13)
		k[i] = float64(i / 20)
		y[i] = 0.5*a[i] - 2*b[i] + 3
	}
	q, err := tables.New([]string{"id", "a", "b", "kfold", "y"}, [][]float64{id, a, b, k, y})
	assert.NilError(t, err)
	return q
}

func quiet(lines *[]string) func(string) {
	return func(s string) { *lines = append(*lines, s) }
}

func Test_SplitPartitionsRows(t *testing.T) {
	q := dataset(t)
	for k := 0; k < 5; k++ {
		train, valid, err := Split(q, "kfold", "y", k)
		assert.NilError(t, err)
		assert.DeepEqual(t, train.Features.Names(), []string{"id", "a", "b"})
		ti, _ := train.Features.Col("id")
		vi, _ := valid.Features.Col("id")
		seen := map[float64]int{}
		for _, x := range append(append([]float64{}, ti...), vi...) {
			seen[x]++
		}
		assert.Equal(t, len(seen), q.Len())
		for _, c := range seen {
			assert.Equal(t, c, 1)
		}
		for _, x := range vi {
			assert.Equal(t, int(x)/20, k)
		}
		assert.Equal(t, len(train.Label), 80)
		assert.Equal(t, len(valid.Label), 20)
	}
}

func Test_SplitErrors(t *testing.T) {
	q := dataset(t)
	_, _, err := Split(q, "fold", "y", 0)
	assert.Assert(t, xerrors.Is(err, tables.ErrMissingColumn))
	_, _, err = Split(q, "kfold", "target", 0)
	assert.Assert(t, xerrors.Is(err, tables.ErrMissingColumn))
	assert.ErrorContains(t, err, "target")
	_, _, err = Split(q, "kfold", "y", 7)
	assert.Assert(t, xerrors.Is(err, ErrEmptyFold))

	one := q.Filter(func(i int) bool { return i < 20 })
	_, _, err = Split(one, "kfold", "y", 0)
	assert.Assert(t, xerrors.Is(err, ErrEmptyFold))
}

func Test_RunDecisionTreeFold(t *testing.T) {
	var lines []string
	r := New(Config{Target: "y", Metric: metrics.RMSE, Verbose: quiet(&lines)})
	f, err := r.Run(dataset(t), 2, model.DecisionTree)
	assert.NilError(t, err)
	assert.Equal(t, len(f.Predictions), 20)
	assert.Equal(t, f.Result.Fold, 2)
	assert.Equal(t, f.Result.Metric, metrics.RMSE)
	assert.Assert(t, f.Report == nil)
	assert.Equal(t, f.Path, "")
	assert.Equal(t, len(lines), 2)
	assert.Equal(t, lines[0], "********** Train for fold number: 2 **********")
	assert.Assert(t, strings.Contains(lines[1], "Fold=2"))
	assert.Equal(t, lines[1], f.Result.String())
}

func Test_RunIsDeterministic(t *testing.T) {
	var lines []string
	r := New(Config{Target: "y", Metric: metrics.MSE, Verbose: quiet(&lines)})
	a := r.LuckyRun(dataset(t), 1, model.DecisionTree)
	b := r.LuckyRun(dataset(t), 1, model.DecisionTree)
	assert.DeepEqual(t, a.Predictions, b.Predictions)
	assert.Equal(t, a.Result, b.Result)
}

func Test_RunLinearRegression(t *testing.T) {
	var lines []string
	r := New(Config{Target: "y", Metric: metrics.RMSE, Verbose: quiet(&lines)})
	f, err := r.Run(dataset(t), 0, model.LinearRegression)
	assert.NilError(t, err)
	assert.Assert(t, f.Result.Valid < 1e-6)
	assert.Assert(t, f.Result.Train < 1e-6)
}

func Test_RunSavesOneFilePerFold(t *testing.T) {
	var lines []string
	dir := filepath.Join(t.TempDir(), "models", "nested")
	r := New(Config{Target: "y", Metric: metrics.RMSE, Save: true, Output: dir, Verbose: quiet(&lines)})
	q := dataset(t)
	f := r.LuckyRun(q, 3, model.DecisionTree)
	assert.Equal(t, f.Path, filepath.Join(dir, "decision_tree_3.bin"))
	r.LuckyRun(q, 3, model.DecisionTree)
	files, err := os.ReadDir(dir)
	assert.NilError(t, err)
	assert.Equal(t, len(files), 1)
	assert.Equal(t, files[0].Name(), "decision_tree_3.bin")

	m, err := model.Restore(f.Path)
	assert.NilError(t, err)
	_, valid, _ := Split(q, "kfold", "y", 3)
	x, _ := valid.Features.Matrix()
	p, err := m.Predict(x)
	assert.NilError(t, err)
	assert.DeepEqual(t, p, f.Predictions)
}

func Test_RunSavesCompressed(t *testing.T) {
	var lines []string
	dir := t.TempDir()
	r := New(Config{Target: "y", Metric: metrics.MSE, Save: true, Compress: true, Output: dir, Verbose: quiet(&lines)})
	f := r.LuckyRun(dataset(t), 0, model.LinearRegression)
	assert.Equal(t, filepath.Base(f.Path), "linear_regression_0.bin.xz")
	_, err := os.Stat(f.Path)
	assert.NilError(t, err)
}

func Test_RunScaled(t *testing.T) {
	var lines []string
	q := dataset(t)
	for _, fit := range []ScaleFit{ScaleTrain, ScaleAll} {
		r := New(Config{Target: "y", Metric: metrics.RMSE, Scale: true, ScaleFit: fit, Verbose: quiet(&lines)})
		f, err := r.Run(q, 4, model.LinearRegression)
		assert.NilError(t, err)
		assert.Assert(t, f.Result.Valid < 1e-6)
	}
	a, _ := q.Col("a")
	assert.Equal(t, a[1], 37.0)
}

func Test_ParseScaleFit(t *testing.T) {
	s, err := ParseScaleFit("all")
	assert.NilError(t, err)
	assert.Equal(t, s, ScaleAll)
	s, err = ParseScaleFit("")
	assert.NilError(t, err)
	assert.Equal(t, s, ScaleTrain)
	_, err = ParseScaleFit("valid")
	assert.Assert(t, xerrors.Is(err, ErrScaleFit))
}

func Test_RunBoosted(t *testing.T) {
	var lines []string
	r := New(Config{
		Target:              "y",
		Metric:              metrics.RMSE,
		EarlyStoppingRounds: 3,
		Params:              model.Params{"rounds": 30, "learning_rate": 0.5},
		Verbose:             quiet(&lines),
	})
	f, err := r.Run(dataset(t), 1, model.GBM)
	assert.NilError(t, err)
	assert.Assert(t, f.Report != nil)
	assert.Assert(t, len(f.Report.History) <= 30)
	assert.Assert(t, math.Abs(f.Report.Test-f.Result.Valid) < 1e-9)
	assert.Equal(t, len(lines), len(f.Report.History)+2)
	assert.Assert(t, strings.HasPrefix(lines[1], "[  0] train:"))
}

func Test_RunF1(t *testing.T) {
	q := dataset(t)
	a, _ := q.Col("a")
	c := make([]float64, len(a))
	for i, x := range a {
		if x > 50 {
			c[i] = 1
		}
	}
	q, err := q.Except("id").With(c, "y")
	assert.NilError(t, err)
	var lines []string
	r := New(Config{Target: "y", Metric: metrics.F1, Params: model.Params{"k": 3}, Verbose: quiet(&lines)})
	f, err := r.Run(q, 0, model.KNN)
	assert.NilError(t, err)
	assert.Assert(t, f.Result.Valid > 0.5)
	for _, p := range f.Predictions {
		assert.Assert(t, p == 0 || p == 1)
	}
}

func Test_RunMetricLabelMismatch(t *testing.T) {
	var lines []string
	r := New(Config{Target: "y", Metric: metrics.F1, Verbose: quiet(&lines)})
	_, err := r.Run(dataset(t), 0, model.LinearRegression)
	assert.Assert(t, xerrors.Is(err, metrics.ErrLabelType))
}

func Test_RunAll(t *testing.T) {
	var lines []string
	r := New(Config{Target: "y", Metric: metrics.RMSE, Verbose: quiet(&lines)})
	fits, err := r.RunAll(dataset(t), Range(5), model.DecisionTree)
	assert.NilError(t, err)
	assert.Equal(t, len(fits), 5)
	folds := []int{}
	for _, f := range fits {
		folds = append(folds, f.Result.Fold)
	}
	assert.Assert(t, sort.IntsAreSorted(folds))
	assert.Equal(t, len(lines), 10)
}

func Test_RunAllAbortsOnFailure(t *testing.T) {
	var lines []string
	r := New(Config{Target: "y", Metric: metrics.RMSE, Verbose: quiet(&lines)})
	fits, err := r.RunAll(dataset(t), []int{0, 1, 9, 2}, model.DecisionTree)
	assert.Assert(t, xerrors.Is(err, ErrEmptyFold))
	assert.ErrorContains(t, err, "fold 9")
	assert.Equal(t, len(fits), 2)
}

func Test_ModelFile(t *testing.T) {
	assert.Equal(t, ModelFile(model.KNN, 4, false), "knn_4.bin")
	assert.Equal(t, ModelFile(model.GBM, 0, true), "gbm_0.bin.xz")
}
