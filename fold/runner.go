/*
Package fold trains and evaluates a model per cross-validation fold
*/
package fold

import (
	"fmt"
	"path/filepath"
	"strings"

	"go-ml.dev/pkg/cvtrain/fu"
	"go-ml.dev/pkg/cvtrain/metrics"
	"go-ml.dev/pkg/cvtrain/model"
	"go-ml.dev/pkg/cvtrain/tables"
	"go-ml.dev/pkg/zorros/zorros"
	"go-ml.dev/pkg/zorros/zlog"
	"golang.org/x/xerrors"
)

const (
	DefaultFoldColumn          = "kfold"
	DefaultEarlyStoppingRounds = 200
	DefaultModelDir            = "cvtrain"
)

var ErrScaleFit = xerrors.New("unknown scaler fit set")

/*
ScaleFit selects rows the standard scaler is fitted on
*/
type ScaleFit int

const (
	// ScaleTrain fits scaler on the training subset only
	ScaleTrain ScaleFit = iota
	// ScaleAll fits scaler on training and validation rows together,
	// it leaks validation distribution into training
	ScaleAll
)

func ParseScaleFit(s string) (ScaleFit, error) {
	switch strings.ToLower(s) {
	case "", "train":
		return ScaleTrain, nil
	case "all":
		return ScaleAll, nil
	}
	return 0, xerrors.Errorf("`%v`: %w", s, ErrScaleFit)
}

/*
Config is a fold runner configuration
*/
type Config struct {
	Target              string         // label column
	FoldColumn          string         // fold assignment column, kfold by default
	Metric              metrics.Metric // reported metric
	Scale               bool           // standardize features
	ScaleFit            ScaleFit       // rows to fit scaler on
	Save                bool           // memorize fitted models
	Compress            bool           // xz compress memorized models
	Output              string         // directory of memorized models
	EarlyStoppingRounds int            // boosting rounds without improvement
	Params              model.Params   // model hyper-parameters
	Verbose             func(string)   // progress printer, stdout if nil
}

/*
Fit is a result of fold run
*/
type Fit struct {
	Model       model.Model
	Result      metrics.Result
	Report      *model.Report // boosting report, nil for other models
	Predictions []float64     // validation predictions
	Path        string        // memorized model file if saved
}

/*
Runner runs train/validate/save cycle of folds
*/
type Runner struct {
	Config
}

func New(cfg Config) *Runner {
	if cfg.FoldColumn == "" {
		cfg.FoldColumn = DefaultFoldColumn
	}
	if cfg.Verbose == nil {
		cfg.Verbose = func(s string) { fmt.Println(s) }
	}
	return &Runner{cfg}
}

/*
ModelFile returns name of the file model of the fold is memorized to
*/
func ModelFile(kind model.Kind, k int, compress bool) string {
	s := fmt.Sprintf("%v_%d.bin", kind, k)
	if compress {
		s += ".xz"
	}
	return s
}

func (r *Runner) output() string {
	if r.Output == "" {
		return fu.ModelPath(DefaultModelDir)
	}
	return r.Output
}

func (r *Runner) scale(ds *tables.Table, train, valid Subset) (Subset, Subset, error) {
	var s *tables.Scaler
	if r.ScaleFit == ScaleAll {
		zlog.Warning("scaler is fitted on validation rows too")
		s = tables.FitScaler(ds, r.FoldColumn, r.Target)
	} else {
		s = tables.FitScaler(train.Features)
	}
	var err error
	if train.Features, err = s.Transform(train.Features); err != nil {
		return train, valid, err
	}
	valid.Features, err = s.Transform(valid.Features)
	return train, valid, err
}

/*
Run trains a fresh model on all folds except k and evaluates it on the fold k
*/
func (r *Runner) Run(ds *tables.Table, k int, kind model.Kind) (*Fit, error) {
	r.Verbose(fmt.Sprintf("********** Train for fold number: %d **********", k))
	train, valid, err := Split(ds, r.FoldColumn, r.Target, k)
	if err != nil {
		return nil, err
	}
	if r.Scale {
		if train, valid, err = r.scale(ds, train, valid); err != nil {
			return nil, err
		}
	}
	xt, err := train.Features.Matrix()
	if err != nil {
		return nil, err
	}
	xv, err := valid.Features.Matrix()
	if err != nil {
		return nil, err
	}

	m, err := kind.New(r.Params)
	if err != nil {
		return nil, err
	}
	fit := &Fit{Model: m}
	if h, ok := m.(model.HungryModel); ok {
		src, err := model.NewMatrix(xt, train.Label)
		if err != nil {
			return nil, err
		}
		val, err := model.NewMatrix(xv, valid.Label)
		if err != nil {
			return nil, err
		}
		fit.Report, err = h.Feed(model.Dataset{Source: src, Validation: val}).Train(model.Training{
			Iterations:   int(r.Params.Get("rounds", model.DefaultRounds)),
			ScoreHistory: fu.Fnzi(r.EarlyStoppingRounds, DefaultEarlyStoppingRounds),
			Verbose:      r.Verbose,
		})
		if err != nil {
			return nil, err
		}
	} else if err = m.Fit(xt, train.Label); err != nil {
		return nil, err
	}

	if fit.Predictions, err = m.Predict(xv); err != nil {
		return nil, err
	}
	tp, err := m.Predict(xt)
	if err != nil {
		return nil, err
	}
	if fit.Result, err = metrics.Evaluate(r.Metric, tp, train.Label, valid.Label, fit.Predictions); err != nil {
		return nil, err
	}
	fit.Result.Fold = k
	r.Verbose(fit.Result.String())

	if r.Save {
		fit.Path = filepath.Join(r.output(), ModelFile(kind, k, r.Compress))
		if err = model.Memorize(fit.Path, m); err != nil {
			return nil, err
		}
	}
	return fit, nil
}

/*
LuckyRun runs fold and panics on error
*/
func (r *Runner) LuckyRun(ds *tables.Table, k int, kind model.Kind) *Fit {
	f, err := r.Run(ds, k, kind)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return f
}

/*
RunAll runs folds sequentially and stops on the first failure,
fits of completed folds are returned with the error
*/
func (r *Runner) RunAll(ds *tables.Table, folds []int, kind model.Kind) ([]*Fit, error) {
	fits := make([]*Fit, 0, len(folds))
	for _, k := range folds {
		f, err := r.Run(ds, k, kind)
		if err != nil {
			return fits, xerrors.Errorf("fold %d: %w", k, err)
		}
		fits = append(fits, f)
	}
	return fits, nil
}

/*
Range returns fold indices 0..n-1
*/
func Range(n int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = i
	}
	return r
}
