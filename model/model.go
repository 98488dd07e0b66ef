package model

import (
	"strings"

	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUnknownModel = xerrors.New("unknown model")
	ErrNotFitted    = xerrors.New("model is not fitted")
	ErrLabelType    = xerrors.New("model is incompatible with label type")
	ErrShape        = xerrors.New("inconsistent matrix shape")
)

/*
Model is a trainable predictor
*/
type Model interface {
	Kind() Kind
	Params() Params
	// Fit trains model on the feature matrix and the label vector
	Fit(x *mat.Dense, y []float64) error
	// Predict returns one prediction per row
	Predict(x *mat.Dense) ([]float64, error)
}

/*
HungryModel is an ML algorithm grows from a data to predict something
Needs to be fattened by Feed method to fit with early stopping.
*/
type HungryModel interface {
	Model
	Feed(Dataset) FatModel
}

/*
Round is a training iteration metrics
*/
type Round struct {
	Iteration   int
	Train, Test float64
	Score       float64
}

/*
Report is an ML training report
*/
type Report struct {
	History     []Round // all iterations history
	TheBest     int     // the best iteration
	Train, Test float64 // the best iteration metrics
	Score       float64 // the best score
}

/*
Workout is a training iteration abstraction
*/
type Workout interface {
	Iteration() int
	Complete(train, test float64) (*Report, bool)
	Next() Workout
	Verbose(string)
}

/*
UnifiedTraining is an interface allowing to write any logging/staging backend for ML training
*/
type UnifiedTraining interface {
	// Workout returns the first iteration workout
	Workout() Workout
}

/*
FatModel is fattened model (a training function of model instance bounded to a dataset)
*/
type FatModel func(workout Workout) (*Report, error)

/*
Train a fattened (Fat) model
*/
func (f FatModel) Train(training UnifiedTraining) (*Report, error) {
	return f(training.Workout())
}

/*
LuckyTrain trains fattened (Fat) model and trows any occurred errors as a panic
*/
func (f FatModel) LuckyTrain(training UnifiedTraining) *Report {
	m, err := f.Train(training)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return m
}

/*
Kind is a closed set of supported models
*/
type Kind int

const (
	LinearRegression Kind = iota
	DecisionTree
	KNN
	GBM
)

var kindNames = []string{"linear_regression", "decision_tree", "knn", "gbm"}

var kinds = map[string]Kind{
	"linear_regression": LinearRegression,
	"decision_tree":     DecisionTree,
	"knn":               KNN,
	"gbm":               GBM,
	"xgb":               GBM,
}

/*
ParseKind resolves model kind by name
*/
func ParseKind(name string) (Kind, error) {
	if k, ok := kinds[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return 0, xerrors.Errorf("model `%v` (known: %v): %w", name, strings.Join(kindNames, ", "), ErrUnknownModel)
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

/*
New creates a fresh untrained model
*/
func (k Kind) New(p Params) (Model, error) {
	l := learner{kind: k, params: p.Copy()}
	switch k {
	case LinearRegression:
		return &linearRegression{learner: l}, nil
	case DecisionTree:
		return &decisionTree{learner: l}, nil
	case KNN:
		return &nearestNeighbours{learner: l}, nil
	case GBM:
		return &boostedTrees{learner: l}, nil
	}
	return nil, xerrors.Errorf("model kind %d: %w", int(k), ErrUnknownModel)
}

/*
Params is a set of hyper-parameters used to create new model
*/
type Params map[string]float64

/*
Get value of the parameter by name if exists and dflt value otherwise
*/
func (p Params) Get(name string, dflt float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return dflt
}

func (p Params) Copy() Params {
	r := make(Params, len(p))
	for k, v := range p {
		r[k] = v
	}
	return r
}

// learner keeps training data of deterministic models to memorize them
type learner struct {
	kind   Kind
	params Params
	x      *mat.Dense
	y      []float64
}

func (l *learner) Kind() Kind {
	return l.kind
}

func (l *learner) Params() Params {
	return l.params.Copy()
}

func (l *learner) remember(x *mat.Dense, y []float64) {
	l.x, l.y = x, y
}

func (l *learner) snapshot() (*snapshot, error) {
	if l.x == nil {
		return nil, xerrors.Errorf("%v: %w", l.kind, ErrNotFitted)
	}
	rows, cols := l.x.Dims()
	return &snapshot{
		Kind:   l.kind.String(),
		Params: l.params.Copy(),
		Rows:   rows,
		Cols:   cols,
		X:      mat.DenseCopyOf(l.x).RawMatrix().Data,
		Y:      append([]float64(nil), l.y...),
	}, nil
}
