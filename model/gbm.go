package model

import (
	"math"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/trees"
	"go-ml.dev/pkg/cvtrain/fu"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultRounds       = 1000
	DefaultLearningRate = 0.1
	DefaultTreeDepth    = 3
)

/*
boostedTrees is a gradient boosting ensemble of CART regression trees
fitted on squared error residuals
*/
type boostedTrees struct {
	learner
	layout *layout
	bias   float64
	rate   float64
	trees  []*trees.CARTDecisionTreeRegressor
}

func (m *boostedTrees) rounds() int {
	return fu.Maxi(int(m.params.Get("rounds", DefaultRounds)), 1)
}

/*
Fit trains exactly `rounds` trees without early stopping
*/
func (m *boostedTrees) Fit(x *mat.Dense, y []float64) error {
	src, err := NewMatrix(x, y)
	if err != nil {
		return err
	}
	n := m.rounds()
	_, err = m.Feed(Dataset{Source: src}).Train(Training{Iterations: n, ScoreHistory: n + 1})
	return err
}

/*
Feed binds model to the dataset, trees are fitted on Source
and the validation error drives the early stopping
*/
func (m *boostedTrees) Feed(ds Dataset) FatModel {
	return func(w Workout) (*Report, error) {
		return m.boost(ds, w)
	}
}

func (m *boostedTrees) boost(ds Dataset, w Workout) (*Report, error) {
	if ds.Source == nil {
		return nil, xerrors.Errorf("no training data: %w", ErrShape)
	}
	train, valid := ds.Source, ds.validation()
	_, cols := train.X.Dims()
	m.layout = floatLayout(cols)
	m.rate = m.params.Get("learning_rate", DefaultLearningRate)
	m.bias = fu.Mean(train.Label)
	m.trees = nil

	tp := fill(len(train.Label), m.bias)
	vp := fill(len(valid.Label), m.bias)
	g, err := m.layout.grid(train.X, func(i int) []byte { return base.PackFloatToBytes(train.Label[i] - tp[i]) })
	if err != nil {
		return nil, err
	}
	residual, err := g.GetAttribute(m.layout.class)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	vg, err := m.layout.grid(valid.X, zeroClass)
	if err != nil {
		return nil, err
	}
	depth := m.params.Get("max_depth", DefaultTreeDepth)

	for ; w != nil; w = w.Next() {
		for i := range tp {
			g.Set(residual, i, base.PackFloatToBytes(train.Label[i]-tp[i]))
		}
		tree := newRegressionTree(depth)
		if err = tree.Fit(g); err != nil {
			return nil, zorros.Wrapf(err, "boosting round %d failed: %v", w.Iteration(), err.Error())
		}
		m.trees = append(m.trees, tree)
		for i, v := range tree.Predict(g) {
			tp[i] += m.rate * v
		}
		for i, v := range tree.Predict(vg) {
			vp[i] += m.rate * v
		}
		report, done := w.Complete(rmse(train.Label, tp), rmse(valid.Label, vp))
		if done {
			m.trees = m.trees[:report.TheBest+1]
			m.remember(train.X, train.Label)
			return report, nil
		}
	}
	return nil, zorros.Errorf("training is interrupted after %d rounds", len(m.trees))
}

func (m *boostedTrees) Predict(x *mat.Dense) ([]float64, error) {
	if len(m.trees) == 0 {
		return nil, xerrors.Errorf("%v: %w", m.kind, ErrNotFitted)
	}
	g, err := m.layout.grid(x, zeroClass)
	if err != nil {
		return nil, err
	}
	rows, _ := x.Dims()
	r := fill(rows, m.bias)
	for _, t := range m.trees {
		for i, v := range t.Predict(g) {
			r[i] += m.rate * v
		}
	}
	return r, nil
}

// snapshot fixes rounds to the count of kept trees
func (m *boostedTrees) snapshot() (*snapshot, error) {
	s, err := m.learner.snapshot()
	if err != nil {
		return nil, err
	}
	s.Params["rounds"] = float64(len(m.trees))
	return s, nil
}

func fill(n int, v float64) []float64 {
	r := make([]float64, n)
	for i := range r {
		r[i] = v
	}
	return r
}

func rmse(a, b []float64) float64 {
	return math.Sqrt(fu.Mse(a, b))
}
