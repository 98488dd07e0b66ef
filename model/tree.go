package model

import (
	"github.com/sjwhitworth/golearn/trees"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

// CART regression tree, max_depth -1 grows the tree until leaves are pure
type decisionTree struct {
	learner
	layout *layout
	tree   *trees.CARTDecisionTreeRegressor
}

func newRegressionTree(depth float64) *trees.CARTDecisionTreeRegressor {
	return trees.NewDecisionTreeRegressor("mse", int64(depth))
}

func (m *decisionTree) Fit(x *mat.Dense, y []float64) error {
	if _, err := NewMatrix(x, y); err != nil {
		return err
	}
	_, cols := x.Dims()
	m.layout = floatLayout(cols)
	g, err := m.layout.grid(x, floatClass(y))
	if err != nil {
		return err
	}
	tree := newRegressionTree(m.params.Get("max_depth", -1))
	if err = tree.Fit(g); err != nil {
		return zorros.Wrapf(err, "decision tree fit failed: %v", err.Error())
	}
	m.tree = tree
	m.remember(x, y)
	return nil
}

func (m *decisionTree) Predict(x *mat.Dense) ([]float64, error) {
	if m.tree == nil {
		return nil, xerrors.Errorf("%v: %w", m.kind, ErrNotFitted)
	}
	g, err := m.layout.grid(x, zeroClass)
	if err != nil {
		return nil, err
	}
	return m.tree.Predict(g), nil
}
