package model

import (
	"github.com/sjwhitworth/golearn/linear_models"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

// ordinary least squares regression
type linearRegression struct {
	learner
	layout *layout
	lr     *linear_models.LinearRegression
}

func (m *linearRegression) Fit(x *mat.Dense, y []float64) error {
	if _, err := NewMatrix(x, y); err != nil {
		return err
	}
	_, cols := x.Dims()
	m.layout = floatLayout(cols)
	g, err := m.layout.grid(x, floatClass(y))
	if err != nil {
		return err
	}
	lr := linear_models.NewLinearRegression()
	if err = lr.Fit(g); err != nil {
		return zorros.Wrapf(err, "linear regression fit failed: %v", err.Error())
	}
	m.lr = lr
	m.remember(x, y)
	return nil
}

func (m *linearRegression) Predict(x *mat.Dense) ([]float64, error) {
	if m.lr == nil {
		return nil, xerrors.Errorf("%v: %w", m.kind, ErrNotFitted)
	}
	g, err := m.layout.grid(x, zeroClass)
	if err != nil {
		return nil, err
	}
	out, err := m.lr.Predict(g)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	return floatPredictions(out)
}
