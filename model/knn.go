package model

import (
	"strconv"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/knn"
	"go-ml.dev/pkg/cvtrain/fu"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

const DefaultNeighbours = 5

// k nearest neighbours classifier over euclidean distance
type nearestNeighbours struct {
	learner
	layout *layout
	class  *base.CategoricalAttribute
	filler []byte // system value of a known class to fill predict grids
	knn    *knn.KNNClassifier
}

func label(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func (m *nearestNeighbours) Fit(x *mat.Dense, y []float64) error {
	if _, err := NewMatrix(x, y); err != nil {
		return err
	}
	if !fu.Integral(y) {
		return xerrors.Errorf("knn classifier requires discrete labels: %w", ErrLabelType)
	}
	_, cols := x.Dims()
	class := base.NewCategoricalAttribute()
	class.SetName(target)
	sysvals := make([][]byte, len(y))
	for i, v := range y {
		sysvals[i] = class.GetSysValFromString(label(v))
	}
	m.layout = newLayout(cols, class)
	g, err := m.layout.grid(x, func(i int) []byte { return sysvals[i] })
	if err != nil {
		return err
	}
	k := int(m.params.Get("k", DefaultNeighbours))
	cls := knn.NewKnnClassifier("euclidean", "linear", fu.Mini(fu.Maxi(k, 1), len(y)))
	if err = cls.Fit(g); err != nil {
		return zorros.Wrapf(err, "knn fit failed: %v", err.Error())
	}
	m.class, m.filler, m.knn = class, sysvals[0], cls
	m.remember(x, y)
	return nil
}

func (m *nearestNeighbours) Predict(x *mat.Dense) ([]float64, error) {
	if m.knn == nil {
		return nil, xerrors.Errorf("%v: %w", m.kind, ErrNotFitted)
	}
	g, err := m.layout.grid(x, func(int) []byte { return m.filler })
	if err != nil {
		return nil, err
	}
	out, err := m.knn.Predict(g)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	_, rows := out.Size()
	r := make([]float64, rows)
	for i := range r {
		s := base.GetClass(out, i)
		if r[i], err = strconv.ParseFloat(s, 64); err != nil {
			return nil, zorros.Wrapf(err, "unexpected class `%v`", s)
		}
	}
	return r, nil
}
