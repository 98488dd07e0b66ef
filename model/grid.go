package model

import (
	"fmt"

	"github.com/sjwhitworth/golearn/base"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

const target = "target"

// layout is a golearn attribute layout shared by train and predict grids
type layout struct {
	features []base.Attribute
	class    base.Attribute
}

func newLayout(cols int, class base.Attribute) *layout {
	l := &layout{features: make([]base.Attribute, cols), class: class}
	for j := range l.features {
		l.features[j] = base.NewFloatAttribute(fmt.Sprintf("f%d", j))
	}
	return l
}

func floatLayout(cols int) *layout {
	return newLayout(cols, base.NewFloatAttribute(target))
}

func floatClass(y []float64) func(int) []byte {
	return func(i int) []byte { return base.PackFloatToBytes(y[i]) }
}

func zeroClass(int) []byte {
	return base.PackFloatToBytes(0)
}

/*
grid converts feature matrix into golearn instances,
class value of the row i is produced by the class function
*/
func (l *layout) grid(x *mat.Dense, class func(int) []byte) (*base.DenseInstances, error) {
	rows, cols := x.Dims()
	if cols != len(l.features) {
		return nil, xerrors.Errorf("%d features instead of %d: %w", cols, len(l.features), ErrShape)
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, cols)
	for j, a := range l.features {
		specs[j] = inst.AddAttribute(a)
	}
	cs := inst.AddAttribute(l.class)
	if err := inst.AddClassAttribute(l.class); err != nil {
		return nil, zorros.Trace(err)
	}
	if err := inst.Extend(rows); err != nil {
		return nil, zorros.Trace(err)
	}
	for i := 0; i < rows; i++ {
		for j := range specs {
			inst.Set(specs[j], i, base.PackFloatToBytes(x.At(i, j)))
		}
		inst.Set(cs, i, class(i))
	}
	return inst, nil
}

/*
floatPredictions unpacks float class column of the predicted instances
*/
func floatPredictions(out base.FixedDataGrid) ([]float64, error) {
	cls := out.AllClassAttributes()
	if len(cls) != 1 {
		return nil, xerrors.Errorf("%d class attributes in prediction: %w", len(cls), ErrShape)
	}
	spec, err := out.GetAttribute(cls[0])
	if err != nil {
		return nil, zorros.Trace(err)
	}
	_, rows := out.Size()
	r := make([]float64, rows)
	for i := range r {
		r[i] = base.UnpackBytesToFloat(out.Get(spec, i))
	}
	return r, nil
}
