package tables

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

/*
Scaler standardizes columns to zero mean and unit variance
*/
type Scaler struct {
	Columns []string
	Mean    []float64
	Scale   []float64 // population standard deviation, 1 for constant columns
}

/*
FitScaler learns mean and scale of every column except the named ones
*/
func FitScaler(t *Table, except ...string) *Scaler {
	s := &Scaler{}
	for _, n := range t.Except(except...).names {
		c, _ := t.Col(n)
		m := stat.Mean(c, nil)
		sd := math.Sqrt(stat.Moment(2, c, nil))
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		s.Columns = append(s.Columns, n)
		s.Mean = append(s.Mean, m)
		s.Scale = append(s.Scale, sd)
	}
	return s
}

/*
Transform returns new table with scaled columns, other columns are shared
*/
func (s *Scaler) Transform(t *Table) (*Table, error) {
	r := t
	for j, n := range s.Columns {
		c, err := t.Col(n)
		if err != nil {
			return nil, err
		}
		v := make([]float64, len(c))
		for i, x := range c {
			v[i] = (x - s.Mean[j]) / s.Scale[j]
		}
		if r, err = r.With(v, n); err != nil {
			return nil, err
		}
	}
	return r, nil
}
