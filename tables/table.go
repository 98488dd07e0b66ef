/*
Package tables implements a small columnar in-memory table of float64 columns
used as the dataset of cross-validation runs
*/
package tables

import (
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrMissingColumn = xerrors.New("missing column")
	ErrShape         = xerrors.New("inconsistent table shape")
	ErrEmpty         = xerrors.New("empty table")
)

/*
Table is an immutable set of equally sized named columns
*/
type Table struct {
	names []string
	cols  [][]float64
	index map[string]int
}

/*
New creates table from column names and column values, columns are not copied
*/
func New(names []string, cols [][]float64) (*Table, error) {
	if len(names) != len(cols) {
		return nil, xerrors.Errorf("%d names for %d columns: %w", len(names), len(cols), ErrShape)
	}
	t := &Table{names: names, cols: cols, index: make(map[string]int, len(names))}
	for i, n := range names {
		if _, ok := t.index[n]; ok {
			return nil, xerrors.Errorf("duplicate column `%v`: %w", n, ErrShape)
		}
		if len(cols[i]) != len(cols[0]) {
			return nil, xerrors.Errorf("column `%v` has %d rows instead of %d: %w", n, len(cols[i]), len(cols[0]), ErrShape)
		}
		t.index[n] = i
	}
	return t, nil
}

/*
Len returns count of rows
*/
func (t *Table) Len() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0])
}

/*
Width returns count of columns
*/
func (t *Table) Width() int {
	return len(t.names)
}

func (t *Table) Names() []string {
	r := make([]string, len(t.names))
	copy(r, t.names)
	return r
}

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

/*
Col returns values of the named column, the slice is shared with the table
*/
func (t *Table) Col(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, xerrors.Errorf("column `%v`: %w", name, ErrMissingColumn)
	}
	return t.cols[i], nil
}

/*
Except returns new table without the named columns
*/
func (t *Table) Except(names ...string) *Table {
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	r := &Table{index: map[string]int{}}
	for i, n := range t.names {
		if !drop[n] {
			r.index[n] = len(r.names)
			r.names = append(r.names, n)
			r.cols = append(r.cols, t.cols[i])
		}
	}
	return r
}

/*
With returns new table with the column appended,
existing column with the same name is replaced in place
*/
func (t *Table) With(col []float64, name string) (*Table, error) {
	if len(t.names) > 0 && len(col) != t.Len() {
		return nil, xerrors.Errorf("column `%v` has %d rows instead of %d: %w", name, len(col), t.Len(), ErrShape)
	}
	r := t.Except()
	if i, ok := r.index[name]; ok {
		r.cols[i] = col
		return r, nil
	}
	r.index[name] = len(r.names)
	r.names = append(r.names, name)
	r.cols = append(r.cols, col)
	return r, nil
}

/*
Filter returns new table with copied rows accepted by f,
rows are renumbered from zero
*/
func (t *Table) Filter(f func(row int) bool) *Table {
	rows := []int{}
	for i := 0; i < t.Len(); i++ {
		if f(i) {
			rows = append(rows, i)
		}
	}
	r := &Table{names: t.Names(), cols: make([][]float64, len(t.cols)), index: make(map[string]int, len(t.names))}
	for j, c := range t.cols {
		v := make([]float64, len(rows))
		for i, k := range rows {
			v[i] = c[k]
		}
		r.cols[j] = v
		r.index[t.names[j]] = j
	}
	return r
}

/*
Copy returns deep copy of the table
*/
func (t *Table) Copy() *Table {
	return t.Filter(func(int) bool { return true })
}

/*
Matrix returns rows of the table as a dense row-major matrix
*/
func (t *Table) Matrix() (*mat.Dense, error) {
	rows, cols := t.Len(), t.Width()
	if rows == 0 || cols == 0 {
		return nil, xerrors.Errorf("%dx%d matrix: %w", rows, cols, ErrEmpty)
	}
	m := mat.NewDense(rows, cols, nil)
	for j, c := range t.cols {
		m.SetCol(j, c)
	}
	return m, nil
}
