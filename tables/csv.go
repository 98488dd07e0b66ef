package tables

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/sjwhitworth/golearn/base"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
)

var ErrMalformed = xerrors.New("malformed data")

/*
ReadCSV parses comma separated data with a header row into table,
every column must be numeric
*/
func ReadCSV(r io.Reader) (*Table, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	if len(bytes.TrimSpace(bs)) == 0 {
		return nil, xerrors.Errorf("csv source: %w", ErrEmpty)
	}
	inst, err := base.ParseCSVToInstancesFromReader(bytes.NewReader(bs), true)
	if err != nil {
		return nil, xerrors.Errorf("parse csv: %v: %w", err, ErrMalformed)
	}
	return FromInstances(inst)
}

/*
ReadCSVFile reads table from the CSV file
*/
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open dataset: %v", err.Error())
	}
	defer f.Close()
	return ReadCSV(f)
}

/*
FromInstances converts golearn instances into table,
categorical attributes must hold numeric strings
*/
func FromInstances(inst base.FixedDataGrid) (*Table, error) {
	attrs := inst.AllAttributes()
	_, rows := inst.Size()
	names := make([]string, len(attrs))
	cols := make([][]float64, len(attrs))
	for j, a := range attrs {
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, zorros.Trace(err)
		}
		names[j] = a.GetName()
		c := make([]float64, rows)
		_, isFloat := a.(*base.FloatAttribute)
		for i := 0; i < rows; i++ {
			v := inst.Get(spec, i)
			if isFloat {
				c[i] = base.UnpackBytesToFloat(v)
				continue
			}
			s := a.GetStringFromSysVal(v)
			if c[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, xerrors.Errorf("column `%v` row %d value %q: %w", names[j], i, s, ErrMalformed)
			}
		}
		cols[j] = c
	}
	return New(names, cols)
}
