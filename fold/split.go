package fold

import (
	"go-ml.dev/pkg/cvtrain/tables"
	"golang.org/x/xerrors"
)

var ErrEmptyFold = xerrors.New("empty fold")

/*
Subset is a feature table with its label vector
*/
type Subset struct {
	Features *tables.Table
	Label    []float64
}

/*
Split divides table into the training subset (fold column != k)
and the validation subset (fold column == k),
fold and target columns are excluded from features
*/
func Split(t *tables.Table, foldColumn, target string, k int) (train, valid Subset, err error) {
	folds, err := t.Col(foldColumn)
	if err != nil {
		return
	}
	if _, err = t.Col(target); err != nil {
		return
	}
	kf := float64(k)
	tt := t.Filter(func(i int) bool { return folds[i] != kf })
	vt := t.Filter(func(i int) bool { return folds[i] == kf })
	if vt.Len() == 0 {
		err = xerrors.Errorf("fold %d has no validation rows: %w", k, ErrEmptyFold)
		return
	}
	if tt.Len() == 0 {
		err = xerrors.Errorf("fold %d has no training rows: %w", k, ErrEmptyFold)
		return
	}
	train = subset(tt, foldColumn, target)
	valid = subset(vt, foldColumn, target)
	return
}

func subset(t *tables.Table, foldColumn, target string) Subset {
	y, _ := t.Col(target)
	return Subset{Features: t.Except(foldColumn, target), Label: y}
}
