package model

import (
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

/*
Matrix is a feature matrix bounded with its label vector
*/
type Matrix struct {
	X     *mat.Dense
	Label []float64
}

/*
NewMatrix checks that every row has a label
*/
func NewMatrix(x *mat.Dense, label []float64) (*Matrix, error) {
	if x == nil {
		return nil, xerrors.Errorf("nil feature matrix: %w", ErrShape)
	}
	if rows, _ := x.Dims(); rows != len(label) {
		return nil, xerrors.Errorf("%d rows, %d labels: %w", rows, len(label), ErrShape)
	}
	return &Matrix{X: x, Label: label}, nil
}

/*
Dataset is an abstraction of some source of a data to feed hungry models
*/
type Dataset struct {
	Source     *Matrix // training data
	Validation *Matrix // optional, equal to Source if nil
}

func (ds Dataset) validation() *Matrix {
	if ds.Validation != nil {
		return ds.Validation
	}
	return ds.Source
}
