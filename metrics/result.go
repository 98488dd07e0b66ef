package metrics

import (
	"fmt"
	"strconv"

	"go-ml.dev/pkg/cvtrain/fu"
	"golang.org/x/xerrors"
)

/*
Result is a train/validation error pair of one fold
*/
type Result struct {
	Fold   int
	Metric Metric
	Train  float64
	Valid  float64
}

/*
Evaluate computes metric on the training and the validation subsets
*/
func Evaluate(m Metric, trainPredictions, trainLabels, validLabels, validPredictions []float64) (Result, error) {
	train, err := m.Compute(trainLabels, trainPredictions)
	if err != nil {
		return Result{}, xerrors.Errorf("train subset: %w", err)
	}
	valid, err := m.Compute(validLabels, validPredictions)
	if err != nil {
		return Result{}, xerrors.Errorf("validation subset: %w", err)
	}
	return Result{Metric: m, Train: train, Valid: valid}, nil
}

// String formats result rounded to 3 digits
func (r Result) String() string {
	return fmt.Sprintf("Fold=%d, train_error=%v, valid_error=%v", r.Fold, round3(r.Train), round3(r.Valid))
}

func round3(x float64) string {
	return strconv.FormatFloat(fu.Round(x, 3), 'f', -1, 64)
}
