/*
Package metrics evaluates fitted models on train and validation subsets
*/
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sjwhitworth/golearn/evaluation"
	"go-ml.dev/pkg/cvtrain/fu"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
)

var (
	ErrUnknownMetric = xerrors.New("unknown metric")
	ErrLabelType     = xerrors.New("metric is incompatible with label type")
	ErrShape         = xerrors.New("labels and predictions do not match")
)

/*
Metric is a closed set of supported error metrics
*/
type Metric int

const (
	MSE Metric = iota
	RMSE
	F1
)

var names = map[string]Metric{
	"mse":      MSE,
	"rmse":     RMSE,
	"f1":       F1,
	"f1_score": F1,
}

/*
Parse resolves metric by name
*/
func Parse(name string) (Metric, error) {
	if m, ok := names[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return 0, xerrors.Errorf("metric `%v`: %w", name, ErrUnknownMetric)
}

/*
LuckyParse resolves metric by name and panics if it's unknown
*/
func LuckyParse(name string) Metric {
	m, err := Parse(name)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return m
}

func (m Metric) String() string {
	switch m {
	case MSE:
		return "mse"
	case RMSE:
		return "rmse"
	case F1:
		return "f1"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

/*
Compute calculates metric of predictions against labels
*/
func (m Metric) Compute(labels, predictions []float64) (float64, error) {
	if len(labels) == 0 || len(labels) != len(predictions) {
		return 0, xerrors.Errorf("%d labels, %d predictions: %w", len(labels), len(predictions), ErrShape)
	}
	switch m {
	case MSE:
		return fu.Mse(labels, predictions), nil
	case RMSE:
		return math.Sqrt(fu.Mse(labels, predictions)), nil
	case F1:
		return f1(labels, predictions)
	}
	return 0, xerrors.Errorf("%v: %w", m, ErrUnknownMetric)
}

func class(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// f1 is binary F1 of class 1 for {0,1} labels and macro F1 otherwise
func f1(labels, predictions []float64) (float64, error) {
	if !fu.Integral(labels) || !fu.Integral(predictions) {
		return 0, xerrors.Errorf("f1 requires discrete labels: %w", ErrLabelType)
	}
	cm := evaluation.ConfusionMatrix{}
	classes := map[string]bool{}
	binary := true
	for i, l := range labels {
		ref, gen := class(l), class(predictions[i])
		if cm[ref] == nil {
			cm[ref] = map[string]int{}
		}
		cm[ref][gen]++
		classes[ref], classes[gen] = true, true
		binary = binary && (l == 0 || l == 1) && (predictions[i] == 0 || predictions[i] == 1)
	}
	if binary {
		return f1score("1", cm), nil
	}
	keys := make([]string, 0, len(classes))
	for c := range classes {
		keys = append(keys, c)
	}
	sort.Strings(keys)
	var s float64
	for _, c := range keys {
		s += f1score(c, cm)
	}
	return s / float64(len(keys)), nil
}

func f1score(c string, cm evaluation.ConfusionMatrix) float64 {
	p := evaluation.GetPrecision(c, cm)
	r := evaluation.GetRecall(c, cm)
	if math.IsNaN(p) || math.IsNaN(r) || p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
