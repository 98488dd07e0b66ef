package model

import (
	"testing"

	"gotest.tools/assert"
)

func train(t Training, tests []float64) (*Report, int) {
	w := t.Workout()
	for i := 0; w != nil; w = w.Next() {
		if r, done := w.Complete(0, tests[i]); done {
			return r, i + 1
		}
		i++
	}
	return nil, 0
}

func Test_TrainingStopsOnLastIteration(t *testing.T) {
	r, n := train(Training{Iterations: 4, ScoreHistory: 10}, []float64{4, 3, 2, 1})
	assert.Equal(t, n, 4)
	assert.Equal(t, r.TheBest, 3)
	assert.Equal(t, r.Test, 1.0)
	assert.Equal(t, r.Score, -1.0)
	assert.Equal(t, len(r.History), 4)
}

func Test_TrainingEarlyStopping(t *testing.T) {
	tests := []float64{5, 4, 2, 3, 3, 4, 1, 0}
	r, n := train(Training{Iterations: len(tests), ScoreHistory: 3}, tests)
	// best is iteration 2, three iterations later without improvement
	assert.Equal(t, n, 6)
	assert.Equal(t, r.TheBest, 2)
	assert.Equal(t, r.Test, 2.0)
}

func Test_TrainingTiesDoNotImprove(t *testing.T) {
	r, n := train(Training{Iterations: 100, ScoreHistory: 2}, []float64{1, 1, 1, 1, 1})
	assert.Equal(t, n, 3)
	assert.Equal(t, r.TheBest, 0)
}

func Test_TrainingVerbose(t *testing.T) {
	var lines []string
	train(Training{Iterations: 2, Verbose: func(s string) { lines = append(lines, s) }}, []float64{2, 1})
	assert.Equal(t, len(lines), 2)
	assert.Equal(t, lines[1], "[  1] train: 0.00000, valid: 1.00000, score: -1.00000")
}

func Test_TrainingScore(t *testing.T) {
	s := func(train, test float64) float64 { return test }
	r, _ := train(Training{Iterations: 3, Score: s, ScoreHistory: 5}, []float64{1, 3, 2})
	assert.Equal(t, r.TheBest, 1)
}

func Test_LuckyTrainPanics(t *testing.T) {
	f := FatModel(func(Workout) (*Report, error) { return nil, ErrNotFitted })
	defer func() { assert.Assert(t, recover() != nil) }()
	f.LuckyTrain(Training{})
}
