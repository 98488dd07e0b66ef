package model

import (
	"fmt"

	"go-ml.dev/pkg/cvtrain/fu"
	"go-ml.dev/pkg/zorros/zlog"
)

/*
Score calculates iteration score from train/test errors, higher is better
*/
type Score func(train, test float64) float64

/*
TestError is the default score, negated test error
*/
func TestError(train, test float64) float64 {
	return -test
}

/*
Training is the default implementation of unified training interface
*/
type Training struct {
	Iterations   int          // maximum iterations
	Score        Score        // score function, TestError if nil
	ScoreHistory int          // count of iterations allowed without score improvement
	Verbose      func(string) // print function
}

type training struct {
	Training
	done bool
}

type workout struct {
	iteration int
	training  *training
	perflog   []Round
	scorlog   []float64
}

const DefaultScoreHistory = 3

func (t Training) Workout() Workout {
	if t.Score == nil {
		t.Score = TestError
	}
	return &workout{iteration: 0, training: &training{Training: t}}
}

func (w *workout) Iteration() int {
	return w.iteration
}

func (w *workout) report() *Report {
	j := fu.Indmaxd(w.scorlog)
	return &Report{
		History: w.perflog,
		TheBest: j,
		Train:   w.perflog[j].Train,
		Test:    w.perflog[j].Test,
		Score:   w.scorlog[j],
	}
}

/*
Complete registers iteration errors and reports whether training is done,
it's done on the last iteration or when the best score is older than ScoreHistory iterations
*/
func (w *workout) Complete(train, test float64) (report *Report, done bool) {
	histlen := fu.Fnzi(w.training.ScoreHistory, DefaultScoreHistory)
	maxiter := fu.Maxi(w.training.Iterations, 1)
	score := w.training.Score(train, test)
	w.scorlog = append(w.scorlog, score)
	w.perflog = append(w.perflog, Round{Iteration: w.iteration, Train: train, Test: test, Score: score})
	if w.iteration == maxiter-1 || (w.iteration >= histlen && fu.Indmaxd(w.scorlog[len(w.scorlog)-histlen-1:]) == 0) {
		w.training.done = true
		done = true
		report = w.report()
	}
	w.Verbose(fmt.Sprintf("[%3d] train: %.5f, valid: %.5f, score: %.5f", w.iteration, train, test, score))
	return
}

func (w *workout) Verbose(s string) {
	if w.training.Verbose != nil {
		w.training.Verbose(s)
	}
}

func (w *workout) Next() Workout {
	if w.training.done {
		zlog.Warning("training is already done")
		return nil
	}
	return &workout{
		iteration: w.iteration + 1,
		training:  w.training,
		scorlog:   w.scorlog,
		perflog:   w.perflog,
	}
}
