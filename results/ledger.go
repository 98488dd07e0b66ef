/*
Package results keeps per-fold evaluation results in a SQLite database
*/
package results

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go-ml.dev/pkg/cvtrain/metrics"
	"go-ml.dev/pkg/zorros/zorros"
)

const schema = `
CREATE TABLE IF NOT EXISTS fold_results (
	run_id      TEXT    NOT NULL,
	model       TEXT    NOT NULL,
	metric      TEXT    NOT NULL,
	fold        INTEGER NOT NULL,
	train_error REAL    NOT NULL,
	valid_error REAL    NOT NULL,
	created_at  TEXT    NOT NULL,
	PRIMARY KEY (run_id, fold)
)`

/*
Ledger is a SQLite backed journal of fold results
*/
type Ledger struct {
	db *sql.DB
}

/*
Summary aggregates fold results of a run
*/
type Summary struct {
	RunID  string
	Model  string
	Metric string
	Folds  int
	Train  float64 // mean train error
	Valid  float64 // mean validation error
}

/*
Open opens or creates ledger database
*/
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open results db: %v", err.Error())
	}
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, zorros.Wrapf(err, "failed to create results table: %v", err.Error())
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

/*
NewRun returns new run identifier
*/
func NewRun() string {
	return uuid.New().String()
}

/*
Record stores fold result, the result of the same run fold is replaced
*/
func (l *Ledger) Record(runID, model string, r metrics.Result) error {
	_, err := l.db.Exec(
		`INSERT OR REPLACE INTO fold_results (run_id, model, metric, fold, train_error, valid_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, model, r.Metric.String(), r.Fold, r.Train, r.Valid, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return zorros.Wrapf(err, "failed to record fold %d: %v", r.Fold, err.Error())
	}
	return nil
}

/*
Results returns fold results of the run ordered by fold
*/
func (l *Ledger) Results(runID string) ([]metrics.Result, error) {
	rows, err := l.db.Query(
		`SELECT metric, fold, train_error, valid_error FROM fold_results WHERE run_id = ? ORDER BY fold`, runID)
	if err != nil {
		return nil, zorros.Trace(err)
	}
	defer rows.Close()
	var rs []metrics.Result
	for rows.Next() {
		var name string
		var r metrics.Result
		if err = rows.Scan(&name, &r.Fold, &r.Train, &r.Valid); err != nil {
			return nil, zorros.Trace(err)
		}
		if r.Metric, err = metrics.Parse(name); err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	if err = rows.Err(); err != nil {
		return nil, zorros.Trace(err)
	}
	return rs, nil
}

/*
Summary aggregates fold results of the run
*/
func (l *Ledger) Summary(runID string) (Summary, error) {
	s := Summary{RunID: runID}
	var model, metric sql.NullString
	var train, valid sql.NullFloat64
	err := l.db.QueryRow(
		`SELECT COUNT(*), MAX(model), MAX(metric), AVG(train_error), AVG(valid_error)
		 FROM fold_results WHERE run_id = ?`, runID).Scan(&s.Folds, &model, &metric, &train, &valid)
	if err != nil {
		return s, zorros.Trace(err)
	}
	s.Model, s.Metric, s.Train, s.Valid = model.String, metric.String, train.Float64, valid.Float64
	return s, nil
}
