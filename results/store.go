// Package results keeps a ledger of benchmark runs in sqlite and renders them
// as data frames.
package results

import "context"
import "database/sql"
import "time"

import "github.com/google/uuid"
import "github.com/neurlang/savanna/metrics"
import "github.com/pkg/errors"

import _ "github.com/mattn/go-sqlite3"

// Result is one scored experiment of a run
type Result struct {
	RunID        string
	Dataset      string
	Experiment   string
	Accuracy     float64
	Train        float64 // seconds
	Test         float64
	FinalFit     float64
	FinalPredict float64
	Created      time.Time
}

// NewRunID returns a fresh identifier grouping the results of one invocation
func NewRunID() string {
	return uuid.NewString()
}

// NewResult fills a result from an accuracy and a timing record
func NewResult(runID, dataset, experiment string, accuracy float64, t metrics.Timing) Result {
	return Result{
		RunID:        runID,
		Dataset:      dataset,
		Experiment:   experiment,
		Accuracy:     accuracy,
		Train:        t[metrics.Train].Seconds(),
		Test:         t[metrics.Test].Seconds(),
		FinalFit:     t[metrics.FinalFit].Seconds(),
		FinalPredict: t[metrics.FinalPredict].Seconds(),
		Created:      time.Now().UTC(),
	}
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	dataset TEXT NOT NULL,
	experiment TEXT NOT NULL,
	accuracy REAL NOT NULL,
	train REAL NOT NULL,
	test REAL NOT NULL,
	final_fit REAL NOT NULL,
	final_predict REAL NOT NULL,
	created INTEGER NOT NULL
)`

// Store is a sqlite results ledger
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, ":memory:" keeps it in memory
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "results: open %s", path)
	}
	// a memory database lives as long as its connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "results: schema")
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends r to the ledger
func (s *Store) Record(ctx context.Context, r Result) error {
	if r.Created.IsZero() {
		r.Created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, dataset, experiment, accuracy, train, test, final_fit, final_predict, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Dataset, r.Experiment, r.Accuracy, r.Train, r.Test, r.FinalFit, r.FinalPredict, r.Created.UnixNano())
	return errors.Wrap(err, "results: record")
}

// List returns every recorded result in insertion order
func (s *Store) List(ctx context.Context) ([]Result, error) {
	return s.query(ctx, `WHERE 1 = 1`)
}

// Run returns the results of one run in insertion order
func (s *Store) Run(ctx context.Context, runID string) ([]Result, error) {
	return s.query(ctx, `WHERE run_id = ?`, runID)
}

func (s *Store) query(ctx context.Context, where string, args ...interface{}) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, dataset, experiment, accuracy, train, test, final_fit, final_predict, created
		FROM runs `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "results: list")
	}
	defer rows.Close()
	var o []Result
	for rows.Next() {
		var r Result
		var created int64
		if err := rows.Scan(&r.RunID, &r.Dataset, &r.Experiment, &r.Accuracy,
			&r.Train, &r.Test, &r.FinalFit, &r.FinalPredict, &created); err != nil {
			return nil, errors.Wrap(err, "results: scan")
		}
		r.Created = time.Unix(0, created).UTC()
		o = append(o, r)
	}
	return o, errors.Wrap(rows.Err(), "results: list")
}
