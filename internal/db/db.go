package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"arrival-benchmark/internal/benchmark"
	"arrival-benchmark/internal/flight"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

const createPredictionsSQL = `
CREATE TABLE IF NOT EXISTS estimated_arrival_benchmark (
  run_id                TEXT             NOT NULL,
  flight_history_id     BIGINT           NOT NULL,
  actual_runway_arrival DOUBLE PRECISION NOT NULL,
  actual_gate_arrival   DOUBLE PRECISION NOT NULL,
  created_at            TIMESTAMPTZ      NOT NULL DEFAULT now()
)`

const createPredictionsIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_estimated_arrival_benchmark_run
  ON estimated_arrival_benchmark (run_id, flight_history_id)`

const deleteRunSQL = `DELETE FROM estimated_arrival_benchmark WHERE run_id = $1`

const insertPredictionSQL = `
INSERT INTO estimated_arrival_benchmark
  (run_id, flight_history_id, actual_runway_arrival, actual_gate_arrival)
VALUES ($1, $2, $3, $4)`

// EnsureSchema creates the predictions table if needed.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{createPredictionsSQL, createPredictionsIndexSQL} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// PredictionSink stores the benchmark table under a run id. Writing a run
// again replaces its previous rows.
type PredictionSink struct {
	DB    *sql.DB
	RunID string
}

var _ benchmark.Sink = (*PredictionSink)(nil)

func (s *PredictionSink) Name() string { return "postgres" }

func (s *PredictionSink) Write(ctx context.Context, preds []flight.DayPrediction) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteRunSQL, s.RunID); err != nil {
		return fmt.Errorf("clear run %q: %w", s.RunID, err)
	}
	stmt, err := tx.PrepareContext(ctx, insertPredictionSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range preds {
		if _, err := stmt.ExecContext(ctx, s.RunID, p.FlightHistoryID, p.ActualRunwayArrival, p.ActualGateArrival); err != nil {
			return fmt.Errorf("insert flight %d: %w", p.FlightHistoryID, err)
		}
	}
	return tx.Commit()
}
