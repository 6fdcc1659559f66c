// Package store keeps an optional, anonymous log of scored assessments in
// Postgres. Nothing here feeds back into the model.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/fitlevel/internal/risk"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id             uuid PRIMARY KEY,
	created_at     timestamptz NOT NULL DEFAULT now(),
	risk_score     double precision NOT NULL,
	raw_prediction double precision NOT NULL,
	level          text NOT NULL,
	sliders        jsonb NOT NULL
)`

// Record is one logged assessment.
type Record struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"createdAt"`
	RiskScore     float64          `json:"riskScore"`
	RawPrediction float64          `json:"rawPrediction"`
	Level         string           `json:"level"`
	Sliders       risk.SliderInput `json:"sliders"`
}

type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and pings it with a 5s timeout.
func Connect(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create assessments table: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

// Record inserts a. The assessment must already carry an ID.
func (s *Store) Record(ctx context.Context, a risk.Assessment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assessments (id, risk_score, raw_prediction, level, sliders)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.RiskScore, a.RawPrediction, a.Level.Title, a.Sliders,
	)
	if err != nil {
		return fmt.Errorf("insert assessment %s: %w", a.ID, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, created_at, risk_score, raw_prediction, level, sliders
		 FROM assessments ORDER BY created_at DESC LIMIT $1`,
		ClampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.RiskScore, &r.RawPrediction, &r.Level, &r.Sliders); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClampLimit maps a requested page size into [1, 100], with 20 for zero or less.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}
