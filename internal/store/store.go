// Package store keeps an optional audit log of assessments in Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/heartcheck/internal/heartrisk"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS assessments (
	id          UUID PRIMARY KEY,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	input       JSONB NOT NULL,
	label       SMALLINT NOT NULL,
	risk_level  TEXT NOT NULL,
	dropped     TEXT[] NOT NULL DEFAULT '{}'
)`

const insertSQL = `
INSERT INTO assessments (id, created_at, input, label, risk_level, dropped)
VALUES ($1, $2, $3, $4, $5, $6)`

const recentSQL = `
SELECT id, created_at, input, label, risk_level, dropped
FROM assessments
ORDER BY created_at DESC
LIMIT $1`

const MaxRecent = 200

type Record struct {
	ID        uuid.UUID                 `json:"id"`
	CreatedAt time.Time                 `json:"createdAt"`
	Input     heartrisk.RawPatientInput `json:"input"`
	Label     heartrisk.Label           `json:"label"`
	RiskLevel string                    `json:"riskLevel"`
	Dropped   []string                  `json:"dropped"`
}

// NewRecord captures an assessment for the audit log.
func NewRecord(id uuid.UUID, at time.Time, a heartrisk.Assessment) Record {
	dropped := a.Unmatched
	if dropped == nil {
		dropped = []string{}
	}
	return Record{
		ID:        id,
		CreatedAt: at.UTC(),
		Input:     a.Input,
		Label:     a.Label,
		RiskLevel: a.Label.RiskLevel(),
		Dropped:   dropped,
	}
}

type Store struct {
	pool *pgxpool.Pool
}

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

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create assessments table: %w", err)
	}
	return nil
}

func (s *Store) Record(ctx context.Context, rec Record) error {
	input, err := json.Marshal(rec.Input)
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}
	if _, err := s.pool.Exec(ctx, insertSQL, rec.ID, rec.CreatedAt, input, int16(rec.Label), rec.RiskLevel, rec.Dropped); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	limit = ClampLimit(limit)
	rows, err := s.pool.Query(ctx, recentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	out, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("scan assessments: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.CollectableRow) (Record, error) {
	var (
		rec   Record
		input []byte
		label int16
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &input, &label, &rec.RiskLevel, &rec.Dropped); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(input, &rec.Input); err != nil {
		return Record{}, errors.Join(errors.New("decode stored input"), err)
	}
	rec.Label = heartrisk.Label(label)
	return rec, nil
}

// ClampLimit bounds a requested page size to 1..MaxRecent, defaulting to 20.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > MaxRecent:
		return MaxRecent
	default:
		return limit
	}
}
