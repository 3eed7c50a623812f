package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"signet/internal/verification"
	"signet/pkg/platform/sentinel"
	"signet/pkg/platform/tx"
)

// Postgres persists verification results as an append-only trail. The full
// result is stored as JSON alongside the columns the trail is queried by.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// execer resolves the ambient transaction when a caller runs the save inside
// one, and falls back to the pool otherwise.
func (s *Postgres) execer(ctx context.Context) interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

// Schema is the DDL for the results table. Applied by migrations in
// deployments and directly in integration tests.
const Schema = `
CREATE TABLE IF NOT EXISTS verification_results (
	id            UUID PRIMARY KEY,
	signature_id  TEXT NOT NULL,
	valid         BOOLEAN NOT NULL,
	status        TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL,
	risk_level    TEXT NOT NULL,
	payload       JSONB NOT NULL,
	verified_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS verification_results_signature_idx
	ON verification_results (signature_id, verified_at DESC);
`

func (s *Postgres) Save(ctx context.Context, result *verification.Result) error {
	if result == nil {
		return sentinel.ErrInvalidState
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal verification result: %w", err)
	}

	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO verification_results
			(id, signature_id, valid, status, confidence, risk_level, payload, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.ID,
		result.SignatureID,
		result.Valid,
		string(result.Status),
		result.ConfidenceScore,
		string(result.Details.Risk.Level),
		payload,
		result.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("insert verification result: %w", err)
	}
	return nil
}

// FindBySignature returns the most recent result for a signature.
func (s *Postgres) FindBySignature(ctx context.Context, signatureID string) (*verification.Result, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM verification_results
		WHERE signature_id = $1
		ORDER BY verified_at DESC
		LIMIT 1`,
		signatureID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification result: %w", err)
	}

	var result verification.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode verification result: %w", err)
	}
	return &result, nil
}
