package store

import (
	"context"
	"fmt"

	"github.com/hellogreencow/burch/internal/contracts"
	"github.com/hellogreencow/burch/pkg/database"
	"github.com/hellogreencow/burch/pkg/logger"
)

// Archive persists scorecard snapshots to Postgres so score history
// survives restarts of the in-memory universe. It is optional: a nil
// Archive is valid and every method on it is a no-op.
type Archive struct {
	db  *database.DB
	log *logger.Logger
}

func NewArchive(db *database.DB, log *logger.Logger) *Archive {
	if db == nil {
		return nil
	}
	return &Archive{db: db, log: log}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if a == nil {
		return nil
	}
	_, err := a.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scorecard_snapshots (
			id            BIGSERIAL PRIMARY KEY,
			brand_id      TEXT        NOT NULL,
			snapshot_week DATE        NOT NULL,
			heat_score    DOUBLE PRECISION NOT NULL,
			risk_score    DOUBLE PRECISION NOT NULL,
			asymmetry     DOUBLE PRECISION NOT NULL,
			capital       DOUBLE PRECISION NOT NULL,
			revenue_p50   DOUBLE PRECISION NOT NULL,
			confidence    DOUBLE PRECISION NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure scorecard_snapshots: %w", err)
	}
	_, err = a.db.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_snapshots_brand_week
		ON scorecard_snapshots (brand_id, snapshot_week)`)
	if err != nil {
		return fmt.Errorf("ensure snapshot index: %w", err)
	}
	return nil
}

// SaveSnapshot writes one scorecard row. Archive failures are reported to
// the caller but batches treat them as non-fatal.
func (a *Archive) SaveSnapshot(ctx context.Context, card contracts.Scorecard) error {
	if a == nil {
		return nil
	}
	_, err := a.db.Pool.Exec(ctx, `
		INSERT INTO scorecard_snapshots
			(brand_id, snapshot_week, heat_score, risk_score, asymmetry, capital, revenue_p50, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		card.BrandID, card.SnapshotWeek, card.HeatScore, card.RiskScore,
		card.AsymmetryIndex, card.CapitalIntensity, card.RevenueP50, card.Confidence)
	if err != nil {
		return fmt.Errorf("save snapshot for %s: %w", card.BrandID, err)
	}
	return nil
}
