package repository

import (
	"context"

	"github.com/freeeve/pacgrid/internal/model"
	"github.com/freeeve/pacgrid/pkg/grid"
	"github.com/freeeve/pacgrid/pkg/paths"
)

// IndexCache stores precomputed path indexes keyed by map layout (Redis).
// Load returns nil, nil on a miss.
type IndexCache interface {
	LoadIndex(ctx context.Context, g *grid.Grid) (*paths.Index, error)
	StoreIndex(ctx context.Context, ix *paths.Index) error
}

// DecisionRepository persists per-tick decisions (Postgres).
type DecisionRepository interface {
	RecordTick(ctx context.Context, rec *model.TickRecord) error
	ListTicks(ctx context.Context, matchID string) ([]model.TickRecord, error)
	Summary(ctx context.Context, matchID string) (*model.MatchSummary, error)
}
