package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/memory"
	"github.com/hpungsan/memo/internal/query"
)

// TimelineInput contains parameters for the Timeline operation.
type TimelineInput struct {
	FilterInput
	From   string // inclusive lower bound on created_at, optional
	To     string // inclusive upper bound on created_at, optional
	Limit  *float64
	Offset *float64
}

// Timeline returns memories in creation order within [From, To].
// Bounds compare as strings against created_at ("YYYY-MM-DD HH:MM:SS").
func Timeline(ctx context.Context, database *sql.DB, input TimelineInput) (*MemoriesOutput, error) {
	f, err := input.toFilter()
	if err != nil {
		return nil, err
	}

	q := query.Timeline(f,
		query.Range{From: input.From, To: input.To},
		memory.NormalizeLimit(input.Limit),
		memory.NormalizeOffset(input.Offset),
	)
	memories, err := db.Select(ctx, database, q)
	if err != nil {
		return nil, err
	}
	return newMemoriesOutput(memories), nil
}
