package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/memory"
	"github.com/hpungsan/memo/internal/query"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	FilterInput
	Limit  *float64 // default: 20, clamped to [1, 100]
	Offset *float64 // default: 0
}

// List returns memories newest first.
func List(ctx context.Context, database *sql.DB, input ListInput) (*MemoriesOutput, error) {
	f, err := input.toFilter()
	if err != nil {
		return nil, err
	}

	q := query.List(f, memory.NormalizeLimit(input.Limit), memory.NormalizeOffset(input.Offset))
	memories, err := db.Select(ctx, database, q)
	if err != nil {
		return nil, err
	}
	return newMemoriesOutput(memories), nil
}
