package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/memory"
	"github.com/hpungsan/memo/internal/query"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	FilterInput
	Query string
	Limit *float64
}

// Search ranks memories containing every whitespace-separated term of
// Query. A query with no terms lists the newest memories instead.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*MemoriesOutput, error) {
	f, err := input.toFilter()
	if err != nil {
		return nil, err
	}

	q := query.Search(input.Query, f, memory.NormalizeLimit(input.Limit))
	memories, err := db.Select(ctx, database, q)
	if err != nil {
		return nil, err
	}
	return newMemoriesOutput(memories), nil
}
