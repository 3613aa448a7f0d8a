package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/memory"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID             int64
	IncludePrivate bool
}

// Get fetches one memory. A private memory is NOT_FOUND unless
// IncludePrivate is set.
func Get(ctx context.Context, database *sql.DB, input GetInput) (*memory.Memory, error) {
	return db.GetByID(ctx, database, input.ID, input.IncludePrivate)
}
