package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/errors"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID int64
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// Delete permanently removes a memory, private or not.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	writeMu.Lock()
	defer writeMu.Unlock()

	deleted, err := db.DeleteByID(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, errors.NewNotFound(input.ID)
	}

	return &DeleteOutput{
		Success: true,
		ID:      input.ID,
		Message: fmt.Sprintf("Memory %d deleted", input.ID),
	}, nil
}
