package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/memory"
)

// SaveInput contains parameters for the Save operation.
// Nil pointers and a nil Tags slice mean the field was omitted.
type SaveInput struct {
	Content    string // required, non-blank
	Title      *string
	Category   *string
	Tags       []string
	Project    *string
	Visibility string // default: internal
}

// Save creates a memory with defaults applied to omitted fields.
func Save(ctx context.Context, database *sql.DB, input SaveInput) (*memory.Memory, error) {
	if isBlank(input.Content) {
		return nil, errors.NewInvalidRequest("content is required")
	}
	vis, err := parseOptionalVisibility(input.Visibility)
	if err != nil {
		return nil, err
	}

	f := memory.Fields{
		Content:    &input.Content,
		Title:      input.Title,
		Category:   input.Category,
		Project:    input.Project,
		Visibility: vis,
	}
	if input.Tags != nil {
		f.Tags = &input.Tags
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	m := memory.NewMemory(f, now())
	if err := db.Insert(ctx, database, m); err != nil {
		return nil, err
	}
	return m, nil
}
