package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/memory"
)

// UpdateInput contains parameters for the Update operation.
// Only non-nil fields are changed.
type UpdateInput struct {
	ID         int64 // required
	Content    *string
	Title      *string
	Category   *string
	Tags       *[]string
	Project    *string
	Visibility *string
}

func (in UpdateInput) fields() (memory.Fields, error) {
	f := memory.Fields{
		Content:  in.Content,
		Title:    in.Title,
		Category: in.Category,
		Tags:     in.Tags,
		Project:  in.Project,
	}
	if in.Content != nil && isBlank(*in.Content) {
		return f, errors.NewInvalidRequest("content must not be empty")
	}
	if in.Visibility != nil {
		v, err := memory.ParseVisibility(*in.Visibility)
		if err != nil {
			return f, errors.NewInvalidRequest(err.Error())
		}
		f.Visibility = &v
	}
	return f, nil
}

// Update changes the supplied fields of a memory regardless of its
// visibility and bumps updated_at. With no fields supplied the memory is
// returned unchanged.
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*memory.Memory, error) {
	f, err := input.fields()
	if err != nil {
		return nil, err
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	return db.UpdateFields(ctx, database, input.ID, f, now())
}
