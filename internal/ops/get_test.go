package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/memo/internal/errors"
)

func TestGet_PrivateRequiresIncludePrivate(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	m := mustSave(t, database, SaveInput{Content: "secret", Visibility: "private"})

	_, err := Get(ctx, database, GetInput{ID: m.ID})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("Get() error = %v, want NOT_FOUND", err)
	}
	// Indistinguishable from an id that was never assigned.
	if want := errors.NewNotFound(m.ID).Error(); err.Error() != want {
		t.Errorf("Get() error = %q, want %q", err.Error(), want)
	}

	got, err := Get(ctx, database, GetInput{ID: m.ID, IncludePrivate: true})
	if err != nil {
		t.Fatalf("Get(include_private) failed: %v", err)
	}
	if got.Content != "secret" {
		t.Errorf("Content = %q, want secret", got.Content)
	}
}

func TestGet_NonPrivateAlwaysVisible(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	for _, vis := range []string{"internal", "shareable"} {
		m := mustSave(t, database, SaveInput{Content: vis, Visibility: vis})
		for _, include := range []bool{false, true} {
			if _, err := Get(ctx, database, GetInput{ID: m.ID, IncludePrivate: include}); err != nil {
				t.Errorf("Get(%s, include_private=%v) error = %v", vis, include, err)
			}
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	database := openTestDB(t)

	for _, id := range []int64{0, -1, 12345} {
		_, err := Get(context.Background(), database, GetInput{ID: id, IncludePrivate: true})
		if !errors.Is(err, errors.ErrNotFound) {
			t.Errorf("Get(%d) error = %v, want NOT_FOUND", id, err)
		}
	}
}
