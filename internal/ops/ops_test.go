package ops

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/memory"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// stepClock makes every call to now return a time one step after the last,
// starting one step after start.
func stepClock(t *testing.T, start time.Time, step time.Duration) {
	t.Helper()
	orig := now
	current := start
	now = func() time.Time {
		current = current.Add(step)
		return current
	}
	t.Cleanup(func() { now = orig })
}

func stringPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func mustSave(t *testing.T, database *sql.DB, input SaveInput) *memory.Memory {
	t.Helper()
	m, err := Save(context.Background(), database, input)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	return m
}

func ids(memories []*memory.Memory) []int64 {
	out := make([]int64, len(memories))
	for i, m := range memories {
		out[i] = m.ID
	}
	return out
}

func TestFilterInput_InvalidVisibility(t *testing.T) {
	_, err := FilterInput{Visibility: "public"}.toFilter()
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("toFilter() error = %v, want INVALID_REQUEST", err)
	}
}

func TestNewMemoriesOutput_NeverNil(t *testing.T) {
	out := newMemoriesOutput(nil)
	if out.Memories == nil || out.Count != 0 {
		t.Errorf("newMemoriesOutput(nil) = %+v", out)
	}
}
