package ops

import (
	"context"
	"testing"
	"time"
)

func TestList_NewestFirst(t *testing.T) {
	database := openTestDB(t)
	stepClock(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Minute)

	a := mustSave(t, database, SaveInput{Content: "a"})
	b := mustSave(t, database, SaveInput{Content: "b"})
	c := mustSave(t, database, SaveInput{Content: "c"})

	out, err := List(context.Background(), database, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Count != 3 {
		t.Fatalf("Count = %d, want 3", out.Count)
	}
	got := ids(out.Memories)
	if got[0] != c.ID || got[1] != b.ID || got[2] != a.ID {
		t.Errorf("order = %v, want [%d %d %d]", got, c.ID, b.ID, a.ID)
	}
}

func TestList_SameSecondBreaksTiesByID(t *testing.T) {
	database := openTestDB(t)
	stepClock(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0)

	a := mustSave(t, database, SaveInput{Content: "a"})
	b := mustSave(t, database, SaveInput{Content: "b"})

	out, err := List(context.Background(), database, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got := ids(out.Memories); got[0] != b.ID || got[1] != a.ID {
		t.Errorf("order = %v, want [%d %d]", got, b.ID, a.ID)
	}
}

func TestList_Filters(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	mustSave(t, database, SaveInput{Content: "1", Category: stringPtr("work"), Project: stringPtr("P")})
	mustSave(t, database, SaveInput{Content: "2", Category: stringPtr("home"), Project: stringPtr("P")})
	mustSave(t, database, SaveInput{Content: "3", Category: stringPtr("work"), Project: stringPtr("Q")})
	mustSave(t, database, SaveInput{Content: "4", Project: stringPtr("P"), Visibility: "shareable"})

	tests := []struct {
		name  string
		input FilterInput
		want  int
	}{
		{"no filter", FilterInput{}, 4},
		{"category", FilterInput{Category: "work"}, 2},
		{"project", FilterInput{Project: "P"}, 3},
		{"category and project", FilterInput{Category: "work", Project: "P"}, 1},
		{"visibility", FilterInput{Visibility: "shareable"}, 1},
		{"project is exact", FilterInput{Project: "p"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := List(ctx, database, ListInput{FilterInput: tt.input})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if out.Count != tt.want {
				t.Errorf("Count = %d, want %d", out.Count, tt.want)
			}
		})
	}
}

func TestList_PrivateExcludedByDefault(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	mustSave(t, database, SaveInput{Content: "open", Project: stringPtr("P")})
	secret := mustSave(t, database, SaveInput{Content: "secret", Project: stringPtr("P"), Visibility: "private"})

	out, err := List(ctx, database, ListInput{FilterInput: FilterInput{Project: "P"}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, m := range out.Memories {
		if m.ID == secret.ID {
			t.Error("private memory returned without include_private")
		}
	}
	if out.Count != 1 {
		t.Errorf("Count = %d, want 1", out.Count)
	}

	out, err = List(ctx, database, ListInput{FilterInput: FilterInput{Project: "P", IncludePrivate: true}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count with include_private = %d, want 2", out.Count)
	}

	// Asking for private without include_private matches nothing.
	out, err = List(ctx, database, ListInput{FilterInput: FilterInput{Visibility: "private"}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("Count = %d, want 0", out.Count)
	}

	out, err = List(ctx, database, ListInput{FilterInput: FilterInput{Visibility: "private", IncludePrivate: true}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Count != 1 || out.Memories[0].ID != secret.ID {
		t.Errorf("private-only list = %v, want [%d]", ids(out.Memories), secret.ID)
	}
}

func TestList_Pagination(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	stepClock(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)

	for i := 0; i < 25; i++ {
		mustSave(t, database, SaveInput{Content: "m"})
	}

	tests := []struct {
		name   string
		limit  *float64
		offset *float64
		want   int
	}{
		{"default limit", nil, nil, 20},
		{"explicit limit", floatPtr(5), nil, 5},
		{"zero limit clamps to one", floatPtr(0), nil, 1},
		{"negative limit clamps to one", floatPtr(-3), nil, 1},
		{"fractional limit floors", floatPtr(2.9), nil, 2},
		{"offset past the end", floatPtr(10), floatPtr(24), 1},
		{"negative offset is zero", floatPtr(30), floatPtr(-5), 25},
		{"huge offset", nil, floatPtr(1e300), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := List(ctx, database, ListInput{Limit: tt.limit, Offset: tt.offset})
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if out.Count != tt.want {
				t.Errorf("Count = %d, want %d", out.Count, tt.want)
			}
		})
	}
}

func TestList_LimitAboveMax(t *testing.T) {
	database := openTestDB(t)

	for i := 0; i < 101; i++ {
		mustSave(t, database, SaveInput{Content: "m"})
	}

	out, err := List(context.Background(), database, ListInput{Limit: floatPtr(1000)})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Count != 100 {
		t.Errorf("Count = %d, want 100", out.Count)
	}
}

func TestList_Empty(t *testing.T) {
	database := openTestDB(t)

	out, err := List(context.Background(), database, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Count != 0 || out.Memories == nil {
		t.Errorf("List() = %+v, want empty non-nil", out)
	}
}
