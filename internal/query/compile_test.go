package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/memo/internal/memory"
)

func visPtr(v memory.Visibility) *memory.Visibility {
	return &v
}

func TestCompile_List(t *testing.T) {
	sql, args, err := Compile(List(Filter{Category: "notes", Project: "P"}, 20, 5))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "SELECT id, content, title, category, tags, project, source, visibility, created_at, updated_at FROM memories"))
	assert.Contains(t, sql, "WHERE category = ? AND project = ? AND visibility <> ?")
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
	assert.NotContains(t, sql, "notes")
	assert.Equal(t, []any{"notes", "P", "private", 20, 5}, args)
}

func TestCompile_ListNoFilters(t *testing.T) {
	sql, args, err := Compile(List(Filter{IncludePrivate: true}, 1, 0))
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Equal(t, []any{1, 0}, args)
}

func TestVisibilityFilter(t *testing.T) {
	tests := []struct {
		name           string
		requested      *memory.Visibility
		includePrivate bool
		want           []Predicate
	}{
		{
			name: "default excludes private",
			want: []Predicate{NotEquals{Column: "visibility", Value: "private"}},
		},
		{
			name:           "include private has no condition",
			includePrivate: true,
			want:           nil,
		},
		{
			name:      "explicit shareable also excludes private",
			requested: visPtr(memory.VisibilityShareable),
			want: []Predicate{
				Equals{Column: "visibility", Value: "shareable"},
				NotEquals{Column: "visibility", Value: "private"},
			},
		},
		{
			name:           "explicit private with include private",
			requested:      visPtr(memory.VisibilityPrivate),
			includePrivate: true,
			want:           []Predicate{Equals{Column: "visibility", Value: "private"}},
		},
		{
			name:      "explicit private without include private is contradictory",
			requested: visPtr(memory.VisibilityPrivate),
			want: []Predicate{
				Equals{Column: "visibility", Value: "private"},
				NotEquals{Column: "visibility", Value: "private"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisibilityFilter(tt.requested, tt.includePrivate))
		})
	}
}

func TestCompile_Timeline(t *testing.T) {
	q := Timeline(Filter{Project: "P"}, Range{From: "2024-01-01 00:00:00", To: "2024-12-31 23:59:59"}, 10, 2)
	sql, args, err := Compile(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE project = ? AND visibility <> ? AND created_at >= ? AND created_at <= ?")
	assert.Contains(t, sql, "ORDER BY created_at ASC, id ASC")
	assert.Equal(t, []any{"P", "private", "2024-01-01 00:00:00", "2024-12-31 23:59:59", 10, 2}, args)
}

func TestCompile_TimelineOpenRange(t *testing.T) {
	sql, _, err := Compile(Timeline(Filter{}, Range{From: "2024-01-01"}, 10, 0))
	require.NoError(t, err)
	assert.Contains(t, sql, "created_at >= ?")
	assert.NotContains(t, sql, "created_at <= ?")
}

func TestCompile_Search(t *testing.T) {
	q := Search("  Alpha  beta ", Filter{Category: "c"}, 7)
	sql, args, err := Compile(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "AS relevance_score FROM memories")
	assert.Contains(t, sql, "CASE WHEN instr(lower(title), ?) > 0 THEN 8 ELSE 0 END")
	assert.Contains(t, sql, "CASE WHEN instr(lower(content), ?) > 0 THEN 5 ELSE 0 END")
	assert.Contains(t, sql, "(instr(lower(content), ?) > 0 OR instr(lower(title), ?) > 0 OR instr(lower(category), ?) > 0 OR instr(lower(tags), ?) > 0 OR instr(lower(project), ?) > 0)")
	assert.Contains(t, sql, "ORDER BY relevance_score DESC, updated_at DESC, id DESC LIMIT ? OFFSET ?")
	assert.NotContains(t, sql, "alpha")
	assert.NotContains(t, sql, "LIKE")

	// 2 terms x 5 weights, then 2 terms x 5 columns, then filters, then bounds
	require.Len(t, args, 10+10+2+2)
	assert.Equal(t, "alpha", args[0])
	assert.Equal(t, "beta", args[5])
	assert.Equal(t, "alpha", args[10])
	assert.Equal(t, "beta", args[15])
	assert.Equal(t, []any{"c", "private", 7, 0}, args[20:])
}

func TestSearch_BlankQueryFallsBackToList(t *testing.T) {
	f := Filter{Project: "P"}
	assert.Equal(t, List(f, 9, 0), Search(" \t\n ", f, 9))
}

func TestCompile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		q    Select
	}{
		{"no ordering", Select{Limit: 1}},
		{"zero limit", Select{OrderBy: []Order{{Column: "id"}}}},
		{"negative offset", Select{OrderBy: []Order{{Column: "id"}}, Limit: 1, Offset: -1}},
		{"unknown where column", Select{
			Where:   []Predicate{Equals{Column: "id; DROP TABLE memories", Value: 1}},
			OrderBy: []Order{{Column: "id"}},
			Limit:   1,
		}},
		{"unknown order column", Select{OrderBy: []Order{{Column: "rowid"}}, Limit: 1}},
		{"score order without score", Select{OrderBy: []Order{{Column: ScoreColumn}}, Limit: 1}},
		{"nil predicate", Select{Where: []Predicate{nil}, OrderBy: []Order{{Column: "id"}}, Limit: 1}},
		{"empty contains", Select{Where: []Predicate{ContainsAny{Term: "x"}}, OrderBy: []Order{{Column: "id"}}, Limit: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compile(tt.q)
			assert.Error(t, err)
		})
	}
}
