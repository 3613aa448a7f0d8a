package query

import (
	"strings"

	"github.com/hpungsan/memo/internal/memory"
)

// Weights are the points one term earns for each column it appears in.
var Weights = []Weight{
	{Column: "title", Points: 8},
	{Column: "content", Points: 5},
	{Column: "category", Points: 3},
	{Column: "tags", Points: 2},
	{Column: "project", Points: 2},
}

// SearchColumns are the columns a term may match. Tags match against their
// stored JSON text.
var SearchColumns = []string{"content", "title", "category", "tags", "project"}

// Tokenize splits text on whitespace into lower-cased terms.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, lowerASCII(f))
	}
	return terms
}

// lowerASCII folds A-Z only, the same folding SQLite's lower() applies.
func lowerASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// Matches reports whether every term appears in at least one search column of m.
func Matches(m *memory.Memory, terms []string) bool {
	values := columnValues(m)
	for _, term := range terms {
		found := false
		for _, col := range SearchColumns {
			if strings.Contains(values[col], term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Relevance computes the score of m for terms using Weights. It mirrors the
// SQL expression Compile renders for a search Select.
func Relevance(m *memory.Memory, terms []string) int {
	values := columnValues(m)
	total := 0
	for _, term := range terms {
		for _, w := range Weights {
			if strings.Contains(values[w.Column], term) {
				total += w.Points
			}
		}
	}
	return total
}

func columnValues(m *memory.Memory) map[string]string {
	tags, err := memory.EncodeTags(m.Tags)
	if err != nil {
		tags = ""
	}
	return map[string]string{
		"title":    lowerASCII(m.Title),
		"content":  lowerASCII(m.Content),
		"category": lowerASCII(m.Category),
		"tags":     lowerASCII(tags),
		"project":  lowerASCII(m.Project),
	}
}
