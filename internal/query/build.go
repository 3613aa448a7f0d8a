package query

import (
	"github.com/hpungsan/memo/internal/memory"
)

// Filter holds the filters shared by list, search and timeline.
// Empty Category or Project means no filter on that column.
type Filter struct {
	Category       string
	Project        string
	Visibility     *memory.Visibility
	IncludePrivate bool
}

// Range bounds created_at inclusively. Empty bounds are open.
type Range struct {
	From string
	To   string
}

// VisibilityFilter returns the visibility conditions for a read.
// A requested visibility restricts to exactly that value; independently,
// private rows are excluded unless includePrivate is set. Requesting
// private without includePrivate therefore matches nothing.
func VisibilityFilter(requested *memory.Visibility, includePrivate bool) []Predicate {
	var preds []Predicate
	if requested != nil {
		preds = append(preds, Equals{Column: "visibility", Value: string(*requested)})
	}
	if !includePrivate {
		preds = append(preds, NotEquals{Column: "visibility", Value: string(memory.VisibilityPrivate)})
	}
	return preds
}

func (f Filter) predicates() []Predicate {
	var preds []Predicate
	if f.Category != "" {
		preds = append(preds, Equals{Column: "category", Value: f.Category})
	}
	if f.Project != "" {
		preds = append(preds, Equals{Column: "project", Value: f.Project})
	}
	return append(preds, VisibilityFilter(f.Visibility, f.IncludePrivate)...)
}

// List returns most recent memories first. id DESC breaks created_at ties.
func List(f Filter, limit, offset int) Select {
	return Select{
		Where: f.predicates(),
		OrderBy: []Order{
			{Column: "created_at", Desc: true},
			{Column: "id", Desc: true},
		},
		Limit:  limit,
		Offset: offset,
	}
}

// Timeline returns memories in chronological order within r.
func Timeline(f Filter, r Range, limit, offset int) Select {
	preds := f.predicates()
	if r.From != "" {
		preds = append(preds, AtLeast{Column: "created_at", Value: r.From})
	}
	if r.To != "" {
		preds = append(preds, AtMost{Column: "created_at", Value: r.To})
	}
	return Select{
		Where: preds,
		OrderBy: []Order{
			{Column: "created_at"},
			{Column: "id"},
		},
		Limit:  limit,
		Offset: offset,
	}
}

// Search ranks memories matching every term of text. A text with no terms
// falls back to List with the same filters at offset 0.
func Search(text string, f Filter, limit int) Select {
	terms := Tokenize(text)
	if len(terms) == 0 {
		return List(f, limit, 0)
	}

	preds := make([]Predicate, 0, len(terms))
	for _, term := range terms {
		preds = append(preds, ContainsAny{Columns: SearchColumns, Term: term})
	}
	preds = append(preds, f.predicates()...)

	return Select{
		Where: preds,
		Score: &Score{Terms: terms, Weights: Weights},
		OrderBy: []Order{
			{Column: ScoreColumn, Desc: true},
			{Column: "updated_at", Desc: true},
			{Column: "id", Desc: true},
		},
		Limit: limit,
	}
}
