// Package query builds bounded, visibility-filtered reads over the memories
// table and renders them to parameterized SQLite.
//
// Callers describe a read as a Select value: a conjunctive list of typed
// predicates, an optional relevance score, an ordering and page bounds.
// Compile turns it into SQL text plus arguments. Caller-supplied values only
// ever reach the database as ? parameters; column names are checked against
// a fixed allowlist.
package query

// Table is the single table every query reads from.
const Table = "memories"

// ScoreColumn is the alias of the computed relevance score.
const ScoreColumn = "relevance_score"

// Columns is the projection of every query, in scan order.
var Columns = []string{
	"id", "content", "title", "category", "tags", "project",
	"source", "visibility", "created_at", "updated_at",
}

var knownColumns = func() map[string]bool {
	m := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		m[c] = true
	}
	return m
}()

// Predicate is a filter condition. The marker method seals the interface to
// this package so Compile can switch exhaustively.
type Predicate interface {
	predicateNode()
}

// Equals matches rows where Column = Value.
type Equals struct {
	Column string
	Value  any
}

// NotEquals matches rows where Column <> Value.
type NotEquals struct {
	Column string
	Value  any
}

// AtLeast matches rows where Column >= Value.
type AtLeast struct {
	Column string
	Value  any
}

// AtMost matches rows where Column <= Value.
type AtMost struct {
	Column string
	Value  any
}

// ContainsAny matches rows where Term is a case-insensitive substring of at
// least one of Columns. Term must already be lower-cased.
type ContainsAny struct {
	Columns []string
	Term    string
}

func (Equals) predicateNode()      {}
func (NotEquals) predicateNode()   {}
func (AtLeast) predicateNode()     {}
func (AtMost) predicateNode()      {}
func (ContainsAny) predicateNode() {}

// Weight is the score contribution of one column matching one term.
type Weight struct {
	Column string
	Points int
}

// Score is an additive relevance expression: for every term, the points of
// every weighted column that contains it are summed.
type Score struct {
	Terms   []string
	Weights []Weight
}

// Order is one ORDER BY key.
type Order struct {
	Column string
	Desc   bool
}

// Select is a bounded read over Table. Where predicates are ANDed.
type Select struct {
	Where   []Predicate
	Score   *Score
	OrderBy []Order
	Limit   int
	Offset  int
}
