package query

import (
	"fmt"
	"strings"
)

// Compile renders q to SQLite SQL and its positional arguments.
// Every query has an explicit ORDER BY and a LIMIT.
func Compile(q Select) (string, []any, error) {
	if len(q.OrderBy) == 0 {
		return "", nil, fmt.Errorf("query has no ordering")
	}
	if q.Limit < 1 {
		return "", nil, fmt.Errorf("query limit must be positive, got %d", q.Limit)
	}
	if q.Offset < 0 {
		return "", nil, fmt.Errorf("query offset must not be negative, got %d", q.Offset)
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(Columns, ", "))

	if q.Score != nil {
		scoreSQL, scoreArgs, err := compileScore(*q.Score)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(", (")
		sb.WriteString(scoreSQL)
		sb.WriteString(") AS ")
		sb.WriteString(ScoreColumn)
		args = append(args, scoreArgs...)
	}

	sb.WriteString(" FROM ")
	sb.WriteString(Table)

	if len(q.Where) > 0 {
		parts := make([]string, 0, len(q.Where))
		for _, p := range q.Where {
			sql, pArgs, err := compilePredicate(p)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			args = append(args, pArgs...)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	orderSQL, err := compileOrder(q.OrderBy, q.Score != nil)
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderSQL)

	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, q.Limit, q.Offset)

	return sb.String(), args, nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		return compileComparison(pred.Column, "=", pred.Value)
	case NotEquals:
		return compileComparison(pred.Column, "<>", pred.Value)
	case AtLeast:
		return compileComparison(pred.Column, ">=", pred.Value)
	case AtMost:
		return compileComparison(pred.Column, "<=", pred.Value)
	case ContainsAny:
		return compileContainsAny(pred)
	case nil:
		return "", nil, fmt.Errorf("nil predicate")
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileComparison(column, op string, value any) (string, []any, error) {
	if err := checkColumn(column); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s ?", column, op), []any{value}, nil
}

func compileContainsAny(c ContainsAny) (string, []any, error) {
	if len(c.Columns) == 0 {
		return "", nil, fmt.Errorf("contains predicate has no columns")
	}
	parts := make([]string, 0, len(c.Columns))
	args := make([]any, 0, len(c.Columns))
	for _, col := range c.Columns {
		if err := checkColumn(col); err != nil {
			return "", nil, err
		}
		parts = append(parts, containsExpr(col))
		args = append(args, c.Term)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

func compileScore(s Score) (string, []any, error) {
	if len(s.Terms) == 0 || len(s.Weights) == 0 {
		return "0", nil, nil
	}
	termParts := make([]string, 0, len(s.Terms))
	var args []any
	for _, term := range s.Terms {
		cases := make([]string, 0, len(s.Weights))
		for _, w := range s.Weights {
			if err := checkColumn(w.Column); err != nil {
				return "", nil, err
			}
			cases = append(cases, fmt.Sprintf("CASE WHEN %s THEN %d ELSE 0 END", containsExpr(w.Column), w.Points))
			args = append(args, term)
		}
		termParts = append(termParts, "("+strings.Join(cases, " + ")+")")
	}
	return strings.Join(termParts, " + "), args, nil
}

func compileOrder(keys []Order, hasScore bool) (string, error) {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.Column == ScoreColumn {
			if !hasScore {
				return "", fmt.Errorf("cannot order by %s without a score", ScoreColumn)
			}
		} else if err := checkColumn(k.Column); err != nil {
			return "", err
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts = append(parts, k.Column+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}

// containsExpr uses instr rather than LIKE so % and _ in a term match literally.
func containsExpr(column string) string {
	return fmt.Sprintf("instr(lower(%s), ?) > 0", column)
}

func checkColumn(column string) error {
	if !knownColumns[column] {
		return fmt.Errorf("unknown column %q", column)
	}
	return nil
}
