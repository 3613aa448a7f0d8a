package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/memory"
	"github.com/hpungsan/memo/internal/query"
)

var selectColumns = strings.Join(query.Columns, ", ")

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert stores m as a new row, sets m.ID to the assigned id and flushes.
// Defaults must already be applied (see memory.NewMemory).
func Insert(ctx context.Context, db *sql.DB, m *memory.Memory) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("save", err)
	}
	defer tx.Rollback()

	id, err := insertTx(ctx, tx, m)
	if err != nil {
		return storeErr("save", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("save", err)
	}
	m.ID = id

	return flush(ctx, db, "save")
}

// InsertMany stores every memory in one transaction with a single flush.
// Ids are assigned fresh; timestamps are kept as given.
func InsertMany(ctx context.Context, db *sql.DB, ms []*memory.Memory) error {
	if len(ms) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("import", err)
	}
	defer tx.Rollback()

	ids := make([]int64, len(ms))
	for i, m := range ms {
		id, err := insertTx(ctx, tx, m)
		if err != nil {
			return storeErr("import", err)
		}
		ids[i] = id
	}
	if err := tx.Commit(); err != nil {
		return storeErr("import", err)
	}
	for i, m := range ms {
		m.ID = ids[i]
	}

	return flush(ctx, db, "import")
}

func insertTx(ctx context.Context, tx *sql.Tx, m *memory.Memory) (int64, error) {
	tags, err := memory.EncodeTags(m.Tags)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO memories (
			content, title, category, tags, project,
			source, visibility, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.Content, m.Title, m.Category, tags, m.Project,
		m.Source, string(m.Visibility), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetByID retrieves a memory by id. When includePrivate is false a private
// memory is reported as not found.
func GetByID(ctx context.Context, db *sql.DB, id int64, includePrivate bool) (*memory.Memory, error) {
	m, err := getByID(ctx, db, id)
	if err != nil {
		return nil, storeErr("get", err)
	}
	if m == nil || (!includePrivate && m.IsPrivate()) {
		return nil, errors.NewNotFound(id)
	}
	return m, nil
}

// getByID returns nil, nil when the row does not exist.
func getByID(ctx context.Context, q rowQuerier, id int64) (*memory.Memory, error) {
	row := q.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM memories WHERE id = ?", id)
	m, err := scanMemory(row, false)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateFields applies the supplied fields of f to memory id regardless of
// its visibility. With no supplied fields the stored memory is returned
// as-is: nothing is written and updated_at does not move.
func UpdateFields(ctx context.Context, db *sql.DB, id int64, f memory.Fields, now time.Time) (*memory.Memory, error) {
	if f.Empty() {
		m, err := getByID(ctx, db, id)
		if err != nil {
			return nil, storeErr("update", err)
		}
		if m == nil {
			return nil, errors.NewNotFound(id)
		}
		return m, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("update", err)
	}
	defer tx.Rollback()

	m, err := getByID(ctx, tx, id)
	if err != nil {
		return nil, storeErr("update", err)
	}
	if m == nil {
		return nil, errors.NewNotFound(id)
	}

	m.Apply(f)
	m.UpdatedAt = memory.FormatTime(now)
	if m.UpdatedAt < m.CreatedAt {
		m.UpdatedAt = m.CreatedAt
	}

	tags, err := memory.EncodeTags(m.Tags)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE memories
		SET content = ?, title = ?, category = ?, tags = ?, project = ?,
			visibility = ?, updated_at = ?
		WHERE id = ?
	`,
		m.Content, m.Title, m.Category, tags, m.Project,
		string(m.Visibility), m.UpdatedAt, id,
	)
	if err != nil {
		return nil, storeErr("update", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storeErr("update", err)
	}
	if err := flush(ctx, db, "update"); err != nil {
		return nil, err
	}

	return GetByID(ctx, db, id, true)
}

// DeleteByID hard-deletes memory id regardless of its visibility.
// Returns false, with nothing written, if the id does not exist.
func DeleteByID(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, storeErr("delete", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id)
	if err != nil {
		return false, storeErr("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("delete", err)
	}
	if n == 0 {
		return false, nil
	}
	if err := tx.Commit(); err != nil {
		return false, storeErr("delete", err)
	}

	return true, flush(ctx, db, "delete")
}

// Select runs a compiled bounded read. Rows carry a relevance score when
// q has one.
func Select(ctx context.Context, db *sql.DB, q query.Select) ([]*memory.Memory, error) {
	sqlText, args, err := query.Compile(q)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, storeErr("query", err)
	}
	defer rows.Close()

	memories := make([]*memory.Memory, 0, q.Limit)
	for rows.Next() {
		m, err := scanMemory(rows, q.Score != nil)
		if err != nil {
			return nil, storeErr("query", err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("query", err)
	}
	return memories, nil
}

// StreamFilter selects the rows StreamAll visits.
type StreamFilter struct {
	Project        string
	IncludePrivate bool
}

// StreamAll calls fn for every matching memory in id order, stopping at the
// first error fn returns.
func StreamAll(ctx context.Context, db *sql.DB, f StreamFilter, fn func(*memory.Memory) error) error {
	sqlText := "SELECT " + selectColumns + " FROM memories WHERE 1 = 1"
	var args []any
	if f.Project != "" {
		sqlText += " AND project = ?"
		args = append(args, f.Project)
	}
	if !f.IncludePrivate {
		sqlText += " AND visibility <> ?"
		args = append(args, string(memory.VisibilityPrivate))
	}
	sqlText += " ORDER BY id ASC"

	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return storeErr("export", err)
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMemory(rows, false)
		if err != nil {
			return storeErr("export", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return storeErr("export", err)
	}
	return nil
}

// Count returns the number of stored memories, private included.
func Count(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM memories").Scan(&n); err != nil {
		return 0, storeErr("count", err)
	}
	return n, nil
}

func scanMemory(s scanner, withScore bool) (*memory.Memory, error) {
	var (
		m          memory.Memory
		title      sql.NullString
		category   sql.NullString
		tags       sql.NullString
		project    sql.NullString
		source     sql.NullString
		visibility sql.NullString
		score      int
	)

	dest := []any{
		&m.ID, &m.Content, &title, &category, &tags, &project,
		&source, &visibility, &m.CreatedAt, &m.UpdatedAt,
	}
	if withScore {
		dest = append(dest, &score)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	m.Title = title.String
	m.Category = category.String
	m.Project = project.String
	m.Source = source.String
	m.Visibility = memory.Visibility(visibility.String)
	if m.Visibility == "" {
		m.Visibility = memory.DefaultVisibility
	}

	decoded, err := memory.DecodeTags(tags.String)
	if err != nil {
		return nil, err
	}
	m.Tags = decoded

	if withScore {
		m.RelevanceScore = &score
	}
	return &m, nil
}

func flush(ctx context.Context, db *sql.DB, op string) error {
	if err := Flush(ctx, db); err != nil {
		return storeErr(op, err)
	}
	return nil
}

// storeErr maps a database failure to a MemoError. Context cancellation is
// reported as CANCELLED; everything else is INTERNAL.
func storeErr(op string, err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewCancelled(op)
	}
	return errors.NewInternal(err)
}
