package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hpungsan/memo/internal/config"
	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/memory"
)

// maxImportLine bounds one JSONL line.
const maxImportLine = 16 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importRecord is one memory line of an export file. Pointers distinguish
// absent fields from empty ones.
type importRecord struct {
	MemoExport bool     `json:"_memo_export"`
	Content    *string  `json:"content"`
	Title      string   `json:"title"`
	Category   *string  `json:"category"`
	Tags       []string `json:"tags"`
	Project    string   `json:"project"`
	Source     string   `json:"source"`
	Visibility string   `json:"visibility"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

// Import reads an export file and inserts every valid memory with a fresh
// id, keeping its timestamps. Valid lines are written in one transaction;
// invalid lines are skipped and reported.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openNoFollow(input.Path)
	if err != nil {
		if _, ok := err.(*errors.MemoError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	out := &ImportOutput{Errors: []ImportError{}}
	var memories []*memory.Memory

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec importRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			out.addError(lineNum, "PARSE_ERROR", fmt.Sprintf("invalid JSON: %v", err))
			continue
		}
		if rec.MemoExport {
			continue
		}

		m, err := rec.toMemory()
		if err != nil {
			out.addError(lineNum, "INVALID_RECORD", err.Error())
			continue
		}
		memories = append(memories, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	if err := db.InsertMany(ctx, database, memories); err != nil {
		return nil, err
	}
	out.Imported = len(memories)
	return out, nil
}

func (o *ImportOutput) addError(line int, code, msg string) {
	o.Skipped++
	o.Errors = append(o.Errors, ImportError{Line: line, Code: code, Message: msg})
}

// toMemory validates the record and applies creation defaults to absent
// fields. Missing timestamps become the current time.
func (r importRecord) toMemory() (*memory.Memory, error) {
	if r.Content == nil || isBlank(*r.Content) {
		return nil, fmt.Errorf("content is required")
	}

	vis := memory.DefaultVisibility
	if r.Visibility != "" {
		v, err := memory.ParseVisibility(r.Visibility)
		if err != nil {
			return nil, err
		}
		vis = v
	}

	m := memory.NewMemory(memory.Fields{
		Content:    r.Content,
		Title:      &r.Title,
		Category:   r.Category,
		Project:    &r.Project,
		Visibility: &vis,
	}, now())
	if r.Tags != nil {
		m.Tags = r.Tags
	}
	if r.Source != "" {
		m.Source = r.Source
	}
	if r.CreatedAt != "" {
		m.CreatedAt = r.CreatedAt
		m.UpdatedAt = r.CreatedAt
	}
	if r.UpdatedAt > m.CreatedAt {
		m.UpdatedAt = r.UpdatedAt
	}
	return m, nil
}
