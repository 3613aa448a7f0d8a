package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/memo/internal/config"
	"github.com/hpungsan/memo/internal/db"
	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/memory"
)

// ExportSchemaVersion is written in every export header.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path           string // optional, default: ~/.memo/exports/<project|all>-<ulid>.jsonl
	Project        string // optional filter
	IncludePrivate bool
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt string `json:"exported_at"`
}

// ExportHeader is the first line of an export file.
type ExportHeader struct {
	MemoExport    bool   `json:"_memo_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    string `json:"exported_at"`
}

// Export writes memories to a JSONL file: a header line, then one memory
// per line in id order. The file is written under a temporary name and
// renamed into place, so an existing file survives a failed export.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	t := now()
	exportedAt := memory.FormatTime(t)

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(input.Project, ulid.MustNew(ulid.Timestamp(t), rand.Reader))
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too: the project name is part of them.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := createNoFollow(tempPath)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(ExportHeader{
		MemoExport:    true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
	}); err != nil {
		return nil, errors.NewInternal(err)
	}

	count := 0
	err = db.StreamAll(ctx, database, db.StreamFilter{
		Project:        input.Project,
		IncludePrivate: input.IncludePrivate,
	}, func(m *memory.Memory) error {
		if ctx.Err() != nil {
			return errors.NewCancelled("export")
		}
		if err := enc.Encode(m); err != nil {
			return errors.NewInternal(err)
		}
		count++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := w.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination.
	if isSymlink(exportPath) {
		return nil, errors.NewInvalidRequest("path must not be a symlink")
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      count,
		ExportedAt: exportedAt,
	}, nil
}

// defaultExportPath returns ~/.memo/exports/<project|all>-<id>.jsonl.
func defaultExportPath(project string, id ulid.ULID) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	name := "all"
	if project != "" {
		name = SanitizeForFilename(project)
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.jsonl", name, id.String())), nil
}
