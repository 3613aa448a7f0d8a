package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/memo/internal/config"
	"github.com/hpungsan/memo/internal/errors"
)

// writeExportFile writes a one-record memo export to path.
func writeExportFile(t *testing.T, path string) {
	t.Helper()
	data := `{"_memo_export":true,"schema_version":"1.0","exported_at":"2024-01-01 00:00:00"}` + "\n" +
		`{"content":"from file","visibility":"internal","created_at":"2024-01-01 00:00:00","updated_at":"2024-01-01 00:00:00"}` + "\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write export file: %v", err)
	}
}

func TestValidatePath_Rejections(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		code errors.ErrorCode
	}{
		{"empty", "", errors.ErrInvalidRequest},
		{"traversal", dir + "/../memories.jsonl", errors.ErrInvalidRequest},
		{"relative traversal", "../memories.jsonl", errors.ErrInvalidRequest},
		{"json extension", filepath.Join(dir, "memories.json"), errors.ErrInvalidRequest},
		{"no extension", filepath.Join(dir, "memories"), errors.ErrInvalidRequest},
		{"missing file", filepath.Join(dir, "missing.jsonl"), errors.ErrFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, PathCheckRead, unsafeConfig())
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidatePath(%q) error = %v, want %s", tt.path, err, tt.code)
			}
		})
	}
}

func TestExport_RefusesDirectoryOutsideAllowlist(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	database := openTestDB(t)
	mustSave(t, database, SaveInput{Content: "a"})

	exportPath := filepath.Join(t.TempDir(), "memories.jsonl")
	_, err := Export(context.Background(), database, config.DefaultConfig(), ExportInput{Path: exportPath})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("Export() error = %v, want INVALID_REQUEST", err)
	}
	if !strings.Contains(err.Error(), "allowed directory") {
		t.Errorf("error should name the allowlist, got %v", err)
	}
	if _, statErr := os.Stat(exportPath); !os.IsNotExist(statErr) {
		t.Error("refused export must not create the file")
	}
}

func TestExportImport_AllowedPathsEntry(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	allowed := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{allowed, "relative/ignored"}

	database := openTestDB(t)
	mustSave(t, database, SaveInput{Content: "kept", Project: stringPtr("memo")})

	exportPath := filepath.Join(allowed, "memo-notes.jsonl")
	out, err := Export(context.Background(), database, cfg, ExportInput{Path: exportPath})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("Count = %d, want 1", out.Count)
	}

	imported, err := Import(context.Background(), openTestDB(t), cfg, ImportInput{Path: exportPath})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported.Imported != 1 {
		t.Errorf("Imported = %d, want 1", imported.Imported)
	}

	// Only the directory itself is allowed, not its subdirectories.
	nested := filepath.Join(allowed, "sub", "memo-notes.jsonl")
	if _, err := Export(context.Background(), database, cfg, ExportInput{Path: nested}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("nested Export() error = %v, want INVALID_REQUEST", err)
	}
}

func TestExport_NestedDirectoryRefusedInDefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	database := openTestDB(t)

	nested := filepath.Join(home, config.DirName, "exports", "old", "memo.jsonl")
	_, err := Export(context.Background(), database, nil, ExportInput{Path: nested})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Export() error = %v, want INVALID_REQUEST", err)
	}
}

func TestExportImport_UnsafePathsSkipDirectoryCheck(t *testing.T) {
	database := openTestDB(t)
	mustSave(t, database, SaveInput{Content: "anywhere"})

	nested := filepath.Join(t.TempDir(), "deep", "er", "memo.jsonl")
	out, err := Export(context.Background(), database, unsafeConfig(), ExportInput{Path: nested})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Path != nested {
		t.Errorf("Path = %q, want %q", out.Path, nested)
	}

	imported, err := Import(context.Background(), openTestDB(t), unsafeConfig(), ImportInput{Path: nested})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if imported.Imported != 1 {
		t.Errorf("Imported = %d, want 1", imported.Imported)
	}
}

func TestImport_SymlinkRefusedEvenWhenUnsafe(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.jsonl")
	writeExportFile(t, target)
	link := filepath.Join(dir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := Import(context.Background(), openTestDB(t), unsafeConfig(), ImportInput{Path: link})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Import() error = %v, want INVALID_REQUEST", err)
	}

	// The real file is still importable.
	out, err := Import(context.Background(), openTestDB(t), unsafeConfig(), ImportInput{Path: target})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if out.Imported != 1 {
		t.Errorf("Imported = %d, want 1", out.Imported)
	}
}

func TestExport_SymlinkTargetNotOverwritten(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "keep.jsonl")
	writeExportFile(t, target)
	before, _ := os.ReadFile(target)

	link := filepath.Join(dir, "memo.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	database := openTestDB(t)
	mustSave(t, database, SaveInput{Content: "new"})

	_, err := Export(context.Background(), database, unsafeConfig(), ExportInput{Path: link})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("Export() error = %v, want INVALID_REQUEST", err)
	}
	after, _ := os.ReadFile(target)
	if string(before) != string(after) {
		t.Error("symlink target was modified")
	}
}

func TestImport_SymlinkedAllowedPathResolved(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	realDir := t.TempDir()
	alias := filepath.Join(t.TempDir(), "alias")
	if err := os.Symlink(realDir, alias); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{alias}

	path := filepath.Join(realDir, "memo.jsonl")
	writeExportFile(t, path)

	if _, err := Import(context.Background(), openTestDB(t), cfg, ImportInput{Path: path}); err != nil {
		t.Errorf("Import via resolved directory failed: %v", err)
	}

	viaAlias := filepath.Join(alias, "memo.jsonl")
	if _, err := Import(context.Background(), openTestDB(t), cfg, ImportInput{Path: viaAlias}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Import via symlinked directory error = %v, want INVALID_REQUEST", err)
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := map[string]string{
		"memo":           "memo",
		"team/notes":     "team-notes",
		`win\path`:       "win-path",
		"../../etc":      "etc",
		"a\x00b\x7f":     "ab",
		"":               "unnamed",
		"--":             "unnamed",
		"side project 2": "side project 2",
	}
	for in, want := range tests {
		if got := SanitizeForFilename(in); got != want {
			t.Errorf("SanitizeForFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
