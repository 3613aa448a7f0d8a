package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/memo/internal/config"
	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Handlers{db: db, cfg: cfg, logger: slog.Default()}
}

// Request types for each tool

// filterArgs holds the filters shared by search, list and timeline.
type filterArgs struct {
	Category       string `json:"category,omitempty"`
	Project        string `json:"project,omitempty"`
	Visibility     string `json:"visibility,omitempty"`
	IncludePrivate bool   `json:"include_private,omitempty"`
}

func (f filterArgs) toInput() ops.FilterInput {
	return ops.FilterInput{
		Category:       f.Category,
		Project:        f.Project,
		Visibility:     f.Visibility,
		IncludePrivate: f.IncludePrivate,
	}
}

// SaveRequest represents the arguments for save_memory.
type SaveRequest struct {
	Content    *string  `json:"content"`
	Title      *string  `json:"title,omitempty"`
	Category   *string  `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Project    *string  `json:"project,omitempty"`
	Visibility string   `json:"visibility,omitempty"`
}

func (r *SaveRequest) validate() error {
	return requireString("content", r.Content)
}

// SearchRequest represents the arguments for search_memories.
type SearchRequest struct {
	filterArgs
	Query *string  `json:"query"`
	Limit *float64 `json:"limit,omitempty"`
}

// validate requires query to be present. A blank query is allowed and
// lists the newest memories.
func (r *SearchRequest) validate() error {
	if r.Query == nil {
		return errors.NewInvalidRequest("query is required")
	}
	return nil
}

// ListRequest represents the arguments for list_memories.
type ListRequest struct {
	filterArgs
	Limit  *float64 `json:"limit,omitempty"`
	Offset *float64 `json:"offset,omitempty"`
}

// TimelineRequest represents the arguments for timeline_memories.
type TimelineRequest struct {
	filterArgs
	From   string   `json:"from,omitempty"`
	To     string   `json:"to,omitempty"`
	Limit  *float64 `json:"limit,omitempty"`
	Offset *float64 `json:"offset,omitempty"`
}

// GetRequest represents the arguments for get_memory.
type GetRequest struct {
	ID             *float64 `json:"id"`
	IncludePrivate bool     `json:"include_private,omitempty"`
}

// DeleteRequest represents the arguments for delete_memory.
type DeleteRequest struct {
	ID *float64 `json:"id"`
}

// UpdateRequest represents the arguments for update_memory.
type UpdateRequest struct {
	ID         *float64  `json:"id"`
	Content    *string   `json:"content,omitempty"`
	Title      *string   `json:"title,omitempty"`
	Category   *string   `json:"category,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Project    *string   `json:"project,omitempty"`
	Visibility *string   `json:"visibility,omitempty"`
}

// ExportRequest represents the arguments for export_memories.
type ExportRequest struct {
	Path           string `json:"path,omitempty"`
	Project        string `json:"project,omitempty"`
	IncludePrivate bool   `json:"include_private,omitempty"`
}

// ImportRequest represents the arguments for import_memories.
type ImportRequest struct {
	Path *string `json:"path"`
}

func (r *ImportRequest) validate() error {
	return requireString("path", r.Path)
}

// Handler implementations

// HandleSave handles the save_memory tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Save(ctx, h.db, ops.SaveInput{
		Content:    *input.Content,
		Title:      input.Title,
		Category:   input.Category,
		Tags:       input.Tags,
		Project:    input.Project,
		Visibility: input.Visibility,
	})
	if err != nil {
		return h.fail("save_memory", err), nil
	}

	return successResult(result)
}

// HandleSearch handles the search_memories tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Search(ctx, h.db, ops.SearchInput{
		FilterInput: input.toInput(),
		Query:       *input.Query,
		Limit:       input.Limit,
	})
	if err != nil {
		return h.fail("search_memories", err), nil
	}

	return successResult(result)
}

// HandleList handles the list_memories tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		FilterInput: input.toInput(),
		Limit:       input.Limit,
		Offset:      input.Offset,
	})
	if err != nil {
		return h.fail("list_memories", err), nil
	}

	return successResult(result)
}

// HandleTimeline handles the timeline_memories tool call.
func (h *Handlers) HandleTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TimelineRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Timeline(ctx, h.db, ops.TimelineInput{
		FilterInput: input.toInput(),
		From:        input.From,
		To:          input.To,
		Limit:       input.Limit,
		Offset:      input.Offset,
	})
	if err != nil {
		return h.fail("timeline_memories", err), nil
	}

	return successResult(result)
}

// HandleGet handles the get_memory tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	id, err := requireID(input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Get(ctx, h.db, ops.GetInput{
		ID:             id,
		IncludePrivate: input.IncludePrivate,
	})
	if err != nil {
		return h.fail("get_memory", err), nil
	}

	return successResult(result)
}

// HandleDelete handles the delete_memory tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	id, err := requireID(input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(ctx, h.db, ops.DeleteInput{ID: id})
	if err != nil {
		return h.fail("delete_memory", err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the update_memory tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	id, err := requireID(input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Update(ctx, h.db, ops.UpdateInput{
		ID:         id,
		Content:    input.Content,
		Title:      input.Title,
		Category:   input.Category,
		Tags:       input.Tags,
		Project:    input.Project,
		Visibility: input.Visibility,
	})
	if err != nil {
		return h.fail("update_memory", err), nil
	}

	return successResult(result)
}

// HandleExport handles the export_memories tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Path:           input.Path,
		Project:        input.Project,
		IncludePrivate: input.IncludePrivate,
	})
	if err != nil {
		return h.fail("export_memories", err), nil
	}

	return successResult(result)
}

// HandleImport handles the import_memories tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{Path: *input.Path})
	if err != nil {
		return h.fail("import_memories", err), nil
	}

	return successResult(result)
}

// Result helpers

// fail logs internal failures with the tool name and converts err to an
// error result.
func (h *Handlers) fail(tool string, err error) *mcp.CallToolResult {
	if !isClientError(err) {
		h.logger.Error("tool failed", "tool", tool, "error", err)
	}
	return errorResult(err)
}

func isClientError(err error) bool {
	var memoErr *errors.MemoError
	return stderrors.As(err, &memoErr) && memoErr.Code != errors.ErrInternal
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var memoErr *errors.MemoError
	if stderrors.As(err, &memoErr) {
		errorObj := map[string]any{
			"code":    memoErr.Code,
			"message": memoErr.Message,
			"status":  memoErr.Status,
		}
		if memoErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if memoErr.Details != nil {
			errorObj["details"] = memoErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
