package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/memo/internal/memory"
)

var visibilityValues = memory.VisibilityNames()

var saveToolDef = mcp.NewTool("save_memory",
	mcp.WithDescription("Save a memory. Content is stored as given; omitted fields get defaults (category general, visibility internal)."),
	mcp.WithTitleAnnotation("Save Memory"),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithIdempotentHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("The memory text"),
	),
	mcp.WithString("title",
		mcp.Description("Short, searchable title"),
	),
	mcp.WithString("category",
		mcp.Description("Category (default: general)"),
	),
	mcp.WithArray("tags",
		mcp.Description("Tags"),
		mcp.WithStringItems(),
	),
	mcp.WithString("project",
		mcp.Description("Project name"),
	),
	mcp.WithString("visibility",
		mcp.Description("private, internal (default) or shareable"),
		mcp.Enum(visibilityValues...),
	),
)

var searchToolDef = mcp.NewTool("search_memories",
	mcp.WithDescription("Search memories by keywords. Every term must appear in the content, title, category, tags or project. Results are ranked by relevance, then recency."),
	mcp.WithTitleAnnotation("Search Memories"),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Whitespace-separated search terms, matched case-insensitively"),
	),
	mcp.WithString("category",
		mcp.Description("Filter by category"),
	),
	mcp.WithString("project",
		mcp.Description("Filter by project"),
	),
	mcp.WithString("visibility",
		mcp.Description("Filter by visibility"),
		mcp.Enum(visibilityValues...),
	),
	mcp.WithBoolean("include_private",
		mcp.Description("Include private memories (default: false)"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Max results (default: 20, max: 100)"),
	),
)

var listToolDef = mcp.NewTool("list_memories",
	mcp.WithDescription("List memories, newest first."),
	mcp.WithTitleAnnotation("List Memories"),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
	mcp.WithString("category",
		mcp.Description("Filter by category"),
	),
	mcp.WithString("project",
		mcp.Description("Filter by project"),
	),
	mcp.WithString("visibility",
		mcp.Description("Filter by visibility"),
		mcp.Enum(visibilityValues...),
	),
	mcp.WithBoolean("include_private",
		mcp.Description("Include private memories (default: false)"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Max results (default: 20, max: 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Results to skip (default: 0)"),
	),
)

var timelineToolDef = mcp.NewTool("timeline_memories",
	mcp.WithDescription("List memories oldest first, optionally bounded by creation time."),
	mcp.WithTitleAnnotation("Memory Timeline"),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
	mcp.WithString("from",
		mcp.Description("Inclusive lower bound on created_at, e.g. 2024-01-01 or 2024-01-01 09:00:00"),
	),
	mcp.WithString("to",
		mcp.Description("Inclusive upper bound on created_at, compared as a string"),
	),
	mcp.WithString("category",
		mcp.Description("Filter by category"),
	),
	mcp.WithString("project",
		mcp.Description("Filter by project"),
	),
	mcp.WithString("visibility",
		mcp.Description("Filter by visibility"),
		mcp.Enum(visibilityValues...),
	),
	mcp.WithBoolean("include_private",
		mcp.Description("Include private memories (default: false)"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Max results (default: 20, max: 100)"),
	),
	mcp.WithNumber("offset",
		mcp.Description("Results to skip (default: 0)"),
	),
)

var getToolDef = mcp.NewTool("get_memory",
	mcp.WithDescription("Get one memory by id."),
	mcp.WithTitleAnnotation("Get Memory"),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Memory id"),
	),
	mcp.WithBoolean("include_private",
		mcp.Description("Allow fetching a private memory (default: false)"),
	),
)

var deleteToolDef = mcp.NewTool("delete_memory",
	mcp.WithDescription("Permanently delete a memory by id."),
	mcp.WithTitleAnnotation("Delete Memory"),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithIdempotentHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Memory id"),
	),
)

var updateToolDef = mcp.NewTool("update_memory",
	mcp.WithDescription("Update a memory by id. Only provided fields change; tags are replaced as a whole."),
	mcp.WithTitleAnnotation("Update Memory"),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithIdempotentHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Memory id"),
	),
	mcp.WithString("content",
		mcp.Description("New content"),
	),
	mcp.WithString("title",
		mcp.Description("New title"),
	),
	mcp.WithString("category",
		mcp.Description("New category"),
	),
	mcp.WithArray("tags",
		mcp.Description("New tags"),
		mcp.WithStringItems(),
	),
	mcp.WithString("project",
		mcp.Description("New project"),
	),
	mcp.WithString("visibility",
		mcp.Description("New visibility"),
		mcp.Enum(visibilityValues...),
	),
)

var exportToolDef = mcp.NewTool("export_memories",
	mcp.WithDescription("Export memories to a JSONL file (default: ~/.memo/exports/<project|all>-<id>.jsonl)."),
	mcp.WithTitleAnnotation("Export Memories"),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithIdempotentHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
	mcp.WithString("path",
		mcp.Description("Output path ending in .jsonl"),
	),
	mcp.WithString("project",
		mcp.Description("Only export this project"),
	),
	mcp.WithBoolean("include_private",
		mcp.Description("Include private memories (default: false)"),
	),
)

var importToolDef = mcp.NewTool("import_memories",
	mcp.WithDescription("Import memories from a JSONL export. Records get fresh ids; invalid lines are skipped and reported."),
	mcp.WithTitleAnnotation("Import Memories"),
	mcp.WithReadOnlyHintAnnotation(false),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithIdempotentHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to a .jsonl export file"),
	),
)
