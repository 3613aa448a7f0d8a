package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/memo/internal/config"
	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/ops"
	"github.com/hpungsan/memo/internal/web"
)

// maxStdinBytes caps content read from stdin.
const maxStdinBytes = 16 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "memo",
		Usage:   "Persistent memory store",
		Version: Version,
		Commands: []*cli.Command{
			saveCmd(db),
			searchCmd(db),
			listCmd(db),
			timelineCmd(db),
			getCmd(db),
			deleteCmd(db),
			updateCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			webCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// filterFlags are shared by search, list and timeline.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category"},
		&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Filter by project"},
		&cli.StringFlag{Name: "visibility", Usage: "Filter by visibility: private|internal|shareable"},
		&cli.BoolFlag{Name: "include-private", Usage: "Include private memories"},
	}
}

func filterInput(c *cli.Context) ops.FilterInput {
	return ops.FilterInput{
		Category:       c.String("category"),
		Project:        c.String("project"),
		Visibility:     c.String("visibility"),
		IncludePrivate: c.Bool("include-private"),
	}
}

// saveCmd creates the save command.
func saveCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save a new memory (content from --content or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content", Usage: "Memory content (reads stdin when omitted)"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Title"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category (default: general)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Project name"},
			&cli.StringFlag{Name: "visibility", Usage: "private|internal|shareable (default: internal)"},
		},
		Action: func(c *cli.Context) error {
			content := c.String("content")
			if !c.IsSet("content") {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("content must be given with --content or piped via stdin"))
				}
				text, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(err)
				}
				content = text
			}

			input := ops.SaveInput{
				Content:    content,
				Title:      optionalString(c, "title"),
				Category:   optionalString(c, "category"),
				Project:    optionalString(c, "project"),
				Visibility: c.String("visibility"),
			}
			if c.IsSet("tags") {
				input.Tags = parseTags(c.String("tags"))
			}

			output, err := ops.Save(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search memories; every term must match",
		ArgsUsage: "<terms...>",
		Flags: append(filterFlags(),
			&cli.Float64Flag{Name: "limit", Aliases: []string{"l"}, Usage: "Max results (default: 20, max: 100)"},
		),
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, db, ops.SearchInput{
				FilterInput: filterInput(c),
				Query:       strings.Join(c.Args().Slice(), " "),
				Limit:       optionalFloat(c, "limit"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List memories, newest first",
		Flags: append(filterFlags(),
			&cli.Float64Flag{Name: "limit", Aliases: []string{"l"}, Usage: "Max results (default: 20, max: 100)"},
			&cli.Float64Flag{Name: "offset", Aliases: []string{"o"}, Usage: "Results to skip"},
		),
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				FilterInput: filterInput(c),
				Limit:       optionalFloat(c, "limit"),
				Offset:      optionalFloat(c, "offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// timelineCmd creates the timeline command.
func timelineCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "timeline",
		Usage: "List memories oldest first within a creation-time range",
		Flags: append(filterFlags(),
			&cli.StringFlag{Name: "from", Usage: "Inclusive lower bound, e.g. 2024-01-01"},
			&cli.StringFlag{Name: "to", Usage: "Inclusive upper bound, e.g. 2024-12-31 23:59:59"},
			&cli.Float64Flag{Name: "limit", Aliases: []string{"l"}, Usage: "Max results (default: 20, max: 100)"},
			&cli.Float64Flag{Name: "offset", Aliases: []string{"o"}, Usage: "Results to skip"},
		),
		Action: func(c *cli.Context) error {
			output, err := ops.Timeline(c.Context, db, ops.TimelineInput{
				FilterInput: filterInput(c),
				From:        c.String("from"),
				To:          c.String("to"),
				Limit:       optionalFloat(c, "limit"),
				Offset:      optionalFloat(c, "offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// getCmd creates the get command.
func getCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get a memory by id",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-private", Usage: "Allow fetching a private memory"},
		},
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Get(c.Context, db, ops.GetInput{
				ID:             id,
				IncludePrivate: c.Bool("include-private"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a memory",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: id})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a memory (content from --content or piped stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content", Usage: "New content"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "New category"},
			&cli.StringFlag{Name: "tags", Usage: "New comma-separated tags (replaces existing)"},
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "New project"},
			&cli.StringFlag{Name: "visibility", Usage: "New visibility"},
		},
		Action: func(c *cli.Context) error {
			id, err := parseID(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.UpdateInput{
				ID:         id,
				Content:    optionalString(c, "content"),
				Title:      optionalString(c, "title"),
				Category:   optionalString(c, "category"),
				Project:    optionalString(c, "project"),
				Visibility: optionalString(c, "visibility"),
			}

			// Piped stdin replaces content unless --content was given.
			if input.Content == nil && stdinHasData() {
				text, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(err)
				}
				if text != "" {
					input.Content = &text
				}
			}

			if c.IsSet("tags") {
				tags := parseTags(c.String("tags"))
				input.Tags = &tags
			}

			output, err := ops.Update(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export memories to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Output path (default: ~/.memo/exports/<project|all>-<id>.jsonl)"},
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Usage: "Only export this project"},
			&cli.BoolFlag{Name: "include-private", Usage: "Include private memories"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Path:           c.String("path"),
				Project:        c.String("project"),
				IncludePrivate: c.Bool("include-private"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import memories from a JSONL export",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Path to the .jsonl file"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("path")
			if path == "" {
				path = c.Args().First()
			}
			if path == "" {
				return outputError(errors.NewInvalidRequest("path is required"))
			}

			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{Path: path})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the browser UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: web.DefaultBind, Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: web.DefaultPort, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("port must be between 1 and 65535, got %d", port)))
			}

			srv, err := web.NewServer(db, cfg, Version, c.String("bind"), port)
			if err != nil {
				return outputError(err)
			}
			if err := web.Run(srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var memoErr *errors.MemoError
	if stderrors.As(err, &memoErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", memoErr.Code, memoErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// optionalString returns nil unless the flag was given.
func optionalString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	s := c.String(name)
	return &s
}

// optionalFloat returns nil unless the flag was given.
func optionalFloat(c *cli.Context, name string) *float64 {
	if !c.IsSet(name) {
		return nil
	}
	f := c.Float64(name)
	return &f
}

// parseID reads the first positional argument as a memory id.
func parseID(c *cli.Context) (int64, error) {
	if c.NArg() == 0 {
		return 0, errors.NewInvalidRequest("id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("id must be an integer, got %q", c.Args().First()))
	}
	return id, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads stdin up to limit bytes and drops trailing line breaks.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("stdin exceeds %d bytes", limit))
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// parseTags splits a comma-separated string into a slice of tags.
// The result is never nil so an empty --tags clears existing tags.
func parseTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
