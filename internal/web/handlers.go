package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/memo/internal/config"
	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/memory"
	"github.com/hpungsan/memo/internal/ops"
	"github.com/hpungsan/memo/internal/query"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /memories, newest first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)
	limit := parseFloatParam(r, "limit")
	offset := parseFloatParam(r, "offset")

	result, err := ops.List(r.Context(), h.db, ops.ListInput{
		FilterInput: filters.input(),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Memories",
			Version: h.renderer.version,
			Nav:     "memories",
		},
		Action:     "/memories",
		Memories:   result.Memories,
		Pagination: paginate(r, limit, offset, result.Count),
		Filters:    filters,
	})
}

// HandleTimeline handles GET /memories/timeline, oldest first within from/to.
func (h *Handlers) HandleTimeline(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)
	limit := parseFloatParam(r, "limit")
	offset := parseFloatParam(r, "offset")
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))

	result, err := ops.Timeline(r.Context(), h.db, ops.TimelineInput{
		FilterInput: filters.input(),
		From:        from,
		To:          to,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Timeline",
			Version: h.renderer.version,
			Nav:     "timeline",
		},
		Action:     "/memories/timeline",
		Memories:   result.Memories,
		Pagination: paginate(r, limit, offset, result.Count),
		Filters:    filters,
		From:       from,
		To:         to,
		Timeline:   true,
	})
}

// HandleSearch handles GET /memories/search.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	filters := parseFilters(r)
	limit := parseFloatParam(r, "limit")

	data := SearchPageData{
		PageData: PageData{
			Title:   "Search",
			Version: h.renderer.version,
			Nav:     "search",
		},
		Query:    q,
		Filters:  filters,
		Limit:    memory.NormalizeLimit(limit),
		HasQuery: len(query.Tokenize(q)) > 0,
	}

	if !data.HasQuery {
		h.renderer.renderPage(w, "search", data)
		return
	}

	result, err := ops.Search(r.Context(), h.db, ops.SearchInput{
		FilterInput: filters.input(),
		Query:       q,
		Limit:       limit,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	data.Memories = result.Memories

	h.renderer.renderPage(w, "search", data)
}

// HandleDetail handles GET /memories/{id}. With ?q= the page also shows how
// the memory scores against that query.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	m, err := ops.Get(r.Context(), h.db, ops.GetInput{
		ID:             id,
		IncludePrivate: parseBoolParam(r, "include_private"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := DetailPageData{
		PageData: PageData{
			Title:   displayName(m),
			Version: h.renderer.version,
			Nav:     "memories",
		},
		Memory:       m,
		RenderedHTML: renderMarkdown(m.Content),
		Query:        r.URL.Query().Get("q"),
	}
	if terms := query.Tokenize(data.Query); len(terms) > 0 {
		data.Matches = query.Matches(m, terms)
		data.Score = query.Relevance(m, terms)
	}

	h.renderer.renderPage(w, "detail", data)
}

// HandleDelete handles DELETE /memories/{id}, a hard delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/memories", http.StatusFound)
}

func parseFilters(r *http.Request) Filters {
	q := r.URL.Query()
	return Filters{
		Category:       strings.TrimSpace(q.Get("category")),
		Project:        strings.TrimSpace(q.Get("project")),
		Visibility:     strings.TrimSpace(q.Get("visibility")),
		IncludePrivate: parseBoolParam(r, "include_private"),
	}
}

func (f Filters) input() ops.FilterInput {
	return ops.FilterInput{
		Category:       f.Category,
		Project:        f.Project,
		Visibility:     f.Visibility,
		IncludePrivate: f.IncludePrivate,
	}
}

// paginate builds prev/next links for the current page. A full page is
// assumed to have a successor.
func paginate(r *http.Request, limit, offset *float64, count int) Pagination {
	p := Pagination{
		Limit:  memory.NormalizeLimit(limit),
		Offset: memory.NormalizeOffset(offset),
		Count:  count,
	}

	link := func(off int) string {
		q := r.URL.Query()
		q.Set("limit", strconv.Itoa(p.Limit))
		q.Set("offset", strconv.Itoa(off))
		return r.URL.Path + "?" + q.Encode()
	}
	if p.Offset > 0 {
		p.PrevURL = link(max(0, p.Offset-p.Limit))
	}
	if count == p.Limit {
		p.NextURL = link(p.Offset + p.Limit)
	}
	return p
}

// parseID reads the {id} path value.
func parseID(r *http.Request) (int64, error) {
	s := r.PathValue("id")
	if s == "" {
		return 0, errors.NewInvalidRequest("memory id is required")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.NewInvalidRequest("memory id must be an integer")
	}
	return id, nil
}

// parseFloatParam parses a numeric query parameter. Missing or malformed
// values are nil and take the operation's default.
func parseFloatParam(r *http.Request, name string) *float64 {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1" || s == "on"
}
