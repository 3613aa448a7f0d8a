package ops

import (
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/memo/internal/errors"
	"github.com/hpungsan/memo/internal/memory"
	"github.com/hpungsan/memo/internal/query"
)

// writeMu serializes mutations. Reads do not take it.
var writeMu sync.Mutex

// now is the clock used for created_at and updated_at.
var now = time.Now

// MemoriesOutput is the result of list, search and timeline.
type MemoriesOutput struct {
	Count    int              `json:"count"`
	Memories []*memory.Memory `json:"memories"`
}

func newMemoriesOutput(memories []*memory.Memory) *MemoriesOutput {
	if memories == nil {
		memories = []*memory.Memory{}
	}
	return &MemoriesOutput{
		Count:    len(memories),
		Memories: memories,
	}
}

// FilterInput holds the filters shared by list, search and timeline.
type FilterInput struct {
	Category       string
	Project        string
	Visibility     string // optional, one of private, internal, shareable
	IncludePrivate bool
}

func (f FilterInput) toFilter() (query.Filter, error) {
	vis, err := parseOptionalVisibility(f.Visibility)
	if err != nil {
		return query.Filter{}, err
	}
	return query.Filter{
		Category:       f.Category,
		Project:        f.Project,
		Visibility:     vis,
		IncludePrivate: f.IncludePrivate,
	}, nil
}

// parseOptionalVisibility returns nil for an empty value.
func parseOptionalVisibility(s string) (*memory.Visibility, error) {
	if s == "" {
		return nil, nil
	}
	v, err := memory.ParseVisibility(s)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return &v, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
