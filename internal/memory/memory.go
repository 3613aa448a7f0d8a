package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Visibility is the self-declared access label on a memory.
type Visibility string

const (
	VisibilityPrivate   Visibility = "private"
	VisibilityInternal  Visibility = "internal"
	VisibilityShareable Visibility = "shareable"
)

// Visibilities lists every valid visibility value.
var Visibilities = []Visibility{VisibilityPrivate, VisibilityInternal, VisibilityShareable}

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityInternal, VisibilityShareable:
		return true
	}
	return false
}

// ParseVisibility converts s to a Visibility, rejecting unknown values.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(s)
	if !v.Valid() {
		return "", fmt.Errorf("visibility must be one of: %s", strings.Join(VisibilityNames(), ", "))
	}
	return v, nil
}

// VisibilityNames returns the visibility values as plain strings.
func VisibilityNames() []string {
	names := make([]string, len(Visibilities))
	for i, v := range Visibilities {
		names[i] = string(v)
	}
	return names
}

// Memory is a stored note.
type Memory struct {
	// ID is assigned by the store and never reused
	ID int64 `json:"id"`

	// Content is the body of the memory (required, non-empty)
	Content string `json:"content"`

	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Project  string   `json:"project"`

	// Source is fixed at creation
	Source string `json:"source"`

	Visibility Visibility `json:"visibility"`

	// CreatedAt and UpdatedAt use TimeLayout in UTC
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	// RelevanceScore is only populated on search results
	RelevanceScore *int `json:"relevance_score,omitempty"`
}

// IsPrivate reports whether the memory is hidden from default reads.
func (m *Memory) IsPrivate() bool {
	return m.Visibility == VisibilityPrivate
}

// Fields carries the writable fields of a memory. A nil pointer means the
// field was not supplied.
type Fields struct {
	Content    *string
	Title      *string
	Category   *string
	Tags       *[]string
	Project    *string
	Visibility *Visibility
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return f.Content == nil && f.Title == nil && f.Category == nil &&
		f.Tags == nil && f.Project == nil && f.Visibility == nil
}

// NewMemory builds a memory from f with defaults applied to omitted fields.
// The ID is left zero for the store to assign.
func NewMemory(f Fields, now time.Time) *Memory {
	ts := FormatTime(now)
	m := &Memory{
		Title:      "",
		Category:   DefaultCategory,
		Tags:       []string{},
		Project:    "",
		Source:     DefaultSource,
		Visibility: DefaultVisibility,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if f.Content != nil {
		m.Content = *f.Content
	}
	m.Apply(f)
	return m
}

// Apply copies every supplied field of f onto m. It does not touch UpdatedAt.
func (m *Memory) Apply(f Fields) {
	if f.Content != nil {
		m.Content = *f.Content
	}
	if f.Title != nil {
		m.Title = *f.Title
	}
	if f.Category != nil {
		m.Category = *f.Category
	}
	if f.Tags != nil {
		m.Tags = cloneTags(*f.Tags)
	}
	if f.Project != nil {
		m.Project = *f.Project
	}
	if f.Visibility != nil {
		m.Visibility = *f.Visibility
	}
}

// FormatTime renders t in the stored timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// EncodeTags serializes tags for storage. Nil encodes as "[]". HTML
// characters are kept literal so search terms can match them.
func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tags); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeTags parses stored tags. Empty input yields an empty slice.
func DecodeTags(s string) ([]string, error) {
	tags := []string{}
	if strings.TrimSpace(s) == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
