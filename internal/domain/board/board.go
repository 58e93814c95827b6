package board

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/elodash/internal/domain/record"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// SourceType selects how a board payload is fetched.
type SourceType string

const (
	// SourceURL fetches a static JSON array over HTTP.
	SourceURL SourceType = "url"
	// SourceKV reads a JSON string from the configured key-value backend.
	SourceKV SourceType = "kv"
)

// Source locates a board payload.
type Source struct {
	typ SourceType
	url string
	key string
}

// NewSource validates and creates a Source.
func NewSource(typ SourceType, url, key string) (Source, error) {
	switch typ {
	case SourceURL:
		if url == "" {
			return Source{}, fmt.Errorf("url source requires url")
		}
	case SourceKV:
		if key == "" {
			return Source{}, fmt.Errorf("kv source requires key")
		}
	default:
		return Source{}, fmt.Errorf("unknown source type %q", typ)
	}
	return Source{typ: typ, url: url, key: key}, nil
}

// Type returns the source type.
func (s Source) Type() SourceType { return s.typ }

// URL returns the static payload URL (url sources).
func (s Source) URL() string { return s.url }

// Key returns the KV key (kv sources).
func (s Source) Key() string { return s.key }

// String returns a compact description for logs and cache keys.
func (s Source) String() string {
	if s.typ == SourceKV {
		return "kv:" + s.key
	}
	return "url:" + s.url
}

// Board is a named, typed record set (immutable value object).
type Board struct {
	name   string
	kind   record.Kind
	schema Schema
	source Source
}

// New validates and creates a Board.
// Name: ^[a-z0-9_-]+$, 1-64 chars.
func New(name string, kind record.Kind, source Source) (Board, error) {
	if name == "" {
		return Board{}, fmt.Errorf("board name is required")
	}
	if len(name) > 64 {
		return Board{}, fmt.Errorf("board name %q too long (max 64)", name)
	}
	if !nameRegex.MatchString(name) {
		return Board{}, fmt.Errorf("board name %q must be lowercase alphanumeric with underscores and hyphens", name)
	}
	if !kind.Valid() {
		return Board{}, fmt.Errorf("board %q: unknown record kind %q", name, kind)
	}
	return Board{name: name, kind: kind, schema: SchemaFor(kind), source: source}, nil
}

// Name returns the board name.
func (b Board) Name() string { return b.name }

// Kind returns the record kind stored on the board.
func (b Board) Kind() record.Kind { return b.kind }

// Schema returns the field schema of the board's kind.
func (b Board) Schema() Schema { return b.schema }

// Source returns where the board payload comes from.
func (b Board) Source() Source { return b.source }
