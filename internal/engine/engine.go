package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/docslice/internal/doctree"
)

// ErrUnsupported is returned for files no engine can open.
var ErrUnsupported = errors.New("unsupported document format")

// Document is an open, editable document.
type Document interface {
	// Paragraphs returns the paragraph records in document order.
	Paragraphs() []doctree.ParagraphRecord
	// Length returns the total content length.
	Length() int
	// DeleteRange removes content in [start, end).
	DeleteRange(start, end int) error
	// SaveAs writes the document to path.
	SaveAs(path string) error
}

// Engine opens documents of one format.
type Engine interface {
	Open(path string) (Document, error)
}

// Registry maps file extensions to engines.
type Registry struct {
	byExt map[string]Engine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Engine)}
}

// DefaultRegistry returns a registry with the docx, markdown and html engines.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	docx := &DOCXEngine{}
	r.Register(docx, ".docx", ".doc")
	md := &MarkdownEngine{}
	r.Register(md, ".md", ".markdown")
	h := &HTMLEngine{}
	r.Register(h, ".html", ".htm")
	return r
}

// Register binds e to the given extensions.
func (r *Registry) Register(e Engine, exts ...string) {
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Supports reports whether some engine handles path's extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Open opens path with the engine registered for its extension.
func (r *Registry) Open(path string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	return e.Open(path)
}
