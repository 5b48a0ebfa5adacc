// Package docsvc owns the single document-engine session used by a run.
// Callers address open documents through opaque handles; the engine and its
// documents never leave this package.
package docsvc

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dgallion1/docslice/internal/doctree"
	"github.com/dgallion1/docslice/internal/engine"
)

var (
	// ErrSessionClosed is returned after Shutdown.
	ErrSessionClosed = errors.New("document session closed")
	// ErrUnknownHandle is returned for handles that are not open.
	ErrUnknownHandle = errors.New("unknown document handle")
)

// EngineSessionError reports a failed engine operation.
type EngineSessionError struct {
	Op   string
	Path string
	Err  error
}

func (e *EngineSessionError) Error() string {
	return fmt.Sprintf("engine %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *EngineSessionError) Unwrap() error { return e.Err }

// Opener opens documents; *engine.Registry satisfies it.
type Opener interface {
	Open(path string) (engine.Document, error)
}

// Handle identifies an open document.
type Handle uint64

type openDoc struct {
	path string
	doc  engine.Document
}

// Service is the facade over the engine session.
type Service struct {
	mu     sync.Mutex
	opener Opener
	log    *slog.Logger
	docs   map[Handle]*openDoc
	next   Handle
	closed bool

	paragraphsRead atomic.Int64
}

// New starts a session over opener.
func New(opener Opener, log *slog.Logger) *Service {
	return &Service{
		opener: opener,
		log:    log,
		docs:   make(map[Handle]*openDoc),
	}
}

// Open opens path and returns its handle and paragraph records.
func (s *Service) Open(path string) (Handle, []doctree.ParagraphRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, &EngineSessionError{Op: "open", Path: path, Err: ErrSessionClosed}
	}

	doc, err := s.opener.Open(path)
	if err != nil {
		return 0, nil, &EngineSessionError{Op: "open", Path: path, Err: err}
	}

	s.next++
	h := s.next
	s.docs[h] = &openDoc{path: path, doc: doc}

	records := doc.Paragraphs()
	s.paragraphsRead.Add(int64(len(records)))
	return h, records, nil
}

// Length returns the content length of an open document.
func (s *Service) Length(h Handle) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	od, err := s.lookup(h, "length")
	if err != nil {
		return 0, err
	}
	return od.doc.Length(), nil
}

// DeleteRange removes content in [r.Start, r.End) from an open document.
func (s *Service) DeleteRange(h Handle, r doctree.SliceRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	od, err := s.lookup(h, "delete")
	if err != nil {
		return err
	}
	if err := od.doc.DeleteRange(r.Start, r.End); err != nil {
		return &EngineSessionError{Op: "delete", Path: od.path, Err: err}
	}
	return nil
}

// SaveAs writes an open document to path. The handle stays open.
func (s *Service) SaveAs(h Handle, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	od, err := s.lookup(h, "save")
	if err != nil {
		return err
	}
	if err := od.doc.SaveAs(path); err != nil {
		return &EngineSessionError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// Close releases a handle. Unless discardChanges is set the document is
// saved back to the path it was opened from.
func (s *Service) Close(h Handle, discardChanges bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	od, err := s.lookup(h, "close")
	if err != nil {
		return err
	}
	delete(s.docs, h)
	if discardChanges {
		return nil
	}
	if err := od.doc.SaveAs(od.path); err != nil {
		return &EngineSessionError{Op: "close", Path: od.path, Err: err}
	}
	return nil
}

// Shutdown discards every document still open and ends the session.
// It is safe to call more than once.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	handles := make([]Handle, 0, len(s.docs))
	for h := range s.docs {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		s.log.Warn("closing orphaned document", "path", s.docs[h].path)
		delete(s.docs, h)
	}

	s.closed = true
	s.log.Info("document session closed", "orphaned", len(handles))
}

// OpenCount returns the number of open documents.
func (s *Service) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// ParagraphsRead returns the number of paragraph records read so far.
func (s *Service) ParagraphsRead() int64 {
	return s.paragraphsRead.Load()
}

func (s *Service) lookup(h Handle, op string) (*openDoc, error) {
	if s.closed {
		return nil, &EngineSessionError{Op: op, Err: ErrSessionClosed}
	}
	od, ok := s.docs[h]
	if !ok {
		return nil, &EngineSessionError{Op: op, Err: fmt.Errorf("%w: %d", ErrUnknownHandle, h)}
	}
	return od, nil
}
