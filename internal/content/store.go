package content

import (
	"context"
	"sync"

	"github.com/conneroisu/folio/internal/logging"
)

// Store holds the current document for a file and swaps it atomically on
// reload. A failed reload keeps serving the previous document.
type Store struct {
	path   string
	logger logging.Logger

	mu        sync.RWMutex
	doc       *Document
	listeners []func(*Document)
}

// NewStore creates a store for path. Call Reload to load it.
func NewStore(path string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:   path,
		logger: logger.WithComponent("content"),
	}
}

// NewStaticStore wraps an already loaded document. Reload is a no-op.
func NewStaticStore(doc *Document) *Store {
	return &Store{doc: doc, logger: logging.NewNop()}
}

// Path returns the watched file path.
func (s *Store) Path() string {
	return s.path
}

// Document returns the current document, nil before the first successful
// load.
func (s *Store) Document() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// OnReload registers fn to be called after each successful reload.
func (s *Store) OnReload(fn func(*Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload re-reads the file. Listeners run only when the new document loaded.
func (s *Store) Reload(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	perf := logging.StartOperation(s.logger, "content_reload")
	doc, err := Load(s.path)
	if err != nil {
		perf.EndWithError(ctx, err, "path", s.path)
		return err
	}

	s.mu.Lock()
	s.doc = doc
	listeners := append([]func(*Document){}, s.listeners...)
	s.mu.Unlock()

	perf.End(ctx, "path", s.path, "projects", len(doc.Projects))
	for _, fn := range listeners {
		fn(doc)
	}
	return nil
}
