package dataset

import (
	"errors"
	"sync/atomic"
)

// ErrNotLoaded is returned by Reload before the first successful Load.
var ErrNotLoaded = errors.New("dataset not loaded")

// Store holds the current Context. Load and Reload are the only writers;
// readers take a snapshot with Current and keep using it for the whole request.
type Store struct {
	loader  *Loader
	current atomic.Pointer[Context]
	path    atomic.Value
}

// NewStore creates an empty store.
func NewStore(loader *Loader) *Store {
	return &Store{loader: loader}
}

// NewStaticStore wraps an already built context, e.g. for tests.
func NewStaticStore(ctx *Context) *Store {
	s := &Store{}
	s.current.Store(ctx)

	return s
}

// Load reads path and makes it the current dataset.
func (s *Store) Load(path string) (*Context, error) {
	ctx, err := s.loader.LoadFile(path)
	if err != nil {
		return nil, err
	}

	s.path.Store(path)
	s.current.Store(ctx)

	return ctx, nil
}

// Reload re-reads the last loaded path. On failure the previous context stays current.
func (s *Store) Reload() (*Context, error) {
	path, _ := s.path.Load().(string)
	if path == "" {
		return nil, ErrNotLoaded
	}

	return s.Load(path)
}

// Path returns the last successfully loaded path.
func (s *Store) Path() string {
	path, _ := s.path.Load().(string)

	return path
}

// Current returns the current context, or nil before the first Load.
func (s *Store) Current() *Context {
	return s.current.Load()
}
