package hierarchy

import (
	"errors"
	"sync"
	"time"
)

// Source says where the reference dataset lives.
type Source struct {
	Path    string
	Options LoadOptions
}

// Holder caches the loaded table for the life of the process. The table is
// swapped only by Reload; readers always see a complete table.
type Holder struct {
	src Source

	mu       sync.RWMutex
	table    *Table
	err      error
	loadedAt time.Time
}

func NewHolder(src Source) *Holder {
	return &Holder{src: src}
}

// NewStaticHolder wraps an already built table. Reload on it fails and keeps
// the table.
func NewStaticHolder(t *Table) *Holder {
	return &Holder{table: t, loadedAt: time.Now()}
}

// Reload reads the source again. On failure the previous table stays in
// service and the error is returned.
func (h *Holder) Reload() error {
	if h.src.Path == "" {
		return &LoadError{Err: errors.New("no reference file configured")}
	}
	t, err := Load(h.src.Path, h.src.Options)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		if h.table == nil {
			h.err = err
		}
		return err
	}
	h.table = t
	h.err = nil
	h.loadedAt = time.Now()
	return nil
}

// Current returns the table in service, or the load failure when no table
// was ever loaded.
func (h *Holder) Current() (*Table, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.table != nil {
		return h.table, nil
	}
	if h.err != nil {
		return nil, h.err
	}
	return nil, &LoadError{Path: h.src.Path, Err: ErrNotLoaded}
}

func (h *Holder) LoadedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadedAt
}
