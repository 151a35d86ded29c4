// Package workspace holds open documents for concurrent callers. Each
// document is guarded by its own mutex; idle documents are evicted after a
// TTL.
package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/mdgen/internal/document"
)

// ErrNotFound is returned for an unknown or evicted workspace ID.
var ErrNotFound = errors.New("workspace not found")

type entry struct {
	mu        sync.Mutex
	tree      *document.Tree
	createdAt time.Time
	updatedAt time.Time
	// closed is set under mu once the entry leaves the registry.
	closed bool
}

// Info is a snapshot of one open document.
type Info struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Sections  int       `json:"sections"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Registry is a thread-safe set of open documents with TTL eviction.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	log     *slog.Logger
	now     func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRegistry(ttl time.Duration, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		entries: make(map[string]*entry),
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
}

// Add registers tree under a new ID.
func (r *Registry) Add(tree *document.Tree) string {
	id := uuid.NewString()
	r.Put(id, tree)
	return id
}

// Put registers tree under id, replacing any open document with that ID.
func (r *Registry) Put(id string, tree *document.Tree) {
	now := r.now()
	r.mu.Lock()
	old := r.entries[id]
	r.entries[id] = &entry{tree: tree, createdAt: now, updatedAt: now}
	r.mu.Unlock()
	old.close()
}

func (e *entry) close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

func (r *Registry) lookup(id string) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e, ok
}

// With runs fn with exclusive access to the document. The entry's idle
// timer restarts when fn returns.
func (r *Registry) With(id string, fn func(*document.Tree) error) error {
	e, ok := r.lookup(id)
	if !ok {
		return ErrNotFound
	}
	return r.withEntry(e, fn)
}

func (r *Registry) withEntry(e *entry, fn func(*document.Tree) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	// Evicted or removed between the lookup and the lock.
	if e.closed {
		return ErrNotFound
	}
	err := fn(e.tree)
	e.updatedAt = r.now()
	return err
}

// Remove closes a document. It reports whether the ID was open.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	e.close()
	return ok
}

// Len returns the number of open documents.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// List returns a snapshot of every open document.
func (r *Registry) List() []Info {
	r.mu.Lock()
	ids := make([]string, 0, len(r.entries))
	entries := make([]*entry, 0, len(r.entries))
	for id, e := range r.entries {
		ids = append(ids, id)
		entries = append(entries, e)
	}
	r.mu.Unlock()

	infos := make([]Info, 0, len(entries))
	for i, e := range entries {
		e.mu.Lock()
		stats := e.tree.Stats()
		infos = append(infos, Info{
			ID:        ids[i],
			Title:     e.tree.Title(),
			Sections:  stats.Sections,
			Items:     stats.Total(),
			CreatedAt: e.createdAt,
			UpdatedAt: e.updatedAt,
		})
		e.mu.Unlock()
	}
	return infos
}

// Cleanup removes documents idle longer than the TTL. Documents in use are
// skipped.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for id, e := range r.entries {
		if !e.mu.TryLock() {
			continue
		}
		if now.Sub(e.updatedAt) > r.ttl {
			e.closed = true
			delete(r.entries, id)
			removed++
		}
		e.mu.Unlock()
	}
	if removed > 0 {
		r.log.Info("evicted idle documents", "count", removed)
	}
	return removed
}

// Start runs Cleanup every interval until ctx is cancelled or Stop is
// called. Calling Start while the loop is running does nothing.
func (r *Registry) Start(ctx context.Context, interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	cleanupCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				r.Cleanup()
			}
		}
	}()
}

// Stop ends the cleanup loop and waits for it to exit.
func (r *Registry) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}
