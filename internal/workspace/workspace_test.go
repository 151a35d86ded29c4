package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/mdgen/internal/document"
)

func TestWithSerializesAccess(t *testing.T) {
	r := NewRegistry(time.Hour, nil)
	id := r.Add(document.New())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.With(id, func(tree *document.Tree) error {
				return tree.Set(fmt.Sprintf("S%d", i%5), "x")
			})
			if err != nil {
				t.Errorf("With: %v", err)
			}
		}()
	}
	wg.Wait()

	r.With(id, func(tree *document.Tree) error {
		s := tree.Stats()
		if s.Sections != 5 || s.Total() != 50 {
			t.Errorf("stats = %+v", s)
		}
		return nil
	})
}

func TestWithUnknownID(t *testing.T) {
	r := NewRegistry(time.Hour, nil)
	err := r.With("missing", func(*document.Tree) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestWithReturnsFnError(t *testing.T) {
	r := NewRegistry(time.Hour, nil)
	id := r.Add(document.New())
	boom := errors.New("boom")
	if err := r.With(id, func(*document.Tree) error { return boom }); err != boom {
		t.Fatalf("err = %v", err)
	}
}

func TestCleanupEvictsIdle(t *testing.T) {
	r := NewRegistry(time.Minute, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	stale := r.Add(document.New())
	now = now.Add(50 * time.Second)
	fresh := r.Add(document.New())

	now = now.Add(20 * time.Second)
	if n := r.Cleanup(); n != 1 {
		t.Fatalf("Cleanup removed %d, want 1", n)
	}
	if err := r.With(stale, func(*document.Tree) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale entry still open")
	}
	if err := r.With(fresh, func(*document.Tree) error { return nil }); err != nil {
		t.Errorf("fresh entry: %v", err)
	}

	// With restarted the fresh entry's timer.
	now = now.Add(50 * time.Second)
	if n := r.Cleanup(); n != 0 {
		t.Errorf("Cleanup removed %d recently used entries", n)
	}
}

func TestListAndRemove(t *testing.T) {
	r := NewRegistry(time.Hour, nil)
	tree := document.New(document.WithTitle("T"))
	tree.Set("A", "x")
	id := r.Add(tree)

	infos := r.List()
	if len(infos) != 1 || infos[0].ID != id || infos[0].Title != "T" || infos[0].Sections != 1 || infos[0].Items != 1 {
		t.Errorf("List = %+v", infos)
	}
	if !r.Remove(id) || r.Remove(id) {
		t.Errorf("Remove should succeed once")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestStartStop(t *testing.T) {
	r := NewRegistry(time.Nanosecond, nil)
	r.Add(document.New())
	r.Start(context.Background(), time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for r.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()
	if r.Len() != 0 {
		t.Errorf("cleanup loop did not evict, Len = %d", r.Len())
	}
}

func TestWithAfterEviction(t *testing.T) {
	r := NewRegistry(time.Minute, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	id := r.Add(document.New())

	e, ok := r.lookup(id)
	if !ok {
		t.Fatal("entry not registered")
	}
	now = now.Add(2 * time.Minute)
	if n := r.Cleanup(); n != 1 {
		t.Fatalf("Cleanup removed %d, want 1", n)
	}

	called := false
	err := r.withEntry(e, func(*document.Tree) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrNotFound) || called {
		t.Errorf("edit reached an evicted document: err = %v, called = %v", err, called)
	}
}

func TestWithAfterReplace(t *testing.T) {
	r := NewRegistry(time.Hour, nil)
	r.Put("doc", document.New())
	e, _ := r.lookup("doc")
	r.Put("doc", document.New(document.WithTitle("new")))

	if err := r.withEntry(e, func(*document.Tree) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("replaced entry still editable: %v", err)
	}
	r.With("doc", func(tree *document.Tree) error {
		if tree.Title() != "new" {
			t.Errorf("Title = %q", tree.Title())
		}
		return nil
	})
}

func TestStartTwiceStops(t *testing.T) {
	r := NewRegistry(time.Hour, nil)
	r.Start(context.Background(), time.Hour)
	r.Start(context.Background(), time.Hour)

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not end every cleanup loop")
	}
	r.Stop()
}
