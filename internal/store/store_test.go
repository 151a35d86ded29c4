package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dgallion1/mdgen/internal/document"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := New(db, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func sampleTree(t *testing.T) *document.Tree {
	t.Helper()
	tree := document.New(document.WithTitle("Notes"), document.WithAuthors("A"))
	if err := tree.Set("Intro", "Hello"); err != nil {
		t.Fatal(err)
	}
	if err := tree.Set("Intro/Details", []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	return tree
}

func TestContentHashHex(t *testing.T) {
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got := ContentHashHex([]byte("hello world")); got != want {
		t.Errorf("expected hash %q, got %q", want, got)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tree := sampleTree(t)

	rec, err := s.Put(ctx, "", tree)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if rec.ID == "" || rec.Title != "Notes" || rec.Sections != 2 || rec.Items != 2 {
		t.Errorf("record = %+v", rec)
	}

	got, rec2, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Render() != tree.Render() {
		t.Errorf("render differs:\n%s\nwant\n%s", got.Render(), tree.Render())
	}
	if rec2.ContentHash != rec.ContentHash {
		t.Errorf("hash changed: %s vs %s", rec2.ContentHash, rec.ContentHash)
	}
}

func TestPutReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tree := sampleTree(t)

	first, err := s.Put(ctx, "", tree)
	if err != nil {
		t.Fatal(err)
	}
	if err := tree.Set("Outro", "Bye"); err != nil {
		t.Fatal(err)
	}
	second, err := s.Put(ctx, first.ID, tree)
	if err != nil {
		t.Fatal(err)
	}
	if second.ContentHash == first.ContentHash {
		t.Error("expected hash to change after edit")
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Sections != 3 {
		t.Errorf("list = %+v", list)
	}
}

func TestPutRejectsBadID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Put(context.Background(), "../etc", sampleTree(t)); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := NewID()

	if _, _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec, err := s.Put(ctx, "", sampleTree(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("list after delete = %+v", list)
	}
}
