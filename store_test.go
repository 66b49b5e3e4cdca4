package inkwell

import (
	"errors"
	"path/filepath"
	"testing"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".inkwell", "index.db")
	ix, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestOpenIndexCreatesParentDir(t *testing.T) {
	ix := setupTestIndex(t)
	if ix == nil {
		t.Fatal("index should not be nil")
	}
}

func TestUpsertAndGet(t *testing.T) {
	ix := setupTestIndex(t)

	r := PageRecord{
		Source: "posts/hello.md",
		Hash:   "abc123",
		Slug:   "hello",
		Title:  "Hello",
		Date:   "Jan 1st, 2024",
		Output: "blog/hello/index.html",
	}
	if err := ix.Upsert(r); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := ix.Get("posts/hello.md")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Hash != r.Hash {
		t.Errorf("Hash = %q, want %q", got.Hash, r.Hash)
	}
	if got.Slug != r.Slug {
		t.Errorf("Slug = %q, want %q", got.Slug, r.Slug)
	}
	if got.Title != r.Title {
		t.Errorf("Title = %q, want %q", got.Title, r.Title)
	}
	if got.Date != r.Date {
		t.Errorf("Date = %q, want %q", got.Date, r.Date)
	}
	if got.Output != r.Output {
		t.Errorf("Output = %q, want %q", got.Output, r.Output)
	}
}

func TestUpsertReplaces(t *testing.T) {
	ix := setupTestIndex(t)

	r := PageRecord{Source: "posts/post.md", Hash: "v1", Slug: "post", Title: "Post", Date: "2024-01-01", Output: "blog/post/index.html"}
	if err := ix.Upsert(r); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	r.Hash = "v2"
	r.Title = "Post (edited)"
	if err := ix.Upsert(r); err != nil {
		t.Fatalf("Upsert update failed: %v", err)
	}

	got, err := ix.Get("posts/post.md")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Hash != "v2" {
		t.Errorf("Hash = %q, want %q", got.Hash, "v2")
	}
	if got.Title != "Post (edited)" {
		t.Errorf("Title = %q, want updated title", got.Title)
	}

	records, err := ix.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("List count = %d, want 1 after replace", len(records))
	}
}

func TestGetNotFound(t *testing.T) {
	ix := setupTestIndex(t)

	_, err := ix.Get("posts/nonexistent.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrderedBySource(t *testing.T) {
	ix := setupTestIndex(t)

	sources := []string{"posts/c.md", "posts/a.md", "about.md"}
	for _, src := range sources {
		if err := ix.Upsert(PageRecord{Source: src, Hash: "h", Slug: "s", Title: "t", Date: "d", Output: "o"}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	records, err := ix.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List count = %d, want 3", len(records))
	}
	want := []string{"about.md", "posts/a.md", "posts/c.md"}
	for i, w := range want {
		if records[i].Source != w {
			t.Errorf("List[%d] = %q, want %q", i, records[i].Source, w)
		}
	}
}

func TestDelete(t *testing.T) {
	ix := setupTestIndex(t)

	if err := ix.Upsert(PageRecord{Source: "posts/gone.md", Hash: "h", Slug: "gone", Title: "Gone", Date: "d", Output: "o"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := ix.Delete("posts/gone.md"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, err := ix.Get("posts/gone.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("record should be gone, got err: %v", err)
	}
}

func TestDeleteNonexistent(t *testing.T) {
	ix := setupTestIndex(t)

	if err := ix.Delete("posts/nonexistent.md"); err != nil {
		t.Errorf("Delete on nonexistent should not error, got: %v", err)
	}
}
