package inkwell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func waitForOutput(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && strings.Contains(string(data), want) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("output %s never contained %q", path, want)
}

func TestWatchRebuildsOnNestedEdit(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "hello.md"),
		"---\ntitle: Hello\npubDate: 2024-01-01\n---\noriginal body\n")
	if _, err := s.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	stop := make(chan struct{})
	defer close(stop)
	go s.watch(stop)
	time.Sleep(150 * time.Millisecond) // let the watcher register the tree

	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "hello.md"),
		"---\ntitle: Hello\npubDate: 2024-01-01\n---\nedited body\n")

	waitForOutput(t, filepath.Join(s.Config.OutputDir, "blog", "hello", "index.html"), "edited body")
}

func TestWatchPicksUpNewDirectories(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "hello.md"),
		"---\ntitle: Hello\npubDate: 2024-01-01\n---\nbody\n")
	if _, err := s.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	stop := make(chan struct{})
	defer close(stop)
	go s.watch(stop)
	time.Sleep(150 * time.Millisecond)

	if err := os.MkdirAll(filepath.Join(s.Config.ContentDir, "notes"), 0o755); err != nil {
		t.Fatalf("mkdir notes: %v", err)
	}
	time.Sleep(150 * time.Millisecond) // let the new directory be registered
	writeContentFile(t, s.Config.ContentDir, filepath.Join("notes", "first.md"),
		"---\ntitle: First Note\n---\nnote body\n")

	waitForOutput(t, filepath.Join(s.Config.OutputDir, "first", "index.html"), "note body")
}

func TestUnderDir(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		path string
		dir  string
		want bool
	}{
		{"content" + sep + "posts" + sep + "a.md", "content", true},
		{"content", "content", true},
		{"content-drafts" + sep + "a.md", "content", false},
		{"static" + sep + "favicon.svg", "content", false},
	}
	for _, tt := range tests {
		if got := underDir(tt.path, tt.dir); got != tt.want {
			t.Errorf("underDir(%q, %q) = %v, want %v", tt.path, tt.dir, got, tt.want)
		}
	}
}
