package inkwell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

// testLayout renders a minimal but complete HTML page so integrations have
// a <head> to inject into.
func testLayout(site SiteConfig, page Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<html><head><title>%s</title></head><body class="container"><h1>%s</h1>%s</body></html>`,
			page.Doc.Front.Title, page.Doc.Front.Title, page.Doc.Body)
		return err
	})
}

func testViews() Views {
	return Views{Layouts: Layouts{
		"PostLayout": testLayout,
		"PageLayout": testLayout,
	}}
}

func testSite(t *testing.T, views Views, integrations ...string) (*Site, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := SiteConfig{
		Name:         "Test Blog",
		URL:          "https://example.com",
		ContentDir:   filepath.Join(dir, "content"),
		StaticDir:    filepath.Join(dir, "static"),
		OutputDir:    filepath.Join(dir, "public"),
		IndexPath:    filepath.Join(dir, ".inkwell", "index.db"),
		Integrations: integrations,
	}
	if err := os.MkdirAll(cfg.ContentDir, 0o755); err != nil {
		t.Fatalf("mkdir content: %v", err)
	}
	s, err := New(cfg, views)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, dir
}

func readOutput(t *testing.T, s *Site, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.Config.OutputDir, rel))
	if err != nil {
		t.Fatalf("read output %s: %v", rel, err)
	}
	return string(data)
}

func TestBuildRendersPost(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "hello.md"),
		"---\ntitle: Hello\nlayout: PostLayout\npubDate: Jan 1st, 2024\n---\nWelcome to the blog.\n")

	res, err := s.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Pages != 1 {
		t.Errorf("Pages = %d, want 1", res.Pages)
	}

	html := readOutput(t, s, filepath.Join("blog", "hello", "index.html"))
	if !strings.Contains(html, "<h1>Hello</h1>") {
		t.Errorf("rendered page missing title: %q", html)
	}
	if !strings.Contains(html, "Welcome to the blog.") {
		t.Errorf("rendered page missing body: %q", html)
	}
}

func TestBuildEmitsFeeds(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "hello.md"),
		"---\ntitle: Hello\npubDate: 2024-01-01\nsummary: First post\n---\nbody\n")

	if _, err := s.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	feed := readOutput(t, s, "feed.xml")
	if !strings.Contains(feed, "<title>Hello</title>") {
		t.Errorf("feed missing post entry: %q", feed)
	}
	if !strings.Contains(feed, "https://example.com/blog/hello/") {
		t.Errorf("feed missing post link: %q", feed)
	}

	sitemap := readOutput(t, s, "sitemap.xml")
	if !strings.Contains(sitemap, "https://example.com/blog/hello/") {
		t.Errorf("sitemap missing post URL: %q", sitemap)
	}

	robots := readOutput(t, s, "robots.txt")
	if !strings.Contains(robots, "Disallow: /drafts/") {
		t.Errorf("robots.txt should disallow drafts: %q", robots)
	}
	if !strings.Contains(robots, "Sitemap: https://example.com/sitemap.xml") {
		t.Errorf("robots.txt should reference sitemap: %q", robots)
	}
}

func TestBuildDefaultLayouts(t *testing.T) {
	s, _ := testSite(t, testViews())
	// no layout in front matter: posts fall back to PostLayout, pages to PageLayout
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "post.md"),
		"---\ntitle: Post\npubDate: 2024-01-01\n---\nbody\n")
	writeContentFile(t, s.Config.ContentDir, "about.md",
		"---\ntitle: About\n---\nbody\n")

	res, err := s.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Pages)
	}
	readOutput(t, s, filepath.Join("blog", "post", "index.html"))
	readOutput(t, s, filepath.Join("about", "index.html"))
}

func TestBuildHomePage(t *testing.T) {
	views := testViews()
	views.Layouts["HomeLayout"] = func(site SiteConfig, page Page) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, `<html><head></head><body>%d posts</body></html>`, len(page.Posts))
			return err
		})
	}
	s, _ := testSite(t, views)
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "one.md"),
		"---\ntitle: One\npubDate: 2024-01-01\n---\nbody\n")

	res, err := s.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want post plus home", res.Pages)
	}
	home := readOutput(t, s, "index.html")
	if !strings.Contains(home, "1 posts") {
		t.Errorf("home page should see published posts: %q", home)
	}
}

func TestBuildUnclosedFrontMatterFailsWholeBuild(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "good.md"),
		"---\ntitle: Good\npubDate: 2024-01-01\n---\nok\n")
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "bad.md"),
		"---\ntitle: Bad\nnever closed\n")

	_, err := s.Build()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if !errors.Is(err, ErrUnclosedFrontMatter) {
		t.Errorf("expected ErrUnclosedFrontMatter cause, got %v", err)
	}
	// nothing may be written on a failed build, not even the good page
	if _, statErr := os.Stat(s.Config.OutputDir); !os.IsNotExist(statErr) {
		t.Error("output directory should not exist after failed build")
	}
}

func TestBuildMissingLayoutFailsWholeBuild(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "good.md"),
		"---\ntitle: Good\npubDate: 2024-01-01\n---\nok\n")
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "fancy.md"),
		"---\ntitle: Fancy\nlayout: FancyLayout\npubDate: 2024-01-02\n---\nbody\n")

	_, err := s.Build()
	var layoutErr *MissingLayoutError
	if !errors.As(err, &layoutErr) {
		t.Fatalf("expected *MissingLayoutError, got %v", err)
	}
	if layoutErr.Layout != "FancyLayout" {
		t.Errorf("Layout = %q, want %q", layoutErr.Layout, "FancyLayout")
	}
	if _, statErr := os.Stat(s.Config.OutputDir); !os.IsNotExist(statErr) {
		t.Error("output directory should not exist after failed build")
	}
}

func TestBuildTransformFailureLeavesNoOutput(t *testing.T) {
	s, _ := testSite(t, testViews(), "icons")
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "new.md"),
		"---\ntitle: New\npubDate: 2024-02-01\n---\nclean body\n")
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "old.md"),
		"---\ntitle: Old\npubDate: 2024-01-01\n---\n:icon:nonexistent:\n")

	_, err := s.Build()
	if err == nil {
		t.Fatal("expected build to fail on unknown icon")
	}
	// the clean page renders before the broken one; it still must not be
	// written when a later transform fails
	if _, statErr := os.Stat(filepath.Join(s.Config.OutputDir, "blog", "new", "index.html")); !os.IsNotExist(statErr) {
		t.Error("clean page should not be written when a later transform fails")
	}
	if _, statErr := os.Stat(s.Config.OutputDir); !os.IsNotExist(statErr) {
		t.Error("output directory should not exist after failed build")
	}
}

func TestBuildSitemapIncludesPages(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "hello.md"),
		"---\ntitle: Hello\npubDate: 2024-01-01\n---\nbody\n")
	writeContentFile(t, s.Config.ContentDir, "about.md",
		"---\ntitle: About\n---\nbody\n")

	if _, err := s.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	sitemap := readOutput(t, s, "sitemap.xml")
	if !strings.Contains(sitemap, "https://example.com/about/") {
		t.Errorf("sitemap missing standalone page: %q", sitemap)
	}
	if !strings.Contains(sitemap, "https://example.com/blog/hello/") {
		t.Errorf("sitemap missing post: %q", sitemap)
	}

	// standalone pages do not enter the RSS feed
	feed := readOutput(t, s, "feed.xml")
	if strings.Contains(feed, "/about/") {
		t.Errorf("feed should carry posts only: %q", feed)
	}
}

func TestBuildExcludesDrafts(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "live.md"),
		"---\ntitle: Live\npubDate: 2024-01-01\n---\nbody\n")
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "wip.md"),
		"---\ntitle: WIP\npubDate: 2024-01-02\ndraft: true\n---\nbody\n")

	res, err := s.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Pages != 1 {
		t.Errorf("Pages = %d, want 1 (draft excluded)", res.Pages)
	}
	if _, statErr := os.Stat(filepath.Join(s.Config.OutputDir, "blog", "wip")); !os.IsNotExist(statErr) {
		t.Error("draft should not be written to output")
	}
}

func TestBuildCopiesStaticAssets(t *testing.T) {
	s, dir := testSite(t, testViews())
	if err := os.MkdirAll(filepath.Join(dir, "static"), 0o755); err != nil {
		t.Fatalf("mkdir static: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "static", "favicon.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	writeContentFile(t, s.Config.ContentDir, "about.md", "---\ntitle: About\n---\nbody\n")

	res, err := s.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Assets != 1 {
		t.Errorf("Assets = %d, want 1", res.Assets)
	}
	if got := readOutput(t, s, "favicon.svg"); got != "<svg/>" {
		t.Errorf("copied asset = %q, want %q", got, "<svg/>")
	}
}

func TestBuildPrunesDeletedSources(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "keep.md"),
		"---\ntitle: Keep\npubDate: 2024-01-01\n---\nbody\n")
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "gone.md"),
		"---\ntitle: Gone\npubDate: 2024-01-02\n---\nbody\n")

	if _, err := s.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	readOutput(t, s, filepath.Join("blog", "gone", "index.html"))

	if err := os.Remove(filepath.Join(s.Config.ContentDir, "posts", "gone.md")); err != nil {
		t.Fatalf("remove source: %v", err)
	}

	res, err := s.Build()
	if err != nil {
		t.Fatalf("second Build failed: %v", err)
	}
	if res.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", res.Pruned)
	}
	if _, statErr := os.Stat(filepath.Join(s.Config.OutputDir, "blog", "gone", "index.html")); !os.IsNotExist(statErr) {
		t.Error("stale page should be removed")
	}
	readOutput(t, s, filepath.Join("blog", "keep", "index.html"))
}

func TestChanged(t *testing.T) {
	s, _ := testSite(t, testViews())
	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "post.md"),
		"---\ntitle: Post\npubDate: 2024-01-01\n---\nbody\n")

	changed, err := s.Changed()
	if err != nil {
		t.Fatalf("Changed failed: %v", err)
	}
	if !changed {
		t.Error("expected change before first build")
	}

	if _, err := s.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	changed, err = s.Changed()
	if err != nil {
		t.Fatalf("Changed failed: %v", err)
	}
	if changed {
		t.Error("expected no change right after build")
	}

	writeContentFile(t, s.Config.ContentDir, filepath.Join("posts", "post.md"),
		"---\ntitle: Post\npubDate: 2024-01-01\n---\nedited body\n")
	changed, err = s.Changed()
	if err != nil {
		t.Fatalf("Changed failed: %v", err)
	}
	if !changed {
		t.Error("expected change after editing a source file")
	}
}
