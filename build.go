package inkwell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Build runs the full pipeline: discover and parse every content file,
// resolve layouts, render pages through integrations, copy static assets,
// and emit feed.xml, sitemap.xml, and robots.txt. A build either fully
// succeeds or fails outright: any parse or layout error aborts before a
// single page is written.
func (s *Site) Build() (BuildResult, error) {
	start := time.Now()
	cfg := s.Config

	docs, err := loadDocuments(cfg.ContentDir)
	if err != nil {
		return BuildResult{}, err
	}
	posts := publishedPosts(docs)

	// Drafts never reach the static output; they are only visible through
	// the preview server.
	var renderable []Document
	for _, d := range docs {
		if !d.Front.Draft {
			renderable = append(renderable, d)
		}
	}

	// Resolve every layout up front so a bad reference fails the build
	// before anything is emitted.
	layouts := make([]Layout, len(renderable))
	for i, doc := range renderable {
		layouts[i], err = s.resolveLayout(doc)
		if err != nil {
			return BuildResult{}, err
		}
	}

	// Render every page into memory before anything touches disk, so that
	// a layout or integration transform failure on any document leaves no
	// partial output behind.
	pages := make([]Page, len(renderable))
	for i, doc := range renderable {
		page := s.newPage(doc, posts)
		if err := s.renderPage(&page, layouts[i]); err != nil {
			return BuildResult{}, err
		}
		pages[i] = page
	}

	home, err := s.renderHome(posts)
	if err != nil {
		return BuildResult{}, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return BuildResult{}, fmt.Errorf("inkwell: create output dir: %w", err)
	}

	index, err := OpenIndex(cfg.IndexPath)
	if err != nil {
		return BuildResult{}, fmt.Errorf("inkwell: open build index: %w", err)
	}
	defer index.Close()

	result := BuildResult{}
	seen := make(map[string]bool, len(renderable))

	for i, page := range pages {
		doc := renderable[i]
		if err := s.writePage(page); err != nil {
			return BuildResult{}, err
		}
		if err := index.Upsert(PageRecord{
			Source: doc.Source,
			Hash:   doc.hash,
			Slug:   doc.Slug,
			Title:  doc.Front.Title,
			Date:   doc.Front.PubDate,
			Output: page.OutputPath,
		}); err != nil {
			return BuildResult{}, fmt.Errorf("inkwell: index %s: %w", doc.Source, err)
		}
		seen[doc.Source] = true
		result.Pages++
		s.log.Debug("rendered page", "source", doc.Source, "output", page.OutputPath)
	}

	if home != nil {
		if err := s.writePage(*home); err != nil {
			return BuildResult{}, err
		}
		result.Pages++
	}

	assets, err := copyDirContents(cfg.StaticDir, cfg.OutputDir)
	if err != nil {
		return BuildResult{}, fmt.Errorf("inkwell: copy static assets: %w", err)
	}
	result.Assets = assets

	if err := s.writeFeeds(posts, renderable); err != nil {
		return BuildResult{}, err
	}

	for _, in := range s.integrations {
		if err := in.Finalize(cfg.OutputDir); err != nil {
			return BuildResult{}, fmt.Errorf("inkwell: finalize %s: %w", in.Name(), err)
		}
	}

	pruned, err := s.pruneStale(index, seen)
	if err != nil {
		return BuildResult{}, err
	}
	result.Pruned = pruned

	result.Duration = time.Since(start)
	s.log.Info("build complete",
		"pages", result.Pages, "assets", result.Assets,
		"pruned", result.Pruned, "duration", result.Duration)
	return result, nil
}

func (s *Site) newPage(doc Document, posts []Document) Page {
	link := doc.Link()
	segments := strings.Split(strings.Trim(link, "/"), "/")
	return Page{
		Doc:        doc,
		Posts:      posts,
		URL:        BuildURL(s.Config.URL, segments...),
		OutputPath: filepath.Join(filepath.FromSlash(strings.Trim(link, "/")), "index.html"),
	}
}

// renderPage executes the layout into memory and runs integration
// transforms in configuration order. Nothing touches disk here.
func (s *Site) renderPage(page *Page, layout Layout) error {
	var buf bytes.Buffer
	comp := layout(s.Config, *page)
	if err := comp.Render(context.Background(), &buf); err != nil {
		return fmt.Errorf("inkwell: render %s: %w", page.Doc.Source, err)
	}
	page.HTML = buf.String()

	for _, in := range s.integrations {
		if err := in.Transform(page); err != nil {
			return err
		}
	}
	return nil
}

func (s *Site) writePage(page Page) error {
	out := filepath.Join(s.Config.OutputDir, page.OutputPath)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("inkwell: create %s: %w", filepath.Dir(out), err)
	}
	if err := os.WriteFile(out, []byte(page.HTML), 0o644); err != nil {
		return fmt.Errorf("inkwell: write %s: %w", out, err)
	}
	return nil
}

// renderHome renders the index page into memory when a HomeLayout is
// registered. A site without one simply has no generated front page.
func (s *Site) renderHome(posts []Document) (*Page, error) {
	layout, ok := s.Views.Layouts["HomeLayout"]
	if !ok {
		s.log.Warn("no HomeLayout registered, skipping index page")
		return nil, nil
	}
	page := Page{
		Doc: Document{
			Front: FrontMatter{Title: s.Config.Name, Summary: s.Config.Description},
		},
		Posts:      posts,
		URL:        BuildURL(s.Config.URL),
		OutputPath: "index.html",
	}
	if err := s.renderPage(&page, layout); err != nil {
		return nil, err
	}
	return &page, nil
}

// pruneStale removes output for sources that existed in a previous build
// but are gone now, then drops their index rows.
func (s *Site) pruneStale(index *Index, seen map[string]bool) (int, error) {
	records, err := index.List()
	if err != nil {
		return 0, fmt.Errorf("inkwell: list build index: %w", err)
	}
	pruned := 0
	for _, r := range records {
		if seen[r.Source] {
			continue
		}
		out := filepath.Join(s.Config.OutputDir, r.Output)
		if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
			return pruned, fmt.Errorf("inkwell: prune %s: %w", out, err)
		}
		// Drop the now-empty slug directory; ignore failure if shared.
		_ = os.Remove(filepath.Dir(out))
		if err := index.Delete(r.Source); err != nil {
			return pruned, fmt.Errorf("inkwell: prune index row %s: %w", r.Source, err)
		}
		s.log.Info("pruned stale page", "source", r.Source, "output", r.Output)
		pruned++
	}
	return pruned, nil
}

// Changed reports whether any source document differs from the build index,
// letting watch mode skip rebuilds when nothing relevant changed.
func (s *Site) Changed() (bool, error) {
	docs, err := loadDocuments(s.Config.ContentDir)
	if err != nil {
		// A newly broken file counts as a change; the rebuild will surface
		// the real error to the operator.
		return true, nil
	}
	index, err := OpenIndex(s.Config.IndexPath)
	if err != nil {
		return true, nil
	}
	defer index.Close()

	count := 0
	for _, doc := range docs {
		if doc.Front.Draft {
			continue
		}
		count++
		r, err := index.Get(doc.Source)
		if err != nil || r.Hash != doc.hash {
			return true, nil
		}
	}
	records, err := index.List()
	if err != nil {
		return true, nil
	}
	return count != len(records), nil
}

// joinURLPath is a small helper for feed/sitemap entries that already have
// a site-relative link.
func joinURLPath(base, link string) string {
	return BuildURL(base, strings.Split(strings.Trim(path.Clean(link), "/"), "/")...)
}
