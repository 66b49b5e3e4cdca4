// Package inkwell is a static site generator for personal blogs, built with
// Go, Echo, and templ. It turns a directory of Markdown content with YAML
// front matter into a rendered site: one page per document, an index page,
// RSS feed, sitemap, and robots.txt, with build-time integrations (utility
// styles, inline icons, image shrinking) applied in configuration order.
//
// Users provide their own layouts via the Views struct, and inkwell handles
// discovery, front matter resolution, rendering, and the preview server.
package inkwell

import (
	"log/slog"

	"github.com/a-h/templ"
)

// Layout wraps a rendered document into a complete page. Layouts are
// referenced by name from front matter and resolved in Views.Layouts;
// an unresolvable reference fails the build.
type Layout func(site SiteConfig, page Page) templ.Component

// Layouts maps layout identifiers to layout functions.
type Layouts map[string]Layout

// Views holds user-provided templ components that the framework calls when
// rendering pages. This is the inversion-of-control mechanism that lets
// users own and customize all templates.
type Views struct {
	Layouts Layouts

	// Preview server components. Nil fields disable the corresponding page.
	DraftLogin func(showError bool, csrfToken string) templ.Component
	DraftList  func(site SiteConfig, drafts []Document, csrfToken string) templ.Component
	NotFound   func(site SiteConfig) templ.Component
}

// Site is the central inkwell application. It wires together configuration,
// layouts, integrations, the build index, and the preview server.
type Site struct {
	Config SiteConfig
	Views  Views

	log          *slog.Logger
	available    map[string]Integration
	integrations []Integration
	cache        *docCache
	limiter      *attemptLimiter
}

// New creates a Site from the given configuration and views. Configuration
// is validated eagerly: a missing or relative site URL and unknown
// integration names are rejected here, before any content is touched.
func New(cfg SiteConfig, views Views, opts ...Option) (*Site, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Site{
		Config:    cfg,
		Views:     views,
		log:       slog.Default().With("component", "inkwell"),
		available: builtinIntegrations(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.resolveIntegrations(); err != nil {
		return nil, err
	}

	s.cache = newDocCache(s.Config.DocCacheTTL, func() ([]Document, error) {
		return loadDocuments(s.Config.ContentDir)
	})
	return s, nil
}

// resolveLayout returns the layout a document renders through. A document
// without an explicit layout falls back to the section default name, which
// must still resolve; there is no silent fallback past the registry.
func (s *Site) resolveLayout(doc Document) (Layout, error) {
	name := doc.Front.Layout
	if name == "" {
		if doc.Post() {
			name = "PostLayout"
		} else {
			name = "PageLayout"
		}
	}
	layout, ok := s.Views.Layouts[name]
	if !ok {
		return nil, &MissingLayoutError{Source: doc.Source, Layout: name}
	}
	return layout, nil
}
