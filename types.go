package inkwell

import "time"

// FrontMatter is the metadata block at the top of a content file. String
// fields are retained exactly as written in the source file; derived values
// (like the parsed publication date) live on Document so the originals
// survive into layouts and feeds untouched.
type FrontMatter struct {
	Title   string   `yaml:"title"`
	Layout  string   `yaml:"layout"`
	PubDate string   `yaml:"pubDate"`
	Slug    string   `yaml:"slug"`
	Tags    []string `yaml:"tags"`
	Summary string   `yaml:"summary"`
	Draft   bool     `yaml:"draft"`
}

// Document is one parsed content file: front matter plus the raw Markdown
// body. Documents are read once at build time and never mutated.
type Document struct {
	Source    string // path relative to the content directory
	Section   string // first directory segment ("posts" for blog posts)
	Slug      string
	Front     FrontMatter
	Body      string    // Markdown body, front matter stripped
	Published time.Time // parsed from Front.PubDate

	hash string // content hash of the source file, for the build index
}

// Post reports whether the document belongs to the blog post section.
func (d Document) Post() bool { return d.Section == "posts" }

// Link returns the site-relative URL of the rendered page.
func (d Document) Link() string {
	if d.Post() {
		return "/blog/" + d.Slug + "/"
	}
	return "/" + d.Slug + "/"
}

// Page is a document moving through the render pipeline: the resolved
// output location, the canonical URL, and the page HTML produced by the
// layout. Integrations receive pages after layout rendering and may
// rewrite HTML.
type Page struct {
	Doc        Document
	Posts      []Document // all published posts, newest first, for listing layouts
	URL        string     // canonical absolute URL
	OutputPath string     // output file path relative to the output directory
	HTML       string     // full page HTML after layout rendering
}

// PageMeta carries per-page OpenGraph and SEO metadata into a layout's <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// BuildResult summarizes a completed build.
type BuildResult struct {
	Pages    int
	Assets   int // static files copied
	Pruned   int // stale pages removed via the build index
	Duration time.Duration
}
