package inkwell

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// dateFormats are tried in order when parsing pubDate. Human-readable forms
// like "Jan 1st, 2024" are normalized first by stripping ordinal suffixes.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

var reOrdinal = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)

// parseDate parses a front matter date string.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	normalized := reOrdinal.ReplaceAllString(s, "$1")
	for _, format := range dateFormats {
		if t, err := time.Parse(format, normalized); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseDocument reads and parses a single content file. source is the path
// relative to the content root, used in errors and for section derivation.
func parseDocument(root, source string) (Document, error) {
	data, err := os.ReadFile(filepath.Join(root, source))
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", source, err)
	}

	raw, body, _, err := splitFrontMatter(data)
	if err != nil {
		return Document{}, &ParseError{Source: source, Err: err}
	}
	front, err := parseFrontMatter(raw)
	if err != nil {
		return Document{}, &ParseError{Source: source, Err: err}
	}

	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if front.Title == "" {
		front.Title = strings.ReplaceAll(strings.ReplaceAll(name, "-", " "), "_", " ")
	}

	slug := front.Slug
	if slug == "" {
		slug = Slugify(name)
	}

	var published time.Time
	if front.PubDate != "" {
		published, err = parseDate(front.PubDate)
		if err != nil {
			return Document{}, &ParseError{Source: source, Err: err}
		}
	}

	section := ""
	if dir := filepath.Dir(source); dir != "." {
		section = strings.Split(dir, string(filepath.Separator))[0]
	}

	return Document{
		Source:    source,
		Section:   section,
		Slug:      slug,
		Front:     front,
		Body:      string(body),
		Published: published,
		hash:      fmt.Sprintf("%x", sha256.Sum256(data)),
	}, nil
}

// loadDocuments walks the content directory and parses every Markdown file.
// Any parse failure aborts the whole load; callers therefore never see a
// partially resolved content set. Results are sorted newest first.
func loadDocuments(contentDir string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		source, err := filepath.Rel(contentDir, path)
		if err != nil {
			return err
		}
		doc, err := parseDocument(contentDir, source)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Published.Equal(docs[j].Published) {
			return docs[i].Slug < docs[j].Slug
		}
		return docs[i].Published.After(docs[j].Published)
	})
	return docs, nil
}

// publishedPosts filters docs down to non-draft posts, preserving order.
func publishedPosts(docs []Document) []Document {
	var posts []Document
	for _, d := range docs {
		if d.Post() && !d.Front.Draft {
			posts = append(posts, d)
		}
	}
	return posts
}
