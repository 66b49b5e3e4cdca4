package inkwell

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeFeeds emits feed.xml, sitemap.xml, and robots.txt into the output
// directory. The RSS feed carries published posts only; the sitemap covers
// every rendered document, standalone pages included.
func (s *Site) writeFeeds(posts, rendered []Document) error {
	if err := s.writeRSS(posts); err != nil {
		return err
	}
	if err := s.writeSitemap(rendered); err != nil {
		return err
	}
	return s.writeRobots()
}

func (s *Site) writeRSS(posts []Document) error {
	base := s.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if !p.Published.IsZero() {
			pubDate = p.Published.Format(time.RFC1123Z)
		}
		postURL := joinURLPath(base, p.Link())
		items = append(items, rssItem{
			Title:       p.Front.Title,
			Link:        postURL,
			Description: p.Front.Summary,
			PubDate:     pubDate,
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       s.Config.Name,
			Link:        base,
			Description: s.Config.Description,
			Items:       items,
		},
	}
	return writeXML(filepath.Join(s.Config.OutputDir, "feed.xml"), feed)
}

func (s *Site) writeSitemap(docs []Document) error {
	base := s.Config.URL
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	for _, d := range docs {
		lastMod := ""
		if !d.Published.IsZero() {
			lastMod = d.Published.Format("2006-01-02")
		}
		urls = append(urls, sitemapURL{
			Loc:     joinURLPath(base, d.Link()),
			LastMod: lastMod,
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	return writeXML(filepath.Join(s.Config.OutputDir, "sitemap.xml"), sitemap)
}

func (s *Site) writeRobots() error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /drafts/\n\nSitemap: %s/sitemap.xml\n", s.Config.URL)
	path := filepath.Join(s.Config.OutputDir, "robots.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("inkwell: write robots.txt: %w", err)
	}
	return nil
}

func writeXML(path string, v any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("inkwell: encode %s: %w", filepath.Base(path), err)
	}
	buf.WriteString("\n")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("inkwell: write %s: %w", path, err)
	}
	return nil
}
