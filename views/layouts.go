package views

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/derven/inkwell"
	"github.com/derven/inkwell/markdown"
)

// Default returns the stock view set: PostLayout, PageLayout, HomeLayout,
// and the preview server components.
func Default() inkwell.Views {
	return inkwell.Views{
		Layouts: inkwell.Layouts{
			"PostLayout": PostLayout,
			"PageLayout": PageLayout,
			"HomeLayout": HomeLayout,
		},
		DraftLogin: DraftLogin,
		DraftList:  DraftList,
		NotFound:   NotFound,
	}
}

func component(fn func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return fn(w)
	})
}

func esc(s string) string { return html.EscapeString(s) }

// writeHead emits the shared document head: charset, viewport, title,
// description, canonical URL, and OpenGraph tags. The styles integration
// injects its stylesheet link before </head> when enabled.
func writeHead(w io.Writer, site inkwell.SiteConfig, meta inkwell.PageMeta, jsonLD string) error {
	title := meta.Title
	if title == "" {
		title = site.Name
	} else if title != site.Name {
		title = title + " · " + site.Name
	}
	_, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head>`+
		`<meta charset="utf-8"/>`+
		`<meta name="viewport" content="width=device-width, initial-scale=1"/>`+
		`<title>%s</title>`, esc(title))
	if err != nil {
		return err
	}
	if meta.Description != "" {
		fmt.Fprintf(w, `<meta name="description" content="%s"/>`, esc(meta.Description))
	}
	if meta.URL != "" {
		fmt.Fprintf(w, `<link rel="canonical" href="%s"/>`, esc(meta.URL))
		fmt.Fprintf(w, `<meta property="og:url" content="%s"/>`, esc(meta.URL))
	}
	fmt.Fprintf(w, `<meta property="og:title" content="%s"/>`, esc(title))
	if meta.OGType != "" {
		fmt.Fprintf(w, `<meta property="og:type" content="%s"/>`, esc(meta.OGType))
	}
	fmt.Fprintf(w, `<link rel="alternate" type="application/rss+xml" title="%s" href="/feed.xml"/>`, esc(site.Name))
	if jsonLD != "" {
		fmt.Fprintf(w, `<script type="application/ld+json">%s</script>`, jsonLD)
	}
	_, err = io.WriteString(w, `</head>`)
	return err
}

func writeHeader(w io.Writer, site inkwell.SiteConfig) {
	fmt.Fprintf(w, `<header class="site-header container">`+
		`<a class="site-title" href="/">%s</a>`+
		`<nav class="site-nav"><a href="/">Posts</a><a href="/feed.xml">:icon:rss: RSS</a></nav>`+
		`</header>`, esc(site.Name))
}

func writeFooter(w io.Writer, site inkwell.SiteConfig) {
	author := site.Author
	if author == "" {
		author = site.Name
	}
	fmt.Fprintf(w, `<footer class="site-footer container"><p>%s</p></footer></body></html>`, esc(author))
}

// PostLayout wraps a blog post: title, publication date, tags, then the
// rendered Markdown body.
func PostLayout(site inkwell.SiteConfig, page inkwell.Page) templ.Component {
	return component(func(w io.Writer) error {
		front := page.Doc.Front
		meta := inkwell.PageMeta{
			Title:       front.Title,
			Description: front.Summary,
			URL:         page.URL,
			OGType:      "article",
		}
		if err := writeHead(w, site, meta, BlogPostingJsonLD(site, page)); err != nil {
			return err
		}
		io.WriteString(w, `<body>`)
		writeHeader(w, site)
		io.WriteString(w, `<main class="container"><article>`)
		fmt.Fprintf(w, `<h1 class="post-title">%s</h1>`, esc(front.Title))
		if front.PubDate != "" {
			fmt.Fprintf(w, `<p class="post-date">:icon:calendar: %s</p>`, esc(front.PubDate))
		}
		if page.Doc.Front.Draft {
			io.WriteString(w, `<span class="draft-badge">Draft</span>`)
		}
		if len(front.Tags) > 0 {
			io.WriteString(w, `<div class="post-tags">`)
			for _, t := range front.Tags {
				fmt.Fprintf(w, `<span class="tag">:icon:tag: %s</span>`, esc(t))
			}
			io.WriteString(w, `</div>`)
		}
		if err := markdown.Component(page.Doc.Body).Render(context.Background(), w); err != nil {
			return err
		}
		io.WriteString(w, `</article></main>`)
		writeFooter(w, site)
		return nil
	})
}

// PageLayout wraps a standalone page (about, now, and so on): just the
// title and body, no date or tags.
func PageLayout(site inkwell.SiteConfig, page inkwell.Page) templ.Component {
	return component(func(w io.Writer) error {
		front := page.Doc.Front
		meta := inkwell.PageMeta{
			Title:       front.Title,
			Description: front.Summary,
			URL:         page.URL,
			OGType:      "website",
		}
		if err := writeHead(w, site, meta, ""); err != nil {
			return err
		}
		io.WriteString(w, `<body>`)
		writeHeader(w, site)
		io.WriteString(w, `<main class="container"><article>`)
		fmt.Fprintf(w, `<h1 class="post-title">%s</h1>`, esc(front.Title))
		if err := markdown.Component(page.Doc.Body).Render(context.Background(), w); err != nil {
			return err
		}
		io.WriteString(w, `</article></main>`)
		writeFooter(w, site)
		return nil
	})
}

// HomeLayout renders the front page: site description plus the post list,
// newest first.
func HomeLayout(site inkwell.SiteConfig, page inkwell.Page) templ.Component {
	return component(func(w io.Writer) error {
		meta := inkwell.PageMeta{
			Title:       site.Name,
			Description: site.Description,
			URL:         page.URL,
			OGType:      "website",
		}
		if err := writeHead(w, site, meta, WebsiteJsonLD(site)); err != nil {
			return err
		}
		io.WriteString(w, `<body>`)
		writeHeader(w, site)
		io.WriteString(w, `<main class="container">`)
		if site.Description != "" {
			fmt.Fprintf(w, `<p class="post-summary">%s</p>`, esc(site.Description))
		}
		io.WriteString(w, `<ul class="post-list">`)
		for _, p := range page.Posts {
			fmt.Fprintf(w, `<li class="post-item"><a href="%s">%s</a>`,
				esc(p.Link()), esc(p.Front.Title))
			if p.Front.PubDate != "" {
				fmt.Fprintf(w, `<span class="post-date">%s</span>`, esc(p.Front.PubDate))
			}
			io.WriteString(w, `</li>`)
		}
		io.WriteString(w, `</ul></main>`)
		writeFooter(w, site)
		return nil
	})
}

// NotFound renders the preview server's 404 page.
func NotFound(site inkwell.SiteConfig) templ.Component {
	return component(func(w io.Writer) error {
		meta := inkwell.PageMeta{Title: "Not Found"}
		if err := writeHead(w, site, meta, ""); err != nil {
			return err
		}
		io.WriteString(w, `<body>`)
		writeHeader(w, site)
		io.WriteString(w, `<main class="container centered"><h1>404</h1><p>There is no page here.</p><p><a href="/">Back home</a></p></main>`)
		writeFooter(w, site)
		return nil
	})
}

// DraftLogin renders the password form guarding the draft preview area.
func DraftLogin(showError bool, csrfToken string) templ.Component {
	return component(func(w io.Writer) error {
		io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/><title>Drafts</title></head><body>`)
		io.WriteString(w, `<main class="container centered"><h1>Draft preview</h1>`)
		if showError {
			io.WriteString(w, `<p class="draft-badge">Wrong password</p>`)
		}
		fmt.Fprintf(w, `<form method="post" action="/drafts/login/">`+
			`<input type="hidden" name="_csrf" value="%s"/>`+
			`<input type="password" name="password" autofocus/>`+
			`<button type="submit">Enter</button></form></main></body></html>`, esc(csrfToken))
		return nil
	})
}

// DraftList renders the list of draft documents for the preview server.
func DraftList(site inkwell.SiteConfig, drafts []inkwell.Document, csrfToken string) templ.Component {
	return component(func(w io.Writer) error {
		meta := inkwell.PageMeta{Title: "Drafts"}
		if err := writeHead(w, site, meta, ""); err != nil {
			return err
		}
		io.WriteString(w, `<body><main class="container"><h1>Drafts</h1>`)
		if len(drafts) == 0 {
			io.WriteString(w, `<p>No drafts.</p>`)
		} else {
			io.WriteString(w, `<ul class="post-list">`)
			for _, d := range drafts {
				fmt.Fprintf(w, `<li class="post-item"><a href="/drafts/%s/">%s</a><span class="draft-badge">Draft</span></li>`,
					esc(d.Slug), esc(d.Front.Title))
			}
			io.WriteString(w, `</ul>`)
		}
		fmt.Fprintf(w, `<form method="post" action="/drafts/logout/">`+
			`<input type="hidden" name="_csrf" value="%s"/>`+
			`<button type="submit">Log out</button></form></main></body></html>`, esc(csrfToken))
		return nil
	})
}
