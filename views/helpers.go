// Package views provides the default layouts and preview components for an
// inkwell site. Everything here is a hand-written templ.Component; sites
// that want different markup replace entries in the Views struct.
package views

import (
	"encoding/json"
	"strings"

	"github.com/derven/inkwell"
)

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block for the site.
func WebsiteJsonLD(cfg inkwell.SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      inkwell.BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg inkwell.SiteConfig, page inkwell.Page) string {
	front := page.Doc.Front
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      front.Title,
		"description":   front.Summary,
		"datePublished": front.PubDate,
		"url":           page.URL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   page.URL,
		},
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if len(front.Tags) > 0 {
		data["keywords"] = strings.Join(front.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
