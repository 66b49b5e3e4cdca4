package inkwell

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for an inkwell site. The zero value is
// usable for most fields via setDefaults; URL is the only required field.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"site"`        // Required: canonical absolute URL
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	ContentDir string `yaml:"content"` // Markdown sources (default "content")
	StaticDir  string `yaml:"static"`  // Static assets copied verbatim (default "static")
	OutputDir  string `yaml:"output"`  // Generated site (default "public")
	IndexPath  string `yaml:"index"`   // Build index SQLite path (default ".inkwell/index.db")

	// Integrations lists build-time integrations by name, in processing
	// order. Order is preserved exactly as configured.
	Integrations []string `yaml:"integrations"`

	PreviewAddr     string `yaml:"previewAddr"` // Preview server address (default ":3000")
	PreviewPassword string `yaml:"-"`           // Enables /drafts/ on the preview server
	SessionSecret   string `yaml:"-"`           // Required when PreviewPassword is set
	CookieSecure    bool   `yaml:"-"`           // Set true when previewing over HTTPS

	DocCacheTTL time.Duration `yaml:"-"` // Preview document cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.IndexPath == "" {
		c.IndexPath = ".inkwell/index.db"
	}
	if c.PreviewAddr == "" {
		c.PreviewAddr = ":3000"
	}
	if c.DocCacheTTL == 0 {
		c.DocCacheTTL = 5 * time.Minute
	}
}

// validate checks the fields the build depends on. Integration names are
// checked separately in New, against the registry.
func (c *SiteConfig) validate() error {
	if c.URL == "" {
		return &ConfigError{Field: "site", Reason: "site URL is required"}
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return &ConfigError{Field: "site", Reason: fmt.Sprintf("invalid URL: %v", err)}
	}
	if u.Scheme == "" || u.Host == "" {
		return &ConfigError{Field: "site", Reason: fmt.Sprintf("%q is not an absolute URL", c.URL)}
	}
	return nil
}

// LoadConfig reads a YAML site configuration from path and applies
// environment variable overrides. Secrets (preview password, session
// secret) are only ever read from the environment.
func LoadConfig(path string) (SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, &ConfigError{Field: "file", Reason: err.Error()}
	}
	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, &ConfigError{Field: "file", Reason: fmt.Sprintf("%s: %v", path, err)}
	}

	if v := os.Getenv("SITE_NAME"); v != "" {
		cfg.Name = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		cfg.URL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("SITE_DESCRIPTION"); v != "" {
		cfg.Description = v
	}
	if v := os.Getenv("SITE_AUTHOR"); v != "" {
		cfg.Author = v
	}
	cfg.PreviewPassword = os.Getenv("PREVIEW_PASSWORD")
	cfg.SessionSecret = os.Getenv("PREVIEW_SESSION_SECRET")
	cfg.CookieSecure = strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true")

	return cfg, nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional Site behavior.
type Option func(*Site)

// WithIntegration registers a user-supplied integration so it can be named
// in SiteConfig.Integrations alongside the built-ins.
func WithIntegration(in Integration) Option {
	return func(s *Site) {
		s.available[in.Name()] = in
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.log = l
		}
	}
}
