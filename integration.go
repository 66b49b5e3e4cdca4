package inkwell

// Integration is an opaque build-time capability registered by name in the
// site configuration. Integrations run in configuration order: Transform is
// called once per rendered page and may rewrite its HTML; Finalize runs
// after all pages are written and may emit additional assets into the
// output directory.
type Integration interface {
	Name() string
	Transform(page *Page) error
	Finalize(outDir string) error
}

// builtinIntegrations constructs the integrations that ship with inkwell.
// Fresh instances per Site: styles and icons accumulate per-build state.
func builtinIntegrations() map[string]Integration {
	return map[string]Integration{
		"styles": newStylesIntegration(),
		"icons":  newIconsIntegration(),
		"images": newImagesIntegration(),
	}
}

// resolveIntegrations maps configured names to integration instances,
// preserving order. Unknown names are a configuration error.
func (s *Site) resolveIntegrations() error {
	resolved := make([]Integration, 0, len(s.Config.Integrations))
	for _, name := range s.Config.Integrations {
		in, ok := s.available[name]
		if !ok {
			return &ConfigError{Field: "integrations", Reason: "unknown integration " + name}
		}
		resolved = append(resolved, in)
	}
	s.integrations = resolved
	return nil
}
