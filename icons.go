package inkwell

import (
	"fmt"
	"regexp"
	"strings"
)

var reIconToken = regexp.MustCompile(`:icon:([a-z0-9-]+):`)

// iconsIntegration replaces :icon:name: tokens in rendered HTML with inline
// SVG from the embedded icon set. Referencing an icon that does not exist
// fails the build; there is no placeholder fallback.
type iconsIntegration struct {
	cache map[string]string
}

func newIconsIntegration() *iconsIntegration {
	return &iconsIntegration{cache: make(map[string]string)}
}

func (ic *iconsIntegration) Name() string { return "icons" }

func (ic *iconsIntegration) Transform(page *Page) error {
	var missing string
	page.HTML = reIconToken.ReplaceAllStringFunc(page.HTML, func(m string) string {
		if missing != "" {
			return m
		}
		name := reIconToken.FindStringSubmatch(m)[1]
		svg, err := ic.load(name)
		if err != nil {
			missing = name
			return m
		}
		return svg
	})
	if missing != "" {
		return fmt.Errorf("icons: %s references unknown icon %q", page.Doc.Source, missing)
	}
	return nil
}

func (ic *iconsIntegration) Finalize(outDir string) error { return nil }

func (ic *iconsIntegration) load(name string) (string, error) {
	if svg, ok := ic.cache[name]; ok {
		return svg, nil
	}
	data, err := embeddedAssets.ReadFile("embedded/icons/" + name + ".svg")
	if err != nil {
		return "", err
	}
	svg := strings.TrimSpace(string(data))
	ic.cache[name] = svg
	return svg, nil
}
