package inkwell

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const stylesheetName = "styles.css"

var reClassAttr = regexp.MustCompile(`class="([^"]*)"`)

// stylesIntegration ships a utility-class stylesheet. During Transform it
// records the class names each page actually uses and injects the
// stylesheet link; Finalize prunes the embedded sheet down to the used
// rules and writes styles.css into the output directory.
type stylesIntegration struct {
	used map[string]struct{}
}

func newStylesIntegration() *stylesIntegration {
	return &stylesIntegration{used: make(map[string]struct{})}
}

func (st *stylesIntegration) Name() string { return "styles" }

func (st *stylesIntegration) Transform(page *Page) error {
	for _, m := range reClassAttr.FindAllStringSubmatch(page.HTML, -1) {
		for _, class := range strings.Fields(m[1]) {
			st.used[class] = struct{}{}
		}
	}
	link := `<link rel="stylesheet" href="/` + stylesheetName + `"/></head>`
	if strings.Contains(page.HTML, "</head>") {
		page.HTML = strings.Replace(page.HTML, "</head>", link, 1)
	}
	return nil
}

func (st *stylesIntegration) Finalize(outDir string) error {
	sheet, err := embeddedAssets.ReadFile("embedded/utility.css")
	if err != nil {
		return fmt.Errorf("styles: read embedded sheet: %w", err)
	}
	pruned := pruneStylesheet(string(sheet), st.used)
	path := filepath.Join(outDir, stylesheetName)
	if err := os.WriteFile(path, []byte(pruned), 0o644); err != nil {
		return fmt.Errorf("styles: write %s: %w", path, err)
	}
	return nil
}

// pruneStylesheet keeps base rules (element selectors, variables) and any
// class rule whose class was seen in a rendered page. The sheet format is
// one flat rule per block; nested at-rules are kept wholesale.
func pruneStylesheet(sheet string, used map[string]struct{}) string {
	var out strings.Builder
	depth := 0
	var block strings.Builder
	for _, line := range strings.Split(sheet, "\n") {
		block.WriteString(line)
		block.WriteString("\n")
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if depth > 0 {
			continue
		}
		rule := block.String()
		block.Reset()
		if strings.TrimSpace(rule) == "" {
			continue
		}
		if keepRule(rule, used) {
			out.WriteString(rule)
		}
	}
	return out.String()
}

func keepRule(rule string, used map[string]struct{}) bool {
	brace := strings.Index(rule, "{")
	if brace < 0 {
		return true
	}
	selector := strings.TrimSpace(rule[:brace])
	if !strings.HasPrefix(selector, ".") {
		// Element selectors, :root variables, at-rules.
		return true
	}
	for _, sel := range strings.Split(selector, ",") {
		sel = strings.TrimSpace(sel)
		sel = strings.TrimPrefix(sel, ".")
		// Strip pseudo-classes and descendant parts.
		if i := strings.IndexAny(sel, ": >"); i >= 0 {
			sel = sel[:i]
		}
		sel = strings.ReplaceAll(sel, `\`, "")
		if _, ok := used[sel]; ok {
			return true
		}
	}
	return false
}
