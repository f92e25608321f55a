package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/planter-dev/planter/types"
)

// markdownPlanTemplate is the built-in template for the "markdown" document
// id: a human-readable rendering of the whole test plan.
const markdownPlanTemplate = `# {{ .Name }} Test Plan
{{ range .Suites }}
## Suite: {{ .Name }}
{{- if .Desc }}

{{ .Desc }}
{{- end }}
{{ range .Groups }}
### Group: {{ .Name }}
{{- if .Desc }}

{{ .Desc }}
{{- end }}

| Test | Description |
| ---- | ----------- |
{{- range .Tests }}
| {{ .Name }} | {{ .Desc }} |
{{- end }}
{{ end }}{{ end }}`

// DocumentTemplates resolves the template text for each configured document.
// The "markdown" id falls back to the built-in plan template; any other id
// must name a template file, read relative to the config root.
func DocumentTemplates(documents []types.DocumentConfig, rootDir string) (map[string]string, error) {
	templates := make(map[string]string, len(documents))
	for _, doc := range documents {
		switch {
		case doc.Template != "":
			path := doc.Template
			if !filepath.IsAbs(path) {
				path = filepath.Join(rootDir, path)
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("document %q: failed to read template: %w", doc.ID, err)
			}
			templates[doc.ID] = string(content)
		case doc.ID == "markdown":
			templates[doc.ID] = markdownPlanTemplate
		default:
			return nil, fmt.Errorf("document %q is not a built-in document id and has no template configured", doc.ID)
		}
	}
	return templates, nil
}
