package docpage

import (
	_ "embed"
	"fmt"

	"github.com/aymerick/raymond"

	"github.com/eugenenazirov/api-routes/internal/routes"
)

//go:embed page.hbs
var pageTemplate string

// Page renders the human-readable documentation for a route table.
type Page struct {
	tmpl *raymond.Template
}

// New compiles the documentation page template.
func New() (*Page, error) {
	tmpl, err := raymond.Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse documentation template: %w", err)
	}
	return &Page{tmpl: tmpl}, nil
}

// Render produces the HTML page for docs.
func (p *Page) Render(docs routes.Documentation) (string, error) {
	out, err := p.tmpl.Exec(templateContext(docs))
	if err != nil {
		return "", fmt.Errorf("render documentation page: %w", err)
	}
	return out, nil
}

func templateContext(docs routes.Documentation) map[string]interface{} {
	endpoints := make([]map[string]interface{}, 0, len(docs.Endpoints))
	for _, ep := range docs.Endpoints {
		endpoints = append(endpoints, map[string]interface{}{
			"url":          ep.URL,
			"method":       ep.Method,
			"group":        ep.Group,
			"path":         ep.Path,
			"responseType": ep.ResponseType,
		})
	}

	groups := make([]map[string]interface{}, 0, len(docs.Groups))
	for _, g := range docs.Groups {
		groups = append(groups, map[string]interface{}{
			"name":       g.Name,
			"routeCount": g.RouteCount,
		})
	}

	return map[string]interface{}{
		"apiVersion":   docs.APIVersion,
		"description":  docs.Description,
		"baseUrl":      docs.BaseURL,
		"envVar":       routes.EnvVar,
		"configType":   docs.ConfigFormat.Type,
		"configSource": docs.ConfigFormat.Source,
		"example":      docs.ConfigFormat.Example,
		"endpoints":    endpoints,
		"groups":       groups,
	}
}
