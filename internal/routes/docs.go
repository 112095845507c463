package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/pretty"
)

const (
	docsAPIVersion  = "1.0.0"
	docsDescription = "MCP API service"
	docsBaseURL     = "/api"
)

// Documentation describes every route served for a Configuration.
type Documentation struct {
	APIVersion   string          `json:"apiVersion"`
	Description  string          `json:"description"`
	BaseURL      string          `json:"baseUrl"`
	Endpoints    []EndpointDoc   `json:"endpoints"`
	Groups       []GroupSummary  `json:"groups"`
	ConfigFormat ConfigFormatDoc `json:"configFormat"`
}

// EndpointDoc describes one (group, path) pair.
type EndpointDoc struct {
	URL          string `json:"url"`
	Method       string `json:"method"`
	Group        string `json:"group"`
	Path         string `json:"path"`
	ResponseType string `json:"responseType"`
}

// GroupSummary counts the routes declared by a group.
type GroupSummary struct {
	Name       string `json:"name"`
	RouteCount int    `json:"routeCount"`
}

// ConfigFormatDoc explains how the route table is supplied.
type ConfigFormatDoc struct {
	Type    string `json:"type"`
	Source  string `json:"source"`
	Example string `json:"example"`
}

// GenerateDocs builds the Documentation for cfg. It has no side effects.
func GenerateDocs(cfg *Configuration) Documentation {
	groups := cfg.Groups()

	endpoints := make([]EndpointDoc, 0, cfg.RouteCount())
	summaries := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		for _, r := range g.Routes {
			endpoints = append(endpoints, EndpointDoc{
				URL:          EndpointURL(g.Group, r.Path),
				Method:       http.MethodGet,
				Group:        g.Group,
				Path:         r.Path,
				ResponseType: r.Response.TypeName(),
			})
		}
		summaries = append(summaries, GroupSummary{Name: g.Group, RouteCount: len(g.Routes)})
	}

	return Documentation{
		APIVersion:  docsAPIVersion,
		Description: docsDescription,
		BaseURL:     docsBaseURL,
		Endpoints:   endpoints,
		Groups:      summaries,
		ConfigFormat: ConfigFormatDoc{
			Type:    "JSON",
			Source:  fmt.Sprintf("Environment Variable (%s)", EnvVar),
			Example: formatExample(cfg),
		},
	}
}

// EndpointURL returns the URL a route is served at. Each segment is
// escaped, so a path containing "/" stays a single segment.
func EndpointURL(group, path string) string {
	return docsBaseURL + "/" + url.PathEscape(group) + "/" + url.PathEscape(path)
}

func formatExample(cfg *Configuration) string {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "[]"
	}
	// Width 0 keeps every non-empty array expanded, one element per line.
	out := pretty.PrettyOptions(raw, &pretty.Options{
		Width:  0,
		Prefix: "",
		Indent: "  ",
	})
	return string(bytes.TrimRight(out, "\n"))
}
