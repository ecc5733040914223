// internal/viewhelpers/helpers.go
//
// Template helpers shared by page and email templates.  Injected by the
// theme manager before parsing, so every template can call:
//
//	{{ asset "site.css" }}        absolute URL of a theme asset
//	{{ date .FeedOn }}            "January 2, 2006"
//	{{ isoDate .FeedOn }}         "2006-01-02"
//	{{ dict "k" 1 "k2" "v" }}     ad-hoc map for sub-templates
package viewhelpers

import (
	"html/template"
	"strings"
	"time"

	"github.com/yanizio/trailhead/internal/theme"
)

// FuncMap returns the helpers for a site rooted at baseURL.
func FuncMap(baseURL string) template.FuncMap {
	base := strings.TrimRight(baseURL, "/")
	return template.FuncMap{
		"asset":   func(name string) string { return base + theme.AssetPath(name) },
		"date":    formatDate("January 2, 2006"),
		"isoDate": formatDate("2006-01-02"),
		"month":   formatDate("January 2006"),
		"dict":    dict,
	}
}

func formatDate(layout string) func(any) string {
	return func(v any) string {
		switch t := v.(type) {
		case time.Time:
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		case *time.Time:
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format(layout)
		}
		return ""
	}
}

// dict builds a map in templates.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
