// internal/view/render.go
//
// Central view engine: template execution, layout wrapping, and atomic
// output writes.
//
// Public helpers
// --------------
//   - Render      – execute one template to template.HTML (page bodies,
//     emails).
//   - Page        – render a body template, wrap it in the layout, and
//     write the result to disk.
//   - WriteFile   – atomic write used for every artifact (pages, feeds,
//     JSON side-files, assets).
//
// Template names
// --------------
// execName() chooses the template to execute:
//   - If the set contains "<name>.html", we run that (file has no define).
//   - Else we fall back to "<name>" (root template defined via {{ define }}).
//
// Notes
// -----
// • Writes go to a temp file in the target directory and are renamed into
//   place, so a crashed run never leaves a half-written page.
// • Every write is counted in metrics.PagesWritten by artifact kind.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/yanizio/trailhead/internal/head"
	"github.com/yanizio/trailhead/internal/metrics"
	"github.com/yanizio/trailhead/internal/theme"
)

// MenuItem is one entry of the site menu.
type MenuItem struct {
	Text string
	URL  string
}

// Layout is the data the layout template receives.
type Layout struct {
	SiteName  string
	IndexURL  string
	SearchURL string
	Menu      []MenuItem
	Head      *head.Builder
	Main      template.HTML
	Year      int
}

// Engine executes theme templates.
type Engine struct {
	th *theme.Theme
}

// New returns an Engine over th.
func New(th *theme.Theme) *Engine { return &Engine{th: th} }

// Theme returns the loaded theme.
func (e *Engine) Theme() *theme.Theme { return e.th }

// Render executes the named template and returns its HTML.
func (e *Engine) Render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := e.th.Templates.ExecuteTemplate(&buf, execName(e.th.Templates, name), data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Page renders body template name with data, wraps it in the layout, and
// writes the result to path.  artifact labels the write in metrics.
func (e *Engine) Page(path, artifact, name string, data any, lay Layout) error {
	main, err := e.Render(name, data)
	if err != nil {
		return err
	}
	lay.Main = main
	if lay.Head == nil {
		lay.Head = head.New()
	}
	if lay.Year == 0 {
		lay.Year = time.Now().Year()
	}
	out, err := e.Render("layout", lay)
	if err != nil {
		return err
	}
	return WriteFile(path, artifact, []byte(out))
}

// WriteFile writes data to path atomically, creating parent directories.
func WriteFile(path, artifact string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	metrics.PagesWritten.WithLabelValues(artifact).Inc()
	return nil
}

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil {
		return name + ".html"
	}
	return name
}
