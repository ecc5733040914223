package theme

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Manager discovers and loads themes.
type Manager struct {
	BaseDir string // <root>/themes
}

// Load parses the templates for the named theme.
// Template precedence (high → low):
//  1. <BaseDir>/<name>/templates/**.html (overrides)
//  2. embedded default/templates/*.html  (defaults)
//
// Assets come from <BaseDir>/<name>/assets when that directory exists,
// otherwise from the embedded defaults.  funcs must be complete before
// parsing since templates resolve function names at parse time.
func (m *Manager) Load(name string, funcs template.FuncMap) (*Theme, error) {
	if name == "" {
		name = "default"
	}
	root := filepath.Join(m.BaseDir, name)
	info, err := os.Stat(root)
	exists := err == nil && info.IsDir()
	if !exists && name != "default" {
		return nil, fmt.Errorf("theme %s not found at %s", name, root)
	}

	// 1. Embedded defaults (lowest precedence).
	tpl, err := template.New("").Funcs(funcs).ParseFS(defaults, "default/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse default templates: %w", err)
	}

	th := &Theme{Name: name, Root: root, Templates: tpl, Assets: DefaultAssets()}
	if !exists {
		return th, nil
	}

	// 2. Theme overrides (highest precedence).
	files, err := CollectHTML(filepath.Join(root, "templates"))
	if err != nil {
		return nil, fmt.Errorf("scan theme templates: %w", err)
	}
	if len(files) > 0 {
		if _, err := tpl.ParseFiles(files...); err != nil {
			return nil, fmt.Errorf("parse theme overrides: %w", err)
		}
		zap.S().Debugw("theme overrides loaded", "theme", name, "files", len(files))
	}

	assets := filepath.Join(root, "assets")
	if st, err := os.Stat(assets); err == nil && st.IsDir() {
		th.Assets = os.DirFS(assets)
	}
	return th, nil
}

// AssetFiles lists every file in th.Assets.
func (th *Theme) AssetFiles() ([]string, error) {
	var out []string
	err := fs.WalkDir(th.Assets, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}
