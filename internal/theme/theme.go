// Package theme loads the html/template set used to render every page and
// email.  A Theme combines:
//
//   - Name       – the theme directory name ("default" when none is set).
//   - Root       – <root>/themes/<name>, which may not exist for "default".
//   - Templates  – parsed templates ready for execution.
//   - Assets     – the static files copied into the output tree.
//
// Embedded defaults ship inside the binary; a theme directory only needs
// the files it overrides.
package theme

import (
	"embed"
	"html/template"
	"io/fs"
	"path"
)

//go:embed default
var defaults embed.FS

// AssetDir is the site-relative directory theme assets are written to.
const AssetDir = "/site-resources/"

// Theme is returned by the Manager once all templates are parsed.
type Theme struct {
	Name      string
	Root      string
	Templates *template.Template
	Assets    fs.FS
}

// AssetPath maps an asset file name to its site-relative path.
func AssetPath(name string) string {
	return path.Join(AssetDir, name)
}

// DefaultAssets returns the embedded static files.
func DefaultAssets() fs.FS {
	sub, err := fs.Sub(defaults, "default/assets")
	if err != nil {
		panic("theme: embedded assets missing: " + err.Error())
	}
	return sub
}
