package theme_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yanizio/trailhead/internal/theme"
	"github.com/yanizio/trailhead/internal/viewhelpers"
)

func TestLoadDefaultWithoutDirectory(t *testing.T) {
	m := &theme.Manager{BaseDir: filepath.Join(t.TempDir(), "themes")}
	th, err := m.Load("", viewhelpers.FuncMap("https://example.test"))
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	for _, name := range []string{"layout.html", "item.html", "list.html", "email.html", "entry"} {
		if th.Templates.Lookup(name) == nil {
			t.Fatalf("default template %s missing", name)
		}
	}
	files, err := th.AssetFiles()
	if err != nil || len(files) < 2 {
		t.Fatalf("assets: %v %v", files, err)
	}
}

func TestLoadUnknownThemeFails(t *testing.T) {
	m := &theme.Manager{BaseDir: t.TempDir()}
	if _, err := m.Load("ocean", viewhelpers.FuncMap("https://example.test")); err == nil {
		t.Fatal("expected error for missing theme")
	}
}

func TestThemeOverridesDefault(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "ocean", "templates")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "error.html"), []byte(`<p>ocean says no</p>`), 0o644); err != nil {
		t.Fatal(err)
	}

	th, err := (&theme.Manager{BaseDir: base}).Load("ocean", viewhelpers.FuncMap("https://example.test"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var sb strings.Builder
	if err := th.Templates.ExecuteTemplate(&sb, "error.html", nil); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "<p>ocean says no</p>" {
		t.Fatalf("override not applied: %q", sb.String())
	}
}

func TestCollectHTMLMissingDir(t *testing.T) {
	files, err := theme.CollectHTML(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(files) != 0 {
		t.Fatalf("want empty, got %v %v", files, err)
	}
}
