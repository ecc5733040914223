package view

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yanizio/trailhead/internal/head"
	"github.com/yanizio/trailhead/internal/theme"
	"github.com/yanizio/trailhead/internal/viewhelpers"
)

func loadDefault(t *testing.T) *Engine {
	t.Helper()
	th, err := (&theme.Manager{BaseDir: t.TempDir()}).Load("default", viewhelpers.FuncMap("https://example.test/"))
	if err != nil {
		t.Fatalf("load theme: %v", err)
	}
	return New(th)
}

func TestPageWrapsLayout(t *testing.T) {
	e := loadDefault(t)
	h := head.New()
	h.SetTitle("Oops")
	out := filepath.Join(t.TempDir(), "a", "b", "error.html")

	err := e.Page(out, "error", "error", map[string]string{
		"SearchURL": "https://example.test/search.html",
		"IndexURL":  "https://example.test/index.html",
	}, Layout{SiteName: "Trails", IndexURL: "https://example.test/index.html", Head: h})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	html := string(raw)
	for _, want := range []string{
		"<title>Oops</title>",
		`href="https://example.test/site-resources/site.css"`,
		"<h1>Not found</h1>",
		`<a class="site-name" href="https://example.test/index.html">Trails</a>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("missing %q in\n%s", want, html)
		}
	}
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.json")
	if err := WriteFile(p, "data", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(p, "data", []byte("two")); err != nil {
		t.Fatal(err)
	}
	raw, _ := os.ReadFile(p)
	if string(raw) != "two" {
		t.Fatalf("got %q", raw)
	}
	entries, _ := os.ReadDir(filepath.Dir(p))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}
