// Package render holds the collaborators the bracket-code engine and page
// builders use to produce HTML: the body formatter, the picture locator,
// and small string-level HTML helpers.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/yanizio/trailhead/internal/content"
)

// Formatter turns a body in a known format into HTML.
type Formatter interface {
	Render(format, text string) (string, error)
}

// Goldmark renders markdown with GFM extensions and passes raw HTML
// through untouched, since processed bracket codes arrive as HTML.
type Goldmark struct {
	md goldmark.Markdown
}

// NewFormatter returns the default Formatter.
func NewFormatter() *Goldmark {
	return &Goldmark{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

func (g *Goldmark) Render(format, text string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case content.FormatMarkdown, "":
		var buf bytes.Buffer
		if err := g.md.Convert([]byte(text), &buf); err != nil {
			return "", fmt.Errorf("markdown: %w", err)
		}
		return buf.String(), nil
	case content.FormatHTML:
		return text, nil
	}
	return "", fmt.Errorf("unknown body format %q", format)
}
