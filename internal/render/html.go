// internal/render/html.go
//
// String-level HTML helpers.
//
// Context
// -------
// Bracket-code renderers return fragments that are spliced into body text,
// so they build strings directly instead of executing templates.  Every
// dynamic value passes through Escape; URLs are escaped as attribute text.
//
// Features
// --------
//   - Anchor, ExternalAnchor  – links.
//   - Figure                  – responsive picture with optional caption.
//   - EmailImage              – table-based picture for email clients.
//   - Div, Script             – map placeholders and their loader calls.
package render

import (
	"html/template"
	"strconv"
	"strings"
)

// Escape HTML-escapes s.
func Escape(s string) string { return template.HTMLEscapeString(s) }

// Anchor returns <a href="href">text</a>.
func Anchor(href, text string) string {
	return `<a href="` + Escape(href) + `">` + Escape(text) + `</a>`
}

// ExternalAnchor is an Anchor that opens off-site targets without a
// referrer.
func ExternalAnchor(href, text string) string {
	return `<a href="` + Escape(href) + `" rel="noopener noreferrer">` + Escape(text) + `</a>`
}

// Figure renders asset as a linked, responsive <figure>.  Empty when the
// asset has nothing to show.
func Figure(asset *PictureAsset, href, caption, class string) string {
	if asset == nil || asset.Src() == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<figure class="` + Escape(class) + `">`)
	if href != "" {
		b.WriteString(`<a href="` + Escape(href) + `">`)
	}
	b.WriteString(Img(asset, "100vw"))
	if href != "" {
		b.WriteString(`</a>`)
	}
	if caption != "" {
		b.WriteString(`<figcaption>` + Escape(caption) + `</figcaption>`)
	}
	b.WriteString(`</figure>`)
	return b.String()
}

// Img renders the <img> element of asset.
func Img(asset *PictureAsset, sizes string) string {
	var b strings.Builder
	b.WriteString(`<img src="` + Escape(asset.Src()) + `"`)
	if set := asset.SrcSet(); set != "" {
		b.WriteString(` srcset="` + Escape(set) + `" sizes="` + Escape(sizes) + `"`)
	}
	b.WriteString(` alt="` + Escape(asset.AltText) + `" loading="lazy">`)
	return b.String()
}

// EmailImage renders asset in a single-cell table, the layout email
// clients reliably honour.  The largest variant no wider than maxWidth is
// used.
func EmailImage(asset *PictureAsset, href, caption string, maxWidth int) string {
	if asset == nil {
		return ""
	}
	pick := asset.Display
	for i := range asset.Sized {
		if asset.Sized[i].Width <= maxWidth {
			pick = &asset.Sized[i]
		}
	}
	if pick == nil {
		pick = asset.Largest()
	}
	if pick == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<table role="presentation" border="0" cellpadding="0" cellspacing="0" width="100%">`)
	b.WriteString(`<tr><td align="center">`)
	if href != "" {
		b.WriteString(`<a href="` + Escape(href) + `">`)
	}
	b.WriteString(`<img src="` + Escape(pick.URL) + `" alt="` + Escape(asset.AltText) + `"`)
	if pick.Width > 0 {
		w := min(pick.Width, maxWidth)
		b.WriteString(` width="` + strconv.Itoa(w) + `"`)
	}
	b.WriteString(` style="display:block;max-width:100%;height:auto;border:0;">`)
	if href != "" {
		b.WriteString(`</a>`)
	}
	b.WriteString(`</td></tr>`)
	if caption != "" {
		b.WriteString(`<tr><td align="center" style="padding-top:4px;">` + Escape(caption) + `</td></tr>`)
	}
	b.WriteString(`</table>`)
	return b.String()
}

// Div returns an empty element carrying an id and a class.
func Div(id, class string) string {
	return `<div id="` + Escape(id) + `" class="` + Escape(class) + `"></div>`
}

// Script wraps js in a <script> element.  js must already be safe.
func Script(js string) string {
	return `<script>` + js + `</script>`
}

// JSString quotes s for use inside a script literal.
func JSString(s string) string {
	return `'` + template.JSEscapeString(s) + `'`
}
