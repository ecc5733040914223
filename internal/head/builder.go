// internal/head/builder.go
//
// The Builder collects everything that should appear inside a generated
// page's <head> element.  It is scoped to a single page.  The page builder
// pushes tags into it, then the theme's layout decides where to emit each
// slice.
//
// Features
// --------
//   - SetTitle           – single <title> tag (last call wins).
//   - Meta, Link, Script – pre-built tags with deduplication.
//   - Description, Canonical, Feed, OpenGraph – escaped convenience tags.
//   - JSONLD             – raw JSON-LD wrapped in
//     <script type="application/ld+json">…</script>.
//   - Render helpers     – concat methods that return template.HTML.
package head

import (
	"encoding/json"
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for concurrent use; one mutex guards every slice.
type Builder struct {
	mu sync.Mutex

	title string

	metas   []string
	links   []string
	scripts []string
	jsonLD  []string

	seen map[string]struct{}
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// ------------------------------------------------------------------
// Single-value helper
// ------------------------------------------------------------------

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + esc(b.title) + "</title>")
}

// ------------------------------------------------------------------
// Slice helpers with deduplication
// ------------------------------------------------------------------

func (b *Builder) Meta(tag string)   { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string)   { b.add("link:"+tag, &b.links, tag) }
func (b *Builder) Script(tag string) { b.add("script:"+tag, &b.scripts, tag) }

// JSONLD marshals v and stores it as one JSON-LD block.
func (b *Builder) JSONLD(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	js := string(raw)
	b.add("jsonld:"+js, &b.jsonLD, js)
	return nil
}

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// ------------------------------------------------------------------
// Convenience tags
// ------------------------------------------------------------------

// Description adds the description meta tag.  Empty text is ignored.
func (b *Builder) Description(text string) {
	if text = strings.TrimSpace(text); text != "" {
		b.Meta(`<meta name="description" content="` + esc(text) + `">`)
	}
}

// Keywords adds the keywords meta tag.
func (b *Builder) Keywords(words []string) {
	if len(words) > 0 {
		b.Meta(`<meta name="keywords" content="` + esc(strings.Join(words, ", ")) + `">`)
	}
}

// Canonical links the page to its absolute URL.
func (b *Builder) Canonical(url string) {
	if url != "" {
		b.Link(`<link rel="canonical" href="` + esc(url) + `">`)
	}
}

// Feed advertises an RSS feed.
func (b *Builder) Feed(title, url string) {
	b.Link(`<link rel="alternate" type="application/rss+xml" title="` + esc(title) + `" href="` + esc(url) + `">`)
}

// OpenGraph adds og: tags.  Empty values are skipped.
func (b *Builder) OpenGraph(title, url, description, image string) {
	for _, kv := range [][2]string{
		{"og:title", title},
		{"og:url", url},
		{"og:description", description},
		{"og:image", image},
	} {
		if kv[1] != "" {
			b.Meta(`<meta property="` + kv[0] + `" content="` + esc(kv[1]) + `">`)
		}
	}
}

// ------------------------------------------------------------------
// Rendering helpers called from theme templates
// ------------------------------------------------------------------

func (b *Builder) Metas() template.HTML   { return b.concat(b.metas) }
func (b *Builder) Links() template.HTML   { return b.concat(b.links) }
func (b *Builder) Scripts() template.HTML { return b.concat(b.scripts) }

// JSON returns all JSON-LD blocks wrapped in <script> tags.
func (b *Builder) JSON() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.jsonLD) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, js := range b.jsonLD {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(js)
		sb.WriteString(`</script>`)
	}
	return template.HTML(sb.String())
}

// concat joins pre-escaped tags without a separator.
func (b *Builder) concat(sl []string) template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return template.HTML(strings.Join(sl, ""))
}

func esc(s string) string { return template.HTMLEscapeString(s) }
