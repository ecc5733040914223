package head

import (
	"strings"
	"testing"
)

func TestBuilderDeduplicatesAndEscapes(t *testing.T) {
	b := New()
	b.SetTitle(`Fish & "Chips"`)
	b.Description("A <short> walk")
	b.Description("A <short> walk")
	b.Canonical("https://example.test/a.html")
	b.Feed("Photos", "https://example.test/Photos/rss.xml")
	b.OpenGraph("T", "https://example.test/a.html", "", "")

	if got := string(b.Title()); got != "<title>Fish &amp; &#34;Chips&#34;</title>" {
		t.Fatalf("title: %s", got)
	}
	metas := string(b.Metas())
	if strings.Count(metas, `name="description"`) != 1 {
		t.Fatalf("description not deduplicated: %s", metas)
	}
	if !strings.Contains(metas, "A &lt;short&gt; walk") {
		t.Fatalf("description not escaped: %s", metas)
	}
	if strings.Contains(metas, "og:description") {
		t.Fatalf("empty og value emitted: %s", metas)
	}
	if links := string(b.Links()); !strings.Contains(links, `rel="canonical"`) || !strings.Contains(links, "application/rss+xml") {
		t.Fatalf("links: %s", links)
	}
}

func TestJSONLD(t *testing.T) {
	b := New()
	if err := b.JSONLD(map[string]string{"@type": "Article", "name": "</script>"}); err != nil {
		t.Fatal(err)
	}
	got := string(b.JSON())
	if !strings.HasPrefix(got, `<script type="application/ld+json">`) {
		t.Fatalf("json-ld: %s", got)
	}
	if strings.Count(got, "</script>") != 1 {
		t.Fatalf("payload must not close the script element: %s", got)
	}
	if New().JSON() != "" {
		t.Fatal("empty builder must render nothing")
	}
}
