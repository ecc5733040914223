package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yanizio/trailhead/internal/bracketcode"
	"github.com/yanizio/trailhead/internal/config"
	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/content/contenttest"
	"github.com/yanizio/trailhead/internal/resolver"
	"github.com/yanizio/trailhead/internal/settings"
	"github.com/yanizio/trailhead/internal/theme"
	"github.com/yanizio/trailhead/internal/view"
	"github.com/yanizio/trailhead/internal/viewhelpers"
)

func TestBuildDegradesMaps(t *testing.T) {
	site := settings.New(config.Site{Name: "Trails", BaseURL: "https://example.test", OutputDir: t.TempDir()})
	store := contenttest.New()
	res := resolver.New(store, 0)
	th, err := (&theme.Manager{BaseDir: t.TempDir()}).Load("", viewhelpers.FuncMap("https://example.test"))
	if err != nil {
		t.Fatal(err)
	}

	line := &content.Line{}
	content.Initialize(line, "owner", time.Now())
	line.Title, line.Slug, line.Folder = "Loop", "loop", "2024"
	post := &content.Post{}
	content.Initialize(post, "owner", time.Now())
	post.Title, post.Slug, post.Folder = "Trip", "trip", "2024"
	post.Summary = "A long day"
	post.BodyContent = "We walked {{line " + line.ContentID.String() + ";}}{{lineelevationchart " + line.ContentID.String() + ";}}."
	store.Put(line, post)

	b := &Builder{
		Site:  site,
		Codes: bracketcode.New(bracketcode.Deps{Resolver: res, URLs: site}),
		View:  view.New(th),
	}
	msg, err := b.Build(context.Background(), post)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if msg.Subject != "Trip" {
		t.Fatalf("subject %q", msg.Subject)
	}
	if strings.Contains(msg.HTML, "<script") {
		t.Fatalf("email must not carry scripts:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, `<a href="https://example.test/Lines/2024/loop/loop.html">Loop</a>`) {
		t.Fatalf("line not degraded to a link:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.Text, "https://example.test/Posts/2024/trip/trip.html") {
		t.Fatalf("text part: %q", msg.Text)
	}
}
