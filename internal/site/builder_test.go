package site

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/trailhead/internal/bracketcode"
	"github.com/yanizio/trailhead/internal/config"
	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/content/contenttest"
	"github.com/yanizio/trailhead/internal/render"
	"github.com/yanizio/trailhead/internal/resolver"
	"github.com/yanizio/trailhead/internal/settings"
	"github.com/yanizio/trailhead/internal/theme"
	"github.com/yanizio/trailhead/internal/view"
	"github.com/yanizio/trailhead/internal/viewhelpers"
)

type fixture struct {
	out   string
	store *contenttest.Store
	site  *settings.Site
	b     *Builder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	out := t.TempDir()
	cfg := config.Site{
		Name:         "Trails",
		BaseURL:      "https://example.test",
		Author:       "Owner",
		OutputDir:    out,
		ExcludedTags: []string{"private"},
	}
	site := settings.New(cfg)
	store := contenttest.New()
	res := resolver.New(store, 0)
	pics := render.FileLocator{Paths: site}

	th, err := (&theme.Manager{BaseDir: t.TempDir()}).Load("default", viewhelpers.FuncMap(cfg.BaseURL))
	require.NoError(t, err)

	b := New(Deps{
		Site:     site,
		Store:    store,
		Resolver: res,
		Codes:    bracketcode.New(bracketcode.Deps{Resolver: res, URLs: site, Pictures: pics}),
		Pictures: pics,
		View:     view.New(th),
		Now:      func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	return &fixture{out: out, store: store, site: site, b: b}
}

func record(c content.Content, title, slugText string, feedOn time.Time) content.Content {
	content.Initialize(c, "owner", feedOn)
	b := c.Base()
	b.Title = title
	b.Slug = slugText
	b.Folder = "2024"
	b.FeedOn = feedOn
	return c
}

// withPictureFiles writes sized variants into the record's asset dir.
func (f *fixture) withPictureFiles(t *testing.T, c content.Content) {
	t.Helper()
	dir := f.site.AssetDir(c)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"p--For-Display.jpg", "p--150w--100h.jpg", "p--450w--300h.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func (f *fixture) read(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

var june = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestPhotoPage(t *testing.T) {
	f := newFixture(t)
	ph := record(&content.Photo{Camera: "X100", Iso: 200}, "Sunrise", "sunrise", june).(*content.Photo)
	ph.Tags = "Desert, private"
	ph.Summary = "First light"
	f.store.Put(ph)
	f.withPictureFiles(t, ph)

	require.NoError(t, f.b.Item(context.Background(), ph))
	html := f.read(t, f.site.PageFile(ph))

	assert.Contains(t, html, "<title>Sunrise | Trails</title>")
	assert.Contains(t, html, `srcset="https://example.test/Photos/2024/sunrise/p--150w--100h.jpg 150w`)
	assert.Contains(t, html, "<dt>Camera</dt><dd>X100</dd>")
	assert.Contains(t, html, `href="https://example.test/Tags/desert.html"`)
	assert.NotContains(t, html, "Tags/private.html")
	assert.Contains(t, html, `"@type":"Article"`)
	assert.Contains(t, html, `og:image`)
}

func TestPostBodyCodesThenMarkdown(t *testing.T) {
	f := newFixture(t)
	note := record(&content.Note{}, "Quick", "quick", june)
	post := record(&content.Post{}, "Trip", "trip", june)
	post.Base().BodyContent = "# Day one\n\nSee {{notelink " + note.Base().ContentID.String() + ";}} for *more*."
	f.store.Put(note, post)

	require.NoError(t, f.b.Item(context.Background(), post))
	html := f.read(t, f.site.PageFile(post))
	assert.Contains(t, html, `<h1 id="day-one">Day one</h1>`)
	assert.Contains(t, html, `See <a href="https://example.test/Notes/2024/quick.html">Quick</a> for <em>more</em>.`)
}

func TestLineWritesDataFile(t *testing.T) {
	f := newFixture(t)
	line := record(&content.Line{LineDistance: 3.14, GeoJSON: `{"type":"FeatureCollection","features":[]}`}, "Loop", "loop", june)
	f.store.Put(line)

	require.NoError(t, f.b.Item(context.Background(), line))
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, f.read(t, f.site.DataFile(line)))
	html := f.read(t, f.site.PageFile(line))
	assert.Contains(t, html, "singleLineMapInit")
	assert.Contains(t, html, "3.1 Miles")
}

func TestInvalidGeoJSONIsIntegrityError(t *testing.T) {
	f := newFixture(t)
	g := record(&content.GeoJSON{GeoJSON: "{nope"}, "Bad", "bad", june)
	err := f.b.Item(context.Background(), g)
	var ie *content.IntegrityError
	require.ErrorAs(t, err, &ie)
}

func TestMapComponentWritesOnlyData(t *testing.T) {
	f := newFixture(t)
	pt := record(&content.Point{Latitude: 34, Longitude: -117}, "Camp", "camp", june)
	line := record(&content.Line{}, "Loop", "loop", june)
	m := record(&content.MapComponent{Elements: []content.MapElement{
		{ElementContentID: pt.Base().ContentID, ShowDetailsPopup: true},
		{ElementContentID: line.Base().ContentID},
		{ElementContentID: uuid.New()},
	}}, "Area", "area", june)
	f.store.Put(pt, line, m)

	require.NoError(t, f.b.Item(context.Background(), m))
	var got struct {
		Elements []map[string]any `json:"elements"`
	}
	require.NoError(t, json.Unmarshal([]byte(f.read(t, f.site.DataFile(m))), &got))
	require.Len(t, got.Elements, 2)
	assert.Equal(t, 34.0, got.Elements[0]["latitude"])
	assert.Equal(t, f.site.DataURL(line), got.Elements[1]["dataUrl"])
	assert.Empty(t, f.site.PageFile(m))
}

func TestListSkipsDraftsAndWritesFeed(t *testing.T) {
	f := newFixture(t)
	pub := record(&content.Post{}, "Published", "published", june)
	draft := record(&content.Post{}, "Draft", "draft", june)
	draft.Base().IsDraft = true

	require.NoError(t, f.b.List(context.Background(), content.KindPost, []content.Content{pub, draft}))
	html := f.read(t, f.site.ListFile(content.KindPost))
	assert.Contains(t, html, "Published")
	assert.NotContains(t, html, "Draft")

	rss := f.read(t, f.site.RSSFile(content.KindPost))
	assert.Contains(t, rss, "<rss")
	assert.Contains(t, rss, "https://example.test/Posts/2024/published/published.html")
	assert.NotContains(t, rss, "Draft")
}

func TestTagsAndAllTags(t *testing.T) {
	f := newFixture(t)
	a := record(&content.Note{}, "A", "a", june)
	a.Base().Tags = "Desert,Private"
	b := record(&content.Note{}, "B", "b", june)
	b.Base().Tags = "desert"

	idx := TagIndex([]content.Content{a, b}, []string{"private"})
	require.Len(t, idx, 1)
	require.Len(t, idx["desert"], 2)

	require.NoError(t, f.b.Tag(context.Background(), "desert", idx["desert"]))
	assert.Contains(t, f.read(t, f.site.TagFile("desert")), "Tag: desert")

	require.NoError(t, f.b.AllTags(context.Background(), map[string]int{"desert": 2, "private": 1}))
	all := f.read(t, f.site.AllTagsFile())
	assert.Contains(t, all, `<a href="https://example.test/Tags/desert.html">desert</a> <span class="count">2</span>`)
	assert.NotContains(t, all, "private")
}

func TestDailyPhotosAndCameraRoll(t *testing.T) {
	f := newFixture(t)
	p1 := record(&content.Photo{PhotoCreatedOn: june}, "One", "one", june).(*content.Photo)
	p2 := record(&content.Photo{PhotoCreatedOn: june.Add(48 * time.Hour)}, "Two", "two", june).(*content.Photo)
	f.store.Put(p1, p2)
	f.withPictureFiles(t, p1)
	f.withPictureFiles(t, p2)

	days := DailyGroups([]content.Content{p1, p2})
	require.Len(t, days, 2)
	day := PhotoDay(p1)
	next := PhotoDay(p2)

	require.NoError(t, f.b.DailyPhotos(context.Background(), day, days[day], nil, &next))
	html := f.read(t, f.site.DailyPhotoFile(day))
	assert.Contains(t, html, `src="https://example.test/Photos/2024/one/p--450w--300h.jpg"`)
	assert.Contains(t, html, f.site.DailyPhotoURL(next))

	require.NoError(t, f.b.CameraRoll(context.Background(), []content.Content{p1, p2}))
	roll := f.read(t, f.site.CameraRollFile())
	assert.Equal(t, 1, strings.Count(roll, "<h2>June 2024</h2>"))
	assert.Equal(t, 2, strings.Count(roll, `class="gallery-item"`))
}

func TestPointDataIncludesDetails(t *testing.T) {
	f := newFixture(t)
	pt := record(&content.Point{Latitude: 1, Longitude: 2}, "Peak", "peak", june)
	f.store.Put(pt)
	row, err := content.EncodeDetail(pt.Base().ContentID, content.Peak{Notes: "windy"})
	require.NoError(t, err)
	f.store.PutDetails(pt.Base().ContentID, row)

	require.NoError(t, f.b.PointData(context.Background(), []content.Content{pt}))
	assert.Contains(t, f.read(t, f.site.PointDataFile()), `"details":["Peak"]`)
}

func TestMenuIndexAndError(t *testing.T) {
	f := newFixture(t)
	post := record(&content.Post{}, "About", "about", june)
	post.Base().ShowInMainSiteFeed = true
	f.store.Put(post)
	ctx := context.Background()

	require.NoError(t, f.b.SetMenu(ctx, []content.MenuLink{
		{ContentID: uuid.New(), MenuOrder: 0},
		{ContentID: post.Base().ContentID, LinkTag: "About me", MenuOrder: 1},
	}))
	require.NoError(t, f.b.Index(ctx, []content.Content{post}))
	require.NoError(t, f.b.Error(ctx))

	index := f.read(t, f.site.IndexFile())
	assert.Contains(t, index, `<a href="https://example.test/Posts/2024/about/about.html">About me</a>`)
	assert.Contains(t, index, "<title>Trails</title>")
	assert.Contains(t, f.read(t, f.site.ErrorFile()), "Not found")
}

func TestRemoveDeletesAssets(t *testing.T) {
	f := newFixture(t)
	ph := record(&content.Photo{}, "Gone", "gone", june)
	f.withPictureFiles(t, ph)

	require.NoError(t, f.b.Remove(context.Background(), ph))
	_, err := os.Stat(f.site.AssetDir(ph))
	assert.True(t, os.IsNotExist(err))
}

func TestResourcesCopyThemeAssets(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.b.Resources(context.Background()))
	_, err := os.Stat(filepath.Join(f.out, "site-resources", "site.css"))
	assert.NoError(t, err)
}
