package bracketcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/trailhead/internal/config"
	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/content/contenttest"
	"github.com/yanizio/trailhead/internal/progress"
	"github.com/yanizio/trailhead/internal/render"
	"github.com/yanizio/trailhead/internal/resolver"
	"github.com/yanizio/trailhead/internal/settings"
)

type fakePictures map[content.ID]*render.PictureAsset

func (f fakePictures) Locate(_ context.Context, c content.Content) (*render.PictureAsset, error) {
	return f[c.Base().ContentID], nil
}

func asset(id content.ID, name string) *render.PictureAsset {
	return &render.PictureAsset{
		ContentID: id,
		AltText:   name,
		Display:   &render.PictureFile{URL: "https://example.test/" + name + "--For-Display.jpg"},
		Sized: []render.PictureFile{
			{URL: "https://example.test/" + name + "--150w--100h.jpg", Width: 150, Height: 100},
			{URL: "https://example.test/" + name + "--300w--200h.jpg", Width: 300, Height: 200},
			{URL: "https://example.test/" + name + "--600w--400h.jpg", Width: 600, Height: 400},
		},
	}
}

type fixture struct {
	store *contenttest.Store
	pics  fakePictures
	eng   *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: contenttest.New(), pics: fakePictures{}}
	site := settings.New(config.Site{Name: "Test", BaseURL: "https://example.test", OutputDir: t.TempDir()})
	n := 0
	f.eng = New(Deps{
		Resolver:         resolver.New(f.store, 0),
		URLs:             site,
		Pictures:         f.pics,
		GalleryRowHeight: 200,
		NewID: func() uuid.UUID {
			n++
			return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
		},
	})
	return f
}

func common(c content.Content, title, folder, slug string) content.Content {
	b := c.Base()
	b.ContentID = uuid.New()
	b.Title = title
	b.Folder = folder
	b.Slug = slug
	return c
}

func (f *fixture) site(t *testing.T, in string) string {
	t.Helper()
	out, err := f.eng.ProcessForSite(context.Background(), in, progress.Nop)
	require.NoError(t, err)
	return out
}

func (f *fixture) email(t *testing.T, in string) string {
	t.Helper()
	out, err := f.eng.ProcessForEmail(context.Background(), in, nil)
	require.NoError(t, err)
	return out
}

func TestLinkUsesDisplayTextOrTitle(t *testing.T) {
	f := newFixture(t)
	post := common(&content.Post{}, "Cactus <Flats>", "2024", "cactus-flats")
	f.store.Put(post)
	id := post.Base().ContentID

	out := f.site(t, "A {{postlink "+id.String()+"; text great hike;}} and {{postlink "+id.String()+";}}.")
	assert.Equal(t,
		`A <a href="https://example.test/Posts/2024/cactus-flats/cactus-flats.html">great hike</a> and `+
			`<a href="https://example.test/Posts/2024/cactus-flats/cactus-flats.html">Cactus &lt;Flats&gt;</a>.`,
		out)
}

func TestMissingContentLeavesLinkCode(t *testing.T) {
	f := newFixture(t)
	in := "See {{postlink " + uuid.NewString() + "; text gone;}} here."
	assert.Equal(t, in, f.site(t, in))
}

func TestMissingContentDowngradesImageLink(t *testing.T) {
	f := newFixture(t)
	id := uuid.NewString()
	in := "{{pointimagelink " + id + "; text Camp;}}"
	assert.Equal(t, "{{pointlink "+id+"; text Camp;}}", f.site(t, in))
}

func TestImageLinkWithoutPictureFallsBackToLink(t *testing.T) {
	f := newFixture(t)
	pt := common(&content.Point{Latitude: 1, Longitude: 2}, "Saddle", "2024", "saddle")
	f.store.Put(pt)

	out := f.site(t, "{{pointimagelink "+pt.Base().ContentID.String()+";}}")
	assert.Equal(t, `<a href="https://example.test/Points/2024/saddle/saddle.html">Saddle</a>`, out)
}

func TestImageLinkRendersMainPicture(t *testing.T) {
	f := newFixture(t)
	ph := common(&content.Photo{}, "View", "2024", "view")
	post := common(&content.Post{}, "Trip", "2024", "trip")
	pid := ph.Base().ContentID
	post.Base().MainPicture = &pid
	f.store.Put(ph, post)
	f.pics[pid] = asset(pid, "view")

	out := f.site(t, "{{postimagelink "+post.Base().ContentID.String()+"; text The trip;}}")
	assert.Contains(t, out, `<figure class="post-image-link"><a href="https://example.test/Posts/2024/trip/trip.html">`)
	assert.Contains(t, out, `srcset="https://example.test/view--150w--100h.jpg 150w`)
	assert.Contains(t, out, `<figcaption>The trip</figcaption>`)
}

func TestGalleryKeepsPictures(t *testing.T) {
	f := newFixture(t)
	ph := common(&content.Photo{}, "A", "2024", "a")
	pt := common(&content.Point{}, "B", "2024", "b")
	f.store.Put(ph, pt)
	a := ph.Base().ContentID
	f.pics[a] = asset(a, "a")

	in := "[[picturegallery\n {{photo " + a.String() + ";}}\n {{point " + pt.Base().ContentID.String() + ";}}\n]]"
	out := f.site(t, in)
	assert.True(t, strings.HasPrefix(out, `<div class="flex-gallery" id="gallery-00000000-0000-0000-0000-000000000001">`))
	assert.Contains(t, out, `src="https://example.test/a--300w--200h.jpg" width="300" height="200"`)
	assert.Equal(t, 1, strings.Count(out, `class="gallery-item"`))
	assert.Contains(t, out, `justifiedGallery('gallery-00000000-0000-0000-0000-000000000001', 200);`)
	assert.NotContains(t, out, "{{")
}

func TestGalleryWithoutPicturesIsEmpty(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "x  y", f.site(t, "x [[picturegallery {{photo "+uuid.NewString()+";}}]] y"))
}

func TestStatsTemplate(t *testing.T) {
	f := newFixture(t)
	line := common(&content.Line{LineDistance: 5.25, ClimbElevation: 312, MaxElevation: 4021.6}, "Loop", "2024", "loop")
	trail := common(&content.Trail{}, "Loop Trail", "2024", "loop-trail")
	lid := line.Base().ContentID
	trail.(*content.Trail).LineContentID = &lid
	f.store.Put(line, trail)

	out := f.site(t, "{{linestats "+lid.String()+"; text [distance] mi, [climb]' up;}}")
	assert.Equal(t, "5.3 mi, 312&#39; up", out)

	out = f.site(t, "{{trailstats "+trail.Base().ContentID.String()+";}}")
	assert.Equal(t, "5.3 Miles, 312' Climb, 4022' Max Elevation", out)
}

func TestStatsTextIsEscaped(t *testing.T) {
	f := newFixture(t)
	line := common(&content.Line{LineDistance: 2}, "Loop", "2024", "loop")
	f.store.Put(line)

	out := f.site(t, "{{linestats "+line.Base().ContentID.String()+"; text <b>[distance]</b> & more;}}")
	assert.Equal(t, "&lt;b&gt;2.0&lt;/b&gt; &amp; more", out)
	assert.Equal(t, "<b>2.0</b>", LineStats(line.(*content.Line), "<b>[distance]</b>"))
}

func TestProcessingIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ph := common(&content.Photo{}, "A", "2024", "a")
	note := common(&content.Note{}, "N", "2024", "n")
	f.store.Put(ph, note)
	f.pics[ph.Base().ContentID] = asset(ph.Base().ContentID, "a")

	in := "{{photo " + ph.Base().ContentID.String() + ";}} {{notelink " + note.Base().ContentID.String() + ";}} {{tagspage;}}"
	once := f.site(t, in)
	assert.NotContains(t, once, "{{")
	assert.Equal(t, once, f.site(t, once))
}

func TestSpecialPages(t *testing.T) {
	f := newFixture(t)
	out := f.site(t, "{{tagspage;}} {{photorss; text Feed;}} {{postsearchpage;}}")
	assert.Equal(t,
		`<a href="https://example.test/Tags/index.html">Tags</a> `+
			`<a href="https://example.test/Photos/rss.xml">Feed</a> `+
			`<a href="https://example.test/Posts/index.html">Posts</a>`, out)
}

func TestSnippetBodyIsProcessed(t *testing.T) {
	f := newFixture(t)
	post := common(&content.Post{}, "Trip", "2024", "trip")
	snip := common(&content.Snippet{}, "Footer", "", "footer")
	snip.Base().BodyContent = "Read {{postlink " + post.Base().ContentID.String() + ";}}"
	f.store.Put(post, snip)

	out := f.site(t, "{{snippet "+snip.Base().ContentID.String()+";}}")
	assert.Equal(t, `Read <a href="https://example.test/Posts/2024/trip/trip.html">Trip</a>`, out)
}

func TestSnippetGalleryIsResolved(t *testing.T) {
	f := newFixture(t)
	ph := common(&content.Photo{}, "A", "2024", "a")
	snip := common(&content.Snippet{}, "Strip", "", "strip")
	snip.Base().BodyContent = "[[picturegallery {{photo " + ph.Base().ContentID.String() + ";}}]]"
	f.store.Put(ph, snip)
	f.pics[ph.Base().ContentID] = asset(ph.Base().ContentID, "a")
	code := "{{snippet " + snip.Base().ContentID.String() + ";}}"

	out := f.site(t, code)
	assert.True(t, strings.HasPrefix(out, `<div class="flex-gallery"`), out)
	assert.NotContains(t, out, "[[")
	assert.NotContains(t, out, "{{")

	out = f.email(t, code)
	assert.Contains(t, out, `src="https://example.test/a--600w--400h.jpg"`)
	assert.NotContains(t, out, "[[")
	assert.NotContains(t, out, "{{")
}

func TestPointMapIncludesDetails(t *testing.T) {
	f := newFixture(t)
	pt := common(&content.Point{Latitude: 34.5, Longitude: -117.25}, "Camp", "2024", "camp")
	f.store.Put(pt)
	row, err := content.EncodeDetail(pt.Base().ContentID, content.Campground{Notes: "quiet"})
	require.NoError(t, err)
	f.store.PutDetails(pt.Base().ContentID, row)

	out := f.site(t, "{{point "+pt.Base().ContentID.String()+";}}")
	assert.Contains(t, out, `<div id="point-map-00000000-0000-0000-0000-000000000001" class="point-map"></div>`)
	assert.Contains(t, out, `"details":["Campground"]`)
}

func TestIntegrityErrorAbortsProcessing(t *testing.T) {
	f := newFixture(t)
	pt := common(&content.Point{}, "Broken", "2024", "broken")
	f.store.Put(pt)
	f.store.PutDetails(pt.Base().ContentID, content.PointDetail{
		PointContentID: pt.Base().ContentID, DataTypeIdentifier: "Volcano", StructuredDataAsJSON: "{}",
	})

	_, err := f.eng.ProcessForSite(context.Background(), "{{point "+pt.Base().ContentID.String()+";}}", nil)
	var ie *content.IntegrityError
	assert.True(t, errors.As(err, &ie))
}

func TestEmailDegradesScripts(t *testing.T) {
	f := newFixture(t)
	ph := common(&content.Photo{}, "A", "2024", "a")
	line := common(&content.Line{}, "Loop", "2024", "loop")
	f.store.Put(ph, line)
	f.pics[ph.Base().ContentID] = asset(ph.Base().ContentID, "a")
	lid := line.Base().ContentID.String()

	out := f.email(t, "[[picturegallery {{photo "+ph.Base().ContentID.String()+";}}]]"+
		"{{lineelevationchart "+lid+";}}{{line "+lid+";}}{{mapcomponent "+uuid.NewString()+";}}")
	assert.Contains(t, out, `<table role="presentation"`)
	assert.Contains(t, out, `src="https://example.test/a--600w--400h.jpg"`)
	assert.Contains(t, out, `<a href="https://example.test/Lines/2024/loop/loop.html">Loop</a>`)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "{{")
}

func TestEmptyInputShortCircuits(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "", f.site(t, "  \n\t"))
}

func TestPipelineOrder(t *testing.T) {
	eng := newFixture(t).eng
	for _, p := range []Pipeline{eng.Site(), eng.Email()} {
		tokens := p.Tokens()
		require.Equal(t, []string{TokenSnippet, GalleryToken}, tokens[:2])
		pos := map[string]int{}
		for i, tok := range tokens {
			if _, seen := pos[tok]; !seen {
				pos[tok] = i
			}
		}
		for from, to := range map[string]string{
			TokenFileImageLink:  TokenFileLink,
			TokenImage:          TokenImageLink,
			TokenLineImageLink:  TokenLineLink,
			TokenPhoto:          TokenPhotoLink,
			TokenPointImageLink: TokenPointLink,
			TokenPostImageLink:  TokenPostLink,
			TokenVideoImageLink: TokenVideoLink,
		} {
			assert.Less(t, pos[from], pos[to], "%s must run before %s", from, to)
		}
	}
}
