// internal/bracketcode/renderers.go
//
// Per-kind renderers used by the pipeline stages.
//
// Context
// -------
// A renderer turns one resolved record plus its Match into the text that
// replaces the code.  Links, pictures, galleries, stats, maps, and embeds
// each get a small function; pipeline.go decides which token uses which.
//
// Workflow
// --------
//  1. The stage resolves the code's id(s) and hands the record over.
//  2. The renderer reads URLs, Pictures, or Resolver from the engine's
//     dependencies and returns HTML.
//  3. Returning m.RawText leaves the code in place.
//
// Notes
// -----
//   • Display text and titles go through render helpers, which escape.
//   • LineStats returns plain text.  Stats codes escape the author's
//     template first (statsHTML).
//   • Element ids come from elementID so repeated maps on one page do not
//     collide.

package bracketcode

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/render"
	"github.com/yanizio/trailhead/internal/settings"
)

//
// Links
//

func (e *Engine) pageLink(_ context.Context, c content.Content, m Match) (string, error) {
	return render.Anchor(e.d.URLs.PageURL(c), orDefault(m.DisplayText, c.Base().Title)), nil
}

func (e *Engine) downloadLink(_ context.Context, c content.Content, m Match) (string, error) {
	return render.Anchor(e.d.URLs.DownloadURL(c), orDefault(m.DisplayText, c.Base().Title)), nil
}

func (e *Engine) externalLink(_ context.Context, c content.Content, m Match) (string, error) {
	l := c.(*content.Link)
	return render.ExternalAnchor(l.URL, orDefault(m.DisplayText, l.Title)), nil
}

func (e *Engine) directionsLink(_ context.Context, c content.Content, m Match) (string, error) {
	p := c.(*content.Point)
	return render.ExternalAnchor(settings.GoogleMapsURL(p.Latitude, p.Longitude), orDefault(m.DisplayText, "Google Maps")), nil
}

//
// Pictures
//

// picture locates the files of c's main picture.  Photos and images are
// their own picture.
func (e *Engine) picture(ctx context.Context, c content.Content) (*render.PictureAsset, error) {
	if e.d.Pictures == nil {
		return nil, nil
	}
	pic := c
	switch c.Kind() {
	case content.KindPhoto, content.KindImage:
	default:
		mp := c.Base().MainPicture
		if mp == nil {
			return nil, nil
		}
		p, err := e.d.Resolver.Any(ctx, *mp)
		if err != nil || p == nil {
			return nil, err
		}
		pic = p
	}
	return e.d.Pictures.Locate(ctx, pic)
}

func (e *Engine) figure(class string) renderFunc {
	return func(ctx context.Context, c content.Content, m Match) (string, error) {
		asset, err := e.picture(ctx, c)
		if err != nil || asset == nil {
			return "", err
		}
		return render.Figure(asset, e.d.URLs.PageURL(c), orDefault(m.DisplayText, c.Base().Title), class), nil
	}
}

func (e *Engine) emailImage(ctx context.Context, c content.Content, m Match) (string, error) {
	asset, err := e.picture(ctx, c)
	if err != nil || asset == nil {
		return "", err
	}
	return render.EmailImage(asset, e.d.URLs.PageURL(c), orDefault(m.DisplayText, c.Base().Title), e.d.EmailImageWidth), nil
}

// gallery renders a justified grid of every record in ids that has a
// picture.  Empty when none has.
func (e *Engine) gallery(ctx context.Context, ids []content.ID) (string, error) {
	recs, err := e.d.Resolver.AnyOf(ctx, ids)
	if err != nil {
		return "", err
	}
	elementID := "gallery-" + e.d.NewID().String()

	var items strings.Builder
	for _, c := range recs {
		asset, err := e.picture(ctx, c)
		if err != nil {
			return "", err
		}
		if asset == nil {
			continue
		}
		f := asset.SmallestAtLeast(e.d.GalleryRowHeight)
		if f == nil {
			f = asset.Display
		}
		if f == nil {
			continue
		}
		items.WriteString(`<a class="gallery-item" href="` + render.Escape(e.d.URLs.PageURL(c)) + `">`)
		items.WriteString(`<img src="` + render.Escape(f.URL) + `"`)
		if f.Width > 0 && f.Height > 0 {
			items.WriteString(` width="` + strconv.Itoa(f.Width) + `" height="` + strconv.Itoa(f.Height) + `"`)
		}
		items.WriteString(` alt="` + render.Escape(asset.AltText) + `" loading="lazy"></a>`)
	}
	if items.Len() == 0 {
		return "", nil
	}
	return `<div class="flex-gallery" id="` + elementID + `">` + items.String() + `</div>` +
		render.Script(fmt.Sprintf("justifiedGallery(%s, %d);", render.JSString(elementID), e.d.GalleryRowHeight)), nil
}

//
// Stats
//

// DefaultLineStats is used when a stats code has no display text.
const DefaultLineStats = "[distance] Miles, [climb]' Climb, [maxelevation]' Max Elevation"

// FormatDistance rounds to one decimal.
func FormatDistance(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}

// FormatElevation rounds to a whole number.
func FormatElevation(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}

// LineStats fills the placeholders of tmpl from l.  The result is plain
// text.
func LineStats(l *content.Line, tmpl string) string {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultLineStats
	}
	return strings.NewReplacer(
		"[distance]", FormatDistance(l.LineDistance),
		"[climb]", FormatElevation(l.ClimbElevation),
		"[descent]", FormatElevation(l.DescentElevation),
		"[maxelevation]", FormatElevation(l.MaxElevation),
		"[minelevation]", FormatElevation(l.MinElevation),
	).Replace(tmpl)
}

// statsHTML fills an author's template for page output.  The template is
// escaped before the placeholders are filled.
func statsHTML(l *content.Line, m Match) string {
	return LineStats(l, render.Escape(m.DisplayText))
}

func (e *Engine) lineStats(_ context.Context, c content.Content, m Match) (string, error) {
	return statsHTML(c.(*content.Line), m), nil
}

// trailStats reads the statistics of the trail's line.  A trail without a
// line keeps its code.
func (e *Engine) trailStats(ctx context.Context, c content.Content, m Match) (string, error) {
	t := c.(*content.Trail)
	if t.LineContentID == nil {
		return m.RawText, nil
	}
	l, err := e.d.Resolver.One(ctx, content.KindLine, *t.LineContentID)
	if err != nil {
		return "", err
	}
	if l == nil {
		return m.RawText, nil
	}
	return statsHTML(l.(*content.Line), m), nil
}

//
// Maps and embeds
//

func (e *Engine) elementID(prefix string) string {
	return prefix + "-" + e.d.NewID().String()
}

// dataMap renders a map placeholder that loads the record's data file.
func (e *Engine) dataMap(initFn, class string) renderFunc {
	return func(_ context.Context, c content.Content, _ Match) (string, error) {
		id := e.elementID(class)
		return render.Div(id, class) + render.Script(fmt.Sprintf("%s(document.getElementById(%s), %s);",
			initFn, render.JSString(id), render.JSString(e.d.URLs.DataURL(c)))), nil
	}
}

type pointMapData struct {
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
	MapLabel  string   `json:"mapLabel,omitempty"`
	Details   []string `json:"details,omitempty"`
}

func (e *Engine) pointMap(ctx context.Context, c content.Content, _ Match) (string, error) {
	p, err := e.d.Resolver.Point(ctx, c.Base().ContentID)
	if err != nil {
		return "", err
	}
	if p == nil {
		p = &content.PointWithDetails{Point: c.(*content.Point)}
	}
	data := pointMapData{
		Title:     p.Title,
		URL:       e.d.URLs.PageURL(p.Point),
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Elevation: p.Elevation,
		MapLabel:  p.MapLabel,
	}
	for _, d := range p.Details {
		data.Details = append(data.Details, d.DataTypeIdentifier())
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	id := e.elementID("point-map")
	return render.Div(id, "point-map") + render.Script(fmt.Sprintf("singlePointMapInit(document.getElementById(%s), %s);",
		render.JSString(id), raw)), nil
}

func (e *Engine) fileEmbed(ctx context.Context, c content.Content, m Match) (string, error) {
	f := c.(*content.File)
	if f.EmbedFile && strings.EqualFold(path.Ext(f.OriginalFileName), ".pdf") {
		src := render.Escape(e.d.URLs.DownloadURL(c))
		return `<embed class="file-embed" src="` + src + `" type="application/pdf" width="100%" height="600">`, nil
	}
	if f.PublicDownloadLink {
		return e.downloadLink(ctx, c, m)
	}
	return e.pageLink(ctx, c, m)
}

func (e *Engine) videoEmbed(ctx context.Context, c content.Content, _ Match) (string, error) {
	var b strings.Builder
	b.WriteString(`<video class="video-embed" controls preload="metadata"`)
	asset, err := e.picture(ctx, c)
	if err != nil {
		return "", err
	}
	if asset != nil && asset.Src() != "" {
		b.WriteString(` poster="` + render.Escape(asset.Src()) + `"`)
	}
	b.WriteString(`><source src="` + render.Escape(e.d.URLs.DownloadURL(c)) + `"></video>`)
	return b.String(), nil
}

func (e *Engine) snippetBody(_ context.Context, c content.Content, _ Match) (string, error) {
	return c.Base().BodyContent, nil
}

// fileEmbedLink is the email form of fileembed.
func (e *Engine) fileEmbedLink(ctx context.Context, c content.Content, m Match) (string, error) {
	if c.(*content.File).PublicDownloadLink {
		return e.downloadLink(ctx, c, m)
	}
	return e.pageLink(ctx, c, m)
}
