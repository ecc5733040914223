package site

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yanizio/trailhead/internal/bracketcode"
	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/progress"
	"github.com/yanizio/trailhead/internal/settings"
	"github.com/yanizio/trailhead/internal/view"
)

// Fact is one labelled value on an item page.
type Fact struct {
	Label string
	Value string
	URL   string
}

// DetailView is one point detail on a point page.
type DetailView struct {
	Type  string
	Notes template.HTML
}

// ItemPage is the data of item.html.
type ItemPage struct {
	Kind      string
	Title     string
	FeedOn    time.Time
	UpdatedOn *time.Time
	Summary   string
	Lead      template.HTML
	Facts     []Fact
	Details   []DetailView
	Body      template.HTML
	Tags      []TagLink
}

// Item writes everything one record contributes on its own: its page and,
// for map kinds, its data file.  Snippets and links have no artifacts.
func (b *Builder) Item(ctx context.Context, c content.Content) error {
	switch c.Kind() {
	case content.KindSnippet, content.KindLink:
		return nil
	case content.KindMapComponent:
		return b.mapData(ctx, c.(*content.MapComponent))
	case content.KindLine:
		if err := b.geoData(c, c.(*content.Line).GeoJSON); err != nil {
			return err
		}
	case content.KindGeoJSON:
		if err := b.geoData(c, c.(*content.GeoJSON).GeoJSON); err != nil {
			return err
		}
	}
	return b.page(ctx, c)
}

func (b *Builder) page(ctx context.Context, c content.Content) error {
	base := c.Base()
	progress.Reportf(b.d.Progress, "%s page %s", c.Kind(), base.Title)

	codes, err := b.leadCodes(ctx, c)
	if err != nil {
		return err
	}
	lead, err := b.d.Codes.ProcessForSite(ctx, codes, b.d.Progress)
	if err != nil {
		return fmt.Errorf("%s lead: %w", base.ContentID, err)
	}
	body, err := b.body(ctx, c)
	if err != nil {
		return fmt.Errorf("%s body: %w", base.ContentID, err)
	}
	facts, err := b.facts(ctx, c)
	if err != nil {
		return err
	}
	data := ItemPage{
		Kind:      c.Kind().String(),
		Title:     base.Title,
		FeedOn:    base.FeedOn,
		UpdatedOn: base.LastUpdatedOn,
		Summary:   base.Summary,
		Lead:      template.HTML(lead),
		Facts:     facts,
		Body:      body,
		Tags:      b.tagLinks(base.Tags),
	}
	if p, ok := c.(*content.Point); ok {
		if data.Details, err = b.details(ctx, p); err != nil {
			return err
		}
	}

	lay := b.layout(base.Title, b.d.Site.PageURL(c))
	if err := b.describe(ctx, lay, c); err != nil {
		return err
	}
	return b.d.View.Page(b.d.Site.PageFile(c), c.Kind().String(), "item", data, lay)
}

// describe fills the head with the record's metadata.
func (b *Builder) describe(ctx context.Context, lay view.Layout, c content.Content) error {
	base := c.Base()
	url := b.d.Site.PageURL(c)
	lay.Head.Description(base.Summary)

	var tags []string
	for _, t := range b.tagLinks(base.Tags) {
		tags = append(tags, t.Name)
	}
	lay.Head.Keywords(tags)

	image := ""
	asset, err := b.picture(ctx, c)
	if err != nil {
		return err
	}
	if asset != nil {
		image = asset.Src()
	}
	lay.Head.OpenGraph(base.Title, url, base.Summary, image)

	author := base.CreatedBy
	if author == "" {
		author = b.cfg.author
	}
	ld := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "Article",
		"headline":      base.Title,
		"url":           url,
		"datePublished": base.FeedOn.UTC().Format(time.RFC3339),
	}
	if author != "" {
		ld["author"] = map[string]string{"@type": "Person", "name": author}
	}
	if image != "" {
		ld["image"] = image
	}
	return lay.Head.JSONLD(ld)
}

// leadCodes is the bracket-code markup placed above a record's body.
func (b *Builder) leadCodes(ctx context.Context, c content.Content) (string, error) {
	id := c.Base().ContentID
	code := func(token string, id content.ID) string { return "{{" + token + " " + id.String() + ";}}" }

	switch r := c.(type) {
	case *content.Photo:
		return code(bracketcode.TokenPhoto, id), nil
	case *content.Image:
		return code(bracketcode.TokenImage, id), nil
	case *content.Line:
		return code(bracketcode.TokenLine, id) + code(bracketcode.TokenLineElevationChart, id), nil
	case *content.GeoJSON:
		return code(bracketcode.TokenGeoJSON, id), nil
	case *content.Point:
		return code(bracketcode.TokenPoint, id), nil
	case *content.Video:
		return code(bracketcode.TokenVideoEmbed, id), nil
	case *content.File:
		return code(bracketcode.TokenFileEmbed, id), nil
	case *content.Trail:
		if r.LineContentID == nil {
			return "", nil
		}
		return code(bracketcode.TokenLine, *r.LineContentID) + code(bracketcode.TokenLineElevationChart, *r.LineContentID), nil
	case *content.Post:
		if r.MainPicture == nil {
			return "", nil
		}
		pic, err := b.d.Resolver.Any(ctx, *r.MainPicture)
		if err != nil || pic == nil {
			return "", err
		}
		switch pic.Kind() {
		case content.KindPhoto, content.KindImage:
			return bracketcode.Create(pic), nil
		}
	}
	return "", nil
}

// facts lists the kind-specific fields shown beside the lead.
func (b *Builder) facts(ctx context.Context, c content.Content) ([]Fact, error) {
	var out []Fact
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			out = append(out, Fact{Label: label, Value: value})
		}
	}

	switch r := c.(type) {
	case *content.Photo:
		add("Camera", r.Camera)
		add("Lens", r.Lens)
		add("Aperture", r.Aperture)
		add("Shutter speed", r.ShutterSpeed)
		if r.Iso > 0 {
			add("ISO", strconv.Itoa(r.Iso))
		}
		add("Focal length", r.FocalLength)
		if !r.PhotoCreatedOn.IsZero() {
			add("Taken", r.PhotoCreatedOn.Format("January 2, 2006 3:04 PM"))
		}
		add("By", r.PhotoCreatedBy)
		add("License", r.License)
		if r.ShowPosition && r.Latitude != nil && r.Longitude != nil {
			out = append(out, Fact{
				Label: "Position",
				Value: fmt.Sprintf("%.5f, %.5f", *r.Latitude, *r.Longitude),
				URL:   settings.GoogleMapsURL(*r.Latitude, *r.Longitude),
			})
		}
	case *content.Line:
		add("Stats", bracketcode.LineStats(r, ""))
		if r.RecordingStartedOn != nil {
			add("Recorded", r.RecordingStartedOn.Format("January 2, 2006"))
		}
	case *content.Point:
		add("Coordinates", fmt.Sprintf("%.5f, %.5f", r.Latitude, r.Longitude))
		if r.Elevation != nil {
			add("Elevation", bracketcode.FormatElevation(*r.Elevation)+"'")
		}
		out = append(out, Fact{Label: "Directions", Value: "Google Maps", URL: settings.GoogleMapsURL(r.Latitude, r.Longitude)})
	case *content.Trail:
		if r.LineContentID != nil {
			l, err := b.d.Resolver.One(ctx, content.KindLine, *r.LineContentID)
			if err != nil {
				return nil, err
			}
			if l != nil {
				add("Stats", bracketcode.LineStats(l.(*content.Line), ""))
			}
		}
		for _, end := range []struct {
			label string
			id    *content.ID
		}{{"Start", r.StartingPoint}, {"End", r.EndingPoint}} {
			if end.id == nil {
				continue
			}
			p, err := b.d.Resolver.One(ctx, content.KindPoint, *end.id)
			if err != nil {
				return nil, err
			}
			if p != nil {
				out = append(out, Fact{Label: end.label, Value: p.Base().Title, URL: b.d.Site.PageURL(p)})
			}
		}
		add("Shape", r.TrailShapeName)
		add("Area", r.LocationArea)
		add("Fees", r.Fees)
		add("Dogs", r.Dogs)
		add("Bikes", r.Bikes)
	case *content.Video:
		add("By", r.VideoCreatedBy)
		if !r.VideoCreatedOn.IsZero() {
			add("Recorded", r.VideoCreatedOn.Format("January 2, 2006"))
		}
		add("License", r.License)
		out = append(out, Fact{Label: "Download", Value: r.OriginalFileName, URL: b.d.Site.DownloadURL(c)})
	case *content.File:
		if r.PublicDownloadLink {
			out = append(out, Fact{Label: "Download", Value: r.OriginalFileName, URL: b.d.Site.DownloadURL(c)})
		}
	}
	return out, nil
}

// details renders a point's detail rows.
func (b *Builder) details(ctx context.Context, p *content.Point) ([]DetailView, error) {
	pd, err := b.d.Resolver.Point(ctx, p.ContentID)
	if err != nil {
		return nil, err
	}
	if pd == nil {
		return nil, nil
	}
	out := make([]DetailView, 0, len(pd.Details))
	for _, d := range pd.Details {
		notes, format := detailNotes(d)
		v := DetailView{Type: d.DataTypeIdentifier()}
		if notes != "" {
			html, err := b.d.Formatter.Render(format, notes)
			if err != nil {
				return nil, &content.IntegrityError{ContentID: p.ContentID, Title: p.Title, Reason: err.Error()}
			}
			v.Notes = template.HTML(html)
		}
		out = append(out, v)
	}
	return out, nil
}

func detailNotes(d content.Detail) (notes, format string) {
	switch v := d.(type) {
	case *content.Campground:
		return v.Notes, v.NotesFormat
	case *content.Feature:
		return v.Notes, ""
	case *content.Fee:
		return v.Notes, ""
	case *content.Parking:
		return v.Notes, ""
	case *content.Peak:
		return v.Notes, ""
	case *content.Restroom:
		return v.Notes, ""
	case *content.TrailJunction:
		return v.Notes, ""
	}
	return "", ""
}

// Remove deletes the artifacts of a record that no longer exists.  c is
// its last archived version.
func (b *Builder) Remove(_ context.Context, c content.Content) error {
	var paths []string
	switch c.Kind() {
	case content.KindSnippet, content.KindLink:
		return nil
	case content.KindMapComponent:
		paths = []string{b.d.Site.DataFile(c)}
	case content.KindNote:
		paths = []string{b.d.Site.PageFile(c)}
	case content.KindLine, content.KindGeoJSON:
		paths = []string{b.d.Site.DataFile(c), b.d.Site.AssetDir(c)}
	default:
		paths = []string{b.d.Site.AssetDir(c)}
	}
	for _, p := range paths {
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	progress.Reportf(b.d.Progress, "removed %s %s", c.Kind(), c.Base().Title)
	return nil
}
