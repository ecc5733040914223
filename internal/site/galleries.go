package site

import (
	"context"
	"sort"
	"time"

	"github.com/yanizio/trailhead/internal/content"
)

// GalleryItem is one thumbnail of a gallery page.
type GalleryItem struct {
	URL           string
	Src           string
	Width, Height int
	Alt           string
}

// GalleryGroup is a headed run of thumbnails.
type GalleryGroup struct {
	Heading string
	Items   []GalleryItem
}

// GalleryPage is the data of gallery.html.
type GalleryPage struct {
	Title     string
	Groups    []GalleryGroup
	Previous  string
	Next      string
	RowHeight int
}

// PhotoDay is the calendar day a photo belongs to on daily pages.
func PhotoDay(p *content.Photo) time.Time {
	t := p.PhotoCreatedOn
	if t.IsZero() {
		t = p.FeedOn
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyGroups buckets listed photos by PhotoDay.  Photos inside a day are
// ordered by capture time.
func DailyGroups(recs []content.Content) map[time.Time][]content.Content {
	out := map[time.Time][]content.Content{}
	for _, c := range recs {
		p, ok := c.(*content.Photo)
		if !ok || !listed(c) {
			continue
		}
		d := PhotoDay(p)
		out[d] = append(out[d], c)
	}
	for _, photos := range out {
		sort.SliceStable(photos, func(i, j int) bool {
			return photos[i].(*content.Photo).PhotoCreatedOn.Before(photos[j].(*content.Photo).PhotoCreatedOn)
		})
	}
	return out
}

// DailyPhotos writes the gallery of one day.  prev and next link the
// neighbouring days that have photos; nil when there is none.
func (b *Builder) DailyPhotos(ctx context.Context, day time.Time, photos []content.Content, prev, next *time.Time) error {
	items, err := b.galleryItems(ctx, photos)
	if err != nil {
		return err
	}
	title := "Photos - " + day.Format("Monday, January 2, 2006")
	page := GalleryPage{
		Title:     title,
		Groups:    []GalleryGroup{{Items: items}},
		RowHeight: b.cfg.rowHeight,
	}
	if prev != nil {
		page.Previous = b.d.Site.DailyPhotoURL(*prev)
	}
	if next != nil {
		page.Next = b.d.Site.DailyPhotoURL(*next)
	}
	lay := b.layout(title, b.d.Site.DailyPhotoURL(day))
	return b.d.View.Page(b.d.Site.DailyPhotoFile(day), "gallery", "gallery", page, lay)
}

// CameraRoll writes every listed photo grouped by month, newest first.
func (b *Builder) CameraRoll(ctx context.Context, photos []content.Content) error {
	days := DailyGroups(photos)
	keys := make([]time.Time, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].After(keys[j]) })

	var groups []GalleryGroup
	for _, d := range keys {
		items, err := b.galleryItems(ctx, days[d])
		if err != nil {
			return err
		}
		if len(items) == 0 {
			continue
		}
		heading := d.Format("January 2006")
		if n := len(groups); n > 0 && groups[n-1].Heading == heading {
			groups[n-1].Items = append(groups[n-1].Items, items...)
			continue
		}
		groups = append(groups, GalleryGroup{Heading: heading, Items: items})
	}

	lay := b.layout("Camera Roll", b.d.Site.CameraRollURL())
	return b.d.View.Page(b.d.Site.CameraRollFile(), "gallery", "gallery",
		GalleryPage{Title: "Camera Roll", Groups: groups, RowHeight: b.cfg.rowHeight}, lay)
}

func (b *Builder) galleryItems(ctx context.Context, recs []content.Content) ([]GalleryItem, error) {
	out := make([]GalleryItem, 0, len(recs))
	for _, c := range recs {
		asset, err := b.picture(ctx, c)
		if err != nil {
			return nil, err
		}
		if asset == nil {
			continue
		}
		f := asset.SmallestAtLeast(b.cfg.rowHeight)
		if f == nil {
			f = asset.Display
		}
		if f == nil {
			continue
		}
		out = append(out, GalleryItem{
			URL:    b.d.Site.PageURL(c),
			Src:    f.URL,
			Width:  f.Width,
			Height: f.Height,
			Alt:    asset.AltText,
		})
	}
	return out, nil
}
