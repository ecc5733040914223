package site

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gorilla/feeds"

	"github.com/yanizio/trailhead/internal/bracketcode"
	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/settings"
	"github.com/yanizio/trailhead/internal/view"
)

// ListPage is the data of list.html.
type ListPage struct {
	Title   string
	RSSURL  string
	Entries []Entry
}

// List writes the list page and RSS feed of kind k.  recs are every live
// record of that kind, newest first.
func (b *Builder) List(ctx context.Context, k content.Kind, recs []content.Content) error {
	entries, err := b.entries(ctx, recs)
	if err != nil {
		return err
	}
	title := settings.Dir(k)
	lay := b.layout(title, b.d.Site.ListURL(k))
	lay.Head.Feed(b.cfg.name+" "+title, b.d.Site.RSSURL(k))
	if err := b.d.View.Page(b.d.Site.ListFile(k), "list", "list",
		ListPage{Title: title, RSSURL: b.d.Site.RSSURL(k), Entries: entries}, lay); err != nil {
		return err
	}
	return b.feed(b.d.Site.RSSFile(k), b.cfg.name+" "+title, b.d.Site.ListURL(k), recs)
}

// MainFeed writes the site wide feed of records flagged for it.
func (b *Builder) MainFeed(_ context.Context, recs []content.Content) error {
	var shown []content.Content
	for _, c := range recs {
		if c.Base().ShowInMainSiteFeed {
			shown = append(shown, c)
		}
	}
	return b.feed(b.d.Site.MainRSSFile(), b.cfg.name, b.d.Site.IndexURL(), shown)
}

// feed renders recs as RSS 2.0 with gorilla/feeds.
func (b *Builder) feed(path, title, link string, recs []content.Content) error {
	f := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: b.cfg.summary,
		Created:     b.d.Now().UTC(),
	}
	if b.cfg.author != "" {
		f.Author = &feeds.Author{Name: b.cfg.author}
	}
	for _, c := range recs {
		if len(f.Items) == b.cfg.feedItems {
			break
		}
		if !listed(c) {
			continue
		}
		base := c.Base()
		item := &feeds.Item{
			Title:       base.Title,
			Link:        &feeds.Link{Href: b.d.Site.PageURL(c)},
			Description: base.Summary,
			Id:          base.ContentID.String(),
			Created:     base.FeedOn.UTC(),
		}
		if base.LastUpdatedOn != nil {
			item.Updated = base.LastUpdatedOn.UTC()
		}
		if base.CreatedBy != "" {
			item.Author = &feeds.Author{Name: base.CreatedBy}
		}
		f.Items = append(f.Items, item)
	}
	rss, err := f.ToRss()
	if err != nil {
		return fmt.Errorf("rss %s: %w", path, err)
	}
	return view.WriteFile(path, "rss", []byte(rss))
}

// Latest writes the latest content page.
func (b *Builder) Latest(ctx context.Context, recs []content.Content) error {
	entries, err := b.entries(ctx, recs)
	if err != nil {
		return err
	}
	if len(entries) > b.cfg.latest {
		entries = entries[:b.cfg.latest]
	}
	lay := b.layout("Latest", b.d.Site.LatestContentURL())
	return b.d.View.Page(b.d.Site.LatestContentFile(), "list", "list",
		ListPage{Title: "Latest", RSSURL: b.d.Site.MainRSSURL(), Entries: entries}, lay)
}

// Search writes the site wide search page over every listed record.
func (b *Builder) Search(ctx context.Context, recs []content.Content) error {
	entries, err := b.entries(ctx, recs)
	if err != nil {
		return err
	}
	lay := b.layout("Search", b.d.Site.SearchURL())
	return b.d.View.Page(b.d.Site.SearchFile(), "search", "search",
		struct{ Entries []Entry }{entries}, lay)
}

// ActivityMonth is one month on the activity page.
type ActivityMonth struct {
	Label   string
	Count   int
	Miles   string
	Entries []Entry
}

// Activity writes the monthly activity page: listed records grouped by
// the month of FeedOn, newest month first, with recorded line miles.
func (b *Builder) Activity(ctx context.Context, recs []content.Content) error {
	type bucket struct {
		start time.Time
		miles float64
		recs  []content.Content
	}
	byMonth := map[time.Time]*bucket{}
	for _, c := range recs {
		if !listed(c) {
			continue
		}
		t := c.Base().FeedOn
		start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		bk := byMonth[start]
		if bk == nil {
			bk = &bucket{start: start}
			byMonth[start] = bk
		}
		bk.recs = append(bk.recs, c)
		if l, ok := c.(*content.Line); ok {
			bk.miles += l.LineDistance
		}
	}
	buckets := make([]*bucket, 0, len(byMonth))
	for _, bk := range byMonth {
		buckets = append(buckets, bk)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].start.After(buckets[j].start) })

	months := make([]ActivityMonth, 0, len(buckets))
	for _, bk := range buckets {
		entries, err := b.entries(ctx, bk.recs)
		if err != nil {
			return err
		}
		m := ActivityMonth{Label: bk.start.Format("January 2006"), Count: len(entries), Entries: entries}
		if bk.miles > 0 {
			m.Miles = bracketcode.FormatDistance(bk.miles)
		}
		months = append(months, m)
	}
	lay := b.layout("Monthly Activity", b.d.Site.MonthlyActivityURL())
	return b.d.View.Page(b.d.Site.MonthlyActivityFile(), "activity", "activity",
		struct {
			Title  string
			Months []ActivityMonth
		}{"Monthly Activity", months}, lay)
}

// Index writes the home page.
func (b *Builder) Index(ctx context.Context, recs []content.Content) error {
	var shown []content.Content
	for _, c := range recs {
		if c.Base().ShowInMainSiteFeed && listed(c) {
			shown = append(shown, c)
			if len(shown) == b.cfg.latest {
				break
			}
		}
	}
	entries, err := b.entries(ctx, shown)
	if err != nil {
		return err
	}
	lay := b.layout(b.cfg.name, b.d.Site.IndexURL())
	lay.Head.Description(b.cfg.summary)
	lay.Head.Keywords(b.cfg.keywords)
	return b.d.View.Page(b.d.Site.IndexFile(), "index", "index", struct {
		Summary   string
		Entries   []Entry
		LatestURL string
		RSSURL    string
	}{b.cfg.summary, entries, b.d.Site.LatestContentURL(), b.d.Site.MainRSSURL()}, lay)
}

// Error writes the not-found page.
func (b *Builder) Error(context.Context) error {
	lay := b.layout("Not found", b.d.Site.ErrorURL())
	return b.d.View.Page(b.d.Site.ErrorFile(), "error", "error", struct {
		SearchURL string
		IndexURL  string
	}{b.d.Site.SearchURL(), b.d.Site.IndexURL()}, lay)
}
