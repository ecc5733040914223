// internal/site/builder.go
//
// Static page builder.
//
// Context
// -------
// The generation orchestrator decides *what* to rebuild; Builder knows
// *how* each artifact looks and where it lives.  Every artifact is written
// through view.WriteFile so a crashed run never leaves half a page behind.
//
// Workflow
// --------
//  1. New wires the theme, the bracket-code engine, and the URL builders.
//  2. SetMenu is called once per run before any page is written.
//  3. The orchestrator calls the artifact methods (Item, List, Tag, …)
//     from many goroutines at once.
//
// Notes
// -----
// • A body is processed for bracket codes first, then formatted, so code
//   output (HTML) passes through markdown untouched.
// • Drafts get their own page (the owner previews them) but never appear in
//   lists, feeds, tag pages, or galleries.
package site

import (
	"context"
	"html/template"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/trailhead/internal/bracketcode"
	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/head"
	"github.com/yanizio/trailhead/internal/progress"
	"github.com/yanizio/trailhead/internal/render"
	"github.com/yanizio/trailhead/internal/settings"
	"github.com/yanizio/trailhead/internal/slug"
	"github.com/yanizio/trailhead/internal/view"
)

const (
	defaultLatest    = 20
	defaultFeedItems = 50
	thumbHeight      = 150
)

// Deps are the collaborators of a Builder.
type Deps struct {
	Site      *settings.Site
	Store     content.Reader
	Resolver  bracketcode.Resolver
	Codes     *bracketcode.Engine
	Pictures  render.PictureLocator
	Formatter render.Formatter
	View      *view.Engine
	Progress  progress.Sink
	// Now stamps feeds and the footer year.  Defaults to time.Now.
	Now func() time.Time
}

// Builder writes every site artifact.  Safe for concurrent use once the
// menu is set.
type Builder struct {
	d   Deps
	cfg siteConfig

	mu   sync.RWMutex
	menu []view.MenuItem
}

type siteConfig struct {
	name, summary, author string
	keywords              []string
	excluded              []string
	latest, feedItems     int
	rowHeight             int
}

// New returns a Builder over d.
func New(d Deps) *Builder {
	if d.Now == nil {
		d.Now = time.Now
	}
	d.Progress = progress.Or(d.Progress)
	if d.Formatter == nil {
		d.Formatter = render.NewFormatter()
	}
	c := d.Site.Config()
	b := &Builder{d: d, cfg: siteConfig{
		name:      c.Name,
		summary:   c.Summary,
		author:    c.Author,
		keywords:  slug.Tags(c.Keywords),
		excluded:  c.ExcludedTags,
		latest:    c.LatestCount,
		feedItems: c.FeedItems,
		rowHeight: c.GalleryRowHeight,
	}}
	if b.cfg.latest <= 0 {
		b.cfg.latest = defaultLatest
	}
	if b.cfg.feedItems <= 0 {
		b.cfg.feedItems = defaultFeedItems
	}
	if b.cfg.rowHeight <= 0 {
		b.cfg.rowHeight = 250
	}
	return b
}

// SetMenu resolves the menu links to page URLs.  Links whose content is
// gone are dropped.
func (b *Builder) SetMenu(ctx context.Context, links []content.MenuLink) error {
	sorted := append([]content.MenuLink(nil), links...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MenuOrder < sorted[j].MenuOrder })

	items := make([]view.MenuItem, 0, len(sorted))
	for _, l := range sorted {
		c, err := b.d.Resolver.Any(ctx, l.ContentID)
		if err != nil {
			return err
		}
		if c == nil {
			zap.S().Warnw("menu link target missing", "content_id", l.ContentID)
			continue
		}
		text := strings.TrimSpace(l.LinkTag)
		if text == "" {
			text = c.Base().Title
		}
		items = append(items, view.MenuItem{Text: text, URL: b.d.Site.PageURL(c)})
	}

	b.mu.Lock()
	b.menu = items
	b.mu.Unlock()
	return nil
}

// layout returns the shared page chrome with a fresh head.
func (b *Builder) layout(title, canonical string) view.Layout {
	b.mu.RLock()
	menu := b.menu
	b.mu.RUnlock()

	h := head.New()
	if title == "" || title == b.cfg.name {
		h.SetTitle(b.cfg.name)
	} else {
		h.SetTitle(title + " | " + b.cfg.name)
	}
	h.Canonical(canonical)
	h.Feed(b.cfg.name, b.d.Site.MainRSSURL())
	return view.Layout{
		SiteName:  b.cfg.name,
		IndexURL:  b.d.Site.IndexURL(),
		SearchURL: b.d.Site.SearchURL(),
		Menu:      menu,
		Head:      h,
		Year:      b.d.Now().Year(),
	}
}

/*──────────────────────────── entries ─────────────────────────────────────*/

// Thumb is a small picture shown beside an entry.
type Thumb struct {
	URL           string
	Width, Height int
}

// TagLink is one tag of an entry.
type TagLink struct {
	Name string
	URL  string
}

// Entry is one row of a list, tag, or search page.
type Entry struct {
	Kind    string
	Thumb   *Thumb
	URL     string
	Title   string
	Date    time.Time
	Summary string
	Tags    []TagLink
}

// entries maps recs to list rows, skipping drafts and inlined kinds.
// Order is preserved.
func (b *Builder) entries(ctx context.Context, recs []content.Content) ([]Entry, error) {
	out := make([]Entry, 0, len(recs))
	for _, c := range recs {
		if !listed(c) {
			continue
		}
		e, err := b.entry(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *Builder) entry(ctx context.Context, c content.Content) (Entry, error) {
	base := c.Base()
	e := Entry{
		Kind:    c.Kind().String(),
		URL:     b.d.Site.PageURL(c),
		Title:   base.Title,
		Date:    base.FeedOn,
		Summary: base.Summary,
		Tags:    b.tagLinks(base.Tags),
	}
	asset, err := b.picture(ctx, c)
	if err != nil {
		return Entry{}, err
	}
	if asset != nil {
		if f := asset.SmallestAtLeast(thumbHeight); f != nil {
			e.Thumb = &Thumb{URL: f.URL, Width: f.Width, Height: f.Height}
		}
	}
	return e, nil
}

func (b *Builder) tagLinks(raw string) []TagLink {
	tags := slug.VisibleTags(raw, b.cfg.excluded)
	out := make([]TagLink, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagLink{Name: t, URL: b.d.Site.TagURL(t)})
	}
	return out
}

// picture locates the files of c's main picture, nil when it has none.
func (b *Builder) picture(ctx context.Context, c content.Content) (*render.PictureAsset, error) {
	if b.d.Pictures == nil {
		return nil, nil
	}
	mp := c.Base().MainPicture
	if mp == nil {
		return nil, nil
	}
	pic := c
	if *mp != c.Base().ContentID {
		p, err := b.d.Resolver.Any(ctx, *mp)
		if err != nil || p == nil {
			return nil, err
		}
		pic = p
	}
	return b.d.Pictures.Locate(ctx, pic)
}

// body runs a record body through the site pipeline and the formatter.
func (b *Builder) body(ctx context.Context, c content.Content) (template.HTML, error) {
	base := c.Base()
	processed, err := b.d.Codes.ProcessForSite(ctx, base.BodyContent, b.d.Progress)
	if err != nil {
		return "", err
	}
	if processed == "" {
		return "", nil
	}
	html, err := b.d.Formatter.Render(base.BodyContentFormat, processed)
	if err != nil {
		return "", &content.IntegrityError{ContentID: base.ContentID, Title: base.Title, Reason: err.Error()}
	}
	return template.HTML(html), nil
}

// listed reports whether c belongs on list-style pages.  Links are listed
// with their external URL.
func listed(c content.Content) bool {
	if c.Base().IsDraft {
		return false
	}
	switch c.Kind() {
	case content.KindSnippet, content.KindMapComponent:
		return false
	}
	return true
}
