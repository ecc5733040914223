package site

import (
	"context"
	"sort"

	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/slug"
)

// TagCount is one row of the all-tags page.
type TagCount struct {
	Name  string
	URL   string
	Count int
}

// Tag writes the page listing recs under tag.
func (b *Builder) Tag(ctx context.Context, tag string, recs []content.Content) error {
	entries, err := b.entries(ctx, recs)
	if err != nil {
		return err
	}
	lay := b.layout("Tag: "+tag, b.d.Site.TagURL(tag))
	return b.d.View.Page(b.d.Site.TagFile(tag), "tag", "list",
		ListPage{Title: "Tag: " + tag, Entries: entries}, lay)
}

// AllTags writes the tag index.  counts maps each visible tag to the
// number of listed records carrying it.
func (b *Builder) AllTags(_ context.Context, counts map[string]int) error {
	tags := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		if n == 0 || slug.IsExcluded(t, b.cfg.excluded) {
			continue
		}
		tags = append(tags, TagCount{Name: t, URL: b.d.Site.TagURL(t), Count: n})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	lay := b.layout("Tags", b.d.Site.AllTagsURL())
	return b.d.View.Page(b.d.Site.AllTagsFile(), "tag", "tags",
		struct{ Tags []TagCount }{tags}, lay)
}

// TagIndex groups listed records by visible tag.  Record order within a
// tag follows recs.
func TagIndex(recs []content.Content, excluded []string) map[string][]content.Content {
	out := map[string][]content.Content{}
	for _, c := range recs {
		if !listed(c) {
			continue
		}
		for _, t := range slug.VisibleTags(c.Base().Tags, excluded) {
			out[t] = append(out[t], c)
		}
	}
	return out
}
