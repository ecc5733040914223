// internal/generation/pages.go
//
// Tag and daily photo pages.
//
// Context
// -------
// These pages are keyed by a tag or a day rather than a record, so they
// are not covered by the changed-id set alone.  Their previous membership
// comes from the tag log and the daily photo log written at the end of
// the last run.
//
// Workflow
// --------
//  1. Rebuild current membership from the live records.
//  2. A page is stale when its membership moved or a member changed.
//  3. Vanished tags and days are rewritten empty; days that appear or
//     vanish also dirty their neighbours.
//
// Notes
// -----
//   - In Full mode every page is stale.

package generation

import (
	"context"
	"fmt"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/site"
	"github.com/yanizio/trailhead/internal/slug"
)

var (
	tagIndex    = site.TagIndex
	dailyGroups = site.DailyGroups
	tagSlug     = slug.TagSlug
)

// memberIDs is the id set of recs.
func memberIDs(recs []content.Content) mapset.Set[content.ID] {
	s := mapset.NewThreadUnsafeSetWithSize[content.ID](len(recs))
	for _, c := range recs {
		s.Add(c.Base().ContentID)
	}
	return s
}

// stale reports whether a list page with members cur needs rewriting:
// its membership differs from prev or a member changed.
func (r *run) stale(cur mapset.Set[content.ID], prev mapset.Set[content.ID]) bool {
	if r.mode == Full || prev == nil || !cur.Equal(prev) {
		return true
	}
	return r.changed.ContainsAny(cur.ToSlice()...)
}

// tagPages queues the tag pages that need rewriting on g.  It reports
// whether the all-tags page is stale too.
func (r *run) tagPages(ctx context.Context, g *errgroup.Group) (bool, error) {
	prev := map[string]mapset.Set[content.ID]{}
	if r.mode == Incremental {
		rows, err := r.o.Store.TagLog(ctx, r.last.Version)
		if err != nil {
			return false, fmt.Errorf("tag log: %w", err)
		}
		for _, row := range rows {
			if prev[row.TagSlug] == nil {
				prev[row.TagSlug] = mapset.NewThreadUnsafeSet[content.ID]()
			}
			prev[row.TagSlug].Add(row.ContentID)
		}
	}

	dirty := r.mode == Full
	current := map[string]bool{}
	for _, t := range sortedKeys(r.tags) {
		recs := r.tags[t]
		s := tagSlug(t)
		current[s] = true
		if !r.stale(memberIDs(recs), prev[s]) {
			continue
		}
		dirty = true
		g.Go(func() error { return r.o.Pages.Tag(ctx, t, recs) })
	}
	// Tags nobody carries any more keep a page, emptied.
	for s := range prev {
		if !current[s] {
			dirty = true
			g.Go(func() error { return r.o.Pages.Tag(ctx, s, nil) })
		}
	}
	return dirty, nil
}

// dailyPages rewrites the daily photo galleries whose members changed,
// plus the neighbours of days that appeared or vanished (their previous
// and next links move).
func (r *run) dailyPages(ctx context.Context) error {
	prev := map[time.Time]mapset.Set[content.ID]{}
	if r.mode == Incremental {
		rows, err := r.o.Store.DailyPhotoLog(ctx, r.last.Version)
		if err != nil {
			return fmt.Errorf("daily photo log: %w", err)
		}
		for _, row := range rows {
			d := row.DailyPhotoDate.UTC()
			if prev[d] == nil {
				prev[d] = mapset.NewThreadUnsafeSet[content.ID]()
			}
			prev[d].Add(row.ContentID)
		}
	}

	days := sortedDays(r.daily)
	dirty := mapset.NewThreadUnsafeSet[time.Time]()
	for _, d := range days {
		if r.stale(memberIDs(r.daily[d]), prev[d]) {
			dirty.Add(d)
			if prev[d] == nil {
				dirty.Append(adjacent(days, d)...)
			}
		}
	}
	for d := range prev {
		if _, ok := r.daily[d]; !ok {
			dirty.Add(d)
			dirty.Append(adjacent(days, d)...)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.o.concurrency())
	for _, d := range dirty.ToSlice() {
		var before, after *time.Time
		if n := adjacent(days, d); len(n) > 0 {
			for _, x := range n {
				if x.Before(d) {
					before = &x
				} else {
					after = &x
				}
			}
		}
		g.Go(func() error { return r.o.Pages.DailyPhotos(ctx, d, r.daily[d], before, after) })
	}
	return g.Wait()
}

// adjacent returns the days right before and after d in sorted days,
// ignoring d itself.
func adjacent(days []time.Time, d time.Time) []time.Time {
	i := sort.Search(len(days), func(i int) bool { return !days[i].Before(d) })
	var out []time.Time
	if i > 0 {
		out = append(out, days[i-1])
	}
	if i < len(days) && days[i].Equal(d) {
		i++
	}
	if i < len(days) {
		out = append(out, days[i])
	}
	return out
}

func sortedDays(m map[time.Time][]content.Content) []time.Time {
	out := make([]time.Time, 0, len(m))
	for d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
