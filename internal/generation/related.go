// internal/generation/related.go
//
// Related-content graph and change-set closure.
//
// Context
// -------
// An edge (one, two) says record one references record two.  The graph is
// rebuilt every run from current references and compared with the graph
// stored at the last generation.
//
// Workflow
// --------
//  1. References / Edges list what each record points at.
//  2. GraphDiff marks both endpoints of every added or removed edge.
//  3. Closure grows the seed: referrers transitively, targets of the seed
//     by one hop.
//
// Notes
// -----
//   - Closure walks current and previous edges together so a removed
//     reference still rebuilds the page that used to show it.
//   - Ids are expanded in sorted batches of id_batch_size.

package generation

import (
	"bytes"
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/yanizio/trailhead/internal/bracketcode"
	"github.com/yanizio/trailhead/internal/content"
)

// References lists every id c points at: bracket codes in its body, its
// main picture, and the kind-specific links (a trail's line and end
// points, a map's elements).  Self references are dropped.
func References(c content.Content) []content.ID {
	base := c.Base()
	seen := mapset.NewThreadUnsafeSet[content.ID](base.ContentID)
	var out []content.ID
	add := func(id content.ID) {
		if seen.Add(id) {
			out = append(out, id)
		}
	}

	for _, id := range bracketcode.ContentIDs(base.BodyContent) {
		add(id)
	}
	if base.MainPicture != nil {
		add(*base.MainPicture)
	}
	switch r := c.(type) {
	case *content.Trail:
		for _, id := range []*content.ID{r.LineContentID, r.StartingPoint, r.EndingPoint} {
			if id != nil {
				add(*id)
			}
		}
	case *content.MapComponent:
		for _, el := range r.Elements {
			add(el.ElementContentID)
		}
	}
	return out
}

// Edges builds the related-content graph of recs for version v.
func Edges(recs []content.Content, v time.Time) []content.RelatedContent {
	var out []content.RelatedContent
	for _, c := range recs {
		for _, ref := range References(c) {
			out = append(out, content.RelatedContent{ContentOne: c.Base().ContentID, ContentTwo: ref, Version: v})
		}
	}
	return out
}

type edgeKey struct{ one, two content.ID }

// GraphDiff returns the endpoints of every edge present in exactly one of
// prev and cur.
func GraphDiff(prev, cur []content.RelatedContent) mapset.Set[content.ID] {
	keys := func(edges []content.RelatedContent) mapset.Set[edgeKey] {
		s := mapset.NewThreadUnsafeSet[edgeKey]()
		for _, e := range edges {
			s.Add(edgeKey{e.ContentOne, e.ContentTwo})
		}
		return s
	}
	out := mapset.NewThreadUnsafeSet[content.ID]()
	for _, k := range keys(prev).SymmetricDifference(keys(cur)).ToSlice() {
		out.Add(k.one)
		out.Add(k.two)
	}
	return out
}

// Closure grows seed along the related-content graph.  Records that point
// at a changed record embed it, so referrers are followed transitively;
// each pass expands the newest frontier in batches of batch ids and
// passes <= 0 runs until nothing new is found.  Records the seed itself
// points at are added once, without following their own references: a
// changed post refreshes the photo it embeds, not every other post that
// embeds the same photo.
func Closure(seed mapset.Set[content.ID], edges []content.RelatedContent, passes, batch int) mapset.Set[content.ID] {
	referrers := map[content.ID][]content.ID{}
	targets := map[content.ID][]content.ID{}
	for _, e := range edges {
		referrers[e.ContentTwo] = append(referrers[e.ContentTwo], e.ContentOne)
		targets[e.ContentOne] = append(targets[e.ContentOne], e.ContentTwo)
	}
	if batch <= 0 {
		batch = 500
	}

	changed := seed.Clone()
	frontier := sortedIDs(seed)
	hop := mapset.NewThreadUnsafeSet[content.ID]()
	for _, id := range frontier {
		hop.Append(targets[id]...)
	}

	for pass := 0; len(frontier) > 0 && (passes <= 0 || pass < passes); pass++ {
		next := mapset.NewThreadUnsafeSet[content.ID]()
		for chunk := range slices.Chunk(frontier, batch) {
			for _, id := range chunk {
				for _, n := range referrers[id] {
					if !changed.Contains(n) {
						next.Add(n)
					}
				}
			}
		}
		changed = changed.Union(next)
		frontier = sortedIDs(next)
	}
	return changed.Union(hop)
}

// Changed is the change set of an incremental run: delta, plus the
// endpoints of edges that appeared or vanished, closed over the union of
// both graphs.
func Changed(delta []content.ID, prev, cur []content.RelatedContent, passes, batch int) mapset.Set[content.ID] {
	seed := mapset.NewThreadUnsafeSet(delta...).Union(GraphDiff(prev, cur))
	return Closure(seed, append(slices.Clip(prev), cur...), passes, batch)
}

func sortedIDs(s mapset.Set[content.ID]) []content.ID {
	out := s.ToSlice()
	slices.SortFunc(out, func(a, b content.ID) int { return bytes.Compare(a[:], b[:]) })
	return out
}
