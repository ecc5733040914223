// internal/resolver/resolver.go
//
// Content resolver.
//
// Context
// -------
// Bracket-code processors hand the resolver a kind and the ids they
// matched; it returns the live records that exist.  A single page body can
// reference the same photo many times, and generation renders hundreds of
// pages concurrently, so lookups are cached in an LRU and concurrent
// misses for the same key collapse through singleflight.
//
// Workflow
// --------
//  1. Check the LRU for every requested id.
//  2. Fetch the misses in one store call under a singleflight key.
//  3. Cache what came back and return the records of the requested kind.
//
// Notes
// -----
//   - Missing ids are skipped, never an error.  Content may have been
//     deleted after the bracket code was written.
//   - Cached records are shared between goroutines; callers treat them as
//     read-only.
//   - Purge between generation runs so a long-lived process sees saves.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/trailhead/internal/cache"
	"github.com/yanizio/trailhead/internal/content"
)

// DefaultCapacity is the LRU size used when New is given zero.
const DefaultCapacity = 4096

// Resolver fetches records for bracket codes.
type Resolver struct {
	store  content.Reader
	recs   *cache.LRU[content.ID, content.Content]
	points *cache.LRU[content.ID, *content.PointWithDetails]
	sfg    singleflight.Group
}

// New returns a Resolver reading from store.
func New(store content.Reader, capacity int) *Resolver {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Resolver{
		store:  store,
		recs:   cache.New[content.ID, content.Content](capacity),
		points: cache.New[content.ID, *content.PointWithDetails](capacity/4 + 1),
	}
}

// Purge drops every cached record.
func (r *Resolver) Purge() {
	r.recs.Purge()
	r.points.Purge()
}

// Kind returns the live records of kind k among ids, in the order of ids.
// Duplicate ids yield one record.
func (r *Resolver) Kind(ctx context.Context, k content.Kind, ids []content.ID) ([]content.Content, error) {
	found, err := r.fetch(ctx, k.String(), ids, func(ctx context.Context, miss []content.ID) ([]content.Content, error) {
		return r.store.ByKind(ctx, k, miss)
	})
	if err != nil {
		return nil, err
	}
	out := make([]content.Content, 0, len(found))
	for _, c := range found {
		if c.Kind() == k {
			out = append(out, c)
		}
	}
	return out, nil
}

// One returns the live record of kind k with id, or nil.
func (r *Resolver) One(ctx context.Context, k content.Kind, id content.ID) (content.Content, error) {
	recs, err := r.Kind(ctx, k, []content.ID{id})
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// Any returns the live record with id whatever its kind, or nil.
func (r *Resolver) Any(ctx context.Context, id content.ID) (content.Content, error) {
	recs, err := r.AnyOf(ctx, []content.ID{id})
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

// AnyOf returns the live records for ids whatever their kind, in the order
// of ids.  Kinds are probed in content.Kinds order; since an id has at most
// one live row the first kind that answers wins.
func (r *Resolver) AnyOf(ctx context.Context, ids []content.ID) ([]content.Content, error) {
	return r.fetch(ctx, "any", ids, func(ctx context.Context, miss []content.ID) ([]content.Content, error) {
		var out []content.Content
		left := miss
		for _, k := range content.Kinds {
			if len(left) == 0 {
				break
			}
			recs, err := r.store.ByKind(ctx, k, left)
			if err != nil {
				return nil, err
			}
			if len(recs) == 0 {
				continue
			}
			out = append(out, recs...)
			left = without(left, recs)
		}
		return out, nil
	})
}

// Point returns the point with id joined with its detail rows, or nil.
// A detail row that cannot be decoded is a *content.IntegrityError.
func (r *Resolver) Point(ctx context.Context, id content.ID) (*content.PointWithDetails, error) {
	if p, ok := r.points.Get(id); ok {
		return p, nil
	}
	v, err, _ := r.sfg.Do("point:"+id.String(), func() (any, error) {
		if p, ok := r.points.Get(id); ok {
			return p, nil
		}
		c, err := r.One(ctx, content.KindPoint, id)
		if err != nil || c == nil {
			return (*content.PointWithDetails)(nil), err
		}
		rows, err := r.store.PointDetails(ctx, []content.ID{id})
		if err != nil {
			return nil, fmt.Errorf("point details %s: %w", id, err)
		}
		p, err := content.JoinDetails(c.(*content.Point), rows)
		if err != nil {
			return nil, err
		}
		r.points.Add(id, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*content.PointWithDetails), nil
}

/*──────────────────────────── internals ───────────────────────────────────*/

type loader func(ctx context.Context, miss []content.ID) ([]content.Content, error)

// fetch serves ids from the cache and loads the misses with load.  The
// result keeps the order of ids and drops ids that were not found.
func (r *Resolver) fetch(ctx context.Context, scope string, ids []content.ID, load loader) ([]content.Content, error) {
	ids = dedupe(ids)
	var miss []content.ID
	for _, id := range ids {
		if _, ok := r.recs.Get(id); !ok {
			miss = append(miss, id)
		}
	}

	loaded := map[content.ID]content.Content{}
	if len(miss) > 0 {
		v, err, _ := r.sfg.Do(sfKey(scope, miss), func() (any, error) {
			recs, err := load(ctx, miss)
			if err != nil {
				return nil, err
			}
			for _, c := range recs {
				r.recs.Add(c.Base().ContentID, c)
			}
			return recs, nil
		})
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", scope, err)
		}
		for _, c := range v.([]content.Content) {
			loaded[c.Base().ContentID] = c
		}
	}

	out := make([]content.Content, 0, len(ids))
	for _, id := range ids {
		if c, ok := loaded[id]; ok {
			out = append(out, c)
			continue
		}
		if c, ok := r.recs.Get(id); ok {
			out = append(out, c)
			continue
		}
		zap.L().Debug("bracket code references missing content",
			zap.String("content_id", id.String()), zap.String("kind", scope))
	}
	return out, nil
}

func sfKey(scope string, ids []content.ID) string {
	var b strings.Builder
	b.WriteString(scope)
	for _, id := range ids {
		b.WriteByte(':')
		b.WriteString(id.String())
	}
	return b.String()
}

func dedupe(ids []content.ID) []content.ID {
	seen := make(map[content.ID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func without(ids []content.ID, found []content.Content) []content.ID {
	got := make(map[content.ID]struct{}, len(found))
	for _, c := range found {
		got[c.Base().ContentID] = struct{}{}
	}
	var out []content.ID
	for _, id := range ids {
		if _, ok := got[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
