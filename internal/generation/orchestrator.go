// internal/generation/orchestrator.go
//
// Site generation orchestrator.
//
// Context
// -------
// One Run rebuilds the static site.  It decides between a full and an
// incremental build, works out which records changed since the last run,
// and drives the page builder over exactly the artifacts that depend on
// them.  Change tracking lives in the store (generation log, related
// content graph, changed ids, tag and daily photo logs).
//
// Workflow
// --------
//  1. Version   – now, second precision, strictly after the last log.
//  2. Mode      – Full when there is no log, the settings snapshot drifted,
//     the menu changed, or the caller forces it.
//  3. Changes   – related-content graph and changed-id set are written
//     *before* any page so the fan-out only ever reads them.
//  4. Fan-out   – points first (shared side-file), then every kind plus
//     the galleries concurrently, then tags, lists, and feeds.
//  5. Finish    – index and error page, tag and daily logs, the
//     generation log, pruning, and reference validation.
//
// Notes
// -----
// • The first failing task cancels its siblings; nothing after it is
//   written, so a failed run is retried in full by the next one.
// • Diagnostics (broken references) are Result.Returns, never errors.
package generation

import (
	"context"
	"fmt"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/trailhead/internal/config"
	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/metrics"
	"github.com/yanizio/trailhead/internal/progress"
)

// Pages writes site artifacts.  site.Builder is the implementation.
type Pages interface {
	SetMenu(ctx context.Context, links []content.MenuLink) error
	Item(ctx context.Context, c content.Content) error
	Remove(ctx context.Context, c content.Content) error
	PointData(ctx context.Context, points []content.Content) error
	List(ctx context.Context, k content.Kind, recs []content.Content) error
	MainFeed(ctx context.Context, recs []content.Content) error
	Tag(ctx context.Context, tag string, recs []content.Content) error
	AllTags(ctx context.Context, counts map[string]int) error
	DailyPhotos(ctx context.Context, day time.Time, photos []content.Content, prev, next *time.Time) error
	CameraRoll(ctx context.Context, photos []content.Content) error
	Latest(ctx context.Context, recs []content.Content) error
	Activity(ctx context.Context, recs []content.Content) error
	Search(ctx context.Context, recs []content.Content) error
	Index(ctx context.Context, recs []content.Content) error
	Error(ctx context.Context) error
	Resources(ctx context.Context) error
}

// Snapshotter serializes the settings a build depends on.
type Snapshotter interface {
	Snapshot() (string, error)
}

// Purger drops cached lookups between runs.
type Purger interface {
	Purge()
}

// Orchestrator runs generations.
type Orchestrator struct {
	Store    content.Store
	Pages    Pages
	Settings Snapshotter
	Cache    Purger
	Config   config.Generation
	// Excluded tags get no tag page.
	Excluded []string
	Progress progress.Sink
	Now      func() time.Time
}

// ListKinds are the kinds with a list page and a feed.
var ListKinds = []content.Kind{
	content.KindFile,
	content.KindGeoJSON,
	content.KindImage,
	content.KindLine,
	content.KindLink,
	content.KindNote,
	content.KindPhoto,
	content.KindPoint,
	content.KindPost,
	content.KindTrail,
	content.KindVideo,
}

// itemKinds are regenerated concurrently after points.
var itemKinds = []content.Kind{
	content.KindPhoto,
	content.KindImage,
	content.KindFile,
	content.KindLine,
	content.KindGeoJSON,
	content.KindNote,
	content.KindPost,
	content.KindVideo,
	content.KindTrail,
	content.KindMapComponent,
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) concurrency() int {
	if o.Config.Concurrency > 0 {
		return o.Config.Concurrency
	}
	return 8
}

// Run performs one generation.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	started := o.now()
	if o.Cache != nil {
		o.Cache.Purge()
	}

	last, err := o.Store.LastGeneration(ctx)
	if err != nil {
		return nil, fmt.Errorf("last generation: %w", err)
	}
	snapshot, err := o.Settings.Snapshot()
	if err != nil {
		return nil, err
	}

	r := &run{
		o:        o,
		sink:     progress.Or(o.Progress),
		last:     last,
		version:  Version(last, started),
		snapshot: snapshot,
	}
	if r.mode, err = o.mode(ctx, last, snapshot, opts); err != nil {
		return nil, err
	}
	log := zap.S().With("version", r.version.Format(time.RFC3339), "mode", r.mode.String())
	log.Infow("generation started")

	if err := r.load(ctx); err != nil {
		return nil, err
	}
	if err := r.track(ctx); err != nil {
		return nil, err
	}
	links, err := o.Store.MenuLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("menu links: %w", err)
	}
	if err := o.Pages.SetMenu(ctx, links); err != nil {
		return nil, err
	}

	for _, step := range []func(context.Context) error{r.points, r.items, r.aggregates, r.always, r.finish} {
		if err := step(ctx); err != nil {
			log.Errorw("generation failed", "err", err)
			return nil, err
		}
	}

	returns, err := Validate(ctx, o.Store, r.validationScope(), o.Config.IDBatchSize)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Version:  r.version,
		Mode:     r.mode,
		Changed:  sortedIDs(r.changed),
		Returns:  returns,
		Duration: o.now().Sub(started),
	}
	metrics.GenerationRuns.WithLabelValues(r.mode.String()).Inc()
	metrics.GenerationDuration.Observe(res.Duration.Seconds())
	metrics.ChangedContent.Set(float64(len(res.Changed)))
	metrics.BrokenReferences.Set(float64(len(returns)))
	log.Infow("generation finished", "changed", len(res.Changed), "returns", len(returns), "took", res.Duration)
	return res, nil
}

// Check validates every live record without generating anything.
func (o *Orchestrator) Check(ctx context.Context) ([]Return, error) {
	all, err := o.Store.Everything(ctx)
	if err != nil {
		return nil, err
	}
	return Validate(ctx, o.Store, all, o.Config.IDBatchSize)
}

func (o *Orchestrator) mode(ctx context.Context, last *content.GenerationLog, snapshot string, opts Options) (Mode, error) {
	switch {
	case opts.ForceFull:
		zap.S().Infow("full generation requested")
		return Full, nil
	case last == nil:
		zap.S().Infow("no previous generation")
		return Full, nil
	case last.Settings != snapshot:
		zap.S().Infow("settings changed since last generation", "last_version", last.Version)
		return Full, nil
	}
	menu, err := o.Store.MenuLinksChangedSince(ctx, last.Version)
	if err != nil {
		return Full, fmt.Errorf("menu changes: %w", err)
	}
	if menu {
		zap.S().Infow("menu changed since last generation", "last_version", last.Version)
		return Full, nil
	}
	return Incremental, nil
}

// run is the state of one generation.
type run struct {
	o        *Orchestrator
	sink     progress.Sink
	last     *content.GenerationLog
	version  time.Time
	snapshot string
	mode     Mode

	all     []content.Content
	byKind  map[content.Kind][]content.Content
	changed mapset.Set[content.ID]
	// removed holds the last archived version of records deleted since
	// the previous run.
	removed []content.Content
	// dirtyKinds are the kinds with a changed, added, or removed record.
	dirtyKinds mapset.Set[content.Kind]

	tags  map[string][]content.Content
	daily map[time.Time][]content.Content
}

func (r *run) load(ctx context.Context) error {
	all, err := r.o.Store.Everything(ctx)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	r.all = all
	r.byKind = map[content.Kind][]content.Content{}
	for _, c := range all {
		r.byKind[c.Kind()] = append(r.byKind[c.Kind()], c)
	}
	r.tags = tagIndex(all, r.o.Excluded)
	r.daily = dailyGroups(all)
	return nil
}

// track computes and stores the change state of this version.
func (r *run) track(ctx context.Context) error {
	st := r.o.Store
	edges := Edges(r.all, r.version)
	if err := st.WriteRelatedContent(ctx, r.version, edges); err != nil {
		return fmt.Errorf("write related content: %w", err)
	}

	r.changed = mapset.NewThreadUnsafeSet[content.ID]()
	r.dirtyKinds = mapset.NewThreadUnsafeSet[content.Kind]()
	var deleted []content.ID
	if r.last != nil {
		var err error
		if deleted, err = st.DeletedSince(ctx, r.last.Version); err != nil {
			return fmt.Errorf("deleted content: %w", err)
		}
		for _, id := range deleted {
			h, err := st.Historic(ctx, id)
			if err != nil {
				return fmt.Errorf("historic %s: %w", id, err)
			}
			if len(h) > 0 {
				r.removed = append(r.removed, h[0])
				r.dirtyKinds.Add(h[0].Kind())
			}
		}
	}

	if r.mode == Full {
		for _, c := range r.all {
			r.changed.Add(c.Base().ContentID)
		}
		r.dirtyKinds.Append(content.Kinds...)
	} else {
		delta, err := st.ChangedSince(ctx, r.last.Version)
		if err != nil {
			return fmt.Errorf("changed content: %w", err)
		}
		prev, err := st.RelatedContent(ctx, r.last.Version)
		if err != nil {
			return fmt.Errorf("previous related content: %w", err)
		}
		seed := make([]content.ID, 0, len(delta)+len(deleted))
		for _, c := range delta {
			seed = append(seed, c.Base().ContentID)
		}
		seed = append(seed, deleted...)
		r.changed = Changed(seed, prev, edges, r.o.Config.ClosurePasses, r.o.Config.IDBatchSize)
		for _, c := range r.all {
			if r.changed.Contains(c.Base().ContentID) {
				r.dirtyKinds.Add(c.Kind())
			}
		}
	}

	if err := st.WriteChangedIDs(ctx, r.version, sortedIDs(r.changed)); err != nil {
		return fmt.Errorf("write changed ids: %w", err)
	}
	progress.Reportf(r.sink, "%s generation %s: %d changed", r.mode, r.version.Format(time.RFC3339), r.changed.Cardinality())
	return nil
}

// changedOf returns the live records of kind k that need a new page.
func (r *run) changedOf(k content.Kind) []content.Content {
	var out []content.Content
	for _, c := range r.byKind[k] {
		if r.changed.Contains(c.Base().ContentID) {
			out = append(out, c)
		}
	}
	return out
}

func (r *run) removedOf(k content.Kind) []content.Content {
	var out []content.Content
	for _, c := range r.removed {
		if c.Kind() == k {
			out = append(out, c)
		}
	}
	return out
}

// kind regenerates the pages of one kind with bounded concurrency.
func (r *run) kind(ctx context.Context, k content.Kind) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.o.concurrency())
	for _, c := range r.removedOf(k) {
		g.Go(func() error { return r.o.Pages.Remove(ctx, c) })
	}
	for _, c := range r.changedOf(k) {
		g.Go(func() error {
			if err := r.o.Pages.Item(ctx, c); err != nil {
				return fmt.Errorf("%s %q: %w", k, c.Base().Title, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	progress.Reportf(r.sink, "%s pages done", k)
	return nil
}

// points runs before everything else: map components read the point data
// side-file the point step writes.
func (r *run) points(ctx context.Context) error {
	if err := r.kind(ctx, content.KindPoint); err != nil {
		return err
	}
	if !r.dirtyKinds.Contains(content.KindPoint) {
		return nil
	}
	return r.o.Pages.PointData(ctx, r.byKind[content.KindPoint])
}

// items regenerates every other kind plus the photo galleries as one
// task group.
func (r *run) items(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, k := range itemKinds {
		g.Go(func() error { return r.kind(gctx, k) })
	}
	g.Go(func() error { return r.dailyPages(gctx) })
	g.Go(func() error {
		if !r.dirtyKinds.Contains(content.KindPhoto) {
			return nil
		}
		return r.o.Pages.CameraRoll(gctx, r.byKind[content.KindPhoto])
	})
	if r.mode == Full {
		g.Go(func() error { return r.o.Pages.Resources(gctx) })
	}
	return g.Wait()
}

// aggregates regenerates tag pages, lists, and feeds.  They read the
// records' pictures and pages, so they run after items.
func (r *run) aggregates(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.o.concurrency())

	tagsDirty, err := r.tagPages(gctx, g)
	if err != nil {
		return err
	}
	if tagsDirty {
		counts := make(map[string]int, len(r.tags))
		for t, recs := range r.tags {
			counts[t] = len(recs)
		}
		g.Go(func() error { return r.o.Pages.AllTags(gctx, counts) })
	}

	for _, k := range ListKinds {
		if r.dirtyKinds.Contains(k) {
			g.Go(func() error { return r.o.Pages.List(gctx, k, r.byKind[k]) })
		}
	}
	if r.dirtyKinds.Cardinality() > 0 {
		g.Go(func() error { return r.o.Pages.MainFeed(gctx, r.all) })
		g.Go(func() error { return r.o.Pages.Latest(gctx, r.all) })
		g.Go(func() error { return r.o.Pages.Activity(gctx, r.all) })
		g.Go(func() error { return r.o.Pages.Search(gctx, r.all) })
	}
	return g.Wait()
}

// always writes the pages every run rebuilds.
func (r *run) always(ctx context.Context) error {
	if err := r.o.Pages.Index(ctx, r.all); err != nil {
		return err
	}
	return r.o.Pages.Error(ctx)
}

// finish records this version's logs and prunes old ones.
func (r *run) finish(ctx context.Context) error {
	st := r.o.Store

	var tagRows []content.TagLog
	for _, t := range sortedKeys(r.tags) {
		for _, c := range r.tags[t] {
			tagRows = append(tagRows, content.TagLog{TagSlug: tagSlug(t), ContentID: c.Base().ContentID, Version: r.version})
		}
	}
	if err := st.WriteTagLog(ctx, r.version, tagRows); err != nil {
		return fmt.Errorf("write tag log: %w", err)
	}

	var dailyRows []content.DailyPhotoLog
	for _, d := range sortedDays(r.daily) {
		for _, c := range r.daily[d] {
			dailyRows = append(dailyRows, content.DailyPhotoLog{DailyPhotoDate: d, ContentID: c.Base().ContentID, Version: r.version})
		}
	}
	if err := st.WriteDailyPhotoLog(ctx, r.version, dailyRows); err != nil {
		return fmt.Errorf("write daily photo log: %w", err)
	}

	if err := st.WriteGeneration(ctx, content.GenerationLog{
		Version:   r.version,
		Settings:  r.snapshot,
		CreatedOn: r.o.now().UTC(),
	}); err != nil {
		return fmt.Errorf("write generation log: %w", err)
	}
	keep := r.o.Config.LogRetention
	if keep <= 0 {
		keep = 30
	}
	if err := st.Prune(ctx, keep); err != nil {
		return fmt.Errorf("prune generations: %w", err)
	}
	return nil
}

// validationScope is every record in a full run and the changed ones in
// an incremental run.
func (r *run) validationScope() []content.Content {
	if r.mode == Full {
		return r.all
	}
	var out []content.Content
	for _, c := range r.all {
		if r.changed.Contains(c.Base().ContentID) {
			out = append(out, c)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
