// Package contenttest provides an in-memory content.Store for tests.
package contenttest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/yanizio/trailhead/internal/content"
)

type archived struct {
	rec        content.Content
	archivedOn time.Time
}

// Store is a goroutine-safe in-memory content.Store.  Records are cloned
// on the way in and out so callers cannot alias stored state.
type Store struct {
	mu sync.Mutex

	// Now stamps versions and archive times.  Defaults to time.Now.
	Now func() time.Time

	live     map[content.ID]content.Content
	historic map[content.ID][]archived
	details  map[content.ID][]content.PointDetail

	logs     []content.GenerationLog
	related  map[time.Time][]content.RelatedContent
	changed  map[time.Time][]content.ID
	tags     map[time.Time][]content.TagLog
	daily    map[time.Time][]content.DailyPhotoLog
	menu     []content.MenuLink
	failNext error
}

var _ content.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		Now:      time.Now,
		live:     map[content.ID]content.Content{},
		historic: map[content.ID][]archived{},
		details:  map[content.ID][]content.PointDetail{},
		related:  map[time.Time][]content.RelatedContent{},
		changed:  map[time.Time][]content.ID{},
		tags:     map[time.Time][]content.TagLog{},
		daily:    map[time.Time][]content.DailyPhotoLog{},
	}
}

// Put inserts records verbatim, without versioning or archiving.
func (s *Store) Put(recs ...content.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.live[r.Base().ContentID] = content.Clone(r)
	}
}

// PutDetails replaces the detail rows of a point verbatim.
func (s *Store) PutDetails(pointID content.ID, rows ...content.PointDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[pointID] = append([]content.PointDetail(nil), rows...)
}

// PutMenu replaces the menu links.
func (s *Store) PutMenu(links ...content.MenuLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu = append([]content.MenuLink(nil), links...)
}

// FailNext makes the next call that takes the lock return err.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Store) lock() error {
	s.mu.Lock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	return nil
}

/*──────────────────────────── Reader ─────────────────────────────────────*/

func (s *Store) ByID(_ context.Context, id content.ID) (content.Content, error) {
	if err := s.lock(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	c, ok := s.live[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	return content.Clone(c), nil
}

func (s *Store) Lookup(_ context.Context, ids []content.ID) ([]content.Content, error) {
	if err := s.lock(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var out []content.Content
	for _, id := range ids {
		if c, ok := s.live[id]; ok {
			out = append(out, content.Clone(c))
		}
	}
	return out, nil
}

func (s *Store) ByKind(_ context.Context, k content.Kind, ids []content.ID) ([]content.Content, error) {
	if err := s.lock(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var out []content.Content
	for _, id := range ids {
		if c, ok := s.live[id]; ok && c.Kind() == k {
			out = append(out, content.Clone(c))
		}
	}
	return out, nil
}

func (s *Store) All(_ context.Context, k content.Kind) ([]content.Content, error) {
	return s.filter(func(c content.Content) bool { return c.Kind() == k })
}

func (s *Store) Everything(_ context.Context) ([]content.Content, error) {
	return s.filter(func(content.Content) bool { return true })
}

func (s *Store) ChangedSince(_ context.Context, v time.Time) ([]content.Content, error) {
	return s.filter(func(c content.Content) bool { return c.Base().ContentVersion.After(v) })
}

func (s *Store) filter(keep func(content.Content) bool) ([]content.Content, error) {
	if err := s.lock(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var out []content.Content
	for _, c := range s.live {
		if keep(c) {
			out = append(out, content.Clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Base(), out[j].Base()
		if !a.FeedOn.Equal(b.FeedOn) {
			return a.FeedOn.After(b.FeedOn)
		}
		return a.ContentID.String() < b.ContentID.String()
	})
	return out, nil
}

func (s *Store) PointDetails(_ context.Context, pointIDs []content.ID) ([]content.PointDetail, error) {
	if err := s.lock(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var out []content.PointDetail
	for _, id := range pointIDs {
		out = append(out, s.details[id]...)
	}
	return out, nil
}

/*──────────────────────────── Archive ────────────────────────────────────*/

func (s *Store) Historic(_ context.Context, id content.ID) ([]content.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.historic[id]
	out := make([]content.Content, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, content.Clone(rows[i].rec))
	}
	return out, nil
}

func (s *Store) DeletedSince(_ context.Context, v time.Time) ([]content.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []content.ID
	for id, rows := range s.historic {
		if _, ok := s.live[id]; ok || len(rows) == 0 {
			continue
		}
		if rows[len(rows)-1].archivedOn.After(v) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *Store) HistoricKind(_ context.Context, ids []content.ID) (map[content.ID]content.Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[content.ID]content.Kind{}
	for _, id := range ids {
		if rows := s.historic[id]; len(rows) > 0 {
			out[id] = rows[len(rows)-1].rec.Kind()
		}
	}
	return out, nil
}

/*──────────────────────────── Writer ─────────────────────────────────────*/

func (s *Store) Save(_ context.Context, c content.Content, by string) error {
	if err := s.lock(); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	now := s.Now()
	id := c.Base().ContentID
	if old, ok := s.live[id]; ok {
		s.historic[id] = append(s.historic[id], archived{rec: old, archivedOn: now})
		c.Base().ContentVersion = old.Base().ContentVersion
		content.Touch(c, by, now)
	}
	s.live[id] = content.Clone(c)
	return nil
}

func (s *Store) Delete(_ context.Context, id content.ID) error {
	if err := s.lock(); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	old, ok := s.live[id]
	if !ok {
		return content.ErrNotFound
	}
	s.historic[id] = append(s.historic[id], archived{rec: old, archivedOn: s.Now()})
	delete(s.live, id)
	return nil
}

// SavePointDetails replaces the details and supersedes the point, like the
// SQL store.
func (s *Store) SavePointDetails(_ context.Context, pointID content.ID, details []content.PointDetail) error {
	if err := s.lock(); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	old, ok := s.live[pointID]
	if !ok || old.Kind() != content.KindPoint {
		return content.ErrNotFound
	}
	now := s.Now()
	s.historic[pointID] = append(s.historic[pointID], archived{rec: old, archivedOn: now})
	next := content.Clone(old)
	content.Touch(next, old.Base().LastUpdatedBy, now)
	s.live[pointID] = next

	rows := make([]content.PointDetail, len(details))
	for i, d := range details {
		d.PointContentID = pointID
		d.ContentVersion = next.Base().ContentVersion
		rows[i] = d
	}
	s.details[pointID] = rows
	return nil
}

/*──────────────────────────── GenerationStore ────────────────────────────*/

func (s *Store) LastGeneration(_ context.Context) (*content.GenerationLog, error) {
	if err := s.lock(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	if len(s.logs) == 0 {
		return nil, nil
	}
	l := s.logs[len(s.logs)-1]
	return &l, nil
}

func (s *Store) WriteGeneration(_ context.Context, log content.GenerationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.logs {
		if l.Version.Equal(log.Version) {
			s.logs[i] = log
			return nil
		}
	}
	s.logs = append(s.logs, log)
	sort.Slice(s.logs, func(i, j int) bool { return s.logs[i].Version.Before(s.logs[j].Version) })
	return nil
}

// Generations returns every retained log, oldest first.
func (s *Store) Generations() []content.GenerationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.logs)
}

func (s *Store) RelatedContent(_ context.Context, v time.Time) ([]content.RelatedContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.related[key(v)]), nil
}

func (s *Store) WriteRelatedContent(_ context.Context, v time.Time, edges []content.RelatedContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.related[key(v)] = slices.Clone(edges)
	return nil
}

func (s *Store) ChangedIDs(_ context.Context, v time.Time) ([]content.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.changed[key(v)]), nil
}

func (s *Store) WriteChangedIDs(_ context.Context, v time.Time, ids []content.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed[key(v)] = slices.Clone(ids)
	return nil
}

func (s *Store) TagLog(_ context.Context, v time.Time) ([]content.TagLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tags[key(v)]), nil
}

func (s *Store) WriteTagLog(_ context.Context, v time.Time, rows []content.TagLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[key(v)] = slices.Clone(rows)
	return nil
}

func (s *Store) DailyPhotoLog(_ context.Context, v time.Time) ([]content.DailyPhotoLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.daily[key(v)]), nil
}

func (s *Store) WriteDailyPhotoLog(_ context.Context, v time.Time, rows []content.DailyPhotoLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily[key(v)] = slices.Clone(rows)
	return nil
}

func (s *Store) MenuLinks(_ context.Context) ([]content.MenuLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.menu), nil
}

func (s *Store) MenuLinksChangedSince(_ context.Context, v time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.menu {
		if m.ContentVersion.After(v) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keep < 1 || len(s.logs) <= keep {
		return nil
	}
	s.logs = slices.Clone(s.logs[len(s.logs)-keep:])
	retained := map[time.Time]bool{}
	for _, l := range s.logs {
		retained[key(l.Version)] = true
	}
	for v := range s.related {
		if !retained[v] {
			delete(s.related, v)
		}
	}
	for v := range s.changed {
		if !retained[v] {
			delete(s.changed, v)
		}
	}
	for v := range s.tags {
		if !retained[v] {
			delete(s.tags, v)
		}
	}
	for v := range s.daily {
		if !retained[v] {
			delete(s.daily, v)
		}
	}
	return nil
}

// key normalizes a version for use as a map key; time.Time values that are
// Equal can still differ in location and monotonic reading.
func key(v time.Time) time.Time { return v.UTC().Round(0) }
