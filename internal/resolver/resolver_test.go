package resolver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/content/contenttest"
)

// countingStore counts ByKind calls so cache hits can be asserted.
type countingStore struct {
	*contenttest.Store
	calls atomic.Int32
}

func (s *countingStore) ByKind(ctx context.Context, k content.Kind, ids []content.ID) ([]content.Content, error) {
	s.calls.Add(1)
	return s.Store.ByKind(ctx, k, ids)
}

func photo(title string) *content.Photo {
	p := &content.Photo{}
	p.ContentID = uuid.New()
	p.Title = title
	return p
}

func TestKindSkipsMissingAndCaches(t *testing.T) {
	st := &countingStore{Store: contenttest.New()}
	a, b := photo("A"), photo("B")
	st.Put(a, b)
	r := New(st, 0)
	ctx := context.Background()

	got, err := r.Kind(ctx, content.KindPhoto, []content.ID{b.ContentID, uuid.New(), a.ContentID, b.ContentID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Base().Title)
	assert.Equal(t, "A", got[1].Base().Title)
	assert.EqualValues(t, 1, st.calls.Load())

	one, err := r.One(ctx, content.KindPhoto, a.ContentID)
	require.NoError(t, err)
	assert.Equal(t, "A", one.Base().Title)
	assert.EqualValues(t, 1, st.calls.Load(), "served from cache")

	none, err := r.One(ctx, content.KindPost, a.ContentID)
	require.NoError(t, err)
	assert.Nil(t, none, "cached record of another kind does not answer")
}

func TestAnyTriesKindsInOrder(t *testing.T) {
	st := contenttest.New()
	p := photo("P")
	post := &content.Post{}
	post.ContentID = uuid.New()
	post.Title = "Post"
	st.Put(p, post)
	r := New(st, 16)

	got, err := r.AnyOf(context.Background(), []content.ID{post.ContentID, uuid.New(), p.ContentID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, content.KindPost, got[0].Kind())
	assert.Equal(t, content.KindPhoto, got[1].Kind())

	miss, err := r.Any(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestPointJoinsDetails(t *testing.T) {
	st := contenttest.New()
	pt := &content.Point{Latitude: 34.1, Longitude: -118.2}
	pt.ContentID = uuid.New()
	pt.Title = "Trailhead"
	st.Put(pt)
	row, err := content.EncodeDetail(pt.ContentID, content.Parking{Notes: "dirt lot", Fee: true})
	require.NoError(t, err)
	st.PutDetails(pt.ContentID, row)

	r := New(st, 0)
	got, err := r.Point(context.Background(), pt.ContentID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Details, 1)
	assert.Equal(t, content.DetailParking, got.Details[0].DataTypeIdentifier())

	missing, err := r.Point(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPointBadDetailIsIntegrityError(t *testing.T) {
	st := contenttest.New()
	pt := &content.Point{}
	pt.ContentID = uuid.New()
	pt.Title = "Broken"
	st.Put(pt)
	st.PutDetails(pt.ContentID, content.PointDetail{
		ContentID:            uuid.New(),
		PointContentID:       pt.ContentID,
		DataTypeIdentifier:   "Volcano",
		StructuredDataAsJSON: "{}",
	})

	_, err := New(st, 0).Point(context.Background(), pt.ContentID)
	var ie *content.IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, pt.ContentID, ie.ContentID)
}

func TestStoreErrorPropagates(t *testing.T) {
	st := contenttest.New()
	st.FailNext(errors.New("db down"))
	_, err := New(st, 0).Kind(context.Background(), content.KindPhoto, []content.ID{uuid.New()})
	assert.ErrorContains(t, err, "db down")
}
