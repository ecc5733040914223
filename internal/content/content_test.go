package content

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKindRoundTrip(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("spaceship")
	assert.Error(t, err)
}

func TestHasPagePanicsOnUnknownKind(t *testing.T) {
	assert.Panics(t, func() { Kind(99).HasPage() })
	assert.False(t, KindSnippet.HasPage())
	assert.True(t, KindPhoto.HasPage())
}

func TestNextVersionStrictlyIncreases(t *testing.T) {
	prev := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	later := prev.Add(time.Hour)
	assert.Equal(t, later, NextVersion(prev, later))

	// A clock behind the stored version must still move forward.
	skewed := prev.Add(-time.Hour)
	got := NextVersion(prev, skewed)
	assert.True(t, got.After(prev))

	assert.True(t, NextVersion(prev, prev).After(prev))
}

func TestInitializeAndTouch(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := &Photo{}
	Initialize(p, "tester", now)

	require.NotEqual(t, uuid.Nil, p.ContentID)
	require.NotNil(t, p.MainPicture)
	assert.Equal(t, p.ContentID, *p.MainPicture)
	assert.Equal(t, FormatMarkdown, p.BodyContentFormat)

	id := p.ContentID
	first := p.ContentVersion
	Touch(p, "editor", now)
	assert.Equal(t, id, p.ContentID)
	assert.True(t, p.ContentVersion.After(first))
	assert.Equal(t, "editor", p.LastUpdatedBy)
}

func TestCloneIsDeep(t *testing.T) {
	pic := uuid.New()
	l := &Line{LineDistance: 5.25}
	l.ContentID = uuid.New()
	l.MainPicture = &pic

	c := Clone(l).(*Line)
	assert.Equal(t, l.ContentID, c.ContentID)
	assert.Equal(t, 5.25, c.LineDistance)

	*c.MainPicture = uuid.New()
	assert.Equal(t, pic, *l.MainPicture)
}

func TestPointDetailDecode(t *testing.T) {
	d, err := EncodeDetail(uuid.New(), Parking{Notes: "gravel lot", Fee: true})
	require.NoError(t, err)

	got, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, &Parking{Notes: "gravel lot", Fee: true}, got)
}

func TestJoinDetailsIntegrityError(t *testing.T) {
	p := &Point{}
	p.ContentID = uuid.New()
	p.Title = "Saddle"

	rows := []PointDetail{
		{PointContentID: p.ContentID, DataTypeIdentifier: DetailPeak, StructuredDataAsJSON: `{"notes":"summit"}`},
		{PointContentID: uuid.New(), DataTypeIdentifier: "Ignored", StructuredDataAsJSON: `{}`},
	}
	pwd, err := JoinDetails(p, rows)
	require.NoError(t, err)
	require.Len(t, pwd.Details, 1)

	rows = append(rows, PointDetail{PointContentID: p.ContentID, DataTypeIdentifier: "Volcano", StructuredDataAsJSON: `{}`})
	_, err = JoinDetails(p, rows)

	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, p.ContentID, ie.ContentID)
	assert.Equal(t, "Saddle", ie.Title)
}
