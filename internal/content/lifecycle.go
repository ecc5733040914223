package content

import (
	"time"

	"github.com/google/uuid"
)

// versionPrecision matches the DATETIME(6) columns in the store.
const versionPrecision = time.Microsecond

// Initialize stamps a fresh record: ContentID (unless one was assigned),
// CreatedOn, and a default ContentVersion.  Photos and Images become their
// own MainPicture.
func Initialize(c Content, createdBy string, now time.Time) {
	b := c.Base()
	if b.ContentID == uuid.Nil {
		b.ContentID = uuid.New()
	}
	b.CreatedOn = now.UTC().Truncate(versionPrecision)
	b.CreatedBy = createdBy
	b.ContentVersion = b.CreatedOn
	if b.FeedOn.IsZero() {
		b.FeedOn = b.CreatedOn
	}
	if b.BodyContentFormat == "" {
		b.BodyContentFormat = FormatMarkdown
	}
	switch c.Kind() {
	case KindPhoto, KindImage:
		id := b.ContentID
		b.MainPicture = &id
	}
}

// NextVersion returns a version stamp strictly after prev.  now is used
// when it is later; otherwise prev is advanced by the store precision so
// clock skew can never produce an equal or earlier version.
func NextVersion(prev, now time.Time) time.Time {
	now = now.UTC().Truncate(versionPrecision)
	if now.After(prev) {
		return now
	}
	return prev.Add(versionPrecision)
}

// Touch bumps ContentVersion and the last-updated fields ahead of a save.
func Touch(c Content, updatedBy string, now time.Time) {
	b := c.Base()
	b.ContentVersion = NextVersion(b.ContentVersion, now)
	t := b.ContentVersion
	b.LastUpdatedOn = &t
	b.LastUpdatedBy = updatedBy
}
