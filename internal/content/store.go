// internal/content/store.go
//
// Persistence contract.
//
// Context
// -------
// The bracket-code engine, the resolver, and the generation orchestrator
// read and write records only through these interfaces.  internal/store
// provides the MySQL implementation; contenttest provides an in-memory one
// for tests.
//
// Notes
// -----
//   - Lookups skip ids with no live row; only ByID reports ErrNotFound.
//   - Save supersedes: the live row moves to the historic archive before
//     the new row (with a strictly newer ContentVersion) is inserted.
//   - Delete archives the live row and removes it.  History is never
//     hard-deleted.
package content

import (
	"context"
	"time"
)

// Reader is the read side of the live content tables.
type Reader interface {
	// ByID returns the live record with id, of any kind.
	ByID(ctx context.Context, id ID) (Content, error)
	// Lookup returns the live records for ids, of any kind.
	Lookup(ctx context.Context, ids []ID) ([]Content, error)
	// ByKind returns the live records of kind k among ids.
	ByKind(ctx context.Context, k Kind, ids []ID) ([]Content, error)
	// All returns every live record of kind k, newest FeedOn first.
	All(ctx context.Context, k Kind) ([]Content, error)
	// Everything returns every live record, newest FeedOn first.
	Everything(ctx context.Context) ([]Content, error)
	// ChangedSince returns live records whose ContentVersion is after v.
	ChangedSince(ctx context.Context, v time.Time) ([]Content, error)
	// PointDetails returns the live detail rows for the given points.
	PointDetails(ctx context.Context, pointIDs []ID) ([]PointDetail, error)
}

// Archive is the read side of the historic tables.
type Archive interface {
	// Historic returns superseded versions of id, newest first.
	Historic(ctx context.Context, id ID) ([]Content, error)
	// DeletedSince returns ids archived after v that have no live row.
	DeletedSince(ctx context.Context, v time.Time) ([]ID, error)
	// HistoricKind maps archived ids to the kind they last had.
	HistoricKind(ctx context.Context, ids []ID) (map[ID]Kind, error)
}

// Writer mutates live content.
type Writer interface {
	Save(ctx context.Context, c Content, by string) error
	Delete(ctx context.Context, id ID) error
	SavePointDetails(ctx context.Context, pointID ID, details []PointDetail) error
}

// GenerationStore holds the change-tracking state of site builds.
type GenerationStore interface {
	// LastGeneration returns the newest log, or nil when none exists.
	LastGeneration(ctx context.Context) (*GenerationLog, error)
	WriteGeneration(ctx context.Context, log GenerationLog) error

	RelatedContent(ctx context.Context, v time.Time) ([]RelatedContent, error)
	WriteRelatedContent(ctx context.Context, v time.Time, edges []RelatedContent) error

	ChangedIDs(ctx context.Context, v time.Time) ([]ID, error)
	// WriteChangedIDs replaces the changed set for v.
	WriteChangedIDs(ctx context.Context, v time.Time, ids []ID) error

	TagLog(ctx context.Context, v time.Time) ([]TagLog, error)
	WriteTagLog(ctx context.Context, v time.Time, rows []TagLog) error

	DailyPhotoLog(ctx context.Context, v time.Time) ([]DailyPhotoLog, error)
	WriteDailyPhotoLog(ctx context.Context, v time.Time, rows []DailyPhotoLog) error

	MenuLinks(ctx context.Context) ([]MenuLink, error)
	MenuLinksChangedSince(ctx context.Context, v time.Time) (bool, error)

	// Prune keeps the newest keep logs and removes everything that
	// belongs to older versions.
	Prune(ctx context.Context, keep int) error
}

// Store is the full persistence collaborator.
type Store interface {
	Reader
	Archive
	Writer
	GenerationStore
}
