// internal/store/store.go
//
// MySQL implementation of content.Store.
//
// Context
// -------
// Every kind lives in one `content` table.  Fields shared by all kinds are
// real columns (so lists, feeds, and change detection are plain SQL); the
// kind-specific fields travel as a JSON `payload` column decoded into the
// struct content.New returns for the row's `kind`.  `historic_content`
// mirrors the live table plus `archived_on` and is keyed by
// (content_id, content_version).
//
// Workflow
// --------
//  1. db, _ := database.Open(ctx, cfg.DatabaseDSN())
//  2. st := store.New(db, cfg.Generation.IDBatchSize)
//  3. st.Migrate(ctx) once, then hand st to the engine and orchestrator.
//
// Notes
// -----
// • Every IN query is split into batches of at most batchSize ids.
// • Save and Delete run in one transaction so readers never observe a
//   record with no live row and no archived copy.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/yanizio/trailhead/internal/content"
)

// Store is safe for concurrent use.
type Store struct {
	db    *sqlx.DB
	batch int
	now   func() time.Time
}

var _ content.Store = (*Store)(nil)

// New wraps db.  batchSize < 1 falls back to 500.
func New(db *sqlx.DB, batchSize int) *Store {
	if batchSize < 1 {
		batchSize = 500
	}
	return &Store{db: db, batch: batchSize, now: time.Now}
}

/*──────────────────────────── row mapping ─────────────────────────────────*/

const contentColumns = `content_id, kind, title, slug, folder, summary, tags,
	body_content, body_content_format, main_picture, content_version,
	created_on, created_by, last_updated_on, last_updated_by, is_draft,
	show_in_main_site_feed, feed_on, payload`

const contentValues = `:content_id, :kind, :title, :slug, :folder, :summary, :tags,
	:body_content, :body_content_format, :main_picture, :content_version,
	:created_on, :created_by, :last_updated_on, :last_updated_by, :is_draft,
	:show_in_main_site_feed, :feed_on, :payload`

type contentRow struct {
	ContentID          uuid.UUID      `db:"content_id"`
	Kind               string         `db:"kind"`
	Title              string         `db:"title"`
	Slug               string         `db:"slug"`
	Folder             string         `db:"folder"`
	Summary            string         `db:"summary"`
	Tags               string         `db:"tags"`
	BodyContent        string         `db:"body_content"`
	BodyContentFormat  string         `db:"body_content_format"`
	MainPicture        uuid.NullUUID  `db:"main_picture"`
	ContentVersion     time.Time      `db:"content_version"`
	CreatedOn          time.Time      `db:"created_on"`
	CreatedBy          string         `db:"created_by"`
	LastUpdatedOn      sql.NullTime   `db:"last_updated_on"`
	LastUpdatedBy      string         `db:"last_updated_by"`
	IsDraft            bool           `db:"is_draft"`
	ShowInMainSiteFeed bool           `db:"show_in_main_site_feed"`
	FeedOn             time.Time      `db:"feed_on"`
	Payload            datatypes.JSON `db:"payload"`
}

func toRow(c content.Content) (contentRow, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return contentRow{}, fmt.Errorf("encode %s payload: %w", c.Kind(), err)
	}
	b := c.Base()
	r := contentRow{
		ContentID:          b.ContentID,
		Kind:               c.Kind().String(),
		Title:              b.Title,
		Slug:               b.Slug,
		Folder:             b.Folder,
		Summary:            b.Summary,
		Tags:               b.Tags,
		BodyContent:        b.BodyContent,
		BodyContentFormat:  b.BodyContentFormat,
		ContentVersion:     b.ContentVersion,
		CreatedOn:          b.CreatedOn,
		CreatedBy:          b.CreatedBy,
		LastUpdatedBy:      b.LastUpdatedBy,
		IsDraft:            b.IsDraft,
		ShowInMainSiteFeed: b.ShowInMainSiteFeed,
		FeedOn:             b.FeedOn,
		Payload:            datatypes.JSON(payload),
	}
	if b.MainPicture != nil {
		r.MainPicture = uuid.NullUUID{UUID: *b.MainPicture, Valid: true}
	}
	if b.LastUpdatedOn != nil {
		r.LastUpdatedOn = sql.NullTime{Time: *b.LastUpdatedOn, Valid: true}
	}
	return r, nil
}

func (r contentRow) record() (content.Content, error) {
	k, err := content.ParseKind(r.Kind)
	if err != nil {
		return nil, &content.IntegrityError{ContentID: r.ContentID, Title: r.Title, Reason: err.Error()}
	}
	c := content.New(k)
	if len(r.Payload) > 0 {
		if err := json.Unmarshal(r.Payload, c); err != nil {
			return nil, &content.IntegrityError{
				ContentID: r.ContentID,
				Title:     r.Title,
				Reason:    fmt.Sprintf("decode %s payload: %v", k, err),
			}
		}
	}
	b := c.Base()
	b.ContentID = r.ContentID
	b.Title = r.Title
	b.Slug = r.Slug
	b.Folder = r.Folder
	b.Summary = r.Summary
	b.Tags = r.Tags
	b.BodyContent = r.BodyContent
	b.BodyContentFormat = r.BodyContentFormat
	b.ContentVersion = r.ContentVersion.UTC()
	b.CreatedOn = r.CreatedOn.UTC()
	b.CreatedBy = r.CreatedBy
	b.LastUpdatedBy = r.LastUpdatedBy
	b.IsDraft = r.IsDraft
	b.ShowInMainSiteFeed = r.ShowInMainSiteFeed
	b.FeedOn = r.FeedOn.UTC()
	if r.MainPicture.Valid {
		id := r.MainPicture.UUID
		b.MainPicture = &id
	}
	if r.LastUpdatedOn.Valid {
		t := r.LastUpdatedOn.Time.UTC()
		b.LastUpdatedOn = &t
	}
	return c, nil
}

func records(rows []contentRow) ([]content.Content, error) {
	out := make([]content.Content, 0, len(rows))
	for _, r := range rows {
		c, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// batches splits ids into chunks of at most n.
func batches(ids []content.ID, n int) [][]content.ID {
	var out [][]content.ID
	for len(ids) > n {
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

// selectIn runs query (which must contain one `IN (?)`) once per batch of
// ids and appends every scanned row to dest.  args are bound before ids.
func selectIn[T any](ctx context.Context, s *Store, query string, ids []content.ID, args ...any) ([]T, error) {
	var out []T
	for _, chunk := range batches(ids, s.batch) {
		q, qargs, err := sqlx.In(query, append(append([]any{}, args...), chunk)...)
		if err != nil {
			return nil, err
		}
		var part []T
		if err := s.db.SelectContext(ctx, &part, s.db.Rebind(q), qargs...); err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

// inTx runs fn in a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			zap.S().Warnw("rollback failed", "err", rbErr)
		}
		return err
	}
	return tx.Commit()
}
