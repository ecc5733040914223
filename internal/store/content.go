// internal/store/content.go
//
// Content reads and writes.
//
// Context
// -------
// Readers decode rows of the single `content` table into kind structs.
// Writers keep history: every overwrite or delete copies the live row to
// `historic_content` first.
//
// Workflow
// --------
//  1. Save archives and removes the old row, then inserts c with a newer
//     content_version.
//  2. Delete archives, then removes the live row.
//  3. SavePointDetails archives the point and its detail rows, bumps the
//     point's version, and inserts the new details, in one transaction.
//
// Notes
// -----
//   - Versions come from content.NextVersion so they stay strictly
//     increasing at microsecond precision.
//   - Missing rows surface as content.ErrNotFound.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/yanizio/trailhead/internal/content"
)

/*──────────────────────────── Reader ─────────────────────────────────────*/

func (s *Store) ByID(ctx context.Context, id content.ID) (content.Content, error) {
	var r contentRow
	err := s.db.GetContext(ctx, &r, `SELECT `+contentColumns+` FROM content WHERE content_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("content %s: %w", id, err)
	}
	return r.record()
}

func (s *Store) Lookup(ctx context.Context, ids []content.ID) ([]content.Content, error) {
	rows, err := selectIn[contentRow](ctx, s,
		`SELECT `+contentColumns+` FROM content WHERE content_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup content: %w", err)
	}
	return records(rows)
}

func (s *Store) ByKind(ctx context.Context, k content.Kind, ids []content.ID) ([]content.Content, error) {
	rows, err := selectIn[contentRow](ctx, s,
		`SELECT `+contentColumns+` FROM content WHERE kind = ? AND content_id IN (?)`, ids, k.String())
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", k, err)
	}
	return records(rows)
}

func (s *Store) All(ctx context.Context, k content.Kind) ([]content.Content, error) {
	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+contentColumns+` FROM content WHERE kind = ?
		 ORDER BY feed_on DESC, content_id`, k.String()); err != nil {
		return nil, fmt.Errorf("all %s: %w", k, err)
	}
	return records(rows)
}

func (s *Store) Everything(ctx context.Context) ([]content.Content, error) {
	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+contentColumns+` FROM content ORDER BY feed_on DESC, content_id`); err != nil {
		return nil, fmt.Errorf("all content: %w", err)
	}
	return records(rows)
}

func (s *Store) ChangedSince(ctx context.Context, v time.Time) ([]content.Content, error) {
	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+contentColumns+` FROM content WHERE content_version > ?
		 ORDER BY feed_on DESC, content_id`, v); err != nil {
		return nil, fmt.Errorf("content changed since %s: %w", v.Format(time.RFC3339), err)
	}
	return records(rows)
}

type detailRow struct {
	ContentID      uuid.UUID      `db:"content_id"`
	PointContentID uuid.UUID      `db:"point_content_id"`
	DataType       string         `db:"data_type"`
	StructuredData datatypes.JSON `db:"structured_data"`
	ContentVersion time.Time      `db:"content_version"`
	CreatedOn      time.Time      `db:"created_on"`
}

const detailColumns = `content_id, point_content_id, data_type, structured_data, content_version, created_on`

func (s *Store) PointDetails(ctx context.Context, pointIDs []content.ID) ([]content.PointDetail, error) {
	rows, err := selectIn[detailRow](ctx, s,
		`SELECT `+detailColumns+` FROM point_detail WHERE point_content_id IN (?)`, pointIDs)
	if err != nil {
		return nil, fmt.Errorf("point details: %w", err)
	}
	out := make([]content.PointDetail, len(rows))
	for i, r := range rows {
		out[i] = content.PointDetail{
			ContentID:            r.ContentID,
			PointContentID:       r.PointContentID,
			DataTypeIdentifier:   r.DataType,
			StructuredDataAsJSON: string(r.StructuredData),
			ContentVersion:       r.ContentVersion.UTC(),
			CreatedOn:            r.CreatedOn.UTC(),
		}
	}
	return out, nil
}

/*──────────────────────────── Archive ────────────────────────────────────*/

func (s *Store) Historic(ctx context.Context, id content.ID) ([]content.Content, error) {
	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+contentColumns+` FROM historic_content WHERE content_id = ?
		 ORDER BY content_version DESC`, id); err != nil {
		return nil, fmt.Errorf("historic %s: %w", id, err)
	}
	return records(rows)
}

func (s *Store) DeletedSince(ctx context.Context, v time.Time) ([]content.ID, error) {
	var ids []content.ID
	if err := s.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT h.content_id FROM historic_content h
		 LEFT JOIN content c ON c.content_id = h.content_id
		 WHERE c.content_id IS NULL AND h.archived_on > ?`, v); err != nil {
		return nil, fmt.Errorf("deleted since: %w", err)
	}
	return ids, nil
}

type kindRow struct {
	ContentID uuid.UUID `db:"content_id"`
	Kind      string    `db:"kind"`
}

func (s *Store) HistoricKind(ctx context.Context, ids []content.ID) (map[content.ID]content.Kind, error) {
	rows, err := selectIn[kindRow](ctx, s,
		`SELECT content_id, kind FROM historic_content WHERE content_id IN (?)
		 ORDER BY content_version`, ids)
	if err != nil {
		return nil, fmt.Errorf("historic kinds: %w", err)
	}
	out := make(map[content.ID]content.Kind, len(rows))
	for _, r := range rows {
		k, err := content.ParseKind(r.Kind)
		if err != nil {
			zap.S().Warnw("historic row with unknown kind", "content_id", r.ContentID, "kind", r.Kind)
			continue
		}
		out[r.ContentID] = k // newest version wins
	}
	return out, nil
}

/*──────────────────────────── Writer ─────────────────────────────────────*/

// archive copies the live row of id into historic_content.
func archive(ctx context.Context, tx *sqlx.Tx, id content.ID, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO historic_content (`+contentColumns+`, archived_on)
		 SELECT `+contentColumns+`, ? FROM content WHERE content_id = ?`, at, id)
	return err
}

// Save supersedes the live row of c (if any) and inserts c with a strictly
// newer ContentVersion.  New records must already carry a ContentID;
// Initialize keeps it.
func (s *Store) Save(ctx context.Context, c content.Content, by string) error {
	b := c.Base()
	if b.ContentID == uuid.Nil {
		return fmt.Errorf("save %s %q: missing content id", c.Kind(), b.Title)
	}
	now := s.now()

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var prev time.Time
		err := tx.GetContext(ctx, &prev,
			`SELECT content_version FROM content WHERE content_id = ? FOR UPDATE`, b.ContentID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if b.ContentVersion.IsZero() {
				content.Initialize(c, by, now)
			}
		case err != nil:
			return err
		default:
			if err := archive(ctx, tx, b.ContentID, now); err != nil {
				return fmt.Errorf("archive: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM content WHERE content_id = ?`, b.ContentID); err != nil {
				return fmt.Errorf("remove superseded row: %w", err)
			}
			b.ContentVersion = prev.UTC()
			content.Touch(c, by, now)
		}

		row, err := toRow(c)
		if err != nil {
			return err
		}
		_, err = tx.NamedExecContext(ctx, `INSERT INTO content (`+contentColumns+`) VALUES (`+contentValues+`)`, row)
		return err
	})
	if err != nil {
		return fmt.Errorf("save %s %s: %w", c.Kind(), b.ContentID, err)
	}
	zap.S().Debugw("content saved", "content_id", b.ContentID, "kind", c.Kind().String(), "version", b.ContentVersion)
	return nil
}

// Delete archives the live row (and a point's details) and removes it.
func (s *Store) Delete(ctx context.Context, id content.ID) error {
	now := s.now()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := archive(ctx, tx, id, now); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM content WHERE content_id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return content.ErrNotFound
		}
		return archiveDetails(ctx, tx, id, now)
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func archiveDetails(ctx context.Context, tx *sqlx.Tx, pointID content.ID, at time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO historic_point_detail (`+detailColumns+`, archived_on)
		 SELECT `+detailColumns+`, ? FROM point_detail WHERE point_content_id = ?`, at, pointID); err != nil {
		return fmt.Errorf("archive point details: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM point_detail WHERE point_content_id = ?`, pointID); err != nil {
		return fmt.Errorf("remove point details: %w", err)
	}
	return nil
}

// SavePointDetails replaces the detail set of a point, archiving the old
// rows.  The point itself is superseded to a new ContentVersion in the
// same transaction so change detection sees detail-only edits.
func (s *Store) SavePointDetails(ctx context.Context, pointID content.ID, details []content.PointDetail) error {
	now := s.now()

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var prev time.Time
		err := tx.GetContext(ctx, &prev,
			`SELECT content_version FROM content WHERE content_id = ? AND kind = ? FOR UPDATE`,
			pointID, content.KindPoint.String())
		if errors.Is(err, sql.ErrNoRows) {
			return content.ErrNotFound
		}
		if err != nil {
			return err
		}
		version := content.NextVersion(prev.UTC(), now)

		if err := archive(ctx, tx, pointID, now); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE content SET content_version = ?, last_updated_on = ? WHERE content_id = ?`,
			version, version, pointID); err != nil {
			return fmt.Errorf("bump point version: %w", err)
		}
		if err := archiveDetails(ctx, tx, pointID, now); err != nil {
			return err
		}
		if len(details) == 0 {
			return nil
		}

		rows := make([]detailRow, len(details))
		for i, d := range details {
			id := d.ContentID
			if id == uuid.Nil {
				id = uuid.New()
			}
			created := d.CreatedOn
			if created.IsZero() {
				created = version
			}
			rows[i] = detailRow{
				ContentID:      id,
				PointContentID: pointID,
				DataType:       d.DataTypeIdentifier,
				StructuredData: datatypes.JSON(d.StructuredDataAsJSON),
				ContentVersion: version,
				CreatedOn:      created,
			}
		}
		_, err = tx.NamedExecContext(ctx,
			`INSERT INTO point_detail (`+detailColumns+`)
			 VALUES (:content_id, :point_content_id, :data_type, :structured_data, :content_version, :created_on)`, rows)
		return err
	})
	if err != nil {
		return fmt.Errorf("save point details %s: %w", pointID, err)
	}
	return nil
}
