package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/trailhead/internal/content"
)

// generationTables hold rows keyed by generation_version that are pruned
// together with their log.
var generationTables = []string{
	"generation_changed_content_id",
	"generation_related_content",
	"generation_tag_log",
	"generation_daily_photo_log",
}

func (s *Store) LastGeneration(ctx context.Context) (*content.GenerationLog, error) {
	var l content.GenerationLog
	err := s.db.GetContext(ctx, &l,
		`SELECT generation_version, generation_settings, created_on
		   FROM generation_log ORDER BY generation_version DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last generation: %w", err)
	}
	l.Version = l.Version.UTC()
	l.CreatedOn = l.CreatedOn.UTC()
	return &l, nil
}

func (s *Store) WriteGeneration(ctx context.Context, log content.GenerationLog) error {
	if log.CreatedOn.IsZero() {
		log.CreatedOn = s.now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO generation_log (generation_version, generation_settings, created_on)
		 VALUES (:generation_version, :generation_settings, :created_on)
		 ON DUPLICATE KEY UPDATE generation_settings = VALUES(generation_settings)`, log)
	if err != nil {
		return fmt.Errorf("write generation log: %w", err)
	}
	return nil
}

/*──────────────────────────── per-version sets ────────────────────────────*/

// writeVersion replaces the rows of table for v with rows, inserting in
// batches inside one transaction.
func writeVersion[T any](ctx context.Context, s *Store, table string, v time.Time, insert string, rows []T) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE generation_version = ?`, v); err != nil {
			return err
		}
		for _, chunk := range chunkRows(rows, s.batch) {
			if _, err := tx.NamedExecContext(ctx, insert, chunk); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) RelatedContent(ctx context.Context, v time.Time) ([]content.RelatedContent, error) {
	var out []content.RelatedContent
	if err := s.db.SelectContext(ctx, &out,
		`SELECT content_one, content_two, generation_version
		   FROM generation_related_content WHERE generation_version = ?`, v); err != nil {
		return nil, fmt.Errorf("related content: %w", err)
	}
	return out, nil
}

func (s *Store) WriteRelatedContent(ctx context.Context, v time.Time, edges []content.RelatedContent) error {
	rows := make([]content.RelatedContent, len(edges))
	for i, e := range edges {
		e.Version = v
		rows[i] = e
	}
	if err := writeVersion(ctx, s, "generation_related_content", v,
		`INSERT INTO generation_related_content (generation_version, content_one, content_two)
		 VALUES (:generation_version, :content_one, :content_two)`, rows); err != nil {
		return fmt.Errorf("write related content: %w", err)
	}
	return nil
}

type changedRow struct {
	Version   time.Time  `db:"generation_version"`
	ContentID content.ID `db:"content_id"`
}

func (s *Store) ChangedIDs(ctx context.Context, v time.Time) ([]content.ID, error) {
	var ids []content.ID
	if err := s.db.SelectContext(ctx, &ids,
		`SELECT content_id FROM generation_changed_content_id WHERE generation_version = ?`, v); err != nil {
		return nil, fmt.Errorf("changed ids: %w", err)
	}
	return ids, nil
}

func (s *Store) WriteChangedIDs(ctx context.Context, v time.Time, ids []content.ID) error {
	rows := make([]changedRow, len(ids))
	for i, id := range ids {
		rows[i] = changedRow{Version: v, ContentID: id}
	}
	if err := writeVersion(ctx, s, "generation_changed_content_id", v,
		`INSERT INTO generation_changed_content_id (generation_version, content_id)
		 VALUES (:generation_version, :content_id)`, rows); err != nil {
		return fmt.Errorf("write changed ids: %w", err)
	}
	return nil
}

func (s *Store) TagLog(ctx context.Context, v time.Time) ([]content.TagLog, error) {
	var out []content.TagLog
	if err := s.db.SelectContext(ctx, &out,
		`SELECT tag_slug, content_id, generation_version
		   FROM generation_tag_log WHERE generation_version = ?`, v); err != nil {
		return nil, fmt.Errorf("tag log: %w", err)
	}
	return out, nil
}

func (s *Store) WriteTagLog(ctx context.Context, v time.Time, rows []content.TagLog) error {
	stamped := make([]content.TagLog, len(rows))
	for i, r := range rows {
		r.Version = v
		stamped[i] = r
	}
	if err := writeVersion(ctx, s, "generation_tag_log", v,
		`INSERT INTO generation_tag_log (generation_version, tag_slug, content_id)
		 VALUES (:generation_version, :tag_slug, :content_id)`, stamped); err != nil {
		return fmt.Errorf("write tag log: %w", err)
	}
	return nil
}

func (s *Store) DailyPhotoLog(ctx context.Context, v time.Time) ([]content.DailyPhotoLog, error) {
	var out []content.DailyPhotoLog
	if err := s.db.SelectContext(ctx, &out,
		`SELECT daily_photo_date, content_id, generation_version
		   FROM generation_daily_photo_log WHERE generation_version = ?`, v); err != nil {
		return nil, fmt.Errorf("daily photo log: %w", err)
	}
	return out, nil
}

func (s *Store) WriteDailyPhotoLog(ctx context.Context, v time.Time, rows []content.DailyPhotoLog) error {
	stamped := make([]content.DailyPhotoLog, len(rows))
	for i, r := range rows {
		r.Version = v
		stamped[i] = r
	}
	if err := writeVersion(ctx, s, "generation_daily_photo_log", v,
		`INSERT INTO generation_daily_photo_log (generation_version, daily_photo_date, content_id)
		 VALUES (:generation_version, :daily_photo_date, :content_id)`, stamped); err != nil {
		return fmt.Errorf("write daily photo log: %w", err)
	}
	return nil
}

/*──────────────────────────── menu ───────────────────────────────────────*/

func (s *Store) MenuLinks(ctx context.Context) ([]content.MenuLink, error) {
	var out []content.MenuLink
	if err := s.db.SelectContext(ctx, &out,
		`SELECT content_id, link_tag, menu_order, content_version
		   FROM menu_link ORDER BY menu_order, content_id`); err != nil {
		return nil, fmt.Errorf("menu links: %w", err)
	}
	return out, nil
}

func (s *Store) MenuLinksChangedSince(ctx context.Context, v time.Time) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM menu_link WHERE content_version > ?`, v); err != nil {
		return false, fmt.Errorf("menu links changed: %w", err)
	}
	return n > 0, nil
}

/*──────────────────────────── retention ──────────────────────────────────*/

// Prune keeps the newest keep generation logs and deletes every row of the
// dependent tables whose version no longer has a log.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep < 1 {
		return nil
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		var cutoff time.Time
		err := tx.GetContext(ctx, &cutoff,
			`SELECT generation_version FROM generation_log
			  ORDER BY generation_version DESC LIMIT 1 OFFSET ?`, keep-1)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("prune cutoff: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM generation_log WHERE generation_version < ?`, cutoff)
		if err != nil {
			return fmt.Errorf("prune generation_log: %w", err)
		}
		logs, _ := res.RowsAffected()

		for _, table := range generationTables {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM `+table+` WHERE generation_version NOT IN
				 (SELECT generation_version FROM generation_log)`); err != nil {
				return fmt.Errorf("prune %s: %w", table, err)
			}
		}
		zap.S().Debugw("generation logs pruned", "removed", logs, "cutoff", cutoff)
		return nil
	})
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func chunkRows[T any](rows []T, n int) [][]T {
	var out [][]T
	for len(rows) > n {
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}
