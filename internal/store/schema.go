package store

import (
	"context"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS content (
		content_id             CHAR(36)     NOT NULL PRIMARY KEY,
		kind                   VARCHAR(20)  NOT NULL,
		title                  VARCHAR(400) NOT NULL,
		slug                   VARCHAR(100) NOT NULL,
		folder                 VARCHAR(100) NOT NULL,
		summary                TEXT         NOT NULL,
		tags                   TEXT         NOT NULL,
		body_content           MEDIUMTEXT   NOT NULL,
		body_content_format    VARCHAR(20)  NOT NULL,
		main_picture           CHAR(36)     NULL,
		content_version        DATETIME(6)  NOT NULL,
		created_on             DATETIME(6)  NOT NULL,
		created_by             VARCHAR(200) NOT NULL,
		last_updated_on        DATETIME(6)  NULL,
		last_updated_by        VARCHAR(200) NOT NULL,
		is_draft               BOOLEAN      NOT NULL,
		show_in_main_site_feed BOOLEAN      NOT NULL,
		feed_on                DATETIME(6)  NOT NULL,
		payload                JSON         NOT NULL,
		KEY ix_content_kind (kind, feed_on),
		KEY ix_content_version (content_version)
	)`,
	`CREATE TABLE IF NOT EXISTS historic_content (
		content_id             CHAR(36)     NOT NULL,
		kind                   VARCHAR(20)  NOT NULL,
		title                  VARCHAR(400) NOT NULL,
		slug                   VARCHAR(100) NOT NULL,
		folder                 VARCHAR(100) NOT NULL,
		summary                TEXT         NOT NULL,
		tags                   TEXT         NOT NULL,
		body_content           MEDIUMTEXT   NOT NULL,
		body_content_format    VARCHAR(20)  NOT NULL,
		main_picture           CHAR(36)     NULL,
		content_version        DATETIME(6)  NOT NULL,
		created_on             DATETIME(6)  NOT NULL,
		created_by             VARCHAR(200) NOT NULL,
		last_updated_on        DATETIME(6)  NULL,
		last_updated_by        VARCHAR(200) NOT NULL,
		is_draft               BOOLEAN      NOT NULL,
		show_in_main_site_feed BOOLEAN      NOT NULL,
		feed_on                DATETIME(6)  NOT NULL,
		payload                JSON         NOT NULL,
		archived_on            DATETIME(6)  NOT NULL,
		PRIMARY KEY (content_id, content_version),
		KEY ix_historic_archived (archived_on)
	)`,
	`CREATE TABLE IF NOT EXISTS point_detail (
		content_id       CHAR(36)    NOT NULL PRIMARY KEY,
		point_content_id CHAR(36)    NOT NULL,
		data_type        VARCHAR(40) NOT NULL,
		structured_data  JSON        NOT NULL,
		content_version  DATETIME(6) NOT NULL,
		created_on       DATETIME(6) NOT NULL,
		KEY ix_point_detail_point (point_content_id)
	)`,
	`CREATE TABLE IF NOT EXISTS historic_point_detail (
		content_id       CHAR(36)    NOT NULL,
		point_content_id CHAR(36)    NOT NULL,
		data_type        VARCHAR(40) NOT NULL,
		structured_data  JSON        NOT NULL,
		content_version  DATETIME(6) NOT NULL,
		created_on       DATETIME(6) NOT NULL,
		archived_on      DATETIME(6) NOT NULL,
		PRIMARY KEY (content_id, content_version)
	)`,
	`CREATE TABLE IF NOT EXISTS generation_log (
		generation_version  DATETIME(6) NOT NULL PRIMARY KEY,
		generation_settings TEXT        NOT NULL,
		created_on          DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS generation_changed_content_id (
		generation_version DATETIME(6) NOT NULL,
		content_id         CHAR(36)    NOT NULL,
		PRIMARY KEY (generation_version, content_id)
	)`,
	`CREATE TABLE IF NOT EXISTS generation_related_content (
		generation_version DATETIME(6) NOT NULL,
		content_one        CHAR(36)    NOT NULL,
		content_two        CHAR(36)    NOT NULL,
		PRIMARY KEY (generation_version, content_one, content_two)
	)`,
	`CREATE TABLE IF NOT EXISTS generation_tag_log (
		generation_version DATETIME(6)  NOT NULL,
		tag_slug           VARCHAR(100) NOT NULL,
		content_id         CHAR(36)     NOT NULL,
		PRIMARY KEY (generation_version, tag_slug, content_id)
	)`,
	`CREATE TABLE IF NOT EXISTS generation_daily_photo_log (
		generation_version DATETIME(6) NOT NULL,
		daily_photo_date   DATE        NOT NULL,
		content_id         CHAR(36)    NOT NULL,
		PRIMARY KEY (generation_version, daily_photo_date, content_id)
	)`,
	`CREATE TABLE IF NOT EXISTS menu_link (
		content_id      CHAR(36)     NOT NULL PRIMARY KEY,
		link_tag        TEXT         NOT NULL,
		menu_order      INT          NOT NULL,
		content_version DATETIME(6)  NOT NULL
	)`,
}

// Migrate creates any missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
