package content

import "time"

// GenerationLog is one completed site build.  Version is the change
// detection watermark; Settings is the canonical JSON snapshot of the site
// settings the build ran with.
type GenerationLog struct {
	Version   time.Time `db:"generation_version"`
	Settings  string    `db:"generation_settings"`
	CreatedOn time.Time `db:"created_on"`
}

// RelatedContent records that ContentOne references ContentTwo in the
// given generation.
type RelatedContent struct {
	ContentOne ID        `db:"content_one"`
	ContentTwo ID        `db:"content_two"`
	Version    time.Time `db:"generation_version"`
}

// TagLog records one tag membership seen by a generation.
type TagLog struct {
	TagSlug   string    `db:"tag_slug"`
	ContentID ID        `db:"content_id"`
	Version   time.Time `db:"generation_version"`
}

// DailyPhotoLog records that a photo appeared on a daily photo page.
type DailyPhotoLog struct {
	DailyPhotoDate time.Time `db:"daily_photo_date"`
	ContentID      ID        `db:"content_id"`
	Version        time.Time `db:"generation_version"`
}

// MenuLink is one entry in the site navigation menu.
type MenuLink struct {
	ContentID      ID        `db:"content_id"`
	LinkTag        string    `db:"link_tag"`
	MenuOrder      int       `db:"menu_order"`
	ContentVersion time.Time `db:"content_version"`
}
