// internal/config/model.go
//
// Typed configuration model for trailhead.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                             – dotenv values,
//   • `conf/trailhead.yaml`                       – primary static file,
//   • `TRAILHEAD_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client before unmarshalling, so the model never stores
// Vault URIs, only plain strings.
//
// Validation happens immediately after defaults are applied; the binary
// fails fast if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • `Site` doubles as the generation settings snapshot.  Adding a field
//     here changes the snapshot and forces one full rebuild.

package config

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The template (`DSN`) stays in YAML so operators can tweak host, port, or
// flags without touching Vault.  When it contains a `%s` verb the
// `Password` value is substituted into it at open time.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
}

//
// Site section
//

// Site is everything a rendered page depends on.
type Site struct {
	Name             string   `koanf:"name"               json:"name"             validate:"required"`
	BaseURL          string   `koanf:"base_url"           json:"baseUrl"          validate:"required,url"`
	Author           string   `koanf:"author"             json:"author"`
	Summary          string   `koanf:"summary"            json:"summary"`
	Keywords         string   `koanf:"keywords"           json:"keywords"`
	OutputDir        string   `koanf:"output_dir"         json:"outputDir"        validate:"required"`
	Theme            string   `koanf:"theme"              json:"theme"`
	GalleryRowHeight int      `koanf:"gallery_row_height" json:"galleryRowHeight" validate:"gte=0"`
	LatestCount      int      `koanf:"latest_count"       json:"latestCount"      validate:"gte=0"`
	FeedItems        int      `koanf:"feed_items"         json:"feedItems"        validate:"gte=0"`
	ExcludedTags     []string `koanf:"excluded_tags"      json:"excludedTags"`
	DefaultCreatedBy string   `koanf:"default_created_by" json:"defaultCreatedBy"`
}

//
// Generation section
//

// Generation tunes the site build, not its output, so it is not part of
// the settings snapshot.
type Generation struct {
	// LogRetention is how many generation logs survive pruning.
	LogRetention int `koanf:"log_retention"  validate:"gte=1"`
	// Concurrency bounds per-kind item fan-out.
	Concurrency int `koanf:"concurrency"    validate:"gte=1"`
	// ClosurePasses bounds related-content propagation; 0 iterates to a
	// fixpoint.
	ClosurePasses int `koanf:"closure_passes" validate:"gte=0"`
	IDBatchSize   int `koanf:"id_batch_size"  validate:"gte=1"`
}

//
// Log and metrics sections
//

type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

type Metrics struct {
	// Textfile is a node_exporter textfile collector target.  Empty
	// disables the flush.
	Textfile string `koanf:"textfile"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // TRAILHEAD_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	Database   Database   `koanf:"database"`
	Site       Site       `koanf:"site"`
	Generation Generation `koanf:"generation"`
	Log        Log        `koanf:"log"`
	Metrics    Metrics    `koanf:"metrics"`
	Paths      Paths      `koanf:"-"`
}

// applyDefaults fills zero values that have a sensible default.
func applyDefaults(c *Config) {
	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 15
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
	if c.Site.Theme == "" {
		c.Site.Theme = "default"
	}
	if c.Site.GalleryRowHeight == 0 {
		c.Site.GalleryRowHeight = 250
	}
	if c.Site.LatestCount == 0 {
		c.Site.LatestCount = 30
	}
	if c.Site.FeedItems == 0 {
		c.Site.FeedItems = 30
	}
	if c.Generation.LogRetention == 0 {
		c.Generation.LogRetention = 30
	}
	if c.Generation.Concurrency == 0 {
		c.Generation.Concurrency = 8
	}
	if c.Generation.IDBatchSize == 0 {
		c.Generation.IDBatchSize = 500
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
