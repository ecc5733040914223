// internal/settings/settings.go
//
// URL and output-path builders.
//
// Context
// -------
// Every link a bracket code or page template emits, and every file the
// generator writes, is derived here from one explicit `Site` value.  The
// value is built once from `config.Site` and passed to whoever needs it;
// nothing reads settings from package state.
//
// Layout
// ------
//
//	/Photos/<folder>/<slug>/<slug>.html   per-item page (also Images, Files,
//	                                      Points, Lines, GeoJson, Posts,
//	                                      Videos, Trails)
//	/Notes/<folder>/<slug>.html           notes have no asset directory
//	/<Dir>/index.html                     kind list and search page
//	/<Dir>/rss.xml                        kind feed
//	/Tags/<tag-slug>.html                 tag page
//	/Photos/Galleries/Daily/DailyPhotos-YYYY-MM-DD.html
//
// Notes
// -----
//   - Paths use forward slashes; File* methods convert to OS paths.
//   - URL methods return absolute URLs rooted at BaseURL so the same
//     fragments work on the site and inside email.
package settings

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/yanizio/trailhead/internal/config"
	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/slug"
)

// Site is the settings collaborator.  It is immutable and safe to share.
type Site struct {
	cfg  config.Site
	base string
}

// New returns a Site for cfg.
func New(cfg config.Site) *Site {
	return &Site{cfg: cfg, base: strings.TrimRight(cfg.BaseURL, "/")}
}

// Config returns the underlying settings.
func (s *Site) Config() config.Site { return s.cfg }

func (s *Site) Name() string { return s.cfg.Name }
func (s *Site) BaseURL() string { return s.base }
func (s *Site) OutputDir() string { return s.cfg.OutputDir }

// Snapshot is the canonical serialized form stored in the generation log.
// Any difference between two snapshots forces a full rebuild.
func (s *Site) Snapshot() (string, error) {
	raw, err := json.Marshal(s.cfg)
	if err != nil {
		return "", fmt.Errorf("settings snapshot: %w", err)
	}
	return string(raw), nil
}

/*──────────────────────────── directories ─────────────────────────────────*/

// Dir is the top level output directory of a kind.  Snippets are never
// written and have none.
func Dir(k content.Kind) string {
	switch k {
	case content.KindFile:
		return "Files"
	case content.KindGeoJSON:
		return "GeoJson"
	case content.KindImage:
		return "Images"
	case content.KindLine:
		return "Lines"
	case content.KindLink:
		return "Links"
	case content.KindNote:
		return "Notes"
	case content.KindPhoto:
		return "Photos"
	case content.KindPoint:
		return "Points"
	case content.KindPost:
		return "Posts"
	case content.KindTrail:
		return "Trails"
	case content.KindVideo:
		return "Videos"
	case content.KindMapComponent:
		return "Maps"
	case content.KindSnippet:
		return ""
	}
	panic(fmt.Sprintf("settings: unknown kind %d", int(k)))
}

// ContentDir is the site-relative directory holding a record's page and
// assets, e.g. "Photos/2024/sunrise".
func ContentDir(c content.Content) string {
	b := c.Base()
	if c.Kind() == content.KindNote {
		return path.Join(Dir(content.KindNote), b.Folder)
	}
	return path.Join(Dir(c.Kind()), b.Folder, b.Slug)
}

/*──────────────────────────── per-record ──────────────────────────────────*/

// PagePath is the site-relative path of a record's page, or "" for kinds
// without pages.
func PagePath(c content.Content) string {
	if !c.Kind().HasPage() {
		return ""
	}
	return "/" + path.Join(ContentDir(c), c.Base().Slug+".html")
}

// PageURL is the absolute URL of a record's page.  Links resolve to their
// external target.
func (s *Site) PageURL(c content.Content) string {
	if l, ok := c.(*content.Link); ok {
		return l.URL
	}
	p := PagePath(c)
	if p == "" {
		return ""
	}
	return s.base + p
}

// PageFile is the output file of a record's page.
func (s *Site) PageFile(c content.Content) string {
	return s.file(PagePath(c))
}

// AssetDir is the output directory holding a record's files (picture
// variants, the original upload).
func (s *Site) AssetDir(c content.Content) string {
	return filepath.Join(s.cfg.OutputDir, filepath.FromSlash(ContentDir(c)))
}

// AssetURL is the absolute URL of a file stored beside a record's page.
func (s *Site) AssetURL(c content.Content, fileName string) string {
	return s.base + "/" + path.Join(ContentDir(c), fileName)
}

// DownloadURL links the original upload of a File (or Video).
func (s *Site) DownloadURL(c content.Content) string {
	switch r := c.(type) {
	case *content.File:
		return s.AssetURL(c, r.OriginalFileName)
	case *content.Video:
		return s.AssetURL(c, r.OriginalFileName)
	}
	return s.PageURL(c)
}

// DataURL is the JSON map data of a Line, GeoJSON, or MapComponent.
func (s *Site) DataURL(c content.Content) string {
	return s.base + DataPath(c)
}

// DataPath is the site-relative path of DataURL.
func DataPath(c content.Content) string {
	return "/" + path.Join(Dir(c.Kind()), "Data", c.Base().ContentID.String()+".json")
}

// DataFile is the output file of DataURL.
func (s *Site) DataFile(c content.Content) string { return s.file(DataPath(c)) }

// PointDataPath is the shared side-file holding every point.
const PointDataPath = "/Points/Data/pointdata.json"

func (s *Site) PointDataURL() string { return s.base + PointDataPath }
func (s *Site) PointDataFile() string { return s.file(PointDataPath) }

/*──────────────────────────── lists and feeds ─────────────────────────────*/

func ListPath(k content.Kind) string { return "/" + Dir(k) + "/index.html" }
func RSSPath(k content.Kind) string { return "/" + Dir(k) + "/rss.xml" }

func (s *Site) ListURL(k content.Kind) string { return s.base + ListPath(k) }
func (s *Site) ListFile(k content.Kind) string { return s.file(ListPath(k)) }
func (s *Site) RSSURL(k content.Kind) string { return s.base + RSSPath(k) }
func (s *Site) RSSFile(k content.Kind) string { return s.file(RSSPath(k)) }

const (
	indexPath        = "/index.html"
	errorPath        = "/error.html"
	searchPath       = "/search.html"
	mainRSSPath      = "/rss.xml"
	allTagsPath      = "/Tags/index.html"
	cameraRollPath   = "/Photos/Galleries/CameraRoll.html"
	latestPath       = "/Latest/index.html"
	activityPath     = "/Activity/index.html"
	dailyPhotoFormat = "/Photos/Galleries/Daily/DailyPhotos-%s.html"
)

func (s *Site) IndexURL() string { return s.base + indexPath }
func (s *Site) IndexFile() string { return s.file(indexPath) }
func (s *Site) ErrorURL() string { return s.base + errorPath }
func (s *Site) ErrorFile() string { return s.file(errorPath) }
func (s *Site) SearchURL() string { return s.base + searchPath }
func (s *Site) SearchFile() string { return s.file(searchPath) }
func (s *Site) MainRSSURL() string { return s.base + mainRSSPath }
func (s *Site) MainRSSFile() string { return s.file(mainRSSPath) }
func (s *Site) AllTagsURL() string { return s.base + allTagsPath }
func (s *Site) AllTagsFile() string { return s.file(allTagsPath) }
func (s *Site) CameraRollURL() string { return s.base + cameraRollPath }
func (s *Site) CameraRollFile() string { return s.file(cameraRollPath) }
func (s *Site) LatestContentURL() string { return s.base + latestPath }
func (s *Site) LatestContentFile() string { return s.file(latestPath) }
func (s *Site) MonthlyActivityURL() string { return s.base + activityPath }
func (s *Site) MonthlyActivityFile() string { return s.file(activityPath) }

// TagURL is the page listing everything tagged tag.
func (s *Site) TagURL(tag string) string { return s.base + tagPath(tag) }
func (s *Site) TagFile(tag string) string { return s.file(tagPath(tag)) }

func tagPath(tag string) string { return "/Tags/" + slug.TagSlug(tag) + ".html" }

// DailyPhotoURL is the daily photo gallery for the calendar day of d.
func (s *Site) DailyPhotoURL(d time.Time) string { return s.base + dailyPath(d) }
func (s *Site) DailyPhotoFile(d time.Time) string { return s.file(dailyPath(d)) }

func dailyPath(d time.Time) string { return fmt.Sprintf(dailyPhotoFormat, d.Format("2006-01-02")) }

// GoogleMapsURL gives driving directions to a coordinate.
func GoogleMapsURL(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%.6f,%.6f", lat, lng)
}

func (s *Site) file(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Join(s.cfg.OutputDir, filepath.FromSlash(strings.TrimPrefix(p, "/")))
}
