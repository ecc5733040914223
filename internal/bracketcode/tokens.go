// internal/bracketcode/tokens.go
//
// Token names and special page codes.
//
// Context
// -------
// Every id-bearing token is a constant here.  The id-less special codes
// (index, search, per-kind lists, feeds, and the activity pages) are a
// table of token, default text, and URL builder.
//
// Notes
// -----
//   - SpecialTokens reports the table in processing order.
//   - Token names are stored in authors' bodies; renaming one orphans
//     existing codes.

package bracketcode

import "github.com/yanizio/trailhead/internal/content"

// Tokens understood by the engine.
const (
	GalleryToken = "picturegallery"

	TokenSnippet = "snippet"

	TokenFileEmbed        = "fileembed"
	TokenFileDownloadLink = "filedownloadlink"
	TokenFileImageLink    = "fileimagelink"
	TokenFileLink         = "filelink"

	TokenGeoJSON     = "geojson"
	TokenGeoJSONLink = "geojsonlink"

	TokenImage     = "image"
	TokenImageLink = "imagelink"

	TokenLineElevationChart = "lineelevationchart"
	TokenLine               = "line"
	TokenLineStats          = "linestats"
	TokenLineImageLink      = "lineimagelink"
	TokenLineLink           = "linelink"

	TokenMapComponent = "mapcomponent"

	TokenNoteLink = "notelink"

	TokenPhoto     = "photo"
	TokenPhotoLink = "photolink"

	TokenPointDirections = "pointexternaldirectionlink"
	TokenPoint           = "point"
	TokenPointImageLink  = "pointimagelink"
	TokenPointLink       = "pointlink"

	TokenPostImageLink = "postimagelink"
	TokenPostLink      = "postlink"

	TokenTrailStats = "trailstats"
	TokenTrailLink  = "traillink"

	TokenVideoEmbed     = "videoembed"
	TokenVideoImageLink = "videoimagelink"
	TokenVideoLink      = "videolink"

	TokenLinkContent = "linkcontent"
)

// specialPage is an id-less code that links to a generated site page.
type specialPage struct {
	token       string
	defaultText string
	url         func(u URLs) string
}

func listPage(token, text string, k content.Kind) specialPage {
	return specialPage{token, text, func(u URLs) string { return u.ListURL(k) }}
}

func rssPage(token, text string, k content.Kind) specialPage {
	return specialPage{token, text, func(u URLs) string { return u.RSSURL(k) }}
}

var specialPages = []specialPage{
	{"index", "Main Page", func(u URLs) string { return u.IndexURL() }},
	{"searchpage", "Search", func(u URLs) string { return u.SearchURL() }},
	listPage("filesearchpage", "Files", content.KindFile),
	listPage("geojsonsearchpage", "GeoJson", content.KindGeoJSON),
	listPage("imagesearchpage", "Images", content.KindImage),
	listPage("linesearchpage", "Lines", content.KindLine),
	listPage("linksearchpage", "Links", content.KindLink),
	listPage("notesearchpage", "Notes", content.KindNote),
	listPage("photosearchpage", "Photos", content.KindPhoto),
	listPage("pointsearchpage", "Points", content.KindPoint),
	listPage("postsearchpage", "Posts", content.KindPost),
	listPage("trailsearchpage", "Trails", content.KindTrail),
	listPage("videosearchpage", "Videos", content.KindVideo),
	{"tagspage", "Tags", func(u URLs) string { return u.AllTagsURL() }},
	{"camerarollpage", "Camera Roll", func(u URLs) string { return u.CameraRollURL() }},
	{"latestcontentpage", "Latest Content", func(u URLs) string { return u.LatestContentURL() }},
	{"monthlyactivitypage", "Monthly Activity", func(u URLs) string { return u.MonthlyActivityURL() }},
	{"indexrss", "Main Site Feed", func(u URLs) string { return u.MainRSSURL() }},
	rssPage("filerss", "Files Feed", content.KindFile),
	rssPage("geojsonrss", "GeoJson Feed", content.KindGeoJSON),
	rssPage("imagerss", "Images Feed", content.KindImage),
	rssPage("linerss", "Lines Feed", content.KindLine),
	rssPage("linkrss", "Links Feed", content.KindLink),
	rssPage("noterss", "Notes Feed", content.KindNote),
	rssPage("photorss", "Photos Feed", content.KindPhoto),
	rssPage("pointrss", "Points Feed", content.KindPoint),
	rssPage("postrss", "Posts Feed", content.KindPost),
	rssPage("trailrss", "Trails Feed", content.KindTrail),
	rssPage("videorss", "Videos Feed", content.KindVideo),
}

// SpecialTokens lists the id-less tokens in processing order.
func SpecialTokens() []string {
	out := make([]string, len(specialPages))
	for i, p := range specialPages {
		out[i] = p.token
	}
	return out
}
