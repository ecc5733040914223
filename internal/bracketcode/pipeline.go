// internal/bracketcode/pipeline.go
//
// The two fixed pipelines.
//
// Context
// -------
// Stage order is part of the output contract: a snippet can carry any
// code, a gallery wraps picture codes, and an image-link code may fall
// back to its plain-link token.  Both pipelines are built here so the
// order is read in one place.
//
// Workflow
// --------
//  1. Snippets are inserted.
//  2. Galleries are rendered (site) or unwrapped (email).
//  3. Per-kind stages run, each image-link stage ahead of its link stage.
//  4. Special page codes run last.
//
// Notes
// -----
//   - In email, pictures become table images and codes that need scripts
//     degrade to links or are stripped.

package bracketcode

import "github.com/yanizio/trailhead/internal/content"

// forSite is the website pipeline.  Snippets are inserted first so every
// code they carry, galleries included, goes through the stages below.
// The gallery wrapper comes next since it is the only construct that
// surrounds other codes.  Each image-link stage precedes the link stage
// it falls back to.
func (e *Engine) forSite() Pipeline {
	p := Pipeline{
		e.codeStage(TokenSnippet, content.KindSnippet, e.snippetBody),
		e.galleryStage(),

		e.codeStage(TokenFileEmbed, content.KindFile, e.fileEmbed),
		e.codeStage(TokenFileDownloadLink, content.KindFile, e.downloadLink),
		e.imageLinkStage(TokenFileImageLink, TokenFileLink, content.KindFile, e.figure("file-image-link")),
		e.codeStage(TokenFileLink, content.KindFile, e.pageLink),

		e.codeStage(TokenGeoJSON, content.KindGeoJSON, e.dataMap("singleGeoJsonMapInit", "geojson-map")),
		e.codeStage(TokenGeoJSONLink, content.KindGeoJSON, e.pageLink),

		e.imageLinkStage(TokenImage, TokenImageLink, content.KindImage, e.figure("single-image")),
		e.codeStage(TokenImageLink, content.KindImage, e.pageLink),

		e.codeStage(TokenLineElevationChart, content.KindLine, e.dataMap("lineElevationChartInit", "line-elevation-chart")),
		e.codeStage(TokenLine, content.KindLine, e.dataMap("singleLineMapInit", "line-map")),
		e.codeStage(TokenLineStats, content.KindLine, e.lineStats),
		e.imageLinkStage(TokenLineImageLink, TokenLineLink, content.KindLine, e.figure("line-image-link")),
		e.codeStage(TokenLineLink, content.KindLine, e.pageLink),

		e.codeStage(TokenMapComponent, content.KindMapComponent, e.dataMap("mapComponentInit", "map-component")),

		e.codeStage(TokenNoteLink, content.KindNote, e.pageLink),

		e.imageLinkStage(TokenPhoto, TokenPhotoLink, content.KindPhoto, e.figure("single-photo")),
		e.codeStage(TokenPhotoLink, content.KindPhoto, e.pageLink),

		e.codeStage(TokenPointDirections, content.KindPoint, e.directionsLink),
		e.codeStage(TokenPoint, content.KindPoint, e.pointMap),
		e.imageLinkStage(TokenPointImageLink, TokenPointLink, content.KindPoint, e.figure("point-image-link")),
		e.codeStage(TokenPointLink, content.KindPoint, e.pageLink),

		e.imageLinkStage(TokenPostImageLink, TokenPostLink, content.KindPost, e.figure("post-image-link")),
		e.codeStage(TokenPostLink, content.KindPost, e.pageLink),

		e.codeStage(TokenTrailStats, content.KindTrail, e.trailStats),
		e.codeStage(TokenTrailLink, content.KindTrail, e.pageLink),

		e.codeStage(TokenVideoEmbed, content.KindVideo, e.videoEmbed),
		e.imageLinkStage(TokenVideoImageLink, TokenVideoLink, content.KindVideo, e.figure("video-image-link")),
		e.codeStage(TokenVideoLink, content.KindVideo, e.pageLink),

		e.codeStage(TokenLinkContent, content.KindLink, e.externalLink),
	}
	for _, sp := range specialPages {
		p = append(p, e.specialStage(sp))
	}
	return p
}

// forEmail is the email pipeline.  After snippets are inserted, galleries
// are unwrapped into their inner codes, pictures become table images, and
// codes that need scripts degrade to links or disappear.
func (e *Engine) forEmail() Pipeline {
	p := Pipeline{
		e.codeStage(TokenSnippet, content.KindSnippet, e.snippetBody),
		e.unwrapGalleryStage(),

		e.codeStage(TokenFileEmbed, content.KindFile, e.fileEmbedLink),
		e.codeStage(TokenFileDownloadLink, content.KindFile, e.downloadLink),
		e.imageLinkStage(TokenFileImageLink, TokenFileLink, content.KindFile, e.emailImage),
		e.codeStage(TokenFileLink, content.KindFile, e.pageLink),

		e.codeStage(TokenGeoJSON, content.KindGeoJSON, e.pageLink),
		e.codeStage(TokenGeoJSONLink, content.KindGeoJSON, e.pageLink),

		e.imageLinkStage(TokenImage, TokenImageLink, content.KindImage, e.emailImage),
		e.codeStage(TokenImageLink, content.KindImage, e.pageLink),

		e.stripStage(TokenLineElevationChart),
		e.codeStage(TokenLine, content.KindLine, e.pageLink),
		e.codeStage(TokenLineStats, content.KindLine, e.lineStats),
		e.imageLinkStage(TokenLineImageLink, TokenLineLink, content.KindLine, e.emailImage),
		e.codeStage(TokenLineLink, content.KindLine, e.pageLink),

		e.stripStage(TokenMapComponent),

		e.codeStage(TokenNoteLink, content.KindNote, e.pageLink),

		e.imageLinkStage(TokenPhoto, TokenPhotoLink, content.KindPhoto, e.emailImage),
		e.codeStage(TokenPhotoLink, content.KindPhoto, e.pageLink),

		e.codeStage(TokenPointDirections, content.KindPoint, e.directionsLink),
		e.codeStage(TokenPoint, content.KindPoint, e.pageLink),
		e.imageLinkStage(TokenPointImageLink, TokenPointLink, content.KindPoint, e.emailImage),
		e.codeStage(TokenPointLink, content.KindPoint, e.pageLink),

		e.imageLinkStage(TokenPostImageLink, TokenPostLink, content.KindPost, e.emailImage),
		e.codeStage(TokenPostLink, content.KindPost, e.pageLink),

		e.codeStage(TokenTrailStats, content.KindTrail, e.trailStats),
		e.codeStage(TokenTrailLink, content.KindTrail, e.pageLink),

		e.imageLinkStage(TokenVideoEmbed, TokenVideoLink, content.KindVideo, e.emailImage),
		e.imageLinkStage(TokenVideoImageLink, TokenVideoLink, content.KindVideo, e.emailImage),
		e.codeStage(TokenVideoLink, content.KindVideo, e.pageLink),

		e.codeStage(TokenLinkContent, content.KindLink, e.externalLink),
	}
	for _, sp := range specialPages {
		p = append(p, e.specialStage(sp))
	}
	return p
}
