// internal/content/kind.go
//
// Closed set of content kinds.
//
// Context
// -------
// Every record stored by trailhead belongs to exactly one Kind.  The set is
// closed: dispatch points (resolver, renderer selection, URL builders)
// switch over it exhaustively and panic on a value outside the set, so a
// new kind fails loudly in tests instead of silently rendering nothing.
//
// Notes
// -----
//   - Kinds lists the kinds in the probe order used when an id could
//     belong to any kind (gallery members, validation).
//   - String values double as the `kind` column in the content table.
package content

import (
	"fmt"
	"strings"
)

// Kind identifies one content type.
type Kind int

const (
	KindFile Kind = iota + 1
	KindGeoJSON
	KindImage
	KindLine
	KindLink
	KindNote
	KindPhoto
	KindPoint
	KindPost
	KindTrail
	KindVideo
	KindMapComponent
	KindSnippet
)

// Kinds is the polymorphic probe order.
var Kinds = []Kind{
	KindFile,
	KindGeoJSON,
	KindImage,
	KindLine,
	KindLink,
	KindNote,
	KindPhoto,
	KindPoint,
	KindPost,
	KindTrail,
	KindVideo,
	KindMapComponent,
	KindSnippet,
}

var kindNames = map[Kind]string{
	KindFile:         "file",
	KindGeoJSON:      "geojson",
	KindImage:        "image",
	KindLine:         "line",
	KindLink:         "link",
	KindNote:         "note",
	KindPhoto:        "photo",
	KindPoint:        "point",
	KindPost:         "post",
	KindTrail:        "trail",
	KindVideo:        "video",
	KindMapComponent: "mapcomponent",
	KindSnippet:      "snippet",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is a member of the closed set.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// HasPage reports whether records of this kind get their own HTML page.
// Snippets are only ever inlined, links point off-site, and map components
// are rendered inside other pages.
func (k Kind) HasPage() bool {
	switch k {
	case KindSnippet, KindLink, KindMapComponent:
		return false
	case KindFile, KindGeoJSON, KindImage, KindLine, KindNote, KindPhoto,
		KindPoint, KindPost, KindTrail, KindVideo:
		return true
	}
	panic(fmt.Sprintf("content: unknown kind %d", int(k)))
}

// ParseKind maps the column value back to a Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("content: unknown kind %q", s)
}
