// internal/bracketcode/create.go
//
// Code creation.
//
// Context
// -------
// Editors and the CLI `code` command need a ready-to-paste code for a
// record.  Create picks the kind's default token; CreateFor takes one.
//
// Notes
// -----
//   - The title after the id is a hint for readers.  Match ignores it, so
//     Create then Find yields the same id.
//   - hint strips the characters that would end or nest a code.

package bracketcode

import (
	"fmt"
	"strings"

	"github.com/yanizio/trailhead/internal/content"
)

// DefaultToken is the token Create uses for a kind: the embed token for
// pictures, snippets, and map components, the link token for the rest.
func DefaultToken(k content.Kind) string {
	switch k {
	case content.KindFile:
		return TokenFileLink
	case content.KindGeoJSON:
		return TokenGeoJSONLink
	case content.KindImage:
		return TokenImage
	case content.KindLine:
		return TokenLineLink
	case content.KindLink:
		return TokenLinkContent
	case content.KindNote:
		return TokenNoteLink
	case content.KindPhoto:
		return TokenPhoto
	case content.KindPoint:
		return TokenPointLink
	case content.KindPost:
		return TokenPostLink
	case content.KindTrail:
		return TokenTrailLink
	case content.KindVideo:
		return TokenVideoLink
	case content.KindMapComponent:
		return TokenMapComponent
	case content.KindSnippet:
		return TokenSnippet
	}
	panic(fmt.Sprintf("bracketcode: unknown kind %d", int(k)))
}

// Create returns the canonical bracket code for c.
func Create(c content.Content) string {
	return CreateFor(DefaultToken(c.Kind()), c)
}

// CreateFor returns a code for c with an explicit token.  The title rides
// along after the id as a reader's hint; it is not display text.
func CreateFor(token string, c content.Content) string {
	b := c.Base()
	return fmt.Sprintf("{{%s %s;%s}}", token, b.ContentID, hint(b.Title))
}

// hint makes a title safe to sit inside a code.
func hint(title string) string {
	t := strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', ';', '[', ']', '\n', '\r':
			return ' '
		}
		return r
	}, title)
	t = strings.Join(strings.Fields(t), " ")
	if t == "" {
		return ""
	}
	return " " + t
}
