// internal/content/record.go
//
// Content records.
//
// Context
// -------
// Each kind is a struct embedding Common, the fields every record carries
// (identity, title, body, version stamp, draft flag).  Kind-specific fields
// sit beside the embedded Common.  The embedded struct is tagged `json:"-"`
// so marshalling a record yields only its kind-specific payload; the store
// keeps Common in real columns and the payload in a JSON column.
//
// Content is a sealed interface: the unexported marker is defined on
// *Common, so only the structs in this file can satisfy it.
//
// Notes
// -----
//   - ContentID is assigned once by Initialize and never changes.
//   - ContentVersion strictly increases on every save (see NextVersion).
//   - Photos and Images are their own MainPicture.
package content

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ID is the stable identity of a record across versions.
type ID = uuid.UUID

// Body formats understood by the formatter collaborator.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Content is the closed sum over all record kinds.
type Content interface {
	Kind() Kind
	Base() *Common
	sealed()
}

// Common holds the fields shared by every kind.
type Common struct {
	ContentID          ID         `json:"-"`
	Title              string     `json:"-"`
	Slug               string     `json:"-"`
	Folder             string     `json:"-"`
	Summary            string     `json:"-"`
	Tags               string     `json:"-"`
	BodyContent        string     `json:"-"`
	BodyContentFormat  string     `json:"-"`
	MainPicture        *ID        `json:"-"`
	ContentVersion     time.Time  `json:"-"`
	CreatedOn          time.Time  `json:"-"`
	CreatedBy          string     `json:"-"`
	LastUpdatedOn      *time.Time `json:"-"`
	LastUpdatedBy      string     `json:"-"`
	IsDraft            bool       `json:"-"`
	ShowInMainSiteFeed bool       `json:"-"`
	FeedOn             time.Time  `json:"-"`
}

func (c *Common) Base() *Common { return c }
func (*Common) sealed()         {}

// File is an uploaded document.
type File struct {
	Common             `json:"-"`
	OriginalFileName   string `json:"originalFileName"`
	PublicDownloadLink bool   `json:"publicDownloadLink"`
	EmbedFile          bool   `json:"embedFile"`
}

// GeoJSON is an arbitrary GeoJSON feature collection.
type GeoJSON struct {
	Common  `json:"-"`
	GeoJSON string `json:"geoJson"`
}

// Image is a picture that is not a photograph (maps, diagrams, scans).
type Image struct {
	Common           `json:"-"`
	OriginalFileName string `json:"originalFileName"`
	AltText          string `json:"altText"`
	ShowInSearch     bool   `json:"showInSearch"`
}

// Line is a recorded track with elevation statistics.
type Line struct {
	Common             `json:"-"`
	LineDistance       float64    `json:"lineDistance"`
	ClimbElevation     float64    `json:"climbElevation"`
	DescentElevation   float64    `json:"descentElevation"`
	MaxElevation       float64    `json:"maxElevation"`
	MinElevation       float64    `json:"minElevation"`
	RecordingStartedOn *time.Time `json:"recordingStartedOn,omitempty"`
	RecordingEndedOn   *time.Time `json:"recordingEndedOn,omitempty"`
	GeoJSON            string     `json:"geoJson"`
}

// Link is an off-site bookmark.
type Link struct {
	Common      `json:"-"`
	URL         string `json:"url"`
	Site        string `json:"site"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// Note is a short, title-less-in-spirit entry.
type Note struct {
	Common `json:"-"`
}

// Photo is a photograph with camera metadata.
type Photo struct {
	Common           `json:"-"`
	OriginalFileName string     `json:"originalFileName"`
	AltText          string     `json:"altText"`
	Camera           string     `json:"camera"`
	Lens             string     `json:"lens"`
	Aperture         string     `json:"aperture"`
	ShutterSpeed     string     `json:"shutterSpeed"`
	Iso              int        `json:"iso"`
	FocalLength      string     `json:"focalLength"`
	PhotoCreatedOn   time.Time  `json:"photoCreatedOn"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	PhotoCreatedBy   string     `json:"photoCreatedBy"`
	License          string     `json:"license"`
	ShowPhotoSizes   bool       `json:"showPhotoSizes"`
	ShowPosition     bool       `json:"showPosition"`
	PhotoUploadedOn  *time.Time `json:"photoUploadedOn,omitempty"`
}

// Point is a named location.
type Point struct {
	Common    `json:"-"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
	MapLabel  string   `json:"mapLabel"`
}

// Post is a long-form entry.
type Post struct {
	Common `json:"-"`
}

// Trail describes a route; its statistics come from the referenced Line.
type Trail struct {
	Common         `json:"-"`
	LineContentID  *ID    `json:"lineContentId,omitempty"`
	StartingPoint  *ID    `json:"startingPoint,omitempty"`
	EndingPoint    *ID    `json:"endingPoint,omitempty"`
	Fees           string `json:"fees"`
	Dogs           string `json:"dogs"`
	Bikes          string `json:"bikes"`
	LocationArea   string `json:"locationArea"`
	TrailShapeName string `json:"trailShape"`
}

// Video is an uploaded video file.
type Video struct {
	Common           `json:"-"`
	OriginalFileName string    `json:"originalFileName"`
	VideoCreatedOn   time.Time `json:"videoCreatedOn"`
	VideoCreatedBy   string    `json:"videoCreatedBy"`
	License          string    `json:"license"`
}

// MapComponent is an embeddable map built from other records.
type MapComponent struct {
	Common   `json:"-"`
	Elements []MapElement `json:"elements"`
}

// MapElement references one record shown on a map component.
type MapElement struct {
	ElementContentID ID   `json:"elementContentId"`
	ShowDetailsPopup bool `json:"showDetailsPopup"`
	IncludeInDefault bool `json:"includeInDefaultView"`
}

// Snippet is reusable body text inlined into other records.
type Snippet struct {
	Common `json:"-"`
}

func (*File) Kind() Kind         { return KindFile }
func (*GeoJSON) Kind() Kind      { return KindGeoJSON }
func (*Image) Kind() Kind        { return KindImage }
func (*Line) Kind() Kind         { return KindLine }
func (*Link) Kind() Kind         { return KindLink }
func (*Note) Kind() Kind         { return KindNote }
func (*Photo) Kind() Kind        { return KindPhoto }
func (*Point) Kind() Kind        { return KindPoint }
func (*Post) Kind() Kind         { return KindPost }
func (*Trail) Kind() Kind        { return KindTrail }
func (*Video) Kind() Kind        { return KindVideo }
func (*MapComponent) Kind() Kind { return KindMapComponent }
func (*Snippet) Kind() Kind      { return KindSnippet }

// New returns an empty record of kind k.  The store decodes payloads into
// the value returned here.
func New(k Kind) Content {
	switch k {
	case KindFile:
		return &File{}
	case KindGeoJSON:
		return &GeoJSON{}
	case KindImage:
		return &Image{}
	case KindLine:
		return &Line{}
	case KindLink:
		return &Link{}
	case KindNote:
		return &Note{}
	case KindPhoto:
		return &Photo{}
	case KindPoint:
		return &Point{}
	case KindPost:
		return &Post{}
	case KindTrail:
		return &Trail{}
	case KindVideo:
		return &Video{}
	case KindMapComponent:
		return &MapComponent{}
	case KindSnippet:
		return &Snippet{}
	}
	panic("content: New called with unknown kind " + k.String())
}

// Clone returns a deep copy of c.  Common is copied by value; the
// kind-specific payload is copied through its JSON form.
func Clone(c Content) Content {
	out := New(c.Kind())
	*out.Base() = *c.Base()
	b := out.Base()
	if c.Base().MainPicture != nil {
		id := *c.Base().MainPicture
		b.MainPicture = &id
	}
	if c.Base().LastUpdatedOn != nil {
		t := *c.Base().LastUpdatedOn
		b.LastUpdatedOn = &t
	}
	raw, err := json.Marshal(c)
	if err != nil {
		panic("content: clone marshal: " + err.Error())
	}
	if err := json.Unmarshal(raw, out); err != nil {
		panic("content: clone unmarshal: " + err.Error())
	}
	return out
}
