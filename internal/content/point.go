// internal/content/point.go
//
// Point details.
//
// Context
// -------
// A Point can carry any number of detail rows (campground, parking, peak,
// and so on).  Each row stores its payload as tagged JSON: the
// DataTypeIdentifier column names the payload type and the JSON column
// holds the fields.  Decode maps the pair back to a typed value.
//
// Notes
// -----
//   - An unknown identifier or malformed JSON is a data-integrity problem,
//     not a rendering problem, and is reported as *IntegrityError.
package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// PointDetail is one detail row attached to a Point.
type PointDetail struct {
	ContentID            ID        `db:"content_id"`
	PointContentID       ID        `db:"point_content_id"`
	DataTypeIdentifier   string    `db:"data_type"`
	StructuredDataAsJSON string    `db:"structured_data"`
	ContentVersion       time.Time `db:"content_version"`
	CreatedOn            time.Time `db:"created_on"`
}

// Detail payload identifiers.
const (
	DetailCampground    = "Campground"
	DetailFeature       = "Feature"
	DetailFee           = "Fee"
	DetailParking       = "Parking"
	DetailPeak          = "Peak"
	DetailRestroom      = "Restroom"
	DetailTrailJunction = "TrailJunction"
)

// Detail is implemented by every typed payload.
type Detail interface {
	DataTypeIdentifier() string
}

type Campground struct {
	Notes       string `json:"notes"`
	NotesFormat string `json:"notesContentFormat"`
	Fee         bool   `json:"fee"`
}

type Feature struct {
	Type  string `json:"type"`
	Notes string `json:"notes"`
}

type Fee struct {
	Notes string `json:"notes"`
}

type Parking struct {
	Notes string `json:"notes"`
	Fee   bool   `json:"fee"`
}

type Peak struct {
	Notes string `json:"notes"`
}

type Restroom struct {
	Notes string `json:"notes"`
}

type TrailJunction struct {
	Notes string `json:"notes"`
	Sign  *bool  `json:"sign,omitempty"`
}

func (Campground) DataTypeIdentifier() string    { return DetailCampground }
func (Feature) DataTypeIdentifier() string       { return DetailFeature }
func (Fee) DataTypeIdentifier() string           { return DetailFee }
func (Parking) DataTypeIdentifier() string       { return DetailParking }
func (Peak) DataTypeIdentifier() string          { return DetailPeak }
func (Restroom) DataTypeIdentifier() string      { return DetailRestroom }
func (TrailJunction) DataTypeIdentifier() string { return DetailTrailJunction }

// Decode returns the typed payload for d.
func (d PointDetail) Decode() (Detail, error) {
	var target Detail
	switch d.DataTypeIdentifier {
	case DetailCampground:
		target = &Campground{}
	case DetailFeature:
		target = &Feature{}
	case DetailFee:
		target = &Fee{}
	case DetailParking:
		target = &Parking{}
	case DetailPeak:
		target = &Peak{}
	case DetailRestroom:
		target = &Restroom{}
	case DetailTrailJunction:
		target = &TrailJunction{}
	default:
		return nil, fmt.Errorf("unknown point detail type %q", d.DataTypeIdentifier)
	}
	if err := json.Unmarshal([]byte(d.StructuredDataAsJSON), target); err != nil {
		return nil, fmt.Errorf("decode %s detail %s: %w", d.DataTypeIdentifier, d.ContentID, err)
	}
	return target, nil
}

// EncodeDetail builds a PointDetail row from a typed payload.
func EncodeDetail(pointID ID, detail Detail) (PointDetail, error) {
	raw, err := json.Marshal(detail)
	if err != nil {
		return PointDetail{}, err
	}
	return PointDetail{
		PointContentID:       pointID,
		DataTypeIdentifier:   detail.DataTypeIdentifier(),
		StructuredDataAsJSON: string(raw),
	}, nil
}

// PointWithDetails is the composite every point page and point code needs.
type PointWithDetails struct {
	*Point
	Details []Detail
}

// JoinDetails decodes rows for p.  Rows belonging to other points are
// ignored; a row that cannot be decoded aborts with *IntegrityError.
func JoinDetails(p *Point, rows []PointDetail) (*PointWithDetails, error) {
	out := &PointWithDetails{Point: p}
	for _, r := range rows {
		if r.PointContentID != p.ContentID {
			continue
		}
		d, err := r.Decode()
		if err != nil {
			return nil, &IntegrityError{
				ContentID: p.ContentID,
				Title:     p.Title,
				Reason:    err.Error(),
			}
		}
		out.Details = append(out.Details, d)
	}
	return out, nil
}
