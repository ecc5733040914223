package site

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yanizio/trailhead/internal/content"
	"github.com/yanizio/trailhead/internal/view"
)

// geoData writes the GeoJSON a line or geojson map loads.
func (b *Builder) geoData(c content.Content, raw string) error {
	if raw == "" {
		raw = `{"type":"FeatureCollection","features":[]}`
	}
	if !json.Valid([]byte(raw)) {
		return &content.IntegrityError{ContentID: c.Base().ContentID, Title: c.Base().Title, Reason: "GeoJSON is not valid JSON"}
	}
	return view.WriteFile(b.d.Site.DataFile(c), "data", []byte(raw))
}

type mapElement struct {
	Title     string   `json:"title"`
	URL       string   `json:"url,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	DataURL   string   `json:"dataUrl,omitempty"`
	Details   bool     `json:"showDetailsPopup"`
	Default   bool     `json:"includeInDefaultView"`
}

// mapData writes a map component's element list.  Elements whose content
// is gone or cannot be drawn are skipped.
func (b *Builder) mapData(ctx context.Context, m *content.MapComponent) error {
	out := struct {
		Title    string       `json:"title"`
		Elements []mapElement `json:"elements"`
	}{Title: m.Title, Elements: []mapElement{}}

	for _, el := range m.Elements {
		c, err := b.d.Resolver.Any(ctx, el.ElementContentID)
		if err != nil {
			return err
		}
		if c == nil {
			continue
		}
		e := mapElement{
			Title:   c.Base().Title,
			URL:     b.d.Site.PageURL(c),
			Details: el.ShowDetailsPopup,
			Default: el.IncludeInDefault,
		}
		switch r := c.(type) {
		case *content.Point:
			e.Latitude, e.Longitude = &r.Latitude, &r.Longitude
		case *content.Photo:
			if r.Latitude == nil || r.Longitude == nil {
				continue
			}
			e.Latitude, e.Longitude = r.Latitude, r.Longitude
		case *content.Line, *content.GeoJSON:
			e.DataURL = b.d.Site.DataURL(c)
		default:
			continue
		}
		out.Elements = append(out.Elements, e)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("map %s: %w", m.ContentID, err)
	}
	return view.WriteFile(b.d.Site.DataFile(m), "data", raw)
}

type pointData struct {
	ContentID string   `json:"contentId"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
	MapLabel  string   `json:"mapLabel,omitempty"`
	Details   []string `json:"details,omitempty"`
}

// PointData writes the shared side-file listing every published point
// with the types of its details.
func (b *Builder) PointData(ctx context.Context, points []content.Content) error {
	ids := make([]content.ID, 0, len(points))
	for _, p := range points {
		ids = append(ids, p.Base().ContentID)
	}
	rows, err := b.d.Store.PointDetails(ctx, ids)
	if err != nil {
		return fmt.Errorf("point details: %w", err)
	}

	out := make([]pointData, 0, len(points))
	for _, c := range points {
		p, ok := c.(*content.Point)
		if !ok || p.IsDraft {
			continue
		}
		pd, err := content.JoinDetails(p, rows)
		if err != nil {
			return err
		}
		row := pointData{
			ContentID: p.ContentID.String(),
			Title:     p.Title,
			URL:       b.d.Site.PageURL(p),
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Elevation: p.Elevation,
			MapLabel:  p.MapLabel,
		}
		for _, d := range pd.Details {
			row.Details = append(row.Details, d.DataTypeIdentifier())
		}
		out = append(out, row)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return view.WriteFile(b.d.Site.PointDataFile(), "data", raw)
}
