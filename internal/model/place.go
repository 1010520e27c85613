// Package model defines the normalized place schema shared across the
// ingestion pipeline.
package model

import (
	"fmt"
	"time"
)

// Source names identify the upstream dataset a place came from. The pair
// (Source, SourceID) is the deduplication key in the store.
const (
	SourceToilets           = "公廁建檔"
	SourceNursingMandatory  = "哺集乳室-依法設置"
	SourceNursingVoluntary  = "哺集乳室-自願設置"
	SourcePlaygrounds       = "共融式遊戲場"
	SourceTaipeiPlaygrounds = "台北市兒童遊戲場"
	SourceNewTaipeiParks    = "新北市共融特色公園"
	SourceSchoolPDF         = "國小遊戲場"
)

// Taiwan bounding envelope in decimal degrees. Coordinates outside this
// rectangle are treated as invalid; the boundary values themselves are valid.
const (
	MinLat = 20.0
	MaxLat = 26.0
	MinLng = 118.0
	MaxLng = 123.0
)

// InEnvelope reports whether a coordinate pair lies inside the Taiwan
// bounding envelope (inclusive).
func InEnvelope(lat, lng float64) bool {
	return lat >= MinLat && lat <= MaxLat && lng >= MinLng && lng <= MaxLng
}

// Facility is one piece of equipment at a place, optionally with an image.
type Facility struct {
	EquipmentName string `json:"equipment_name"`
	ImageRef      string `json:"image_ref,omitempty"`
}

// Place is the pipeline's normalized output unit. Latitude and Longitude are
// nil when the source carries no usable coordinates; such places are flagged
// for geocoding rather than persisted as queryable points.
type Place struct {
	Name       string         `json:"name"`
	Address    string         `json:"address,omitempty"`
	Region     string         `json:"region,omitempty"`
	SubRegion  string         `json:"sub_region,omitempty"`
	Latitude   *float64       `json:"latitude,omitempty"`
	Longitude  *float64       `json:"longitude,omitempty"`
	Link       string         `json:"link,omitempty"`
	Facilities []Facility     `json:"facilities,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Source     string         `json:"source"`
	SourceID   string         `json:"source_id"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (p *Place) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// SetCoordinates stores a validated coordinate pair.
func (p *Place) SetCoordinates(lat, lng float64) {
	p.Latitude = &lat
	p.Longitude = &lng
}

// Region is a top-level administrative division (city or county). Names are
// unique and stored in canonical glyph form.
type Region struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SubRegion is a second-level division (district, town, or township),
// unique per (RegionID, Name).
type SubRegion struct {
	ID        int       `json:"id"`
	RegionID  int       `json:"region_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceSummary tallies the outcome of one source's ingestion run.
type SourceSummary struct {
	Source                   string `json:"source"`
	Parsed                   int    `json:"parsed"`
	Created                  int    `json:"created"`
	SkippedDuplicate         int    `json:"skipped_duplicate"`
	SkippedMissingRegion     int    `json:"skipped_missing_region"`
	SkippedInvalidCoordinate int    `json:"skipped_invalid_coordinate"`
	NeedsGeocoding           int    `json:"needs_geocoding"`
}

// String renders the summary for the per-source stdout tally.
func (s SourceSummary) String() string {
	return fmt.Sprintf(
		"%s: parsed=%d created=%d duplicate=%d missing_region=%d invalid_coordinate=%d needs_geocoding=%d",
		s.Source, s.Parsed, s.Created, s.SkippedDuplicate,
		s.SkippedMissingRegion, s.SkippedInvalidCoordinate, s.NeedsGeocoding,
	)
}
