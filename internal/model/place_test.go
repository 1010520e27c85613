package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"taipei", 25.04, 121.51, true},
		{"kinmen", 24.43, 118.31, true},
		{"boundary min", 20.0, 118.0, true},
		{"boundary max", 26.0, 123.0, true},
		{"lat too low", 19.99, 121.0, false},
		{"lat too high", 26.01, 121.0, false},
		{"lng too low", 24.0, 117.9, false},
		{"lng too high", 24.0, 123.1, false},
		{"swapped pair", 121.5, 25.0, false},
		{"zero", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InEnvelope(tt.lat, tt.lng))
		})
	}
}

func TestPlace_Coordinates(t *testing.T) {
	var p Place
	assert.False(t, p.HasCoordinates())

	p.Latitude = new(float64)
	assert.False(t, p.HasCoordinates(), "one side alone is not enough")

	p.SetCoordinates(25.04, 121.51)
	assert.True(t, p.HasCoordinates())
	assert.Equal(t, 25.04, *p.Latitude)
	assert.Equal(t, 121.51, *p.Longitude)
}

func TestSourceSummary_String(t *testing.T) {
	s := SourceSummary{
		Source:                   SourceToilets,
		Parsed:                   10,
		Created:                  6,
		SkippedDuplicate:         2,
		SkippedMissingRegion:     1,
		SkippedInvalidCoordinate: 1,
	}
	assert.Equal(t,
		"公廁建檔: parsed=10 created=6 duplicate=2 missing_region=1 invalid_coordinate=1 needs_geocoding=0",
		s.String())
}
