// Package boundary imports district boundary shapefiles into the store, so
// the query tier can point-in-polygon match places whose address failed to
// resolve. The national shapefile ships in the TWD97 planar system; vertices
// are inverted to geographic coordinates during import.
package boundary

import (
	"context"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"

	"github.com/parentmap/ingest-cli/internal/address"
	"github.com/parentmap/ingest-cli/internal/db"
	"github.com/parentmap/ingest-cli/internal/twd97"
)

// Attribute names in the national district shapefile.
const (
	fieldCounty = "COUNTYNAME"
	fieldTown   = "TOWNNAME"
)

// Loader reads a district shapefile and bulk-loads boundaries.
type Loader struct {
	Pool db.Pool

	// Geographic marks a shapefile already in lat/lng; by default vertices
	// are treated as TWD97 planar coordinates.
	Geographic bool
}

// Load upserts every district in the shapefile and returns the number of
// rows written. Re-running on a newer shapefile replaces boundaries in
// place. Records with malformed geometry are skipped with a warning.
func (l *Loader) Load(ctx context.Context, shpPath string) (int, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return 0, eris.Wrapf(err, "boundary: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToUpper(name)] = i
	}
	countyIdx, ok := fieldIdx[fieldCounty]
	if !ok {
		return 0, eris.Errorf("boundary: shapefile has no %s attribute", fieldCounty)
	}
	townIdx, ok := fieldIdx[fieldTown]
	if !ok {
		return 0, eris.Errorf("boundary: shapefile has no %s attribute", fieldTown)
	}

	var rows [][]any
	skipped := 0
	for reader.Next() {
		_, shape := reader.Shape()

		county := address.NormalizeRegion(strings.TrimSpace(strings.TrimRight(reader.Attribute(countyIdx), "\x00")))
		town := address.NormalizeSubRegion(strings.TrimRight(reader.Attribute(townIdx), "\x00"))
		if county == "" || town == "" {
			skipped++
			continue
		}

		polygon, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		data, err := l.encodeBoundary(polygon)
		if err != nil || data == nil {
			skipped++
			continue
		}

		rows = append(rows, []any{county, town, data})
	}
	if skipped > 0 {
		zap.L().Warn("boundary: skipped shapefile records", zap.Int("skipped", skipped))
	}
	if len(rows) == 0 {
		return 0, eris.Errorf("boundary: no usable districts in %s", shpPath)
	}

	n, err := db.BulkUpsert(ctx, l.Pool, db.UpsertConfig{
		Table:        "sub_region_boundaries",
		Columns:      []string{"region_name", "sub_region_name", "boundary"},
		ConflictKeys: []string{"region_name", "sub_region_name"},
	}, rows)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// encodeBoundary converts a shapefile polygon to an EWKB MultiPolygon in
// SRID 4326, inverting TWD97 vertices unless the file is already geographic.
func (l *Loader) encodeBoundary(p *shp.Polygon) ([]byte, error) {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil, nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			lng, lat := p.Points[j].X, p.Points[j].Y
			if !l.Geographic {
				lat, lng = twd97.ToWGS84(p.Points[j].X, p.Points[j].Y)
			}
			flat = append(flat, lng, lat)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil, nil
	}
	return ewkb.Marshal(mp, ewkb.NDR)
}
