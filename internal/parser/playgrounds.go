package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/parentmap/ingest-cli/internal/address"
	"github.com/parentmap/ingest-cli/internal/fetcher"
	"github.com/parentmap/ingest-cli/internal/model"
	"github.com/parentmap/ingest-cli/internal/twd97"
)

const playgroundPlaceholderName = "未命名遊戲場"

// ParsePlaygroundsCSV reads the inclusive-playground CSV. The district
// column supplies a fallback sub-region when the address itself carries no
// recognizable region prefix.
func ParsePlaygroundsCSV(r io.Reader) ([]model.Place, error) {
	header, rows, err := fetcher.ReadCSV(r, fetcher.CSVOptions{TrimSpace: true})
	if err != nil {
		return nil, eris.Wrap(err, "parser: read playgrounds CSV")
	}

	nameIdx := fetcher.ColumnIndex(header, "location", "name")
	addrIdx := fetcher.ColumnIndex(header, "address")
	districtIdx := fetcher.ColumnIndex(header, "district")
	latIdx := fetcher.ColumnIndex(header, "latitude")
	lngIdx := fetcher.ColumnIndex(header, "longitude")
	linkIdx := fetcher.ColumnIndex(header, "link")

	var places []model.Place
	for _, row := range rows {
		name := fetcher.Field(row, nameIdx)
		if name == "" {
			name = playgroundPlaceholderName
		}

		lat, okLat := parseCoord(fetcher.Field(row, latIdx))
		lng, okLng := parseCoord(fetcher.Field(row, lngIdx))
		if !okLat || !okLng {
			skipRecord(model.SourcePlaygrounds, name, "unparseable coordinates")
			continue
		}
		if !model.InEnvelope(lat, lng) {
			skipRecord(model.SourcePlaygrounds, name, "coordinates outside envelope")
			continue
		}

		rawAddr := fetcher.Field(row, addrIdx)
		district := fetcher.Field(row, districtIdx)
		res := address.Resolve(rawAddr, "", district)
		addr := res.Remainder
		if addr == "" {
			addr = rawAddr
		}

		p := model.Place{
			Name:      name,
			Address:   addr,
			Region:    address.NormalizeRegion(res.Region),
			SubRegion: address.NormalizeSubRegion(res.SubRegion),
			Link:      fetcher.Field(row, linkIdx),
			Metadata: map[string]any{
				"district":        district,
				"originalAddress": rawAddr,
			},
			Source:   model.SourcePlaygrounds,
			SourceID: fmt.Sprintf("playground_%s_%v_%v", name, lat, lng),
		}
		p.SetCoordinates(lat, lng)
		places = append(places, p)
	}
	return places, nil
}

// taipeiRegion is fixed for the city playground registry; the records carry
// only a district, never a full address.
const taipeiRegion = "臺北市"

// ParseTaipeiPlaygrounds reads the Taipei playground JSON. Field names drift
// between export revisions (Chinese and English spellings), and older
// revisions carry planar TWD97 coordinates instead of latitude/longitude, so
// records are decoded loosely and coordinates are recovered via the
// projection inverse when needed.
func ParseTaipeiPlaygrounds(r io.Reader) ([]model.Place, error) {
	records, err := fetcher.DecodeJSONArray[map[string]any](r)
	if err != nil {
		return nil, eris.Wrap(err, "parser: decode Taipei playgrounds JSON")
	}

	var places []model.Place
	for _, item := range records {
		name := firstString(item, "公園名稱", "name", "location", "名稱")
		if name == "" {
			name = playgroundPlaceholderName
		}

		lat, okLat := toFloat(item["latitude"])
		if !okLat {
			lat, okLat = anyFloat(item, "lat", "緯度")
		}
		lng, okLng := toFloat(item["longitude"])
		if !okLng {
			lng, okLng = anyFloat(item, "lng", "經度")
		}

		if !okLat || !okLng {
			x, okX := anyFloat(item, "X坐標", "x")
			y, okY := anyFloat(item, "Y坐標", "y")
			if !okX || !okY || x <= 0 || y <= 0 {
				skipRecord(model.SourceTaipeiPlaygrounds, name, "no usable coordinates")
				continue
			}
			lat, lng = twd97.ToWGS84(x, y)
		}

		if !model.InEnvelope(lat, lng) {
			skipRecord(model.SourceTaipeiPlaygrounds, name, "coordinates outside envelope")
			continue
		}

		districtName := firstString(item, "行政區", "district")
		district := address.EnsureUnitSuffix(districtName)

		metadata := make(map[string]any, len(item)+1)
		for k, v := range item {
			metadata[k] = v
		}
		metadata["行政區"] = districtName

		id := firstString(item, "id")
		if id == "" {
			id = name
		}

		p := model.Place{
			Name:      name,
			Region:    taipeiRegion,
			SubRegion: address.NormalizeSubRegion(district),
			Link:      firstString(item, "link", "連結"),
			Metadata:  metadata,
			Source:    model.SourceTaipeiPlaygrounds,
			SourceID:  fmt.Sprintf("taipei_playground_%s_%v_%v", id, lat, lng),
		}
		p.SetCoordinates(lat, lng)
		places = append(places, p)
	}
	return places, nil
}

// firstString returns the first non-empty string value among the given keys.
func firstString(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := item[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// anyFloat returns the first parseable numeric value among the given keys.
func anyFloat(item map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := item[k]; ok {
			if f, ok := toFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}
