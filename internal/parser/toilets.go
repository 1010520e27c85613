package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/parentmap/ingest-cli/internal/address"
	"github.com/parentmap/ingest-cli/internal/fetcher"
	"github.com/parentmap/ingest-cli/internal/model"
)

// toiletTypeFilter selects the family-restroom subset of the public-toilet
// registry; all other restroom types are out of scope.
const toiletTypeFilter = "親子廁所"

const toiletPlaceholderName = "未命名親子廁所"

type toiletRecord struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Type2          string `json:"type2"`
	Address        string `json:"address"`
	Latitude       any    `json:"latitude"`
	Longitude      any    `json:"longitude"`
	Link           string `json:"link"`
	Administration string `json:"administration"`
	Exec           string `json:"exec"`
	Grade          string `json:"grade"`
	Number         any    `json:"number"`
}

// ParseToilets reads the public-toilet registry JSON array and returns the
// family restrooms as normalized places. Records with coordinates outside
// the Taiwan envelope are skipped as malformed.
func ParseToilets(r io.Reader) ([]model.Place, error) {
	records, err := fetcher.DecodeJSONArray[toiletRecord](r)
	if err != nil {
		return nil, eris.Wrap(err, "parser: decode toilets JSON")
	}

	var places []model.Place
	for _, rec := range records {
		if rec.Type != toiletTypeFilter {
			continue
		}

		name := rec.Name
		if name == "" {
			name = toiletPlaceholderName
		}

		lat, okLat := toFloat(rec.Latitude)
		lng, okLng := toFloat(rec.Longitude)
		if !okLat || !okLng {
			skipRecord(model.SourceToilets, name, "unparseable coordinates")
			continue
		}
		if !model.InEnvelope(lat, lng) {
			skipRecord(model.SourceToilets, name, "coordinates outside envelope")
			continue
		}

		res := address.Resolve(rec.Address, "", "")
		addr := res.Remainder
		if addr == "" {
			addr = rec.Address
		}

		sourceID := strings.TrimSpace(fmt.Sprint(rec.Number))
		if sourceID == "" || sourceID == "<nil>" {
			sourceID = fmt.Sprintf("toilet_%v_%v", lat, lng)
		}

		p := model.Place{
			Name:      name,
			Address:   addr,
			Region:    address.NormalizeRegion(res.Region),
			SubRegion: address.NormalizeSubRegion(res.SubRegion),
			Link:      rec.Link,
			Metadata: map[string]any{
				"type2":           rec.Type2,
				"administration":  rec.Administration,
				"exec":            rec.Exec,
				"grade":           rec.Grade,
				"number":          rec.Number,
				"originalAddress": rec.Address,
			},
			Source:   model.SourceToilets,
			SourceID: sourceID,
		}
		p.SetCoordinates(lat, lng)
		places = append(places, p)
	}
	return places, nil
}
