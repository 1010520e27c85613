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

// NursingSourceType distinguishes the two nursing-room registries.
type NursingSourceType string

const (
	// NursingMandatory covers rooms required by statute.
	NursingMandatory NursingSourceType = "依法設置"
	// NursingVoluntary covers rooms set up voluntarily; staff-only rooms
	// are filtered out of this registry.
	NursingVoluntary NursingSourceType = "自願設置"
)

func (t NursingSourceType) source() string {
	return "哺集乳室-" + string(t)
}

// staffOnlyKeyword marks voluntary rooms restricted to employees; those are
// not public facilities.
const staffOnlyKeyword = "員工"

// nursing CSV address-fragment columns, in street-address order. Header
// spellings drift between registry exports, so each fragment lists its
// known variants.
var nursingAddressColumns = []struct {
	names  []string
	suffix string
}{
	{names: []string{"縣市"}},
	{names: []string{"鄉/鎮/市/區", "鄉鎮市區"}},
	{names: []string{"村里", "村/里"}},
	{names: []string{"大道路街地區", "大道/路/街/地區"}},
	{names: []string{"段"}, suffix: "段"},
	{names: []string{"巷/弄/衖", "巷弄衖"}},
	{names: []string{"號"}, suffix: "號"},
	{names: []string{"樓（之~）", "樓"}},
}

// ParseNursingRooms reads a nursing-room CSV export. The registry carries no
// coordinates: every place comes back with nil latitude/longitude and is
// counted under needs-geocoding by the orchestrator, never silently dropped.
func ParseNursingRooms(r io.Reader, sourceType NursingSourceType) ([]model.Place, error) {
	header, rows, err := fetcher.ReadCSV(r, fetcher.CSVOptions{TrimSpace: true})
	if err != nil {
		return nil, eris.Wrapf(err, "parser: read nursing rooms CSV (%s)", sourceType)
	}
	return nursingPlaces(header, rows, sourceType), nil
}

// ParseNursingRoomsXLSX reads the same registry from its spreadsheet export.
func ParseNursingRoomsXLSX(path string, sourceType NursingSourceType) ([]model.Place, error) {
	header, rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "parser: read nursing rooms XLSX (%s)", sourceType)
	}
	return nursingPlaces(header, rows, sourceType), nil
}

func nursingPlaces(header []string, rows [][]string, sourceType NursingSourceType) []model.Place {
	col := func(names ...string) int { return fetcher.ColumnIndex(header, names...) }

	nameIdx := col("場所名稱")
	regionIdx := col("縣市")
	subRegionIdx := col("鄉/鎮/市/區", "鄉鎮市區")
	phoneIdx := col("電話")
	hoursIdx := col("開放時間", "營業時間")
	noteIdx := col("注意事項")
	basisIdx := col("設置依據")
	linkIdx := col("連結", "link")

	addrIdx := make([]int, len(nursingAddressColumns))
	for i, c := range nursingAddressColumns {
		addrIdx[i] = col(c.names...)
	}

	source := sourceType.source()

	var places []model.Place
	for index, row := range rows {
		name := strings.TrimSpace(fetcher.Field(row, nameIdx))
		if name == "" {
			continue
		}

		hours := fetcher.Field(row, hoursIdx)
		note := fetcher.Field(row, noteIdx)
		if sourceType == NursingVoluntary &&
			(strings.Contains(hours, staffOnlyKeyword) || strings.Contains(note, staffOnlyKeyword)) {
			skipRecord(source, name, "staff-only room")
			continue
		}

		var addr strings.Builder
		for i, c := range nursingAddressColumns {
			v := strings.TrimSpace(fetcher.Field(row, addrIdx[i]))
			if v == "" {
				continue
			}
			addr.WriteString(v)
			if c.suffix != "" && !strings.HasSuffix(v, c.suffix) {
				addr.WriteString(c.suffix)
			}
		}

		places = append(places, model.Place{
			Name:      name,
			Address:   addr.String(),
			Region:    address.NormalizeRegion(fetcher.Field(row, regionIdx)),
			SubRegion: address.NormalizeSubRegion(fetcher.Field(row, subRegionIdx)),
			Link:      fetcher.Field(row, linkIdx),
			Metadata: map[string]any{
				"縣市":   fetcher.Field(row, regionIdx),
				"區":    fetcher.Field(row, subRegionIdx),
				"電話":   fetcher.Field(row, phoneIdx),
				"開放時間": hours,
				"注意事項": note,
				"設置依據": fetcher.Field(row, basisIdx),
			},
			Source:   source,
			SourceID: fmt.Sprintf("nursing_room_%s_%d_%s", sourceType, index, name),
		})
	}
	return places
}
