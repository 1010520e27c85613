package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/parentmap/ingest-cli/internal/address"
	"github.com/parentmap/ingest-cli/internal/fetcher"
)

// nlscListTownURL is the national land-survey district listing; one request
// per city code returns that city's districts as XML.
const nlscListTownURL = "https://api.nlsc.gov.tw/other/ListTown/"

// nlscCityCodes maps the survey agency's city codes to canonical region
// names. Codes for divisions dissolved in the 2010 mergers are omitted.
var nlscCityCodes = map[string]string{
	"A": "臺北市",
	"B": "臺中市",
	"C": "基隆市",
	"D": "臺南市",
	"E": "高雄市",
	"F": "新北市",
	"G": "宜蘭縣",
	"H": "桃園市",
	"I": "嘉義市",
	"J": "新竹縣",
	"K": "苗栗縣",
	"M": "南投縣",
	"N": "彰化縣",
	"O": "新竹市",
	"P": "雲林縣",
	"Q": "嘉義縣",
	"T": "屏東縣",
	"U": "花蓮縣",
	"V": "臺東縣",
	"W": "金門縣",
	"X": "澎湖縣",
	"Z": "連江縣",
}

type townItem struct {
	Code string `xml:"towncode"`
	Name string `xml:"townname"`
}

// TownImporter pre-seeds the region and sub-region reference tables from the
// authoritative district listing, so ingestion runs resolve known names
// without creating them on demand.
type TownImporter struct {
	Fetcher fetcher.Fetcher
	Engine  *Engine
}

// Import fetches every city's district list and upserts the names. A city
// whose fetch fails is logged and skipped; the importer fails only when no
// city could be imported.
func (t *TownImporter) Import(ctx context.Context) (int, error) {
	log := zap.L()

	imported := 0
	failed := 0
	for code, region := range nlscCityCodes {
		n, err := t.importCity(ctx, code, region)
		if err != nil {
			failed++
			log.Warn("ingest: town import failed",
				zap.String("region", region),
				zap.Error(err))
			continue
		}
		imported += n
	}

	if imported == 0 && failed > 0 {
		return 0, eris.New("ingest: town import failed for every city")
	}
	return imported, nil
}

func (t *TownImporter) importCity(ctx context.Context, code, region string) (int, error) {
	rc, err := t.Fetcher.Download(ctx, nlscListTownURL+code)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	items, err := fetcher.DecodeXMLElements[townItem](ctx, rc, "townItem")
	if err != nil {
		return 0, eris.Wrapf(err, "ingest: decode town list %s", code)
	}

	count := 0
	for _, item := range items {
		name := address.NormalizeSubRegion(item.Name)
		if name == "" {
			continue
		}
		if _, _, err := t.Engine.ResolveIDs(ctx, region, name); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
