package address

// RegionEntry is one gazetteer row: an accepted spelling of a top-level
// administrative region and the canonical form it collapses to.
type RegionEntry struct {
	Name      string
	Canonical string
}

// gazetteer lists every accepted region spelling, ordered so that prefix
// matching walks it top to bottom. The 台/臺 glyph pairs map to the same
// canonical name; 桃園縣 was superseded by 桃園市 on county-to-city upgrade.
var gazetteer = []RegionEntry{
	{"臺北市", "臺北市"},
	{"台北市", "臺北市"},
	{"新北市", "新北市"},
	{"桃園市", "桃園市"},
	{"桃園縣", "桃園市"},
	{"臺中市", "臺中市"},
	{"台中市", "臺中市"},
	{"臺南市", "臺南市"},
	{"台南市", "臺南市"},
	{"高雄市", "高雄市"},
	{"基隆市", "基隆市"},
	{"新竹市", "新竹市"},
	{"嘉義市", "嘉義市"},
	{"新竹縣", "新竹縣"},
	{"苗栗縣", "苗栗縣"},
	{"彰化縣", "彰化縣"},
	{"南投縣", "南投縣"},
	{"雲林縣", "雲林縣"},
	{"嘉義縣", "嘉義縣"},
	{"屏東縣", "屏東縣"},
	{"宜蘭縣", "宜蘭縣"},
	{"花蓮縣", "花蓮縣"},
	{"臺東縣", "臺東縣"},
	{"台東縣", "臺東縣"},
	{"澎湖縣", "澎湖縣"},
	{"金門縣", "金門縣"},
	{"連江縣", "連江縣"},
}

// subRegionSuffixes are the administrative-unit markers that terminate a
// sub-region token: district, county-administered city, urban township,
// rural township, county.
var subRegionSuffixes = []rune{'區', '市', '鎮', '鄉', '縣'}

// Gazetteer returns a copy of the region table for callers that need to
// iterate it (extension loading, property tests).
func Gazetteer() []RegionEntry {
	out := make([]RegionEntry, len(gazetteer))
	copy(out, gazetteer)
	return out
}

func isSubRegionSuffix(r rune) bool {
	for _, s := range subRegionSuffixes {
		if r == s {
			return true
		}
	}
	return false
}
