package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_RegionAndSubRegion(t *testing.T) {
	res := Resolve("臺北市北投區榮華三路與磺溪旁", "", "")
	assert.Equal(t, "臺北市", res.Region)
	assert.Equal(t, "北投區", res.SubRegion)
	assert.Equal(t, "榮華三路與磺溪旁", res.Remainder)
}

func TestResolve_GlyphVariantCanonicalized(t *testing.T) {
	res := Resolve("台北市中山區南京東路三段1號", "", "")
	assert.Equal(t, "臺北市", res.Region)
	assert.Equal(t, "中山區", res.SubRegion)
	assert.Equal(t, "南京東路三段1號", res.Remainder)
}

func TestResolve_RenamedCounty(t *testing.T) {
	res := Resolve("桃園縣中壢市中正路100號", "", "")
	assert.Equal(t, "桃園市", res.Region)
	assert.Equal(t, "中壢市", res.SubRegion)
	assert.Equal(t, "中正路100號", res.Remainder)
}

func TestResolve_RegionWithoutSubRegion(t *testing.T) {
	res := Resolve("新北市某個沒有後綴的地方", "", "")
	assert.Equal(t, "新北市", res.Region)
	assert.Empty(t, res.SubRegion)
	assert.Equal(t, "某個沒有後綴的地方", res.Remainder)
}

func TestResolve_SubRegionFallbackWhenNotInAddress(t *testing.T) {
	res := Resolve("新北市某個沒有後綴的地方", "", "板橋區")
	assert.Equal(t, "新北市", res.Region)
	assert.Equal(t, "板橋區", res.SubRegion)
}

func TestResolve_NoRegionPrefixUsesFallbacks(t *testing.T) {
	res := Resolve("北投區榮華三路", "臺北市", "士林區")
	assert.Equal(t, "臺北市", res.Region)
	assert.Equal(t, "士林區", res.SubRegion)
	assert.Equal(t, "北投區榮華三路", res.Remainder)
}

func TestResolve_EmptyAddress(t *testing.T) {
	res := Resolve("   ", "高雄市", "")
	assert.Equal(t, "高雄市", res.Region)
	assert.Empty(t, res.SubRegion)
	assert.Empty(t, res.Remainder)
}

func TestResolve_TownshipSuffixes(t *testing.T) {
	tests := []struct {
		addr      string
		region    string
		subRegion string
	}{
		{"宜蘭縣羅東鎮中山路", "宜蘭縣", "羅東鎮"},
		{"新竹縣竹北市光明路", "新竹縣", "竹北市"},
		{"屏東縣恆春鎮墾丁路", "屏東縣", "恆春鎮"},
		{"花蓮縣秀林鄉富世村", "花蓮縣", "秀林鄉"},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			res := Resolve(tt.addr, "", "")
			assert.Equal(t, tt.region, res.Region)
			assert.Equal(t, tt.subRegion, res.SubRegion)
		})
	}
}

// Every gazetteer entry followed by a valid sub-region token must resolve to
// the entry's canonical region with the exact remainder.
func TestResolve_GazetteerProperty(t *testing.T) {
	for _, entry := range Gazetteer() {
		addr := entry.Name + "中山區測試路99號"
		res := Resolve(addr, "", "")
		assert.Equal(t, entry.Canonical, res.Region, "entry %s", entry.Name)
		assert.Equal(t, "中山區", res.SubRegion, "entry %s", entry.Name)
		assert.Equal(t, "測試路99號", res.Remainder, "entry %s", entry.Name)
	}
}

func TestNormalizeRegion_RenamedCounty(t *testing.T) {
	assert.Equal(t, "桃園市", NormalizeRegion("桃園縣"))
	assert.Equal(t, "臺北市", NormalizeRegion("台北市"))
	// Names outside the gazetteer pass through with only the glyph rewrite.
	assert.Equal(t, "某某縣", NormalizeRegion("某某縣"))
}

func TestNormalizeRegion_Idempotent(t *testing.T) {
	for _, entry := range Gazetteer() {
		once := NormalizeRegion(entry.Name)
		assert.Equal(t, entry.Canonical, once, "entry %s", entry.Name)
		assert.Equal(t, once, NormalizeRegion(once))
	}
}

func TestNormalizeSubRegion(t *testing.T) {
	assert.Equal(t, "北投區", NormalizeSubRegion("  北投區 "))
	assert.Empty(t, NormalizeSubRegion("   "))
}

func TestEnsureUnitSuffix(t *testing.T) {
	assert.Equal(t, "內湖區", EnsureUnitSuffix("內湖"))
	assert.Equal(t, "內湖區", EnsureUnitSuffix("內湖區"))
	assert.Equal(t, "羅東鎮", EnsureUnitSuffix("羅東鎮"))
	assert.Empty(t, EnsureUnitSuffix(""))
}

func TestMatchSubRegion_GreedyFirstSuffix(t *testing.T) {
	// 中壢市平鎮... — the first suffix rune (市) ends the token even though
	// a later rune (鎮) is also a suffix.
	got := matchSubRegion("中壢市平鎮路")
	assert.Equal(t, "中壢市", got)
}

func TestMatchSubRegion_TooLong(t *testing.T) {
	// Five non-suffix runes before the suffix: no match.
	assert.Empty(t, matchSubRegion("甲乙丙丁戊區"))
	// Suffix as the very first rune: no name portion, no match.
	assert.Empty(t, matchSubRegion("區榮華三路"))
}

func TestGazetteer_VariantsSharesCanonical(t *testing.T) {
	byCanonical := map[string][]string{}
	for _, e := range Gazetteer() {
		byCanonical[e.Canonical] = append(byCanonical[e.Canonical], e.Name)
	}
	assert.Len(t, byCanonical["臺北市"], 2)
	assert.Len(t, byCanonical["桃園市"], 2)
	for canonical := range byCanonical {
		assert.False(t, strings.Contains(canonical, "台"), "canonical %s uses variant glyph", canonical)
	}
}
