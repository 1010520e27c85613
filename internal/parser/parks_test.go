package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parentmap/ingest-cli/internal/model"
)

const parksListingHTML = `
<html><body><ul>
  <li id="view-1">
    <a class="views-List" href="park_detail.php?id=101">
      <h3 class="title">鶯歌永吉公園</h3>
      <p class="location">新北市．鶯歌</p>
    </a>
  </li>
  <li id="view-2">
    <a class="views-List" href="https://www.ntparks.tw/park_detail.php?id=102">
      <h3 class="title">中和員山公園</h3>
      <p class="location">新北市．中和區</p>
    </a>
  </li>
  <li id="other"><h3 class="title">不是公園項目</h3></li>
</ul></body></html>`

func TestParseParksListing(t *testing.T) {
	places, err := ParseParksListing(strings.NewReader(parksListingHTML), 0)
	require.NoError(t, err)
	require.Len(t, places, 2, "only view-* items are listing entries")

	p := places[0]
	assert.Equal(t, "鶯歌永吉公園", p.Name)
	assert.Equal(t, "新北市", p.Region)
	assert.Equal(t, "鶯歌區", p.SubRegion, "bare district stem gets the unit suffix")
	assert.Equal(t, "https://www.ntparks.tw/park_detail.php?id=101", p.Link)
	assert.False(t, p.HasCoordinates(), "coordinates come from the detail phase")
	assert.Equal(t, model.SourceNewTaipeiParks, p.Source)
	assert.Equal(t, "ntpc_park_0_鶯歌永吉公園", p.SourceID)
	assert.Equal(t, "view-1", p.Metadata["htmlId"])

	assert.Equal(t, "中和區", places[1].SubRegion)
	assert.Equal(t, "ntpc_park_1_中和員山公園", places[1].SourceID)
}

func TestParseParksListing_IndexOffset(t *testing.T) {
	places, err := ParseParksListing(strings.NewReader(parksListingHTML), 20)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "ntpc_park_20_鶯歌永吉公園", places[0].SourceID)
}

const parkDetailHTML = `
<html><body>
  <div class="stitle subTitle_cray">位置</div>
  <div class="content">新北市鶯歌區永吉街100號</div>
  <div class="stitle subTitle_cray">公園介紹</div>
  <div class="content">以炮仗花海聞名的山坡公園。</div>
  <div class="stitle subTitle_cray">遊具設施</div>
  <div class="content">磨石子滑梯、攀爬網</div>
  <div class="stitle subTitle_cray">體健設施</div>
  <div class="content">漫步機</div>
  <div class="stitle subTitle_cray">停車資訊</div>
  <div class="content">路邊停車格</div>
  <img src="images/views/yongji01.jpg">
  <img src="/images/views/yongji02.jpg">
  <img src="images/logo/site.png">
  <iframe src="https://www.google.com/maps/embed?pb=!1m18!1m12!2d121.3315648886216!3d24.97092663816664!others"></iframe>
</body></html>`

func TestParseParkDetail(t *testing.T) {
	detail, err := ParseParkDetail(parkDetailHTML)
	require.NoError(t, err)

	assert.Equal(t, "新北市鶯歌區永吉街100號", detail.Address)
	assert.Equal(t, "以炮仗花海聞名的山坡公園。", detail.Description)
	assert.Equal(t, "磨石子滑梯、攀爬網", detail.PlayEquipment)
	assert.Equal(t, "漫步機", detail.FitnessEquipment)
	assert.Equal(t, "路邊停車格", detail.Extra["停車資訊"])

	require.NotNil(t, detail.Latitude)
	require.NotNil(t, detail.Longitude)
	assert.InDelta(t, 24.97092663816664, *detail.Latitude, 1e-12)
	assert.InDelta(t, 121.3315648886216, *detail.Longitude, 1e-12)

	require.Len(t, detail.ImageLinks, 2, "site chrome images are excluded")
	assert.Equal(t, "https://www.ntparks.tw/images/views/yongji01.jpg", detail.ImageLinks[0])
	assert.Equal(t, "https://www.ntparks.tw/images/views/yongji02.jpg", detail.ImageLinks[1])
}

func TestParseParkDetail_MissingSections(t *testing.T) {
	detail, err := ParseParkDetail(`<html><body><p>維護中</p></body></html>`)
	require.NoError(t, err)
	assert.Empty(t, detail.Address)
	assert.Nil(t, detail.Latitude)
	assert.Empty(t, detail.ImageLinks)
}
