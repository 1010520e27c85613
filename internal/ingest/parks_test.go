package ingest

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parentmap/ingest-cli/internal/extract"
)

// urlFetcher serves canned bodies by URL.
type urlFetcher struct {
	bodies map[string]string
}

func (f *urlFetcher) Download(_ context.Context, url string) (io.ReadCloser, error) {
	body, ok := f.bodies[url]
	if !ok {
		return nil, eris.Errorf("no body for %s", url)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *urlFetcher) DownloadToFile(ctx context.Context, url, path string) (int64, error) {
	return 0, eris.New("not used")
}

const testListingPage = `
<ul>
  <li id="view-1">
    <a class="views-List" href="park_detail.php?id=101">
      <h3 class="title">鶯歌永吉公園</h3>
      <p class="location">新北市．鶯歌</p>
    </a>
  </li>
  <li id="view-2">
    <a class="views-List" href="park_detail.php?id=102">
      <h3 class="title">失聯公園</h3>
      <p class="location">新北市．三峽區</p>
    </a>
  </li>
</ul>`

const testDetailPage = `
<div class="stitle">位置</div><div class="content">新北市鶯歌區永吉街100號</div>
<div class="stitle">遊具設施</div><div class="content">磨石子滑梯、攀爬網</div>
<iframe src="https://www.google.com/maps/embed?pb=!2d121.3315648!3d24.9709266!x"></iframe>`

func TestParksCollector_Collect(t *testing.T) {
	// Detail for id=102 is intentionally absent: its fetch fails and the
	// summary entry survives unenriched.
	f := &urlFetcher{bodies: map[string]string{}}
	f.bodies["https://www.ntparks.tw/list?page=1"] = testListingPage
	f.bodies["https://www.ntparks.tw/park_detail.php?id=101"] = testDetailPage

	c := &ParksCollector{
		Fetcher:  f,
		Extract:  extract.New(),
		ListURLs: []string{"https://www.ntparks.tw/list?page=1"},
	}

	places, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, places, 2)

	enriched := places[0]
	assert.Equal(t, "鶯歌永吉公園", enriched.Name)
	assert.Equal(t, "新北市", enriched.Region)
	assert.Equal(t, "鶯歌區", enriched.SubRegion)
	assert.Equal(t, "永吉街100號", enriched.Address)
	require.True(t, enriched.HasCoordinates())
	assert.InDelta(t, 24.9709266, *enriched.Latitude, 1e-9)
	require.Len(t, enriched.Facilities, 2)
	assert.Equal(t, "磨石子滑梯", enriched.Facilities[0].EquipmentName)
	assert.Equal(t, "磨石子滑梯、攀爬網", enriched.Metadata["playEquipment"])

	bare := places[1]
	assert.Equal(t, "失聯公園", bare.Name)
	assert.False(t, bare.HasCoordinates(), "failed detail fetch leaves the summary entry")
	assert.Equal(t, "三峽區", bare.SubRegion)
}

func TestParksCollector_ListingFailureFailsSource(t *testing.T) {
	c := &ParksCollector{
		Fetcher:  &urlFetcher{bodies: map[string]string{}},
		ListURLs: []string{"https://www.ntparks.tw/list?page=1"},
	}
	_, err := c.Collect(context.Background())
	require.Error(t, err)
}
