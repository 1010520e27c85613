package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parentmap/ingest-cli/internal/model"
	"github.com/parentmap/ingest-cli/internal/store"
)

// fakeStore is an in-memory store.Store for orchestrator tests.
type fakeStore struct {
	regions          map[string]int
	subRegions       map[string]int
	places           map[string]store.PlaceRow
	pending          map[string]store.PlaceRow
	regionUpserts    int
	subRegionUpserts int
	nextID           int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		regions:    make(map[string]int),
		subRegions: make(map[string]int),
		places:     make(map[string]store.PlaceRow),
		pending:    make(map[string]store.PlaceRow),
	}
}

func (f *fakeStore) UpsertRegion(_ context.Context, name string) (int, error) {
	f.regionUpserts++
	if id, ok := f.regions[name]; ok {
		return id, nil
	}
	f.nextID++
	f.regions[name] = f.nextID
	return f.nextID, nil
}

func (f *fakeStore) UpsertSubRegion(_ context.Context, regionID int, name string) (int, error) {
	f.subRegionUpserts++
	key := fmt.Sprintf("%d/%s", regionID, name)
	if id, ok := f.subRegions[key]; ok {
		return id, nil
	}
	f.nextID++
	f.subRegions[key] = f.nextID
	return f.nextID, nil
}

func (f *fakeStore) PlaceExists(_ context.Context, source, sourceID string) (bool, error) {
	_, ok := f.places[source+"/"+sourceID]
	return ok, nil
}

func (f *fakeStore) InsertPlace(_ context.Context, row store.PlaceRow) error {
	f.places[row.Place.Source+"/"+row.Place.SourceID] = row
	return nil
}

func (f *fakeStore) InsertPendingGeocode(_ context.Context, row store.PlaceRow) (bool, error) {
	key := row.Place.Source + "/" + row.Place.SourceID
	if _, ok := f.pending[key]; ok {
		return false, nil
	}
	f.pending[key] = row
	return true, nil
}

func (f *fakeStore) AddPlace(context.Context, store.AddPlaceRequest) (model.Place, error) {
	return model.Place{}, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

func place(name, region, subRegion, sourceID string, lat, lng float64) model.Place {
	p := model.Place{
		Name:      name,
		Region:    region,
		SubRegion: subRegion,
		Source:    "測試來源",
		SourceID:  sourceID,
	}
	p.SetCoordinates(lat, lng)
	return p
}

func TestEngineRun_Counts(t *testing.T) {
	st := newFakeStore()
	e := NewEngine(st)

	noCoords := model.Place{Name: "待定位", Region: "臺北市", Source: "測試來源", SourceID: "p4"}
	badCoords := place("出界", "臺北市", "北投區", "p3", 3.0, 101.0)
	noRegion := place("無區域", "", "", "p2", 25.0, 121.5)

	src := NewStaticSource("測試來源", []model.Place{
		place("甲", "臺北市", "北投區", "p1", 25.1, 121.5),
		noRegion,
		badCoords,
		noCoords,
	}, nil)

	summary, err := e.Run(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Parsed)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.SkippedDuplicate)
	assert.Equal(t, 1, summary.SkippedMissingRegion)
	assert.Equal(t, 1, summary.SkippedInvalidCoordinate)
	assert.Equal(t, 1, summary.NeedsGeocoding)

	require.Len(t, st.places, 1)
	require.Len(t, st.pending, 1)

	row := st.places["測試來源/p1"]
	require.NotNil(t, row.RegionID)
	require.NotNil(t, row.SubRegionID)
}

func TestEngineRun_DedupAcrossRuns(t *testing.T) {
	st := newFakeStore()
	e := NewEngine(st)

	build := func() Source {
		return NewStaticSource("測試來源", []model.Place{
			place("甲", "臺北市", "北投區", "p1", 25.1, 121.5),
			place("乙", "臺北市", "中山區", "p2", 25.06, 121.54),
		}, nil)
	}

	first, err := e.Run(context.Background(), build())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.SkippedDuplicate)

	second, err := e.Run(context.Background(), build())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created, "re-running the same input creates nothing")
	assert.Equal(t, 2, second.SkippedDuplicate)
	assert.Len(t, st.places, 2)
}

func TestEngineRun_DedupWithinOneBatch(t *testing.T) {
	st := newFakeStore()
	e := NewEngine(st)

	// The upstream file repeats a record; only the first copy lands.
	src := NewStaticSource("測試來源", []model.Place{
		place("甲", "臺北市", "北投區", "p1", 25.1, 121.5),
		place("甲重複", "臺北市", "北投區", "p1", 25.1, 121.5),
		place("乙", "臺北市", "中山區", "p2", 25.06, 121.54),
	}, nil)

	summary, err := e.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.SkippedDuplicate)
	assert.Len(t, st.places, 2)
}

func TestEngineRun_PendingGeocodeNotRecounted(t *testing.T) {
	st := newFakeStore()
	e := NewEngine(st)

	build := func() Source {
		return NewStaticSource("測試來源", []model.Place{
			{Name: "待定位", Region: "臺北市", Source: "測試來源", SourceID: "p1"},
		}, nil)
	}

	first, err := e.Run(context.Background(), build())
	require.NoError(t, err)
	assert.Equal(t, 1, first.NeedsGeocoding)

	second, err := e.Run(context.Background(), build())
	require.NoError(t, err)
	assert.Equal(t, 0, second.NeedsGeocoding, "an already-parked place is not recounted")
	assert.Equal(t, 1, second.SkippedDuplicate)
	assert.Len(t, st.pending, 1)
}

func TestEngineRun_ReferenceCacheAvoidsRoundTrips(t *testing.T) {
	st := newFakeStore()
	e := NewEngine(st)

	var places []model.Place
	for i := 0; i < 10; i++ {
		places = append(places, place(fmt.Sprintf("地點%d", i), "臺北市", "北投區", fmt.Sprintf("p%d", i), 25.1, 121.5))
	}

	_, err := e.Run(context.Background(), NewStaticSource("測試來源", places, nil))
	require.NoError(t, err)

	assert.Equal(t, 1, st.regionUpserts, "one upsert per distinct region name")
	assert.Equal(t, 1, st.subRegionUpserts)

	// A second source with the same names hits the engine cache, not the store.
	_, err = e.Run(context.Background(), NewStaticSource("另一來源", places, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, st.regionUpserts)
	assert.Equal(t, 1, st.subRegionUpserts)
}

func TestEngineRun_ParseFailureAbortsSourceOnly(t *testing.T) {
	st := newFakeStore()
	e := NewEngine(st)

	_, err := e.Run(context.Background(), NewStaticSource("壞來源", nil, eris.New("file missing")))
	require.Error(t, err)

	// A healthy source afterwards is unaffected.
	summary, err := e.Run(context.Background(), NewStaticSource("好來源", []model.Place{
		place("甲", "臺北市", "北投區", "p1", 25.1, 121.5),
	}, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
}

func TestEngineResolveIDs(t *testing.T) {
	st := newFakeStore()
	e := NewEngine(st)
	ctx := context.Background()

	regionID, subRegionID, err := e.ResolveIDs(ctx, "臺北市", "北投區")
	require.NoError(t, err)
	require.NotNil(t, regionID)
	require.NotNil(t, subRegionID)

	again, againSub, err := e.ResolveIDs(ctx, "臺北市", "北投區")
	require.NoError(t, err)
	assert.Equal(t, *regionID, *again)
	assert.Equal(t, *subRegionID, *againSub)
	assert.Equal(t, 1, st.regionUpserts)

	none, noneSub, err := e.ResolveIDs(ctx, "", "")
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.Nil(t, noneSub)
}
