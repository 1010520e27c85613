package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parentmap/ingest-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_UpsertRegionIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	id1, err := s.UpsertRegion(ctx, "臺北市")
	require.NoError(t, err)
	id2, err := s.UpsertRegion(ctx, "臺北市")
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "same name upserts to the same row")

	id3, err := s.UpsertRegion(ctx, "新北市")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestSQLiteStore_UpsertSubRegionScopedToRegion(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	taipei, err := s.UpsertRegion(ctx, "臺北市")
	require.NoError(t, err)
	hsinchu, err := s.UpsertRegion(ctx, "新竹縣")
	require.NoError(t, err)

	// 北區 exists in several cities; rows are distinct per region.
	a, err := s.UpsertSubRegion(ctx, taipei, "北區")
	require.NoError(t, err)
	b, err := s.UpsertSubRegion(ctx, hsinchu, "北區")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	again, err := s.UpsertSubRegion(ctx, taipei, "北區")
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestSQLiteStore_InsertPlaceAndDedup(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	regionID, err := s.UpsertRegion(ctx, "臺北市")
	require.NoError(t, err)
	subRegionID, err := s.UpsertSubRegion(ctx, regionID, "北投區")
	require.NoError(t, err)

	row := PlaceRow{Place: testPlace(), RegionID: &regionID, SubRegionID: &subRegionID}

	exists, err := s.PlaceExists(ctx, row.Place.Source, row.Place.SourceID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.InsertPlace(ctx, row))

	exists, err = s.PlaceExists(ctx, row.Place.Source, row.Place.SourceID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Re-inserting the same (source, sourceId) is a no-op, not an error.
	require.NoError(t, s.InsertPlace(ctx, row))

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM places WHERE source = ? AND source_id = ?`,
		row.Place.Source, row.Place.SourceID,
	).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_InsertPlace_NullRegionAllowed(t *testing.T) {
	s := newTestSQLite(t)

	p := testPlace()
	p.SourceID = "TPE-null-region"
	require.NoError(t, s.InsertPlace(context.Background(), PlaceRow{Place: p}))
}

func TestSQLiteStore_InsertPendingGeocode(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	p := testPlace()
	p.Latitude = nil
	p.Longitude = nil
	p.Source = model.SourceNursingMandatory
	p.SourceID = "nursing_room_依法設置_0_北投親子館"

	inserted, err := s.InsertPendingGeocode(ctx, PlaceRow{Place: p})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.InsertPendingGeocode(ctx, PlaceRow{Place: p})
	require.NoError(t, err, "duplicate pending rows collapse")
	assert.False(t, inserted, "the collapsed insert reports no new row")

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM geocode_pending`).Scan(&count))
	assert.Equal(t, 1, count)
}
