package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const townListXML = `<?xml version="1.0" encoding="UTF-8"?>
<townItems>
  <townItem><towncode>A01</towncode><townname>中正區</townname></townItem>
  <townItem><towncode>A02</towncode><townname>大同區</townname></townItem>
</townItems>`

func TestTownImporter_Import(t *testing.T) {
	bodies := make(map[string]string)
	for code := range nlscCityCodes {
		bodies[nlscListTownURL+code] = townListXML
	}

	st := newFakeStore()
	imp := &TownImporter{
		Fetcher: &urlFetcher{bodies: bodies},
		Engine:  NewEngine(st),
	}

	n, err := imp.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2*len(nlscCityCodes), n)
	assert.Len(t, st.regions, len(nlscCityCodes))
	assert.Len(t, st.subRegions, 2*len(nlscCityCodes))
}

func TestTownImporter_PartialFailure(t *testing.T) {
	// Only one city's listing is reachable; the rest are skipped with a
	// warning and the import still succeeds.
	bodies := map[string]string{nlscListTownURL + "A": townListXML}

	st := newFakeStore()
	imp := &TownImporter{
		Fetcher: &urlFetcher{bodies: bodies},
		Engine:  NewEngine(st),
	}

	n, err := imp.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTownImporter_TotalFailure(t *testing.T) {
	st := newFakeStore()
	imp := &TownImporter{
		Fetcher: &urlFetcher{bodies: map[string]string{}},
		Engine:  NewEngine(st),
	}

	_, err := imp.Import(context.Background())
	require.Error(t, err)
}
