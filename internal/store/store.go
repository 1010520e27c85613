// Package store persists normalized places and their reference entities.
// Two backends exist: Postgres (with a geography column the query tier
// indexes spatially) and SQLite for local runs.
package store

import (
	"context"

	"github.com/parentmap/ingest-cli/internal/model"
)

// Store is the persistence interface the ingestion orchestrator writes
// through. Region and sub-region upserts are create-on-miss and safe to call
// repeatedly with the same name.
type Store interface {
	// Reference entities.
	UpsertRegion(ctx context.Context, name string) (int, error)
	UpsertSubRegion(ctx context.Context, regionID int, name string) (int, error)

	// Places. PlaceExists checks the (source, sourceId) dedup key;
	// InsertPlace requires validated coordinates.
	PlaceExists(ctx context.Context, source, sourceID string) (bool, error)
	InsertPlace(ctx context.Context, row PlaceRow) error

	// Coordinate-less places are parked for a later geocoding pass
	// instead of entering the queryable places table. Reports whether a
	// new row was parked; an already-pending (source, source id) is a
	// no-op.
	InsertPendingGeocode(ctx context.Context, row PlaceRow) (bool, error)

	// AddPlace is the single-place mutation used by the HTTP endpoint.
	// When the request carries no explicit region ids, the address is
	// resolved with the same contract the batch pipeline uses.
	AddPlace(ctx context.Context, req AddPlaceRequest) (model.Place, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}

// PlaceRow pairs a normalized place with its resolved reference ids. Nil ids
// mean resolution failed and the column stays NULL.
type PlaceRow struct {
	Place       model.Place
	RegionID    *int
	SubRegionID *int
}
