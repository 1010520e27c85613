// Package ingest orchestrates per-source ingestion: parse, resolve reference
// entities, deduplicate, persist, and tally. Sources run sequentially so the
// region/sub-region cache never races on reference-entity creation.
package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/parentmap/ingest-cli/internal/model"
	"github.com/parentmap/ingest-cli/internal/store"
)

// State tracks a source's progress through the ingestion run.
type State string

const (
	StateNotStarted    State = "not_started"
	StateParsing       State = "parsing"
	StateResolving     State = "resolving"
	StateDeduplicating State = "deduplicating"
	StatePersisting    State = "persisting"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// Source supplies one dataset's parsed places. Parse failures abort that
// source only.
type Source interface {
	Name() string
	Parse(ctx context.Context) ([]model.Place, error)
}

type subRegionKey struct {
	regionID int
	name     string
}

// Engine runs sources against a store. The region and sub-region id caches
// live for the engine's lifetime, so repeated names across sources hit the
// store once.
type Engine struct {
	store        store.Store
	regionIDs    map[string]int
	subRegionIDs map[subRegionKey]int
}

func NewEngine(st store.Store) *Engine {
	return &Engine{
		store:        st,
		regionIDs:    make(map[string]int),
		subRegionIDs: make(map[subRegionKey]int),
	}
}

// Run ingests one source to completion and returns its summary. The returned
// error is non-nil only for source-level failures (unreadable input, store
// breakage); individual bad records are counted, not fatal.
func (e *Engine) Run(ctx context.Context, src Source) (model.SourceSummary, error) {
	summary := model.SourceSummary{Source: src.Name()}
	state := StateNotStarted
	log := zap.L().With(zap.String("source", src.Name()))

	transition := func(next State) {
		log.Info("ingest: state",
			zap.String("from", string(state)),
			zap.String("to", string(next)))
		state = next
	}

	transition(StateParsing)
	places, err := src.Parse(ctx)
	if err != nil {
		transition(StateFailed)
		return summary, eris.Wrapf(err, "ingest: parse source %s", src.Name())
	}
	summary.Parsed = len(places)
	if len(places) == 0 {
		log.Warn("ingest: source yielded zero records")
	}

	transition(StateResolving)
	if err := e.resolveReferences(ctx, places); err != nil {
		transition(StateFailed)
		return summary, err
	}

	transition(StateDeduplicating)
	persisting := false
	// Duplicates inside one batch pass the store existence check (the first
	// copy is not persisted yet), so the run tracks its own keys.
	seen := make(map[string]struct{}, len(places))
	for i := range places {
		p := &places[i]

		key := p.Source + "\x00" + p.SourceID
		if _, dup := seen[key]; dup {
			summary.SkippedDuplicate++
			continue
		}
		seen[key] = struct{}{}

		if !p.HasCoordinates() {
			e.holdForGeocoding(ctx, p, &summary, log)
			continue
		}
		if !model.InEnvelope(*p.Latitude, *p.Longitude) {
			summary.SkippedInvalidCoordinate++
			log.Warn("ingest: coordinate outside envelope",
				zap.String("name", p.Name),
				zap.Float64("lat", *p.Latitude),
				zap.Float64("lng", *p.Longitude))
			continue
		}

		regionID, subRegionID := e.cachedIDs(p.Region, p.SubRegion)
		if regionID == nil {
			summary.SkippedMissingRegion++
			log.Warn("ingest: no resolvable region", zap.String("name", p.Name))
			continue
		}

		exists, err := e.store.PlaceExists(ctx, p.Source, p.SourceID)
		if err != nil {
			transition(StateFailed)
			return summary, eris.Wrapf(err, "ingest: dedup check %s", p.SourceID)
		}
		if exists {
			summary.SkippedDuplicate++
			continue
		}

		if !persisting {
			persisting = true
			transition(StatePersisting)
		}
		err = e.store.InsertPlace(ctx, store.PlaceRow{
			Place:       *p,
			RegionID:    regionID,
			SubRegionID: subRegionID,
		})
		if err != nil {
			transition(StateFailed)
			return summary, eris.Wrapf(err, "ingest: persist %s", p.SourceID)
		}
		summary.Created++
	}

	transition(StateDone)
	log.Info("ingest: source complete", zap.String("summary", summary.String()))
	return summary, nil
}

// resolveReferences upserts every distinct region and sub-region name the
// batch carries, filling the id caches. Places without a region are left for
// the record loop to count.
func (e *Engine) resolveReferences(ctx context.Context, places []model.Place) error {
	for i := range places {
		p := &places[i]
		if p.Region == "" {
			continue
		}

		regionID, ok := e.regionIDs[p.Region]
		if !ok {
			id, err := e.store.UpsertRegion(ctx, p.Region)
			if err != nil {
				return eris.Wrapf(err, "ingest: upsert region %s", p.Region)
			}
			e.regionIDs[p.Region] = id
			regionID = id
		}

		if p.SubRegion == "" {
			continue
		}
		key := subRegionKey{regionID: regionID, name: p.SubRegion}
		if _, ok := e.subRegionIDs[key]; !ok {
			id, err := e.store.UpsertSubRegion(ctx, regionID, p.SubRegion)
			if err != nil {
				return eris.Wrapf(err, "ingest: upsert sub-region %s", p.SubRegion)
			}
			e.subRegionIDs[key] = id
		}
	}
	return nil
}

// cachedIDs looks up resolved ids; it never hits the store.
func (e *Engine) cachedIDs(region, subRegion string) (*int, *int) {
	regionID, ok := e.regionIDs[region]
	if !ok {
		return nil, nil
	}
	var subRegionID *int
	if id, ok := e.subRegionIDs[subRegionKey{regionID: regionID, name: subRegion}]; ok {
		subRegionID = &id
	}
	rid := regionID
	return &rid, subRegionID
}

// ResolveIDs upserts a region (and optionally a sub-region) through the
// cache, for callers outside a batch run such as the add-place endpoint.
func (e *Engine) ResolveIDs(ctx context.Context, region, subRegion string) (*int, *int, error) {
	if region == "" {
		return nil, nil, nil
	}

	regionID, ok := e.regionIDs[region]
	if !ok {
		id, err := e.store.UpsertRegion(ctx, region)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "ingest: upsert region %s", region)
		}
		e.regionIDs[region] = id
		regionID = id
	}

	var subRegionID *int
	if subRegion != "" {
		key := subRegionKey{regionID: regionID, name: subRegion}
		id, ok := e.subRegionIDs[key]
		if !ok {
			var err error
			id, err = e.store.UpsertSubRegion(ctx, regionID, subRegion)
			if err != nil {
				return nil, nil, eris.Wrapf(err, "ingest: upsert sub-region %s", subRegion)
			}
			e.subRegionIDs[key] = id
		}
		subRegionID = &id
	}

	rid := regionID
	return &rid, subRegionID, nil
}

// holdForGeocoding parks a coordinate-less place in the pending table. These
// are reported under the needs-geocoding count, never merged into created; a
// place parked by an earlier run counts as a duplicate instead.
func (e *Engine) holdForGeocoding(ctx context.Context, p *model.Place, summary *model.SourceSummary, log *zap.Logger) {
	regionID, subRegionID := e.cachedIDs(p.Region, p.SubRegion)
	inserted, err := e.store.InsertPendingGeocode(ctx, store.PlaceRow{
		Place:       *p,
		RegionID:    regionID,
		SubRegionID: subRegionID,
	})
	if err != nil {
		log.Warn("ingest: pending geocode insert failed",
			zap.String("name", p.Name), zap.Error(err))
		return
	}
	if !inserted {
		summary.SkippedDuplicate++
		return
	}
	summary.NeedsGeocoding++
}
