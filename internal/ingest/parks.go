package ingest

import (
	"context"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parentmap/ingest-cli/internal/address"
	"github.com/parentmap/ingest-cli/internal/extract"
	"github.com/parentmap/ingest-cli/internal/fetcher"
	"github.com/parentmap/ingest-cli/internal/model"
	"github.com/parentmap/ingest-cli/internal/parser"
)

// parksPageStride spaces the per-page index offsets so source ids stay
// unique across listing pages.
const parksPageStride = 1000

// ParksCollector runs the two-phase park collection: fetch and parse every
// listing page, then fetch each park's detail page with a bounded fan-out.
// Detail failures are isolated per park; the summary entry survives without
// enrichment.
type ParksCollector struct {
	Fetcher fetcher.Fetcher
	Extract *extract.Extractor

	// ListURLs are the listing page URLs in page order.
	ListURLs []string

	// DetailLimit bounds the concurrent detail fetches; zero means 8.
	DetailLimit int
}

// Collect returns the enriched place list. A failed listing page fails the
// whole source (the set would be incomplete); failed detail pages do not.
func (c *ParksCollector) Collect(ctx context.Context) ([]model.Place, error) {
	log := zap.L().With(zap.String("source", model.SourceNewTaipeiParks))

	pages := make([][]model.Place, len(c.ListURLs))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range c.ListURLs {
		g.Go(func() error {
			entries, err := c.fetchListing(gctx, url, i*parksPageStride)
			if err != nil {
				return err
			}
			pages[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var places []model.Place
	for _, page := range pages {
		places = append(places, page...)
	}
	log.Info("ingest: parks listing parsed", zap.Int("entries", len(places)))

	limit := c.DetailLimit
	if limit <= 0 {
		limit = 8
	}
	dg, dctx := errgroup.WithContext(ctx)
	dg.SetLimit(limit)
	for i := range places {
		dg.Go(func() error {
			// Index-preserving parallel enrichment; a failed detail
			// fetch leaves the summary entry as parsed.
			if err := c.enrich(dctx, &places[i]); err != nil {
				log.Warn("ingest: park detail fetch failed",
					zap.String("name", places[i].Name),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = dg.Wait()

	return places, nil
}

func (c *ParksCollector) fetchListing(ctx context.Context, url string, offset int) ([]model.Place, error) {
	rc, err := c.Fetcher.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parser.ParseParksListing(rc, offset)
}

func (c *ParksCollector) enrich(ctx context.Context, p *model.Place) error {
	if p.Link == "" {
		return nil
	}

	rc, err := c.Fetcher.Download(ctx, p.Link)
	if err != nil {
		return err
	}
	markup, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return err
	}

	detail, err := parser.ParseParkDetail(string(markup))
	if err != nil {
		return err
	}

	if detail.Address != "" {
		res := address.Resolve(detail.Address, p.Region, p.SubRegion)
		p.Address = res.Remainder
		p.Region = address.NormalizeRegion(res.Region)
		p.SubRegion = address.NormalizeSubRegion(res.SubRegion)
		p.Metadata["originalAddress"] = detail.Address
	}

	if detail.Latitude != nil && detail.Longitude != nil &&
		model.InEnvelope(*detail.Latitude, *detail.Longitude) {
		p.SetCoordinates(*detail.Latitude, *detail.Longitude)
	}

	if c.Extract != nil && detail.PlayEquipment != "" {
		p.Facilities = c.Extract.ListFacilities(detail.PlayEquipment)
	}

	p.Metadata["playEquipment"] = detail.PlayEquipment
	p.Metadata["fitnessEquipment"] = detail.FitnessEquipment
	p.Metadata["description"] = detail.Description
	p.Metadata["imageLinks"] = detail.ImageLinks
	for k, v := range detail.Extra {
		p.Metadata[k] = v
	}
	return nil
}
