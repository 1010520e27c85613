package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/parentmap/ingest-cli/internal/address"
	"github.com/parentmap/ingest-cli/internal/model"
)

// AddPlaceRequest is the single add-place mutation. Either explicit region
// ids or a resolvable address must be supplied; when ids are absent the
// address is resolved server-side with the same contract the batch pipeline
// uses.
type AddPlaceRequest struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Address     string           `json:"address,omitempty"`
	RegionID    *int             `json:"region_id,omitempty"`
	SubRegionID *int             `json:"sub_region_id,omitempty"`
	Latitude    *float64         `json:"latitude,omitempty"`
	Longitude   *float64         `json:"longitude,omitempty"`
	Facilities  []model.Facility `json:"facilities,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

// addPlace implements AddPlace over the Store interface so both backends
// share one resolution path. Coordinate-less submissions are parked for
// geocoding like any batch record.
func addPlace(ctx context.Context, s Store, req AddPlaceRequest) (model.Place, error) {
	if req.Name == "" {
		return model.Place{}, eris.New("store: add place: name is required")
	}
	if req.Type == "" {
		return model.Place{}, eris.New("store: add place: type is required")
	}
	if req.RegionID == nil && req.Address == "" {
		return model.Place{}, eris.New("store: add place: address or region id is required")
	}

	place := model.Place{
		Name:       req.Name,
		Address:    req.Address,
		Facilities: req.Facilities,
		Metadata:   req.Metadata,
		Source:     req.Type,
		SourceID:   "user_" + uuid.NewString(),
	}
	if place.Metadata == nil {
		place.Metadata = map[string]any{}
	}

	regionID, subRegionID := req.RegionID, req.SubRegionID
	if regionID == nil {
		res := address.Resolve(req.Address, "", "")
		region := address.NormalizeRegion(res.Region)
		subRegion := address.NormalizeSubRegion(res.SubRegion)

		place.Address = res.Remainder
		place.Region = region
		place.SubRegion = subRegion

		if region != "" {
			id, err := s.UpsertRegion(ctx, region)
			if err != nil {
				return model.Place{}, err
			}
			regionID = &id
			if subRegion != "" {
				sid, err := s.UpsertSubRegion(ctx, id, subRegion)
				if err != nil {
					return model.Place{}, err
				}
				subRegionID = &sid
			}
		}
	}

	row := PlaceRow{Place: place, RegionID: regionID, SubRegionID: subRegionID}

	if req.Latitude == nil || req.Longitude == nil {
		// The source id is freshly minted, so the insert cannot conflict.
		if _, err := s.InsertPendingGeocode(ctx, row); err != nil {
			return model.Place{}, err
		}
		return place, nil
	}

	if !model.InEnvelope(*req.Latitude, *req.Longitude) {
		return model.Place{}, eris.Errorf("store: add place: coordinate (%f, %f) outside Taiwan envelope",
			*req.Latitude, *req.Longitude)
	}
	place.SetCoordinates(*req.Latitude, *req.Longitude)
	row.Place = place

	if err := s.InsertPlace(ctx, row); err != nil {
		return model.Place{}, err
	}
	return place, nil
}
