package delivery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"takeaway-backend/geo"
	"takeaway-backend/models"
)

// DistanceProvider prices delivery by driving distance from the store.
type DistanceProvider struct {
	Geo    geo.Provider
	Logger *zap.Logger
}

func NewDistanceProvider(provider geo.Provider, logger *zap.Logger) *DistanceProvider {
	return &DistanceProvider{Geo: provider, Logger: logger}
}

func (p *DistanceProvider) Quote(ctx context.Context, cfg *models.StoreConfig, req Request) (Decision, error) {
	rules := cfg.DistanceRules
	debug := map[string]any{
		"engine": string(models.RuleTypeDistance),
		"unit":   "miles",
	}

	query := strings.TrimSpace(req.Address)
	if query == "" {
		query = strings.TrimSpace(req.Postcode)
	}
	debug["geocode_query"] = query

	if query == "" {
		return rejected(ReasonGeocodeFailed, debug), nil
	}

	customer, err := p.Geo.Geocode(ctx, query)
	if err != nil || customer == nil {
		if err != nil {
			p.Logger.Debug("geocode failed", zap.String("query", query), zap.Error(err))
		}
		return rejected(ReasonGeocodeFailed, debug), nil
	}
	debug["customer"] = *customer

	store := geo.Coordinate{Lat: cfg.Latitude, Lng: cfg.Longitude}
	miles, err := p.Geo.DrivingDistanceMiles(ctx, store, *customer)
	if err != nil || miles == nil {
		if err != nil {
			p.Logger.Debug("route lookup failed", zap.Error(err))
		}
		return rejected(ReasonRouteFailed, debug), nil
	}
	distance := *miles
	debug["distance_miles"] = distance
	debug["no_service_beyond"] = rules.NoServiceBeyond

	if distance > rules.NoServiceBeyond {
		return rejected(ReasonOutOfRange, debug), nil
	}

	band, ok := selectBand(rules.Bands, distance)
	if !ok {
		return rejected(ReasonOutOfRange, debug), nil
	}

	// FeeIfSubtotalLt only applies to negative subtotals, so in practice the
	// gte fee is always charged. There is no threshold to split on yet.
	fee := band.FeeIfSubtotalGte
	if req.SubtotalPence < 0 {
		fee = band.FeeIfSubtotalLt
	}

	debug["band_max_distance"] = band.MaxDistance
	zone := fmt.Sprintf("Up to %g miles", band.MaxDistance)
	return Decision{
		IsDeliverable: true,
		FeePence:      toPence(fee),
		MinOrderPence: 0,
		Zone:          &zone,
		Debug:         debug,
	}, nil
}

// selectBand returns the first band, by ascending MaxDistance, that covers distance.
func selectBand(bands []models.DistanceBand, distance float64) (models.DistanceBand, bool) {
	sorted := make([]models.DistanceBand, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MaxDistance < sorted[j].MaxDistance
	})

	for _, b := range sorted {
		if distance <= b.MaxDistance {
			return b, true
		}
	}
	return models.DistanceBand{}, false
}
