package service

import (
	"context"
	"math"
	"sort"

	vehiclesrepo "fleetbook/internal/vehicles/repository"
	"fleetbook/pkg/config"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/maps"
	"fleetbook/pkg/model"
	"fleetbook/pkg/sanitizer"
)

// quoteFleetLimit caps how many vehicles one quote request prices.
const quoteFleetLimit = 100

type QuoteService interface {
	GetQuotes(ctx context.Context, origin, destination string) ([]model.Quote, error)
}

type quoteService struct {
	vehicleRepo vehiclesrepo.VehicleRepository
	distance    maps.DistanceProvider
	cfg         *config.Config
}

func NewQuoteService(
	vehicleRepo vehiclesrepo.VehicleRepository,
	distance maps.DistanceProvider,
	cfg *config.Config,
) QuoteService {
	return &quoteService{
		vehicleRepo: vehicleRepo,
		distance:    distance,
		cfg:         cfg,
	}
}

// GetQuotes prices the trip on every available vehicle with a usable
// per-km rate, cheapest first. Quotes carry no reservation semantics and
// the endpoint is open to unauthenticated callers.
func (s *quoteService) GetQuotes(ctx context.Context, origin, destination string) ([]model.Quote, error) {
	origin = sanitizer.SanitizePlace(origin)
	destination = sanitizer.SanitizePlace(destination)
	if origin == "" || destination == "" {
		return nil, apperrors.InvalidInput("Origin and destination are required")
	}

	result, err := s.distance.Distance(ctx, origin, destination)
	if err != nil {
		s.cfg.Log.Error("Distance lookup failed",
			"origin", origin,
			"destination", destination,
			"error", err,
		)
		return nil, apperrors.Provider("Failed to resolve trip distance", err)
	}

	vehicles, err := s.vehicleRepo.FindAll(ctx, true, quoteFleetLimit, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list vehicles for quoting", "error", err)
		return nil, apperrors.Internal("Failed to retrieve vehicles", err)
	}

	quotes := make([]model.Quote, 0, len(vehicles))
	for _, v := range vehicles {
		if v.RatePerKM <= 0 {
			continue
		}
		quotes = append(quotes, model.Quote{
			VehicleID:       v.ID,
			VehicleName:     v.Name,
			RatePerKM:       v.RatePerKM,
			DistanceKM:      result.KM,
			DurationSeconds: result.DurationSeconds,
			Price:           Calculate(result.KM, v.RatePerKM),
		})
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Price < quotes[j].Price
	})

	return quotes, nil
}

// Calculate prices a trip: distance times rate, rounded to two decimals.
func Calculate(distanceKM, ratePerKM float64) float64 {
	return math.Round(distanceKM*ratePerKM*100) / 100
}
