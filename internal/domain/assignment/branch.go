package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
)

type Branch struct {
	ID        uuid.UUID
	Name      string
	Latitude  float64
	Longitude float64
}

type BranchRepository interface {
	// ListWithMarketing returns branches that have at least one marketing agent.
	ListWithMarketing(ctx context.Context) ([]Branch, error)
}

type BranchLocator struct {
	repo   BranchRepository
	logger *slog.Logger
}

func NewBranchLocator(repo BranchRepository, logger *slog.Logger) *BranchLocator {
	return &BranchLocator{repo: repo, logger: logger.With(slog.String("component", "BranchLocator"))}
}

// Nearest returns the staffed branch closest to the given coordinates.
func (l *BranchLocator) Nearest(ctx context.Context, lat, lon float64) (*Branch, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", apperrors.ErrInvalidInput)
	}
	branches, err := l.repo.ListWithMarketing(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	if len(branches) == 0 {
		return nil, fmt.Errorf("%w: no branch has marketing agents", apperrors.ErrNoAgentAvailable)
	}

	nearest := branches[0]
	best := distanceKm(lat, lon, nearest.Latitude, nearest.Longitude)
	for _, b := range branches[1:] {
		if d := distanceKm(lat, lon, b.Latitude, b.Longitude); d < best {
			nearest, best = b, d
		}
	}
	l.logger.DebugContext(ctx, "Nearest branch resolved", slog.String("branchID", nearest.ID.String()), slog.Float64("distanceKm", best))
	return &nearest, nil
}

const earthRadiusKm = 6371.0

// distanceKm is the haversine great-circle distance.
func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
