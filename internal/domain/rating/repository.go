package rating

import (
	"context"
	"time"
)

// TeamRating is a persisted season rating row.
type TeamRating struct {
	Season    int
	TeamID    string
	Rating    float64
	UpdatedAt time.Time
}

// Repository describes season rating persistence needs from use cases.
type Repository interface {
	ListSeasonMatches(ctx context.Context, season int) ([]SeasonMatch, error)
	ReplaceSeasonRatings(ctx context.Context, season int, ratings []TeamRating) error
	ListSeasonRatings(ctx context.Context, season int) ([]TeamRating, error)
}
