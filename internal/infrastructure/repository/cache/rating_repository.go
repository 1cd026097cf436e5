package cache

import (
	"context"
	"slices"
	"strconv"

	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	basecache "github.com/riskibarqy/overload-teams-league/internal/platform/cache"
)

const seasonRatingsKeyPrefix = "ratings:season:"

// RatingRepository serves season ratings from memory. The API reads them far
// more often than a confirmation replaces them.
type RatingRepository struct {
	next  rating.Repository
	cache *basecache.Store[[]rating.TeamRating]
}

func NewRatingRepository(next rating.Repository, cache *basecache.Store[[]rating.TeamRating]) *RatingRepository {
	return &RatingRepository{next: next, cache: cache}
}

func seasonRatingsKey(season int) string {
	return seasonRatingsKeyPrefix + strconv.Itoa(season)
}

func (r *RatingRepository) ListSeasonMatches(ctx context.Context, season int) ([]rating.SeasonMatch, error) {
	return r.next.ListSeasonMatches(ctx, season)
}

func (r *RatingRepository) ListSeasonRatings(ctx context.Context, season int) ([]rating.TeamRating, error) {
	items, err := r.cache.GetOrLoad(ctx, seasonRatingsKey(season), func(ctx context.Context) ([]rating.TeamRating, error) {
		items, err := r.next.ListSeasonRatings(ctx, season)
		if err != nil {
			return nil, err
		}
		return slices.Clone(items), nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// ReplaceSeasonRatings writes through and drops the cached season even when
// the write fails, since a failed transaction may still have committed.
func (r *RatingRepository) ReplaceSeasonRatings(ctx context.Context, season int, ratings []rating.TeamRating) error {
	defer r.cache.Delete(seasonRatingsKey(season))
	return r.next.ReplaceSeasonRatings(ctx, season, ratings)
}
