package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type RatingService struct {
	repo   rating.Repository
	rules  league.Rules
	logger *logging.Logger
	now    func() time.Time
}

func NewRatingService(repo rating.Repository, rules league.Rules, logger *logging.Logger) *RatingService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RatingService{
		repo:   repo,
		rules:  rules,
		logger: logger.Named("rating"),
		now:    time.Now,
	}
}

// RecalculateSeason replays every confirmed match of the season from scratch
// and stores the result.
func (s *RatingService) RecalculateSeason(ctx context.Context, season int) ([]rating.TeamRating, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.RecalculateSeason", attribute.Int("season", season))
	defer span.End()

	if season < 1 {
		return nil, invalidInputf("season must be positive")
	}

	matches, err := s.repo.ListSeasonMatches(ctx, season)
	if err != nil {
		return nil, databaseError(err, "list season matches")
	}

	computed := rating.CalculateRatings(matches, s.rules.RatingK)
	now := s.now().UTC()
	out := make([]rating.TeamRating, 0, len(computed))
	for teamID, value := range computed {
		out = append(out, rating.TeamRating{
			Season:    season,
			TeamID:    teamID,
			Rating:    value,
			UpdatedAt: now,
		})
	}
	sortRatings(out)

	if err := s.repo.ReplaceSeasonRatings(ctx, season, out); err != nil {
		return nil, databaseError(err, "replace season ratings")
	}

	s.logger.InfoContext(ctx, "season ratings recalculated", "season", season, "matches", len(matches), "teams", len(out))
	return out, nil
}

// SeasonRatings returns stored ratings, best first.
func (s *RatingService) SeasonRatings(ctx context.Context, season int) ([]rating.TeamRating, error) {
	if season < 1 {
		return nil, invalidInputf("season must be positive")
	}

	items, err := s.repo.ListSeasonRatings(ctx, season)
	if err != nil {
		return nil, databaseError(err, "list season ratings")
	}
	sortRatings(items)
	return items, nil
}

func sortRatings(items []rating.TeamRating) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Rating != items[j].Rating {
			return items[i].Rating > items[j].Rating
		}
		return items[i].TeamID < items[j].TeamID
	})
}
