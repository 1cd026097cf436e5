package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
)

// RatingRepository derives season matches from the challenges and teams in
// the same store.
type RatingRepository struct {
	store *Store
}

func NewRatingRepository(store *Store) *RatingRepository {
	return store.Ratings()
}

func (r *RatingRepository) ListSeasonMatches(_ context.Context, season int) ([]rating.SeasonMatch, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]rating.SeasonMatch, 0)
	for _, item := range r.store.challenges {
		if item.Season != season || !item.IsConfirmed() || item.IsVoided() {
			continue
		}
		out = append(out, rating.SeasonMatch{
			ChallengeID:          item.ID,
			ChallengingTeamID:    item.ChallengingTeamID,
			ChallengedTeamID:     item.ChallengedTeamID,
			ChallengingTeamScore: item.ChallengingTeamScore,
			ChallengedTeamScore:  item.ChallengedTeamScore,
			GameType:             string(item.GameType.Value),
			DateConfirmed:        *item.DateConfirmed,

			ChallengingTeamUnqualified: r.unqualified(item.ChallengingTeamID),
			ChallengedTeamUnqualified:  r.unqualified(item.ChallengedTeamID),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateConfirmed.Equal(out[j].DateConfirmed) {
			return out[i].DateConfirmed.Before(out[j].DateConfirmed)
		}
		return out[i].ChallengeID < out[j].ChallengeID
	})
	return out, nil
}

// unqualified expects the store read lock to be held. Unknown teams count as
// qualified.
func (r *RatingRepository) unqualified(teamID string) bool {
	t, ok := r.store.teams[teamID]
	return ok && !t.Qualified
}

func (r *RatingRepository) ReplaceSeasonRatings(_ context.Context, season int, ratings []rating.TeamRating) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.ratings[season] = slices.Clone(ratings)
	return nil
}

func (r *RatingRepository) ListSeasonRatings(_ context.Context, season int) ([]rating.TeamRating, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return slices.Clone(r.store.ratings[season]), nil
}
