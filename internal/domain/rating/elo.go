package rating

import (
	"math"
	"time"
)

// DefaultRating is assigned to a team the first time it appears in a season.
const DefaultRating = 1500.0

// SeasonMatch is one confirmed challenge as consumed by the rating engine.
// An unqualified team is still rated, but its results do not move its
// opponent's rating.
type SeasonMatch struct {
	ChallengeID                string
	ChallengingTeamID          string
	ChallengedTeamID           string
	ChallengingTeamScore       int
	ChallengedTeamScore        int
	ChallengingTeamUnqualified bool
	ChallengedTeamUnqualified  bool
	GameType                   string
	DateConfirmed              time.Time
}

// Expected is the logistic Elo expectation of a against b.
func Expected(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// Actual converts a score line into a result in [0,1] for team A.
// Margins beyond 2x count the same as 2x.
func Actual(scoreA, scoreB int) float64 {
	if scoreA <= 0 && scoreB <= 0 {
		switch {
		case scoreA > scoreB:
			return 1
		case scoreA < scoreB:
			return 0
		default:
			return 0.5
		}
	}
	if scoreA <= 0 {
		return 0
	}
	if scoreB <= 0 {
		return 1
	}

	ratio := float64(scoreA) / float64(scoreB)
	ratio = math.Min(math.Max(ratio, 0.5), 2)

	return (math.Log2(ratio) + 1) / 2
}

func Update(expected, actual, rating, k float64) float64 {
	return math.Round(rating + k*(actual-expected))
}

// CalculateRatings replays matches in the given order and returns the final
// rating per team. Callers must pass matches in confirmation order.
func CalculateRatings(matches []SeasonMatch, k float64) map[string]float64 {
	ratings := make(map[string]float64)

	for _, match := range matches {
		challengingRating, ok := ratings[match.ChallengingTeamID]
		if !ok {
			challengingRating = DefaultRating
		}
		challengedRating, ok := ratings[match.ChallengedTeamID]
		if !ok {
			challengedRating = DefaultRating
		}

		ratings[match.ChallengingTeamID] = challengingRating
		if !match.ChallengedTeamUnqualified {
			ratings[match.ChallengingTeamID] = Update(
				Expected(challengingRating, challengedRating),
				Actual(match.ChallengingTeamScore, match.ChallengedTeamScore),
				challengingRating,
				k,
			)
		}
		ratings[match.ChallengedTeamID] = challengedRating
		if !match.ChallengingTeamUnqualified {
			ratings[match.ChallengedTeamID] = Update(
				Expected(challengedRating, challengingRating),
				Actual(match.ChallengedTeamScore, match.ChallengingTeamScore),
				challengedRating,
				k,
			)
		}
	}

	return ratings
}
