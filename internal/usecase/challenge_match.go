package usecase

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"go.opentelemetry.io/otel/attribute"
)

// ReportMatch records a result reported by the losing team.
func (s *ChallengeService) ReportMatch(ctx context.Context, challengeID, teamID string, score1, score2 int) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "ReportMatch", func(c *challenge.Challenge) error {
		return challenge.ReportMatch(c, teamID, score1, score2, s.now().UTC())
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Match reported",
			Text: fmt.Sprintf("%s reported the score as %s %d, %s %d. %s can confirm it.",
				names.of(teamID),
				names.of(c.ChallengingTeamID), c.ChallengingTeamScore,
				names.of(c.ChallengedTeamID), c.ChallengedTeamScore,
				names.of(c.OpponentOf(teamID))),
			Color: ColorInfo,
		}
	})
}

// ConfirmMatch accepts the reported score, settles penalty games of the
// teams that played under a penalty and recomputes the season ratings. A
// rating failure does not undo the confirmation.
func (s *ChallengeService) ConfirmMatch(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.ConfirmMatch", attribute.String("challenge_id", challengeID))
	defer span.End()

	item, err := s.Get(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if err := challenge.ConfirmMatch(&item, teamID, s.now().UTC()); err != nil {
		return challenge.Challenge{}, classify(err)
	}

	served, err := s.servePenaltyGames(ctx, item)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if len(served) == 0 {
		err = s.challengeRepo.Update(ctx, item)
	} else {
		err = s.challengeRepo.UpdateWithTeams(ctx, item, served)
	}
	if err != nil {
		return challenge.Challenge{}, databaseError(err, "confirm match")
	}
	item.Version++
	s.logger.InfoContext(ctx, "match confirmed",
		"challenge_id", item.ID,
		"challenging_team_score", item.ChallengingTeamScore,
		"challenged_team_score", item.ChallengedTeamScore,
		"penalty_games_served", len(served),
	)

	var ratingsErr error
	if s.ratings != nil {
		if _, err := s.ratings.RecalculateSeason(ctx, item.Season); err != nil {
			s.logger.ErrorContext(ctx, "recalculate season ratings failed", "challenge_id", item.ID, "season", item.Season, "error", err)
			ratingsErr = crerr.Mark(crerr.Wrap(err, "recalculate season ratings"), ErrRatingsOutdated)
		}
	}

	names := s.teamNames(ctx, item)
	msg := Message{
		Title: "Match confirmed",
		Text: fmt.Sprintf("%s %d, %s %d.",
			names.of(item.ChallengingTeamID), item.ChallengingTeamScore,
			names.of(item.ChallengedTeamID), item.ChallengedTeamScore),
		Color: ColorSuccess,
	}
	if err := s.send(ctx, item, msg); err != nil {
		return item, withRatingsOutdated(criticalError(err, "notify match confirmed"), ratingsErr)
	}
	if err := s.announce(ctx, msg); err != nil {
		return item, withRatingsOutdated(criticalError(err, "announce match confirmed"), ratingsErr)
	}
	if ratingsErr != nil {
		return item, ratingsErr
	}
	return item, nil
}

// withRatingsOutdated keeps a failed recomputation visible behind a later
// critical error.
func withRatingsOutdated(err, ratingsErr error) error {
	if ratingsErr == nil {
		return err
	}
	return crerr.Mark(crerr.WithSecondaryError(err, ratingsErr), ErrRatingsOutdated)
}

// servePenaltyGames returns the participants whose penalty counter drops
// because they played this match at a disadvantage.
func (s *ChallengeService) servePenaltyGames(ctx context.Context, c challenge.Challenge) ([]team.Team, error) {
	penalized := map[string]bool{
		c.ChallengingTeamID: c.ChallengingTeamPenalized,
		c.ChallengedTeamID:  c.ChallengedTeamPenalized,
	}

	var out []team.Team
	for _, teamID := range c.TeamIDs() {
		if !penalized[teamID] {
			continue
		}
		item, err := s.loadTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		if item.PenaltyGamesRemaining <= 0 {
			continue
		}
		item.PenaltyGamesRemaining--
		item.UpdatedAt = s.now().UTC()
		out = append(out, item)
	}
	return out, nil
}

func (s *ChallengeService) RequestRematch(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "RequestRematch", func(c *challenge.Challenge) error {
		return challenge.RequestRematch(c, teamID, s.now().UTC())
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Rematch requested",
			Text:  fmt.Sprintf("%s requested a rematch. %s can confirm it.", names.of(teamID), names.of(c.OpponentOf(teamID))),
			Color: ColorInfo,
		}
	})
}

// ConfirmRematch accepts a pending rematch and opens the follow-up challenge
// with the roles swapped. It returns the new challenge.
func (s *ChallengeService) ConfirmRematch(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.ConfirmRematch", attribute.String("challenge_id", challengeID))
	defer span.End()

	nextID, err := s.idGen.NewID()
	if err != nil {
		return challenge.Challenge{}, crerr.Wrap(err, "generate challenge id")
	}

	previous, err := s.apply(ctx, challengeID, "ConfirmRematch", func(c *challenge.Challenge) error {
		return challenge.ConfirmRematch(c, teamID, s.now().UTC())
	}, nil)
	if err != nil {
		return challenge.Challenge{}, err
	}

	next := challenge.NewRematch(previous, nextID, s.now().UTC())
	if err := s.challengeRepo.Create(ctx, next); err != nil {
		return challenge.Challenge{}, criticalError(databaseError(err, "create rematch"), "rematch confirmed without a new challenge")
	}

	names := s.teamNames(ctx, next)
	msg := Message{
		Title: "Rematch confirmed",
		Text: fmt.Sprintf("A rematch has been created. %s is the home map team and %s is the home server team.",
			names.of(next.HomeMapTeamID), names.of(next.HomeServerTeamID)),
		Color: ColorSuccess,
	}
	if err := s.send(ctx, next, msg); err != nil {
		return next, criticalError(err, "notify rematch")
	}
	return next, nil
}
