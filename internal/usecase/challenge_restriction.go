package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
)

// Restrict limits the match to the pilots on both rosters right now. Admins
// adjust the lists afterwards with AuthorizePilot and RevokePilot.
func (s *ChallengeService) Restrict(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	current, err := s.Get(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	rosters := make(map[string][]string, 2)
	for _, teamID := range current.TeamIDs() {
		t, err := s.loadTeam(ctx, teamID)
		if err != nil {
			return challenge.Challenge{}, err
		}
		rosters[teamID] = t.PilotIDs
	}

	return s.apply(ctx, challengeID, "Restrict", func(c *challenge.Challenge) error {
		return challenge.Restrict(c, rosters)
	}, staticMessage("Challenge restricted", "Only pilots authorized by an admin may play in this match."))
}

func (s *ChallengeService) Unrestrict(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "Unrestrict", challenge.Unrestrict,
		staticMessage("Challenge unrestricted", "Any pilot on either roster may play in this match."))
}

func (s *ChallengeService) AuthorizePilot(ctx context.Context, challengeID, teamID, pilotID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "AuthorizePilot", func(c *challenge.Challenge) error {
		return challenge.AuthorizePilot(c, teamID, pilotID)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Pilot authorized",
			Text:  fmt.Sprintf("<@%s> may now play for %s.", pilotID, names.of(teamID)),
			Color: ColorInfo,
		}
	})
}

func (s *ChallengeService) RevokePilot(ctx context.Context, challengeID, teamID, pilotID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "RevokePilot", func(c *challenge.Challenge) error {
		return challenge.RevokePilot(c, teamID, pilotID)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Pilot authorization removed",
			Text:  fmt.Sprintf("<@%s> may no longer play for %s.", pilotID, names.of(teamID)),
			Color: ColorWarning,
		}
	})
}
