package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
)

func (s *ChallengeService) AddStreamer(ctx context.Context, challengeID, pilotID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "AddStreamer", func(c *challenge.Challenge) error {
		return challenge.AddStreamer(c, pilotID)
	}, nil)
}

func (s *ChallengeService) RemoveStreamer(ctx context.Context, challengeID, pilotID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "RemoveStreamer", func(c *challenge.Challenge) error {
		return challenge.RemoveStreamer(c, pilotID)
	}, nil)
}

// SetCaster claims the single caster slot. Pilots on either team cannot cast.
func (s *ChallengeService) SetCaster(ctx context.Context, challengeID, pilotID string) (challenge.Challenge, error) {
	current, err := s.Get(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	for _, teamID := range current.TeamIDs() {
		t, err := s.loadTeam(ctx, teamID)
		if err != nil {
			return challenge.Challenge{}, err
		}
		if t.HasPilot(pilotID) {
			return challenge.Challenge{}, invalidInputf("you cannot cast a match your team is playing")
		}
	}

	return s.apply(ctx, challengeID, "SetCaster", func(c *challenge.Challenge) error {
		return challenge.SetCaster(c, pilotID)
	}, staticMessage("Caster assigned", "This match now has a caster."))
}

func (s *ChallengeService) UnsetCaster(ctx context.Context, challengeID, pilotID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "UnsetCaster", func(c *challenge.Challenge) error {
		return challenge.UnsetCaster(c, pilotID)
	}, staticMessage("Caster removed", "This match no longer has a caster."))
}

func (s *ChallengeService) SetVoD(ctx context.Context, challengeID, rawURL string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SetVoD", func(c *challenge.Challenge) error {
		return challenge.SetVoD(c, rawURL)
	}, nil)
}

// AddStat records or replaces a pilot's stat line.
func (s *ChallengeService) AddStat(ctx context.Context, challengeID string, stat challenge.PlayerStat) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "AddStat", func(c *challenge.Challenge) error {
		return challenge.AddStat(c, stat)
	}, nil)
}

func (s *ChallengeService) ClearStats(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "ClearStats", challenge.ClearStats, nil)
}

func (s *ChallengeService) Close(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "Close", func(c *challenge.Challenge) error {
		return challenge.Close(c, s.now().UTC())
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Challenge closed",
			Text:  fmt.Sprintf("%s vs %s is closed.", names.of(c.ChallengingTeamID), names.of(c.ChallengedTeamID)),
			Color: ColorSuccess,
		}
	})
}
