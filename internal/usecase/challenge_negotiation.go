package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

const matchTimeLayout = "Mon Jan 2 2006 15:04 MST"

func staticMessage(title, format string, args ...any) announceFunc {
	return func(c challenge.Challenge, names teamNames) Message {
		return Message{Title: title, Text: fmt.Sprintf(format, args...), Color: ColorInfo}
	}
}

// gameTypeCheck loads both teams of a challenge. A game type is playable only
// while each of them keeps a full home map list for it.
func (s *ChallengeService) gameTypeCheck(ctx context.Context, challengeID string) (challenge.GameTypeAvailable, error) {
	current, err := s.Get(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	challenging, err := s.loadTeam(ctx, current.ChallengingTeamID)
	if err != nil {
		return nil, err
	}
	challenged, err := s.loadTeam(ctx, current.ChallengedTeamID)
	if err != nil {
		return nil, err
	}

	required := s.cfg.Rules.HomeMapsPerGameType
	return func(gameType team.GameType) bool {
		return challenging.CanBeChallenged(gameType, required) && challenged.CanBeChallenged(gameType, required)
	}, nil
}

func (s *ChallengeService) SuggestGameType(ctx context.Context, challengeID, teamID string, gameType team.GameType) (challenge.Challenge, error) {
	available, err := s.gameTypeCheck(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	return s.apply(ctx, challengeID, "SuggestGameType", func(c *challenge.Challenge) error {
		return challenge.SuggestGameType(c, teamID, gameType, available)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Game type suggested",
			Text:  fmt.Sprintf("%s suggested playing %s. %s can confirm it.", names.of(teamID), gameType, names.of(c.OpponentOf(teamID))),
			Color: ColorInfo,
		}
	})
}

func (s *ChallengeService) ConfirmGameType(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	available, err := s.gameTypeCheck(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	return s.apply(ctx, challengeID, "ConfirmGameType", func(c *challenge.Challenge) error {
		return challenge.ConfirmGameType(c, teamID, available)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{Title: "Game type confirmed", Text: fmt.Sprintf("This match will be played as %s.", c.GameType.Value), Color: ColorSuccess}
	})
}

func (s *ChallengeService) SuggestTeamSize(ctx context.Context, challengeID, teamID string, size int) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SuggestTeamSize", func(c *challenge.Challenge) error {
		return challenge.SuggestTeamSize(c, teamID, size, s.cfg.Rules)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Team size suggested",
			Text:  fmt.Sprintf("%s suggested %dv%d. %s can confirm it.", names.of(teamID), size, size, names.of(c.OpponentOf(teamID))),
			Color: ColorInfo,
		}
	})
}

func (s *ChallengeService) ConfirmTeamSize(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "ConfirmTeamSize", func(c *challenge.Challenge) error {
		return challenge.ConfirmTeamSize(c, teamID)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{Title: "Team size confirmed", Text: fmt.Sprintf("This match will be played %dv%d.", c.TeamSize.Value, c.TeamSize.Value), Color: ColorSuccess}
	})
}

// SuggestMap proposes a neutral map.
func (s *ChallengeService) SuggestMap(ctx context.Context, challengeID, teamID, mapName string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SuggestMap", func(c *challenge.Challenge) error {
		return challenge.SuggestMap(c, teamID, mapName)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Neutral map suggested",
			Text:  fmt.Sprintf("%s suggested the neutral map %s. %s can confirm it.", names.of(teamID), c.Map.Suggested, names.of(c.OpponentOf(teamID))),
			Color: ColorInfo,
		}
	})
}

func (s *ChallengeService) ConfirmMap(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "ConfirmMap", func(c *challenge.Challenge) error {
		return challenge.ConfirmMap(c, teamID)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{Title: "Neutral map confirmed", Text: fmt.Sprintf("This match will be played on %s.", c.Map.Value), Color: ColorSuccess}
	})
}

// PickMap selects from the home map team's list by 1-based index.
func (s *ChallengeService) PickMap(ctx context.Context, challengeID, teamID string, index int) (challenge.Challenge, error) {
	current, err := s.Get(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	homeTeam, err := s.loadTeam(ctx, current.HomeMapTeamID)
	if err != nil {
		return challenge.Challenge{}, err
	}

	return s.apply(ctx, challengeID, "PickMap", func(c *challenge.Challenge) error {
		return challenge.PickMap(c, teamID, index, homeTeam.HomeMapList(c.GameType.Value))
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{Title: "Map picked", Text: fmt.Sprintf("%s picked %s.", names.of(teamID), c.Map.Value), Color: ColorSuccess}
	})
}

func (s *ChallengeService) SuggestTime(ctx context.Context, challengeID, teamID string, at time.Time) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SuggestTime", func(c *challenge.Challenge) error {
		return challenge.SuggestTime(c, teamID, at.UTC(), s.now().UTC())
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Match time suggested",
			Text:  fmt.Sprintf("%s suggested %s. %s can confirm it.", names.of(teamID), at.UTC().Format(matchTimeLayout), names.of(c.OpponentOf(teamID))),
			Color: ColorInfo,
		}
	})
}

func (s *ChallengeService) ConfirmTime(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "ConfirmTime", func(c *challenge.Challenge) error {
		return challenge.ConfirmTime(c, teamID, s.now().UTC())
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{Title: "Match time confirmed", Text: fmt.Sprintf("This match is scheduled for %s.", c.MatchTime.Value.Format(matchTimeLayout)), Color: ColorSuccess}
	})
}

func (s *ChallengeService) SuggestNeutralServer(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SuggestNeutralServer", func(c *challenge.Challenge) error {
		return challenge.SuggestNeutralServer(c, teamID)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Neutral server suggested",
			Text:  fmt.Sprintf("%s suggested a neutral server. %s can confirm it.", names.of(teamID), names.of(c.OpponentOf(teamID))),
			Color: ColorInfo,
		}
	})
}

func (s *ChallengeService) ConfirmNeutralServer(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "ConfirmNeutralServer", func(c *challenge.Challenge) error {
		return challenge.ConfirmNeutralServer(c, teamID)
	}, staticMessage("Neutral server confirmed", "This match will be played on a neutral server."))
}

func (s *ChallengeService) SetGameType(ctx context.Context, challengeID string, gameType team.GameType) (challenge.Challenge, error) {
	available, err := s.gameTypeCheck(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}
	return s.apply(ctx, challengeID, "SetGameType", func(c *challenge.Challenge) error {
		return challenge.SetGameType(c, gameType, available)
	}, staticMessage("Game type set", "An admin set the game type to %s.", gameType))
}

func (s *ChallengeService) SetTeamSize(ctx context.Context, challengeID string, size int) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SetTeamSize", func(c *challenge.Challenge) error {
		return challenge.SetTeamSize(c, size, s.cfg.Rules)
	}, staticMessage("Team size set", "An admin set the team size to %dv%d.", size, size))
}

func (s *ChallengeService) SetMap(ctx context.Context, challengeID, mapName string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SetMap", func(c *challenge.Challenge) error {
		return challenge.SetMap(c, mapName)
	}, staticMessage("Map set", "An admin set the map to %s.", mapName))
}

func (s *ChallengeService) SetTime(ctx context.Context, challengeID string, at time.Time) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SetTime", func(c *challenge.Challenge) error {
		return challenge.SetTime(c, at.UTC())
	}, staticMessage("Match time set", "An admin scheduled this match for %s.", at.UTC().Format(matchTimeLayout)))
}

func (s *ChallengeService) SetHomeMapTeam(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SetHomeMapTeam", func(c *challenge.Challenge) error {
		return challenge.SetHomeMapTeam(c, teamID)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{Title: "Home map team set", Text: fmt.Sprintf("%s is now the home map team.", names.of(teamID)), Color: ColorInfo}
	})
}

func (s *ChallengeService) SetHomeServerTeam(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SetHomeServerTeam", func(c *challenge.Challenge) error {
		return challenge.SetHomeServerTeam(c, teamID)
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{Title: "Home server team set", Text: fmt.Sprintf("%s is now the home server team.", names.of(teamID)), Color: ColorInfo}
	})
}

func (s *ChallengeService) SetTitle(ctx context.Context, challengeID, title string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SetTitle", func(c *challenge.Challenge) error {
		return challenge.SetTitle(c, title)
	}, nil)
}

func (s *ChallengeService) SetPostseason(ctx context.Context, challengeID string, postseason bool) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SetPostseason", func(c *challenge.Challenge) error {
		return challenge.SetPostseason(c, postseason)
	}, nil)
}

func (s *ChallengeService) SetOvertimePeriods(ctx context.Context, challengeID string, periods int) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "SetOvertimePeriods", func(c *challenge.Challenge) error {
		return challenge.SetOvertimePeriods(c, periods)
	}, nil)
}

// Lock freezes negotiation for the rest of the challenge.
func (s *ChallengeService) Lock(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "Lock", challenge.Lock,
		staticMessage("Challenge locked", "An admin locked this challenge. Only admins can change its schedule now."))
}

func (s *ChallengeService) Void(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	return s.apply(ctx, challengeID, "Void", func(c *challenge.Challenge) error {
		return challenge.Void(c, s.now().UTC())
	}, staticMessage("Challenge voided", "An admin voided this challenge."))
}
