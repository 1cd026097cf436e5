package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"go.opentelemetry.io/otel/attribute"
)

// PenaltyRecord describes the strike a team received from an adjudication.
type PenaltyRecord struct {
	TeamID                string
	Strike                int
	PenaltyGamesRemaining int
	Disbanded             bool
	BannedPilotIDs        []string
}

type AdjudicationResult struct {
	Challenge challenge.Challenge
	Decision  challenge.Decision
	Penalties []PenaltyRecord
}

// Clock puts the opponent on a deadline to get the match scheduled.
func (s *ChallengeService) Clock(ctx context.Context, challengeID, teamID string) (challenge.Challenge, error) {
	current, err := s.Get(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, err
	}

	history := challenge.ClockHistory{}
	if opponentID := current.OpponentOf(teamID); opponentID != "" {
		if history, err = s.clockHistory(ctx, teamID, opponentID, current.Season); err != nil {
			return challenge.Challenge{}, err
		}
	}

	return s.apply(ctx, challengeID, "Clock", func(c *challenge.Challenge) error {
		return challenge.Clock(c, teamID, history, s.cfg.Rules, s.now().UTC())
	}, func(c challenge.Challenge, names teamNames) Message {
		return Message{
			Title: "Challenge clocked",
			Text: fmt.Sprintf("%s put this challenge on the clock. The match must be scheduled and played by %s.",
				names.of(teamID), c.DateClockDeadline.Format(matchTimeLayout)),
			Color: ColorWarning,
		}
	})
}

func (s *ChallengeService) clockHistory(ctx context.Context, teamID, opponentID string, season int) (challenge.ClockHistory, error) {
	active, err := s.challengeRepo.CountActiveClocks(ctx, teamID)
	if err != nil {
		return challenge.ClockHistory{}, databaseError(err, "count active clocks")
	}
	since := s.now().UTC().Add(-s.cfg.Rules.ClockCooldown)
	recent, err := s.challengeRepo.HasClockedOpponentSince(ctx, teamID, opponentID, since)
	if err != nil {
		return challenge.ClockHistory{}, databaseError(err, "check clock cooldown")
	}
	thisSeason, err := s.challengeRepo.HasClockedOpponentInSeason(ctx, teamID, opponentID, season)
	if err != nil {
		return challenge.ClockHistory{}, databaseError(err, "check season clock")
	}

	return challenge.ClockHistory{
		ActiveClocks:      active,
		ClockedRecently:   recent,
		ClockedThisSeason: thisSeason,
	}, nil
}

// Adjudicate resolves a clocked challenge whose deadline passed. For a
// penalty the void and the strikes are written together; disbanding a team
// on its second strike then bans its leaders and voids its other challenges,
// and a failure in that follow-up is critical.
func (s *ChallengeService) Adjudicate(
	ctx context.Context,
	challengeID string,
	decision challenge.Decision,
	teamIDs []string,
) (AdjudicationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Adjudicate",
		attribute.String("challenge_id", challengeID),
		attribute.String("decision", string(decision)),
	)
	defer span.End()

	now := s.now().UTC()
	item, err := s.Get(ctx, challengeID)
	if err != nil {
		return AdjudicationResult{}, err
	}
	teamIDs = compactIDs(teamIDs)
	if err := challenge.ValidateAdjudication(&item, decision, teamIDs, now); err != nil {
		return AdjudicationResult{}, classify(err)
	}

	result := AdjudicationResult{Decision: decision}
	var penalized []team.Team
	disbanded := make(map[string][]string)

	switch decision {
	case challenge.DecisionCancel:
		if err := challenge.Void(&item, now); err != nil {
			return AdjudicationResult{}, classify(err)
		}
	case challenge.DecisionExtend:
		challenge.ExtendClock(&item, s.cfg.Rules.ClockExtension, now)
	case challenge.DecisionPenalize:
		for _, teamID := range teamIDs {
			t, err := s.loadTeam(ctx, teamID)
			if err != nil {
				return AdjudicationResult{}, err
			}
			record := PenaltyRecord{TeamID: t.ID}
			if team.ApplyPenalty(&t, s.cfg.Rules) {
				leaders, err := team.Disband(&t, now)
				if err != nil {
					return AdjudicationResult{}, classify(err)
				}
				disbanded[t.ID] = leaders
				record.Disbanded = true
				record.BannedPilotIDs = leaders
			}
			record.Strike = t.Penalties
			record.PenaltyGamesRemaining = t.PenaltyGamesRemaining
			t.UpdatedAt = now
			penalized = append(penalized, t)
			result.Penalties = append(result.Penalties, record)
		}
		if err := challenge.Void(&item, now); err != nil {
			return AdjudicationResult{}, classify(err)
		}
	default:
		return AdjudicationResult{}, invalidInputf("unknown decision %q", decision)
	}

	if len(penalized) == 0 {
		err = s.challengeRepo.Update(ctx, item)
	} else {
		err = s.challengeRepo.UpdateWithTeams(ctx, item, penalized)
	}
	if err != nil {
		return AdjudicationResult{}, databaseError(err, "adjudicate challenge")
	}
	item.Version++
	result.Challenge = item
	s.logger.InfoContext(ctx, "challenge adjudicated",
		"challenge_id", item.ID,
		"decision", string(decision),
		"penalized_teams", teamIDs,
	)

	cascadeErr := s.disbandCascade(ctx, disbanded, now)

	names := s.teamNames(ctx, item)
	if err := s.send(ctx, item, adjudicationMessage(item, decision, result.Penalties, names)); err != nil {
		return result, criticalError(err, "notify adjudication")
	}
	if cascadeErr != nil {
		return result, criticalError(cascadeErr, "disband penalized team")
	}
	return result, nil
}

// disbandCascade bans the leaders of each disbanded team and voids the
// team's remaining open challenges.
func (s *ChallengeService) disbandCascade(ctx context.Context, disbanded map[string][]string, now time.Time) error {
	var errs []error
	for teamID, leaders := range disbanded {
		bans := make([]team.LeadershipBan, 0, len(leaders))
		for _, pilotID := range leaders {
			bans = append(bans, team.LeadershipBan{
				PilotID:   pilotID,
				TeamID:    teamID,
				Reason:    "team disbanded after a second penalty",
				CreatedAt: now,
			})
		}
		if len(bans) > 0 {
			if err := s.teamRepo.AddLeadershipBans(ctx, bans); err != nil {
				s.logger.ErrorContext(ctx, "add leadership bans failed", "team_id", teamID, "pilot_ids", leaders, "error", err)
				errs = append(errs, crerr.Wrapf(err, "ban leaders of team=%s", teamID))
			}
		}
		if err := voidOpenChallenges(ctx, s.challengeRepo, teamID, now); err != nil {
			s.logger.ErrorContext(ctx, "void open challenges failed", "team_id", teamID, "error", err)
			errs = append(errs, err)
		}
	}
	return crerr.Join(errs...)
}

func adjudicationMessage(c challenge.Challenge, decision challenge.Decision, penalties []PenaltyRecord, names teamNames) Message {
	switch decision {
	case challenge.DecisionCancel:
		return Message{Title: "Challenge cancelled", Text: "An admin cancelled this challenge after the clock deadline passed.", Color: ColorWarning}
	case challenge.DecisionExtend:
		return Message{
			Title: "Clock extended",
			Text:  fmt.Sprintf("An admin extended the clock deadline to %s.", c.DateClockDeadline.Format(matchTimeLayout)),
			Color: ColorWarning,
		}
	}

	msg := Message{Title: "Challenge penalized", Text: "An admin voided this challenge and penalized the following teams.", Color: ColorDanger}
	for _, p := range penalties {
		value := fmt.Sprintf("Strike %d. Plays the next %d games without home map or server.", p.Strike, p.PenaltyGamesRemaining)
		if p.Disbanded {
			value = fmt.Sprintf("Strike %d. The team is disbanded and its leaders may not lead a team again.", p.Strike)
		}
		msg.Fields = append(msg.Fields, MessageField{Name: names.of(p.TeamID), Value: value})
	}
	return msg
}

func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
