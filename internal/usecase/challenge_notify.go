package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"go.opentelemetry.io/otel/attribute"
)

// The three notifiers below are one-shot. Each claims its flag with a
// conditional write before sending, so a message goes out at most once even
// when two ticks race. A send failure after the claim is critical.

func (s *ChallengeService) NotifyClockExpired(ctx context.Context, challengeID string) error {
	return s.notifyOnce(ctx, challengeID, challenge.FlagClockDeadline,
		func(c challenge.Challenge, now time.Time) bool {
			return c.IsOpen() && !c.ClockDeadlineNotified && c.ClockExpired(now)
		},
		func(c challenge.Challenge, names teamNames) Message {
			return Message{
				Title: "Clock deadline passed",
				Text: fmt.Sprintf("The clock deadline for %s vs %s passed on %s. An admin will adjudicate this challenge.",
					names.of(c.ChallengingTeamID), names.of(c.ChallengedTeamID), c.DateClockDeadline.Format(matchTimeLayout)),
				Color: ColorDanger,
			}
		},
	)
}

func (s *ChallengeService) NotifyMatchStarting(ctx context.Context, challengeID string) error {
	return s.notifyOnce(ctx, challengeID, challenge.FlagMatchTime,
		func(c challenge.Challenge, now time.Time) bool {
			return s.startingSoon(c, now)
		},
		func(c challenge.Challenge, names teamNames) Message {
			return Message{
				Title: "Match starting soon",
				Text: fmt.Sprintf("%s vs %s starts at %s.",
					names.of(c.ChallengingTeamID), names.of(c.ChallengedTeamID), c.MatchTime.Value.Format(matchTimeLayout)),
				Color: ColorInfo,
			}
		},
	)
}

func (s *ChallengeService) NotifyMatchMissed(ctx context.Context, challengeID string) error {
	return s.notifyOnce(ctx, challengeID, challenge.FlagMatchTimePassed,
		func(c challenge.Challenge, now time.Time) bool {
			return s.missed(c, now)
		},
		func(c challenge.Challenge, names teamNames) Message {
			return Message{
				Title: "Match not reported",
				Text: fmt.Sprintf("%s vs %s was scheduled for %s and has not been reported. Report the score or ask an admin to reschedule.",
					names.of(c.ChallengingTeamID), names.of(c.ChallengedTeamID), c.MatchTime.Value.Format(matchTimeLayout)),
				Color: ColorWarning,
			}
		},
	)
}

func (s *ChallengeService) startingSoon(c challenge.Challenge, now time.Time) bool {
	if !c.IsOpen() || c.IsReported() || !c.MatchTime.IsSet || c.MatchTimeNotified {
		return false
	}
	at := c.MatchTime.Value
	return at.After(now) && !at.After(now.Add(s.cfg.MatchStartingLead))
}

func (s *ChallengeService) missed(c challenge.Challenge, now time.Time) bool {
	if !c.IsOpen() || c.IsReported() || !c.MatchTime.IsSet || c.MatchTimePassedNotified {
		return false
	}
	return !c.MatchTime.Value.Add(s.cfg.MatchMissedGrace).After(now)
}

func (s *ChallengeService) notifyOnce(
	ctx context.Context,
	challengeID string,
	flag challenge.NotifiedFlag,
	due func(c challenge.Challenge, now time.Time) bool,
	render announceFunc,
) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Notify",
		attribute.String("challenge_id", challengeID),
		attribute.String("flag", string(flag)),
	)
	defer span.End()

	item, err := s.Get(ctx, challengeID)
	if err != nil {
		return err
	}
	if !due(item, s.now().UTC()) {
		return nil
	}

	claimed, err := s.challengeRepo.MarkNotified(ctx, challengeID, flag)
	if err != nil {
		return databaseError(err, "mark notified")
	}
	if !claimed {
		return nil
	}

	if err := s.send(ctx, item, render(item, s.teamNames(ctx, item))); err != nil {
		return criticalError(err, fmt.Sprintf("send %s notification", flag))
	}
	s.logger.InfoContext(ctx, "challenge notification sent", "challenge_id", item.ID, "flag", string(flag))
	return nil
}
