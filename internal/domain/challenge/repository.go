package challenge

import (
	"context"
	"errors"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

// ErrVersionConflict is returned when a conditional write lost a race.
var ErrVersionConflict = errors.New("challenge version conflict")

// NotifiedFlag names a one-shot notification marker.
type NotifiedFlag string

const (
	FlagClockDeadline   NotifiedFlag = "clock_deadline"
	FlagMatchTime       NotifiedFlag = "match_time"
	FlagMatchTimePassed NotifiedFlag = "match_time_passed"
)

// Repository describes challenge persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Challenge) error
	GetByID(ctx context.Context, challengeID string) (Challenge, bool, error)
	GetByChannel(ctx context.Context, channelID string) (Challenge, bool, error)
	// Update persists item when the stored version equals item.Version.
	Update(ctx context.Context, item Challenge) error
	// UpdateWithTeams persists the challenge and the teams in one unit; either
	// every row is written or none is.
	UpdateWithTeams(ctx context.Context, item Challenge, teams []team.Team) error
	// MarkNotified sets flag only if it is still unset and reports whether
	// this call set it.
	MarkNotified(ctx context.Context, challengeID string, flag NotifiedFlag) (bool, error)

	ListOpenByTeam(ctx context.Context, teamID string) ([]Challenge, error)
	HasOpenBetween(ctx context.Context, teamAID, teamBID string) (bool, error)
	CountActiveClocks(ctx context.Context, teamID string) (int, error)
	HasClockedOpponentSince(ctx context.Context, teamID, opponentID string, since time.Time) (bool, error)
	HasClockedOpponentInSeason(ctx context.Context, teamID, opponentID string, season int) (bool, error)

	ListUnnotifiedExpiredClocks(ctx context.Context, now time.Time) ([]string, error)
	ListUnnotifiedStartingMatches(ctx context.Context, now time.Time, lead time.Duration) ([]string, error)
	ListUnnotifiedMissedMatches(ctx context.Context, now time.Time, grace time.Duration) ([]string, error)
}
