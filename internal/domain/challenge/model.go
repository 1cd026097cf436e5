package challenge

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

// Decision is an admin ruling on a clocked challenge whose deadline passed.
type Decision string

const (
	DecisionCancel   Decision = "cancel"
	DecisionExtend   Decision = "extend"
	DecisionPenalize Decision = "penalize"
)

func ParseDecision(v string) (Decision, error) {
	switch Decision(strings.ToLower(strings.TrimSpace(v))) {
	case DecisionCancel:
		return DecisionCancel, nil
	case DecisionExtend:
		return DecisionExtend, nil
	case DecisionPenalize:
		return DecisionPenalize, nil
	default:
		return "", fmt.Errorf("unknown decision %q", v)
	}
}

// PlayerStat is one pilot's line for a played challenge. CTF columns stay
// zero in TA matches.
type PlayerStat struct {
	PilotID      string `json:"pilot_id"`
	TeamID       string `json:"team_id"`
	Kills        int    `json:"kills"`
	Assists      int    `json:"assists"`
	Deaths       int    `json:"deaths"`
	Damage       int    `json:"damage"`
	Captures     int    `json:"captures"`
	Pickups      int    `json:"pickups"`
	CarrierKills int    `json:"carrier_kills"`
	Returns      int    `json:"returns"`
}

// Challenge is a proposed or played match between two teams.
type Challenge struct {
	ID        string
	Season    int
	ChannelID string
	Title     string

	ChallengingTeamID string
	ChallengedTeamID  string

	GameType      Negotiable[team.GameType]
	TeamSize      Negotiable[int]
	Map           Negotiable[string]
	MatchTime     Negotiable[time.Time]
	NeutralServer Negotiable[bool]

	HomeMapTeamID       string
	HomeServerTeamID    string
	UsingHomeMapTeam    bool
	UsingHomeServerTeam bool

	ReportingTeamID          string
	ChallengingTeamScore     int
	ChallengedTeamScore      int
	OvertimePeriods          int
	ChallengingTeamPenalized bool
	ChallengedTeamPenalized  bool

	CasterID    string
	StreamerIDs []string
	VoDURL      string

	// Restricted limits who may play to AuthorizedPilotIDs, keyed by team ID.
	Restricted         bool
	AuthorizedPilotIDs map[string][]string

	AdminCreated bool
	Postseason   bool
	Locked       bool

	ClockTeamID string
	Stats       []PlayerStat

	DateAdded               time.Time
	DateClocked             *time.Time
	DateClockDeadline       *time.Time
	ClockDeadlineNotified   bool
	MatchTimeNotified       bool
	MatchTimePassedNotified bool
	DateReported            *time.Time
	DateConfirmed           *time.Time
	DateClosed              *time.Time
	DateVoided              *time.Time
	DateRematchRequested    *time.Time
	RematchRequestedBy      string
	DateRematched           *time.Time

	Version int64
}

func (c Challenge) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("challenge id is required")
	}
	if c.ChallengingTeamID == "" || c.ChallengedTeamID == "" {
		return fmt.Errorf("both teams are required")
	}
	if c.ChallengingTeamID == c.ChallengedTeamID {
		return fmt.Errorf("a team cannot challenge itself")
	}
	if c.DateConfirmed != nil && c.DateVoided != nil {
		return fmt.Errorf("challenge cannot be both confirmed and voided")
	}
	if c.DateConfirmed != nil && c.DateReported == nil {
		return fmt.Errorf("confirmed challenge must be reported")
	}

	return nil
}

func (c Challenge) IsParticipant(teamID string) bool {
	return teamID != "" && (teamID == c.ChallengingTeamID || teamID == c.ChallengedTeamID)
}

// IsAuthorized reports whether pilotID may play for teamID. Every pilot is
// authorized on an unrestricted challenge.
func (c Challenge) IsAuthorized(teamID, pilotID string) bool {
	if !c.Restricted {
		return true
	}
	return slices.Contains(c.AuthorizedPilotIDs[teamID], pilotID)
}

// OpponentOf returns the other team, or "" when teamID is not in the challenge.
func (c Challenge) OpponentOf(teamID string) string {
	switch teamID {
	case c.ChallengingTeamID:
		return c.ChallengedTeamID
	case c.ChallengedTeamID:
		return c.ChallengingTeamID
	default:
		return ""
	}
}

func (c Challenge) TeamIDs() []string {
	return []string{c.ChallengingTeamID, c.ChallengedTeamID}
}

func (c Challenge) IsReported() bool  { return c.DateReported != nil }
func (c Challenge) IsConfirmed() bool { return c.DateConfirmed != nil }
func (c Challenge) IsVoided() bool    { return c.DateVoided != nil }
func (c Challenge) IsClosed() bool    { return c.DateClosed != nil }
func (c Challenge) IsClocked() bool   { return c.DateClocked != nil }

// IsOpen reports whether the challenge still awaits a result.
func (c Challenge) IsOpen() bool {
	return !c.IsConfirmed() && !c.IsVoided() && !c.IsClosed()
}

// ClockExpired reports whether the clock deadline is at or before now.
func (c Challenge) ClockExpired(now time.Time) bool {
	return c.DateClockDeadline != nil && !now.Before(*c.DateClockDeadline)
}

// ScoreFor returns the recorded score of teamID.
func (c Challenge) ScoreFor(teamID string) int {
	if teamID == c.ChallengingTeamID {
		return c.ChallengingTeamScore
	}
	return c.ChallengedTeamScore
}

// WinnerID returns the winning team or "" for a tie or an unreported match.
func (c Challenge) WinnerID() string {
	if !c.IsReported() {
		return ""
	}
	switch {
	case c.ChallengingTeamScore > c.ChallengedTeamScore:
		return c.ChallengingTeamID
	case c.ChallengedTeamScore > c.ChallengingTeamScore:
		return c.ChallengedTeamID
	default:
		return ""
	}
}

func (c Challenge) StatsFor(teamID string) []PlayerStat {
	out := make([]PlayerStat, 0, len(c.Stats))
	for _, stat := range c.Stats {
		if stat.TeamID == teamID {
			out = append(out, stat)
		}
	}
	return out
}

// Clone deep-copies pointer and slice fields.
func (c Challenge) Clone() Challenge {
	out := c
	out.StreamerIDs = slices.Clone(c.StreamerIDs)
	out.Stats = slices.Clone(c.Stats)
	if c.AuthorizedPilotIDs != nil {
		out.AuthorizedPilotIDs = make(map[string][]string, len(c.AuthorizedPilotIDs))
		for teamID, ids := range c.AuthorizedPilotIDs {
			out.AuthorizedPilotIDs[teamID] = slices.Clone(ids)
		}
	}
	out.DateClocked = cloneTime(c.DateClocked)
	out.DateClockDeadline = cloneTime(c.DateClockDeadline)
	out.DateReported = cloneTime(c.DateReported)
	out.DateConfirmed = cloneTime(c.DateConfirmed)
	out.DateClosed = cloneTime(c.DateClosed)
	out.DateVoided = cloneTime(c.DateVoided)
	out.DateRematchRequested = cloneTime(c.DateRematchRequested)
	out.DateRematched = cloneTime(c.DateRematched)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
