package team

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
)

// GameType is the Overload game mode a match is played in.
type GameType string

const (
	GameTypeTA  GameType = "TA"
	GameTypeCTF GameType = "CTF"
)

var AllGameTypes = []GameType{GameTypeTA, GameTypeCTF}

func ParseGameType(v string) (GameType, error) {
	switch GameType(strings.ToUpper(strings.TrimSpace(v))) {
	case GameTypeTA:
		return GameTypeTA, nil
	case GameTypeCTF:
		return GameTypeCTF, nil
	default:
		return "", fmt.Errorf("unknown game type %q", v)
	}
}

// Team is a league team with its roster and map preferences.
type Team struct {
	ID                    string
	Name                  string
	Tag                   string
	Color                 string
	FounderID             string
	CaptainIDs            []string
	GuestIDs              []string
	PilotIDs              []string
	Locked                bool
	Disbanded             bool
	Qualified             bool
	League                league.Division
	HomeMaps              map[GameType][]string
	NeutralMaps           map[GameType]string
	Penalties             int
	PenaltyGamesRemaining int
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DisbandedAt           *time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Tag == "" {
		return fmt.Errorf("team tag is required")
	}
	if !t.Disbanded && t.FounderID == "" {
		return fmt.Errorf("team founder is required")
	}

	return nil
}

func (t Team) HasPilot(pilotID string) bool {
	return slices.Contains(t.PilotIDs, pilotID)
}

func (t Team) IsFounder(pilotID string) bool {
	return pilotID != "" && t.FounderID == pilotID
}

// IsCaptain reports captain powers; the founder always has them.
func (t Team) IsCaptain(pilotID string) bool {
	return t.IsFounder(pilotID) || slices.Contains(t.CaptainIDs, pilotID)
}

func (t Team) IsGuest(pilotID string) bool {
	return slices.Contains(t.GuestIDs, pilotID)
}

// CappedPilotCount counts roster members that count toward the roster cap.
func (t Team) CappedPilotCount() int {
	count := 0
	for _, id := range t.PilotIDs {
		if !t.IsGuest(id) {
			count++
		}
	}
	return count
}

// LeaderIDs returns the founder plus captains.
func (t Team) LeaderIDs() []string {
	out := make([]string, 0, len(t.CaptainIDs)+1)
	if t.FounderID != "" {
		out = append(out, t.FounderID)
	}
	for _, id := range t.CaptainIDs {
		if id != t.FounderID {
			out = append(out, id)
		}
	}
	return out
}

func (t Team) HomeMapList(gameType GameType) []string {
	return slices.Clone(t.HomeMaps[gameType])
}

// CanBeChallenged reports whether the home map list for a game type is full.
func (t Team) CanBeChallenged(gameType GameType, homeMapsRequired int) bool {
	return !t.Disbanded && len(t.HomeMaps[gameType]) >= homeMapsRequired
}

// Clone deep-copies slices and maps so callers can mutate freely.
func (t Team) Clone() Team {
	out := t
	out.CaptainIDs = slices.Clone(t.CaptainIDs)
	out.GuestIDs = slices.Clone(t.GuestIDs)
	out.PilotIDs = slices.Clone(t.PilotIDs)
	out.HomeMaps = make(map[GameType][]string, len(t.HomeMaps))
	for k, v := range t.HomeMaps {
		out.HomeMaps[k] = slices.Clone(v)
	}
	out.NeutralMaps = make(map[GameType]string, len(t.NeutralMaps))
	for k, v := range t.NeutralMaps {
		out.NeutralMaps[k] = v
	}
	if t.DisbandedAt != nil {
		at := *t.DisbandedAt
		out.DisbandedAt = &at
	}
	return out
}

// LeadershipBan bars a pilot from being founder or captain of any team.
type LeadershipBan struct {
	PilotID   string
	TeamID    string
	Reason    string
	CreatedAt time.Time
}
