package memory

import (
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
)

const (
	TeamIDJuggernaut = "otl-team-jgn"
	TeamIDTempest    = "otl-team-tmp"
	TeamIDVanguard   = "otl-team-vgd"
)

// SeedTeams returns three challengeable teams for local runs.
func SeedTeams() []team.Team {
	created := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	return []team.Team{
		seedTeam(TeamIDJuggernaut, "Juggernaut", "JGN", "#d94f2b", "100000000000000001",
			[]string{"100000000000000002", "100000000000000003"}, league.DivisionUpper, created),
		seedTeam(TeamIDTempest, "Tempest Squadron", "TMP", "#2b8fd9", "100000000000000011",
			[]string{"100000000000000012", "100000000000000013"}, league.DivisionUpper, created),
		seedTeam(TeamIDVanguard, "Vanguard Pilots", "VGD", "#3fb950", "100000000000000021",
			[]string{"100000000000000022"}, league.DivisionLower, created),
	}
}

func seedTeam(id, name, tag, color, founderID string, pilots []string, division league.Division, created time.Time) team.Team {
	return team.Team{
		ID:         id,
		Name:       name,
		Tag:        tag,
		Color:      color,
		FounderID:  founderID,
		CaptainIDs: []string{},
		GuestIDs:   []string{},
		PilotIDs:   append([]string{founderID}, pilots...),
		Qualified:  true,
		League:     division,
		HomeMaps: map[team.GameType][]string{
			team.GameTypeTA:  {"Burning Indika", "Foundry", "Keystone", "Labyrinth", "Vault"},
			team.GameTypeCTF: {"Backfire", "Blackbird", "Ice Fractal", "Roundabout", "Turbine"},
		},
		NeutralMaps: map[team.GameType]string{},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}
