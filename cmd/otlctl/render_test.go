package main

import (
	"bytes"
	"testing"

	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
	"github.com/stretchr/testify/assert"
)

func TestRenderRatings_UsesTeamTags(t *testing.T) {
	var buf bytes.Buffer
	renderRatings(&buf, 3, []rating.TeamRating{
		{Season: 3, TeamID: "otl-team-jgn", Rating: 1516.2},
		{Season: 3, TeamID: "otl-team-gone", Rating: 1483.8},
	}, map[string]team.Team{
		"otl-team-jgn": {ID: "otl-team-jgn", Tag: "JGN", Name: "Juggernaut"},
	})

	out := buf.String()
	assert.Contains(t, out, "Season 3")
	assert.Contains(t, out, "JGN")
	assert.Contains(t, out, "Juggernaut")
	assert.Contains(t, out, "1516")
	assert.Contains(t, out, "otl-team-gone")
}

func TestRenderTeams_HidesDisbandedByDefault(t *testing.T) {
	teams := []team.Team{
		{Tag: "JGN", Name: "Juggernaut", PilotIDs: []string{"1", "2"}},
		{Tag: "OLD", Name: "Old Timers", Disbanded: true},
	}

	var buf bytes.Buffer
	renderTeams(&buf, teams, false)
	assert.Contains(t, buf.String(), "JGN")
	assert.NotContains(t, buf.String(), "OLD")

	buf.Reset()
	renderTeams(&buf, teams, true)
	assert.Contains(t, buf.String(), "disbanded")
}

func TestTeamStatus(t *testing.T) {
	assert.Equal(t, "active", teamStatus(team.Team{}))
	assert.Equal(t, "locked, 2 strike(s)", teamStatus(team.Team{Locked: true, Penalties: 2}))
}

func TestRenderNotifyReport(t *testing.T) {
	var buf bytes.Buffer
	renderNotifyReport(&buf, usecase.NotifyReport{ExpiredClocks: 2, Failed: 1})
	assert.Contains(t, buf.String(), "Clock expired")
	assert.Contains(t, buf.String(), "2")
}
