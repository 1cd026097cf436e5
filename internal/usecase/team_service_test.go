package usecase

import (
	"fmt"
	"testing"

	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/memory"
	teammock "github.com/riskibarqy/overload-teams-league/internal/mocks/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTeamService_CreateNormalizesAndEnforcesUniqueness(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	created, err := f.teams.Create(ctx, CreateTeamInput{
		FounderID: "300000000000000001",
		Name:      "  Lords   of  Lava ",
		Tag:       "lol",
		Color:     "FF8800",
	})
	require.NoError(t, err)
	assert.Equal(t, "team-001", created.ID)
	assert.Equal(t, "Lords of Lava", created.Name)
	assert.Equal(t, "LOL", created.Tag)
	assert.Equal(t, "#ff8800", created.Color)
	assert.Equal(t, league.DivisionLower, created.League)
	assert.Equal(t, []string{"300000000000000001"}, created.PilotIDs)

	_, err = f.teams.Create(ctx, CreateTeamInput{FounderID: "300000000000000002", Name: "Another Team", Tag: "LOL"})
	assert.True(t, IsKind(err, ErrInvalidInput), "duplicate tag: %v", err)

	_, err = f.teams.Create(ctx, CreateTeamInput{FounderID: jgnPilot, Name: "Second Home", Tag: "SH"})
	assert.True(t, IsKind(err, ErrInvalidInput), "pilot already on a team: %v", err)
}

func TestTeamService_RosterAndCaptains(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	newcomer := "300000000000000009"

	updated, err := f.teams.AddPilot(ctx, memory.TeamIDVanguard, newcomer, false)
	require.NoError(t, err)
	assert.True(t, updated.HasPilot(newcomer))

	updated, err = f.teams.AddCaptain(ctx, memory.TeamIDVanguard, newcomer)
	require.NoError(t, err)
	assert.True(t, updated.IsCaptain(newcomer))

	captainOf, err := f.teams.RequireCaptain(ctx, newcomer)
	require.NoError(t, err)
	assert.Equal(t, memory.TeamIDVanguard, captainOf.ID)

	_, err = f.teams.RequireFounder(ctx, newcomer)
	assert.True(t, IsKind(err, ErrUnauthorized))

	_, err = f.teams.RemovePilot(ctx, memory.TeamIDVanguard, vgdFounder)
	assert.True(t, IsKind(err, ErrInvalidInput), "founder cannot be removed: %v", err)

	_, err = f.teams.SetLock(ctx, memory.TeamIDVanguard, true)
	require.NoError(t, err)
	_, err = f.teams.AddPilot(ctx, memory.TeamIDVanguard, "300000000000000010", false)
	assert.True(t, IsKind(err, ErrInvalidInput), "locked roster: %v", err)

	guest, err := f.teams.AddGuest(ctx, memory.TeamIDJuggernaut, "300000000000000011")
	require.NoError(t, err)
	assert.True(t, guest.IsGuest("300000000000000011"))
}

func TestTeamService_PilotLeft(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	updated, err := f.teams.PilotLeft(ctx, jgnPilot)
	require.NoError(t, err)
	assert.False(t, updated.HasPilot(jgnPilot))

	before := f.team(t, memory.TeamIDTempest)
	_, err = f.teams.PilotLeft(ctx, tmpFounder)
	assert.True(t, IsKind(err, ErrCritical))

	after := f.team(t, memory.TeamIDTempest)
	assert.Equal(t, before.Version, after.Version)
	assert.True(t, after.HasPilot(tmpFounder))
}

func TestTeamService_DisbandVoidsOpenChallenges(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)

	_, err := f.teams.Disband(ctx, memory.TeamIDTempest, tmpPilot, false)
	assert.True(t, IsKind(err, ErrUnauthorized))

	disbanded, err := f.teams.Disband(ctx, memory.TeamIDTempest, tmpFounder, false)
	require.NoError(t, err)
	assert.True(t, disbanded.Disbanded)

	voided, err := f.challenges.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, voided.IsVoided())

	allowed, err := f.teams.MemberAllowedToBeCaptain(ctx, tmpFounder)
	require.NoError(t, err)
	assert.True(t, allowed, "a voluntary disband does not ban the leaders")

	reinstated, err := f.teams.Reinstate(ctx, memory.TeamIDTempest, tmpFounder)
	require.NoError(t, err)
	assert.False(t, reinstated.Disbanded)
	assert.Equal(t, tmpFounder, reinstated.FounderID)
}

func TestTeamService_HomeMaps(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	_, err := f.teams.AddHomeMap(ctx, memory.TeamIDJuggernaut, team.GameTypeTA, "Syrinx")
	assert.True(t, IsKind(err, ErrInvalidInput), "home map list is full: %v", err)

	updated, err := f.teams.RemoveHomeMap(ctx, memory.TeamIDJuggernaut, team.GameTypeTA, "vault")
	require.NoError(t, err)
	assert.Len(t, updated.HomeMaps[team.GameTypeTA], 4)

	updated, err = f.teams.AddHomeMap(ctx, memory.TeamIDJuggernaut, team.GameTypeTA, "Syrinx")
	require.NoError(t, err)
	assert.Contains(t, updated.HomeMaps[team.GameTypeTA], "Syrinx")

	updated, err = f.teams.SetNeutralMap(ctx, memory.TeamIDJuggernaut, team.GameTypeCTF, "Wraith")
	require.NoError(t, err)
	assert.Equal(t, "Wraith", updated.NeutralMaps[team.GameTypeCTF])
}

func TestTeamService_RepositoryErrorsAreMarked(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	teamRepo := teammock.NewRepository(t)
	current := memory.SeedTeams()[0]

	teamRepo.
		On("GetByID", mock.Anything, current.ID).
		Return(current, true, nil).
		Once()
	teamRepo.
		On("Update", mock.Anything, mock.MatchedBy(func(item team.Team) bool { return item.ID == current.ID })).
		Return(fmt.Errorf("%w: team id=%s", team.ErrVersionConflict, current.ID)).
		Once()

	service := NewTeamService(teamRepo, nil, league.DefaultRules(), nil, logging.NewNop())
	_, err := service.Qualify(ctx, current.ID, false)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrDatabase))
	assert.True(t, IsKind(err, ErrConflict))

	teamRepo.
		On("IsLeadershipBanned", mock.Anything, "300000000000000001").
		Return(false, fmt.Errorf("connection reset")).
		Once()
	_, err = service.MemberAllowedToBeCaptain(ctx, "300000000000000001")
	assert.True(t, IsKind(err, ErrDatabase))
	assert.False(t, IsKind(err, ErrConflict))
}
