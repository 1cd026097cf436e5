package team

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
)

func newTeam() Team {
	return Team{
		ID:        "team-a",
		Name:      "Alpha Squadron",
		Tag:       "ALPH",
		FounderID: "founder",
		PilotIDs:  []string{"founder"},
	}
}

func requirePrecondition(t *testing.T, err error, precondition string) {
	t.Helper()

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrValidation), "expected validation error, got %v", err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, precondition, vErr.Precondition)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tag, err := NormalizeTag(" alph ")
	require.NoError(t, err)
	assert.Equal(t, "ALPH", tag)
	_, err = NormalizeTag("TOOLONG")
	requirePrecondition(t, err, "tag_format")

	name, err := NormalizeName("  Alpha   Squadron ")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Squadron", name)
	_, err = NormalizeName("abc")
	requirePrecondition(t, err, "name_length")

	color, err := NormalizeColor("FF8800")
	require.NoError(t, err)
	assert.Equal(t, "#ff8800", color)
	_, err = NormalizeColor("#ggg")
	requirePrecondition(t, err, "color_format")
}

func TestAddPilot_GuestsSkipCap(t *testing.T) {
	t.Parallel()

	rules := league.DefaultRules()
	rules.MaxRosterSize = 2
	tm := newTeam()

	require.NoError(t, AddPilot(&tm, "p1", false, rules))
	requirePrecondition(t, AddPilot(&tm, "p2", false, rules), "roster_full")
	require.NoError(t, AddPilot(&tm, "g1", true, rules))
	requirePrecondition(t, AddPilot(&tm, "p1", false, rules), "already_on_roster")

	assert.Equal(t, 2, tm.CappedPilotCount())
	assert.True(t, tm.IsGuest("g1"))

	tm.Locked = true
	requirePrecondition(t, AddPilot(&tm, "p3", true, rules), "team_locked")
	requirePrecondition(t, RemovePilot(&tm, "p1"), "team_locked")
}

func TestRemovePilot(t *testing.T) {
	t.Parallel()

	rules := league.DefaultRules()
	tm := newTeam()
	require.NoError(t, AddPilot(&tm, "p1", false, rules))
	require.NoError(t, AddCaptain(&tm, "p1", rules))

	requirePrecondition(t, RemovePilot(&tm, "founder"), "founder_removal")
	requirePrecondition(t, RemovePilot(&tm, "nobody"), "not_on_roster")
	require.NoError(t, RemovePilot(&tm, "p1"))

	assert.False(t, tm.HasPilot("p1"))
	assert.False(t, tm.IsCaptain("p1"))
}

func TestCaptains(t *testing.T) {
	t.Parallel()

	rules := league.DefaultRules()
	rules.MaxCaptains = 1
	tm := newTeam()
	require.NoError(t, AddPilot(&tm, "p1", false, rules))
	require.NoError(t, AddPilot(&tm, "p2", false, rules))

	requirePrecondition(t, AddCaptain(&tm, "outsider", rules), "not_on_roster")
	requirePrecondition(t, AddCaptain(&tm, "founder", rules), "already_captain")
	require.NoError(t, AddCaptain(&tm, "p1", rules))
	requirePrecondition(t, AddCaptain(&tm, "p2", rules), "captains_full")

	requirePrecondition(t, RemoveCaptain(&tm, "founder"), "founder_captaincy")
	requirePrecondition(t, RemoveCaptain(&tm, "p2"), "not_captain")
	require.NoError(t, RemoveCaptain(&tm, "p1"))
	assert.Equal(t, []string{"founder"}, tm.LeaderIDs())
}

func TestTransferFounder(t *testing.T) {
	t.Parallel()

	rules := league.DefaultRules()
	tm := newTeam()
	require.NoError(t, AddPilot(&tm, "p1", false, rules))
	require.NoError(t, AddCaptain(&tm, "p1", rules))
	require.NoError(t, AddPilot(&tm, "g1", true, rules))

	requirePrecondition(t, TransferFounder(&tm, "g1", rules), "guest_founder")
	require.NoError(t, TransferFounder(&tm, "p1", rules))

	assert.Equal(t, "p1", tm.FounderID)
	assert.Equal(t, []string{"founder"}, tm.CaptainIDs)
}

func TestHomeMaps(t *testing.T) {
	t.Parallel()

	rules := league.DefaultRules()
	rules.HomeMapsPerGameType = 2
	tm := newTeam()

	require.NoError(t, AddHomeMap(&tm, GameTypeTA, "Vault", rules))
	assert.False(t, tm.CanBeChallenged(GameTypeTA, rules.HomeMapsPerGameType))
	requirePrecondition(t, AddHomeMap(&tm, GameTypeTA, "vault", rules), "duplicate_home_map")
	require.NoError(t, AddHomeMap(&tm, GameTypeTA, "Backfire", rules))
	requirePrecondition(t, AddHomeMap(&tm, GameTypeTA, "Foundry", rules), "home_maps_full")
	assert.True(t, tm.CanBeChallenged(GameTypeTA, rules.HomeMapsPerGameType))
	assert.False(t, tm.CanBeChallenged(GameTypeCTF, rules.HomeMapsPerGameType))

	require.NoError(t, RemoveHomeMap(&tm, GameTypeTA, "VAULT"))
	assert.Equal(t, []string{"Backfire"}, tm.HomeMapList(GameTypeTA))
	assert.False(t, tm.CanBeChallenged(GameTypeTA, rules.HomeMapsPerGameType))
	requirePrecondition(t, RemoveHomeMap(&tm, GameTypeTA, "Vault"), "unknown_home_map")
}

func TestNeutralMaps_OnePerGameType(t *testing.T) {
	t.Parallel()

	tm := newTeam()
	require.NoError(t, SetNeutralMap(&tm, GameTypeCTF, "Ascent"))
	requirePrecondition(t, SetNeutralMap(&tm, GameTypeCTF, "Burning Indika"), "neutral_pending")
	require.NoError(t, ClearNeutralMap(&tm, GameTypeCTF))
	requirePrecondition(t, ClearNeutralMap(&tm, GameTypeCTF), "no_neutral")
}

func TestApplyPenalty(t *testing.T) {
	t.Parallel()

	rules := league.DefaultRules()
	tm := newTeam()

	assert.False(t, ApplyPenalty(&tm, rules))
	assert.Equal(t, 1, tm.Penalties)
	assert.Equal(t, rules.PenaltyGames, tm.PenaltyGamesRemaining)

	assert.True(t, ApplyPenalty(&tm, rules))
	assert.Equal(t, 2, tm.Penalties)
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	tm := newTeam()
	tm.HomeMaps = map[GameType][]string{GameTypeTA: {"Vault"}}
	cp := tm.Clone()
	cp.PilotIDs[0] = "changed"
	cp.HomeMaps[GameTypeTA][0] = "changed"

	assert.Equal(t, "founder", tm.PilotIDs[0])
	assert.Equal(t, "Vault", tm.HomeMaps[GameTypeTA][0])
}
