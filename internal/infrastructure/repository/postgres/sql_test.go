package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches wrapped unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert team: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other postgres errors", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "42P01"}) {
			t.Fatalf("expected false for undefined table")
		}
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		if isUniqueViolation(errors.New("connection refused")) {
			t.Fatalf("expected false for non-postgres error")
		}
	})
}

func TestDecodeJSON_EmptyAndNull(t *testing.T) {
	out := map[string]string{"kept": "yes"}
	if err := decodeJSON("", &out); err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if err := decodeJSON("null", &out); err != nil {
		t.Fatalf("decode null: %v", err)
	}
	if out["kept"] != "yes" {
		t.Fatalf("expected target untouched, got %v", out)
	}
}

func TestTeamModel_KeepsMapsAndRoster(t *testing.T) {
	item := team.Team{
		ID:        "otl-team-jgn",
		Name:      "Juggernaut",
		Tag:       "JGN",
		FounderID: "100000000000000001",
		PilotIDs:  []string{"100000000000000001", "100000000000000002"},
		League:    league.DivisionUpper,
		HomeMaps: map[team.GameType][]string{
			team.GameTypeTA: {"Foundry", "Vault"},
		},
		NeutralMaps: map[team.GameType]string{team.GameTypeCTF: "Wraith"},
		Version:     3,
	}

	model, err := teamToModel(item)
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{}, model.CaptainIDs, "nil slices are written as empty arrays")
	assert.Nil(t, model.DisbandedAt)

	got, err := model.toDomain()
	require.NoError(t, err)
	assert.Equal(t, item.HomeMaps, got.HomeMaps)
	assert.Equal(t, item.NeutralMaps, got.NeutralMaps)
	assert.Equal(t, item.PilotIDs, got.PilotIDs)
	assert.Equal(t, league.DivisionUpper, got.League)
}

func TestChallengeModel_DenormalizesMatchTime(t *testing.T) {
	at := time.Date(2026, time.March, 3, 20, 0, 0, 0, time.FixedZone("EST", -5*3600))
	item := challenge.Challenge{
		ID:                "challenge-001",
		ChallengingTeamID: "otl-team-jgn",
		ChallengedTeamID:  "otl-team-tmp",
		DateAdded:         at.Add(-48 * time.Hour),
	}
	item.GameType.Set(team.GameTypeCTF)
	item.TeamSize.Suggest("otl-team-tmp", 4)

	model, err := challengeToModel(item)
	require.NoError(t, err)
	assert.Nil(t, model.MatchTime, "no column value until the time is agreed")
	assert.Equal(t, "[]", model.Stats)
	assert.Equal(t, "{}", model.AuthorizedPilotIDs)
	assert.False(t, model.ChannelID.Valid)

	item.MatchTime.Set(at)
	item.Restricted = true
	item.AuthorizedPilotIDs = map[string][]string{"otl-team-jgn": {"100000000000000001"}}
	model, err = challengeToModel(item)
	require.NoError(t, err)
	require.NotNil(t, model.MatchTime)
	assert.Equal(t, time.UTC, model.MatchTime.Location())

	got, err := model.toDomain()
	require.NoError(t, err)
	assert.Equal(t, team.GameTypeCTF, got.GameType.Value)
	assert.True(t, got.TeamSize.CanConfirm("otl-team-jgn"))
	assert.Equal(t, 4, got.TeamSize.Suggested)
	assert.True(t, got.MatchTime.Value.Equal(at))
	assert.True(t, got.IsAuthorized("otl-team-jgn", "100000000000000001"))
	assert.False(t, got.IsAuthorized("otl-team-tmp", "100000000000000011"))
}

func TestNotifiedColumns_CoverEveryFlag(t *testing.T) {
	for _, flag := range []challenge.NotifiedFlag{
		challenge.FlagClockDeadline,
		challenge.FlagMatchTime,
		challenge.FlagMatchTimePassed,
	} {
		if _, ok := notifiedColumns[flag]; !ok {
			t.Fatalf("missing column for flag %s", flag)
		}
	}
}

func TestUnqualifiedColumn_ReadsCurrentTeamFlag(t *testing.T) {
	got := unqualifiedColumn("challenged_team_id", "challenged_team_unqualified")
	assert.Equal(t,
		"COALESCE((SELECT NOT t.qualified FROM teams t WHERE t.public_id = challenged_team_id), FALSE) AS challenged_team_unqualified",
		got,
	)
}
