package usecase

import (
	"errors"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/memory"
	ratingmock "github.com/riskibarqy/overload-teams-league/internal/mocks/domain/rating"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChallengeService_FullMatchLifecycle(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	created := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)
	assert.Equal(t, memory.TeamIDTempest, created.HomeMapTeamID)
	assert.Equal(t, memory.TeamIDJuggernaut, created.HomeServerTeamID)
	assert.Equal(t, 1, f.notifier.count("New challenge"))

	scheduled := f.schedule(t, created)
	require.True(t, scheduled.Map.IsSet)
	assert.Equal(t, "Foundry", scheduled.Map.Value)
	assert.Equal(t, 3, scheduled.TeamSize.Value)
	assert.Equal(t, team.GameTypeTA, scheduled.GameType.Value)

	f.advance(49 * time.Hour)
	reported, err := f.challenges.ReportMatch(ctx, created.ID, memory.TeamIDTempest, 95, 120)
	require.NoError(t, err)
	assert.Equal(t, 120, reported.ChallengingTeamScore)
	assert.Equal(t, 95, reported.ChallengedTeamScore)

	confirmed, err := f.challenges.ConfirmMatch(ctx, created.ID, memory.TeamIDJuggernaut)
	require.NoError(t, err)
	assert.True(t, confirmed.IsConfirmed())
	assert.Equal(t, memory.TeamIDJuggernaut, confirmed.WinnerID())
	assert.True(t, f.notifier.sentTo(announcementsChannel, "Match confirmed"))

	ratings, err := f.ratings.SeasonRatings(ctx, f.rules.CurrentSeason)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, memory.TeamIDJuggernaut, ratings[0].TeamID)
	assert.Greater(t, ratings[0].Rating, rating.DefaultRating)
	assert.InDelta(t, 2*rating.DefaultRating, ratings[0].Rating+ratings[1].Rating, 1e-9)

	_, err = f.challenges.Close(ctx, created.ID)
	assert.True(t, IsKind(err, ErrInvalidInput), "stats are missing: %v", err)

	pilots := map[string][]string{
		memory.TeamIDJuggernaut: {jgnFounder, jgnPilot, "100000000000000003"},
		memory.TeamIDTempest:    {tmpFounder, tmpPilot, "100000000000000013"},
	}
	for teamID, ids := range pilots {
		for _, pilotID := range ids {
			_, err := f.challenges.AddStat(ctx, created.ID, challenge.PlayerStat{PilotID: pilotID, TeamID: teamID, Kills: 10})
			require.NoError(t, err)
		}
	}

	closed, err := f.challenges.Close(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, closed.IsClosed())
	assert.Len(t, closed.Stats, 6)
}

func TestChallengeService_UnqualifiedOpponentLeavesRatingUnchanged(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	_, err := f.teams.Qualify(ctx, memory.TeamIDTempest, false)
	require.NoError(t, err)

	created := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)
	f.schedule(t, created)
	f.advance(49 * time.Hour)
	_, err = f.challenges.ReportMatch(ctx, created.ID, memory.TeamIDTempest, 95, 120)
	require.NoError(t, err)
	_, err = f.challenges.ConfirmMatch(ctx, created.ID, memory.TeamIDJuggernaut)
	require.NoError(t, err)

	ratings, err := f.ratings.SeasonRatings(ctx, f.rules.CurrentSeason)
	require.NoError(t, err)
	byTeam := make(map[string]float64, len(ratings))
	for _, item := range ratings {
		byTeam[item.TeamID] = item.Rating
	}
	assert.Equal(t, rating.DefaultRating, byTeam[memory.TeamIDJuggernaut])
	assert.Less(t, byTeam[memory.TeamIDTempest], rating.DefaultRating)
}

func TestChallengeService_SuggestThenConfirmByOpponent(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)

	suggested, err := f.challenges.SuggestGameType(ctx, item.ID, memory.TeamIDJuggernaut, team.GameTypeCTF)
	require.NoError(t, err)
	assert.True(t, suggested.GameType.HasProposal)
	assert.False(t, suggested.GameType.IsSet)

	confirmed, err := f.challenges.ConfirmGameType(ctx, item.ID, memory.TeamIDTempest)
	require.NoError(t, err)
	assert.True(t, confirmed.GameType.IsSet)
	assert.Equal(t, team.GameTypeCTF, confirmed.GameType.Value)
	assert.False(t, confirmed.GameType.HasProposal)
	assert.Equal(t, 1, f.notifier.count("Game type confirmed"))
}

func TestChallengeService_GameTypeNeedsFullHomeMapLists(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)

	suggested, err := f.challenges.SuggestGameType(ctx, item.ID, memory.TeamIDJuggernaut, team.GameTypeCTF)
	require.NoError(t, err)
	require.True(t, suggested.GameType.HasProposal)

	_, err = f.teams.RemoveHomeMap(ctx, memory.TeamIDTempest, team.GameTypeCTF, "Turbine")
	require.NoError(t, err)

	_, err = f.challenges.ConfirmGameType(ctx, item.ID, memory.TeamIDTempest)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrInvalidInput))
	var verr *challenge.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "game_type_unavailable", verr.Precondition)

	_, err = f.challenges.SuggestGameType(ctx, item.ID, memory.TeamIDJuggernaut, team.GameTypeCTF)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "game_type_unavailable", verr.Precondition)

	_, err = f.challenges.SetGameType(ctx, item.ID, team.GameTypeCTF)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "game_type_unavailable", verr.Precondition)

	after, err := f.challenges.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, after.GameType.IsSet)

	set, err := f.challenges.SetGameType(ctx, item.ID, team.GameTypeTA)
	require.NoError(t, err)
	assert.Equal(t, team.GameTypeTA, set.GameType.Value)
}

func TestChallengeService_SameTeamConfirmLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)

	suggested, err := f.challenges.SuggestTeamSize(ctx, item.ID, memory.TeamIDJuggernaut, 4)
	require.NoError(t, err)

	_, err = f.challenges.ConfirmTeamSize(ctx, item.ID, memory.TeamIDJuggernaut)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrInvalidInput))

	var verr *challenge.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "same_team_confirm", verr.Precondition)

	after, err := f.challenges.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, suggested.Version, after.Version)
	assert.False(t, after.TeamSize.IsSet)
	assert.True(t, after.TeamSize.HasProposal)
	assert.Equal(t, memory.TeamIDJuggernaut, after.TeamSize.SuggestedBy)
}

func TestChallengeService_CreateRejectsDuplicateAndSelfChallenge(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)

	_, err := f.challenges.Create(ctx, CreateChallengeInput{
		ChallengingTeamID: memory.TeamIDTempest,
		ChallengedTeamID:  memory.TeamIDJuggernaut,
	})
	assert.True(t, IsKind(err, ErrInvalidInput), "open challenge between the same teams: %v", err)

	_, err = f.challenges.Create(ctx, CreateChallengeInput{
		ChallengingTeamID: memory.TeamIDTempest,
		ChallengedTeamID:  memory.TeamIDTempest,
	})
	assert.True(t, IsKind(err, ErrInvalidInput))

	_, err = f.challenges.Create(ctx, CreateChallengeInput{
		ChallengingTeamID: memory.TeamIDTempest,
		ChallengedTeamID:  "missing",
	})
	assert.True(t, IsKind(err, ErrNotFound))
}

func TestChallengeService_NotifyClockExpiredSendsOnce(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)

	require.NoError(t, f.challenges.NotifyClockExpired(ctx, item.ID))
	assert.Zero(t, f.notifier.count("Clock deadline passed"), "nothing is due before a clock")

	clocked, err := f.challenges.Clock(ctx, item.ID, memory.TeamIDJuggernaut)
	require.NoError(t, err)
	require.NotNil(t, clocked.DateClockDeadline)
	assert.Equal(t, f.now.Add(f.rules.ClockDuration), *clocked.DateClockDeadline)

	f.advance(f.rules.ClockDuration + time.Minute)
	require.NoError(t, f.challenges.NotifyClockExpired(ctx, item.ID))
	require.NoError(t, f.challenges.NotifyClockExpired(ctx, item.ID))
	assert.Equal(t, 1, f.notifier.count("Clock deadline passed"))

	due, err := f.store.Challenges().ListUnnotifiedExpiredClocks(ctx, f.now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestChallengeService_ClockLimits(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	first := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)
	second := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDVanguard)
	third := f.open(t, memory.TeamIDTempest, memory.TeamIDVanguard)

	_, err := f.challenges.Clock(ctx, first.ID, memory.TeamIDJuggernaut)
	require.NoError(t, err)
	_, err = f.challenges.Clock(ctx, first.ID, memory.TeamIDTempest)
	assert.True(t, IsKind(err, ErrInvalidInput), "already clocked: %v", err)

	_, err = f.challenges.Clock(ctx, second.ID, memory.TeamIDJuggernaut)
	require.NoError(t, err)

	_, err = f.challenges.Clock(ctx, third.ID, memory.TeamIDVanguard)
	require.NoError(t, err)

	count, err := f.store.Challenges().CountActiveClocks(ctx, memory.TeamIDJuggernaut)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestChallengeService_PenaltyThenDisbandOnSecondStrike(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	first := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)
	_, err := f.challenges.Clock(ctx, first.ID, memory.TeamIDJuggernaut)
	require.NoError(t, err)

	_, err = f.challenges.Adjudicate(ctx, first.ID, challenge.DecisionPenalize, []string{memory.TeamIDTempest})
	assert.True(t, IsKind(err, ErrInvalidInput), "clock still running: %v", err)

	f.advance(f.rules.ClockDuration + time.Hour)
	result, err := f.challenges.Adjudicate(ctx, first.ID, challenge.DecisionPenalize, []string{memory.TeamIDTempest})
	require.NoError(t, err)
	require.Len(t, result.Penalties, 1)
	assert.Equal(t, 1, result.Penalties[0].Strike)
	assert.Equal(t, f.rules.PenaltyGames, result.Penalties[0].PenaltyGamesRemaining)
	assert.False(t, result.Penalties[0].Disbanded)
	assert.True(t, result.Challenge.IsVoided())

	tempest := f.team(t, memory.TeamIDTempest)
	assert.Equal(t, 1, tempest.Penalties)
	assert.Equal(t, f.rules.PenaltyGames, tempest.PenaltyGamesRemaining)

	// A penalized challenged team loses home map to its opponent.
	rematch := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)
	assert.True(t, rematch.ChallengedTeamPenalized)
	assert.Equal(t, memory.TeamIDJuggernaut, rematch.HomeMapTeamID)

	second := f.open(t, memory.TeamIDVanguard, memory.TeamIDTempest)
	_, err = f.challenges.Clock(ctx, second.ID, memory.TeamIDVanguard)
	require.NoError(t, err)
	f.advance(f.rules.ClockDuration + time.Hour)

	result, err = f.challenges.Adjudicate(ctx, second.ID, challenge.DecisionPenalize, []string{memory.TeamIDTempest})
	require.NoError(t, err)
	require.Len(t, result.Penalties, 1)
	assert.Equal(t, 2, result.Penalties[0].Strike)
	assert.True(t, result.Penalties[0].Disbanded)
	assert.Equal(t, []string{tmpFounder}, result.Penalties[0].BannedPilotIDs)

	tempest = f.team(t, memory.TeamIDTempest)
	assert.True(t, tempest.Disbanded)
	assert.Empty(t, tempest.PilotIDs)

	allowed, err := f.teams.MemberAllowedToBeCaptain(ctx, tmpFounder)
	require.NoError(t, err)
	assert.False(t, allowed)

	voided, err := f.challenges.Get(ctx, rematch.ID)
	require.NoError(t, err)
	assert.True(t, voided.IsVoided(), "open challenges of a disbanded team are voided")
	assert.Equal(t, 2, f.notifier.count("Challenge penalized"))
}

func TestChallengeService_AdjudicateExtendAndCancel(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)

	clocked, err := f.challenges.Clock(ctx, item.ID, memory.TeamIDJuggernaut)
	require.NoError(t, err)
	f.advance(f.rules.ClockDuration)

	result, err := f.challenges.Adjudicate(ctx, item.ID, challenge.DecisionExtend, nil)
	require.NoError(t, err)
	assert.Equal(t, clocked.DateClockDeadline.Add(f.rules.ClockExtension), *result.Challenge.DateClockDeadline)
	assert.False(t, result.Challenge.IsVoided())

	f.advance(f.rules.ClockExtension)
	result, err = f.challenges.Adjudicate(ctx, item.ID, challenge.DecisionCancel, nil)
	require.NoError(t, err)
	assert.True(t, result.Challenge.IsVoided())
	assert.Nil(t, result.Challenge.DateClockDeadline)
}

func TestChallengeService_ConfirmMatchServesPenaltyGame(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	tempest := f.team(t, memory.TeamIDTempest)
	tempest.Penalties = 1
	tempest.PenaltyGamesRemaining = 2
	require.NoError(t, f.store.Teams().Update(ctx, tempest))

	item := f.open(t, memory.TeamIDTempest, memory.TeamIDJuggernaut)
	assert.True(t, item.ChallengingTeamPenalized)
	assert.Equal(t, memory.TeamIDJuggernaut, item.HomeServerTeamID)

	f.schedule(t, item)
	f.advance(49 * time.Hour)
	_, err := f.challenges.ReportMatch(ctx, item.ID, memory.TeamIDJuggernaut, 50, 70)
	require.NoError(t, err)
	_, err = f.challenges.ConfirmMatch(ctx, item.ID, memory.TeamIDTempest)
	require.NoError(t, err)

	assert.Equal(t, 1, f.team(t, memory.TeamIDTempest).PenaltyGamesRemaining)
	assert.Equal(t, 0, f.team(t, memory.TeamIDJuggernaut).PenaltyGamesRemaining)
}

func TestChallengeService_NotifyFailureAfterWriteIsCritical(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)
	f.schedule(t, item)
	f.advance(49 * time.Hour)

	f.notifier.fail(errors.New("discord unavailable"))
	reported, err := f.challenges.ReportMatch(ctx, item.ID, memory.TeamIDTempest, 0, 5)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrCritical))
	assert.True(t, reported.IsReported())

	stored, err := f.challenges.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsReported(), "the write lands even when the message does not")
}

func TestChallengeService_ConfirmMatchWithRatingFailure(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	ratingRepo := ratingmock.NewRepository(t)
	ratingRepo.
		On("ListSeasonMatches", mock.Anything, f.rules.CurrentSeason).
		Return(nil, errors.New("connection reset")).
		Once()
	f.challenges.ratings = NewRatingService(ratingRepo, f.rules, logging.NewNop())

	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)
	f.schedule(t, item)
	f.advance(49 * time.Hour)
	_, err := f.challenges.ReportMatch(ctx, item.ID, memory.TeamIDTempest, 3, 7)
	require.NoError(t, err)

	confirmed, err := f.challenges.ConfirmMatch(ctx, item.ID, memory.TeamIDJuggernaut)
	require.Error(t, err)
	assert.True(t, crerr.Is(err, ErrRatingsOutdated))
	assert.False(t, crerr.Is(err, ErrCritical))
	assert.True(t, confirmed.IsConfirmed())

	stored, err := f.challenges.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsConfirmed())
}

func TestChallengeService_ConfirmMatchReportsBothNotifyAndRatingFailures(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()

	ratingRepo := ratingmock.NewRepository(t)
	ratingRepo.
		On("ListSeasonMatches", mock.Anything, f.rules.CurrentSeason).
		Return(nil, errors.New("connection reset")).
		Once()
	f.challenges.ratings = NewRatingService(ratingRepo, f.rules, logging.NewNop())

	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)
	f.schedule(t, item)
	f.advance(49 * time.Hour)
	_, err := f.challenges.ReportMatch(ctx, item.ID, memory.TeamIDTempest, 3, 7)
	require.NoError(t, err)

	f.notifier.fail(errors.New("discord unavailable"))
	confirmed, err := f.challenges.ConfirmMatch(ctx, item.ID, memory.TeamIDJuggernaut)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrCritical))
	assert.True(t, IsKind(err, ErrRatingsOutdated))
	assert.True(t, confirmed.IsConfirmed())
}

func TestChallengeService_RematchSwapsRoles(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)
	f.schedule(t, item)
	f.advance(49 * time.Hour)
	_, err := f.challenges.ReportMatch(ctx, item.ID, memory.TeamIDJuggernaut, 10, 10)
	require.NoError(t, err)
	_, err = f.challenges.ConfirmMatch(ctx, item.ID, memory.TeamIDTempest)
	require.NoError(t, err)

	_, err = f.challenges.RequestRematch(ctx, item.ID, memory.TeamIDTempest)
	require.NoError(t, err)
	_, err = f.challenges.ConfirmRematch(ctx, item.ID, memory.TeamIDTempest)
	assert.True(t, IsKind(err, ErrInvalidInput))

	next, err := f.challenges.ConfirmRematch(ctx, item.ID, memory.TeamIDJuggernaut)
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, next.ID)
	assert.Equal(t, memory.TeamIDTempest, next.ChallengingTeamID)
	assert.Equal(t, memory.TeamIDJuggernaut, next.ChallengedTeamID)
	assert.Equal(t, team.GameTypeTA, next.GameType.Value)
	assert.Equal(t, 3, next.TeamSize.Value)

	latest, exists, err := f.challenges.GetByChannel(ctx, item.ChannelID)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, next.ID, latest.ID)
}

func TestChallengeService_CasterCannotPlay(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)

	_, err := f.challenges.SetCaster(ctx, item.ID, jgnPilot)
	assert.True(t, IsKind(err, ErrInvalidInput))

	cast, err := f.challenges.SetCaster(ctx, item.ID, vgdFounder)
	require.NoError(t, err)
	assert.Equal(t, vgdFounder, cast.CasterID)

	_, err = f.challenges.SetCaster(ctx, item.ID, "200000000000000001")
	assert.True(t, IsKind(err, ErrInvalidInput))
}

func TestChallengeService_NotifyMatchStartingAndMissed(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.schedule(t, f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest))

	require.NoError(t, f.challenges.NotifyMatchStarting(ctx, item.ID))
	assert.Zero(t, f.notifier.count("Match starting soon"))

	f.now = item.MatchTime.Value.Add(-10 * time.Minute)
	require.NoError(t, f.challenges.NotifyMatchStarting(ctx, item.ID))
	require.NoError(t, f.challenges.NotifyMatchStarting(ctx, item.ID))
	assert.Equal(t, 1, f.notifier.count("Match starting soon"))

	f.now = item.MatchTime.Value.Add(2 * time.Hour)
	require.NoError(t, f.challenges.NotifyMatchMissed(ctx, item.ID))
	require.NoError(t, f.challenges.NotifyMatchMissed(ctx, item.ID))
	assert.Equal(t, 1, f.notifier.count("Match not reported"))
}

func TestChallengeService_RestrictSnapshotsRosters(t *testing.T) {
	t.Parallel()

	f := newLeagueFixture(t)
	ctx := t.Context()
	item := f.open(t, memory.TeamIDJuggernaut, memory.TeamIDTempest)

	restricted, err := f.challenges.Restrict(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, restricted.Restricted)
	assert.True(t, restricted.IsAuthorized(memory.TeamIDJuggernaut, jgnPilot))
	assert.True(t, restricted.IsAuthorized(memory.TeamIDTempest, tmpFounder))
	assert.False(t, restricted.IsAuthorized(memory.TeamIDTempest, jgnPilot))
	assert.Equal(t, 1, f.notifier.count("Challenge restricted"))

	_, err = f.challenges.AuthorizePilot(ctx, item.ID, memory.TeamIDTempest, jgnPilot)
	assert.True(t, IsKind(err, ErrInvalidInput), "a pilot cannot be authorized for both sides")

	updated, err := f.challenges.AuthorizePilot(ctx, item.ID, memory.TeamIDTempest, vgdFounder)
	require.NoError(t, err)
	assert.True(t, updated.IsAuthorized(memory.TeamIDTempest, vgdFounder))

	updated, err = f.challenges.RevokePilot(ctx, item.ID, memory.TeamIDTempest, vgdFounder)
	require.NoError(t, err)
	assert.False(t, updated.IsAuthorized(memory.TeamIDTempest, vgdFounder))

	stored, err := f.challenges.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.AuthorizedPilotIDs, stored.AuthorizedPilotIDs)

	cleared, err := f.challenges.Unrestrict(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, cleared.Restricted)
	assert.Empty(t, cleared.AuthorizedPilotIDs)
}
