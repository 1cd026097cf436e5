package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

const (
	jgnFounder = "100000000000000001"
	jgnPilot   = "100000000000000002"
	tmpFounder = "100000000000000011"
	tmpPilot   = "100000000000000012"
	vgdFounder = "100000000000000021"

	announcementsChannel = "announcements"
)

type sentMessage struct {
	destination string
	msg         Message
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, destination string, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{destination: destination, msg: msg})
	return nil
}

func (n *recordingNotifier) fail(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func (n *recordingNotifier) count(title string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	total := 0
	for _, item := range n.sent {
		if item.msg.Title == title {
			total++
		}
	}
	return total
}

func (n *recordingNotifier) sentTo(destination, title string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, item := range n.sent {
		if item.destination == destination && item.msg.Title == title {
			return true
		}
	}
	return false
}

type sequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

type leagueFixture struct {
	store      *memory.Store
	rules      league.Rules
	notifier   *recordingNotifier
	teams      *TeamService
	challenges *ChallengeService
	ratings    *RatingService
	now        time.Time
}

func newLeagueFixture(t *testing.T) *leagueFixture {
	t.Helper()

	store := memory.NewSeededStore(memory.SeedTeams())
	rules := league.DefaultRules()
	logger := logging.NewNop()

	f := &leagueFixture{
		store:    store,
		rules:    rules,
		notifier: &recordingNotifier{},
		now:      time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
	f.ratings = NewRatingService(store.Ratings(), rules, logger)
	f.teams = NewTeamService(store.Teams(), store.Challenges(), rules, &sequenceIDGenerator{prefix: "team"}, logger)
	f.challenges = NewChallengeService(
		store.Challenges(),
		store.Teams(),
		f.ratings,
		f.notifier,
		&sequenceIDGenerator{prefix: "challenge"},
		ChallengeConfig{
			Rules:                  rules,
			MatchStartingLead:      30 * time.Minute,
			MatchMissedGrace:       time.Hour,
			AnnouncementsChannelID: announcementsChannel,
		},
		logger,
	)

	clock := func() time.Time { return f.now }
	f.ratings.now = clock
	f.teams.now = clock
	f.challenges.now = clock
	return f
}

func (f *leagueFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *leagueFixture) open(t *testing.T, challengingID, challengedID string) challenge.Challenge {
	t.Helper()

	item, err := f.challenges.Create(t.Context(), CreateChallengeInput{
		ChallengingTeamID: challengingID,
		ChallengedTeamID:  challengedID,
		ChannelID:         "channel-" + challengingID + "-" + challengedID,
	})
	require.NoError(t, err)
	return item
}

// schedule agrees on TA, 3v3, the second home map and a time two days out.
func (f *leagueFixture) schedule(t *testing.T, item challenge.Challenge) challenge.Challenge {
	t.Helper()

	ctx := t.Context()
	challenging, challenged := item.ChallengingTeamID, item.ChallengedTeamID
	picker := challenging
	if item.HomeMapTeamID == challenging {
		picker = challenged
	}

	_, err := f.challenges.SuggestGameType(ctx, item.ID, challenging, team.GameTypeTA)
	require.NoError(t, err)
	_, err = f.challenges.ConfirmGameType(ctx, item.ID, challenged)
	require.NoError(t, err)
	_, err = f.challenges.SuggestTeamSize(ctx, item.ID, challenged, 3)
	require.NoError(t, err)
	_, err = f.challenges.ConfirmTeamSize(ctx, item.ID, challenging)
	require.NoError(t, err)
	_, err = f.challenges.PickMap(ctx, item.ID, picker, 2)
	require.NoError(t, err)
	_, err = f.challenges.SuggestTime(ctx, item.ID, challenging, f.now.Add(48*time.Hour))
	require.NoError(t, err)
	scheduled, err := f.challenges.ConfirmTime(ctx, item.ID, challenged)
	require.NoError(t, err)
	return scheduled
}

func (f *leagueFixture) team(t *testing.T, teamID string) team.Team {
	t.Helper()

	item, err := f.teams.Get(t.Context(), teamID)
	require.NoError(t, err)
	return item
}
