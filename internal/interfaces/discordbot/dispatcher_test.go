package discordbot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/overload-teams-league/internal/platform/id"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jgnFounder = "100000000000000001"
	jgnPilot   = "100000000000000002"
	tmpFounder = "100000000000000011"
	adminID    = "900000000000000001"
	outsider   = "500000000000000001"

	lobbyChannel = "lobby"
)

type recordingNotifier struct {
	mu     sync.Mutex
	titles map[string][]string
}

func (n *recordingNotifier) Send(_ context.Context, destination string, msg usecase.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.titles == nil {
		n.titles = make(map[string][]string)
	}
	n.titles[destination] = append(n.titles[destination], msg.Title)
	return nil
}

func (n *recordingNotifier) sent(destination string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.titles[destination]...)
}

type fakeChannels struct {
	created []string
}

func (f *fakeChannels) CreateChallengeChannel(_ context.Context, challengingTag, challengedTag string) (string, error) {
	id := fmt.Sprintf("challenge-%d", len(f.created)+1)
	f.created = append(f.created, challengingTag+"-vs-"+challengedTag)
	return id, nil
}

type botFixture struct {
	store      *memory.Store
	notifier   *recordingNotifier
	channels   *fakeChannels
	dispatcher *Dispatcher
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()

	store := memory.NewSeededStore(memory.SeedTeams())
	rules := league.DefaultRules()
	logger := logging.NewNop()
	notifier := &recordingNotifier{}
	channels := &fakeChannels{}

	ratings := usecase.NewRatingService(store.Ratings(), rules, logger)
	teams := usecase.NewTeamService(store.Teams(), store.Challenges(), rules, id.NewUUIDGenerator(), logger)
	challenges := usecase.NewChallengeService(store.Challenges(), store.Teams(), ratings, notifier, id.NewUUIDGenerator(),
		usecase.ChallengeConfig{Rules: rules, MatchStartingLead: 30 * time.Minute, MatchMissedGrace: time.Hour},
		logger,
	)

	return &botFixture{
		store:    store,
		notifier: notifier,
		channels: channels,
		dispatcher: NewDispatcher(
			Services{Teams: teams, Challenges: challenges, Ratings: ratings},
			channels,
			Config{Prefix: "!", CurrentSeason: rules.CurrentSeason},
			logger,
		),
	}
}

func (f *botFixture) say(t *testing.T, author, channel, content string) (usecase.Message, bool) {
	t.Helper()
	return f.dispatcher.Handle(t.Context(), Event{ChannelID: channel, AuthorID: author, Content: content})
}

func (f *botFixture) sayAsAdmin(t *testing.T, channel, content string) (usecase.Message, bool) {
	t.Helper()
	return f.dispatcher.Handle(t.Context(), Event{ChannelID: channel, AuthorID: adminID, IsAdmin: true, Content: content})
}

// openChallenge has JGN challenge TMP and returns the new channel.
func (f *botFixture) openChallenge(t *testing.T) string {
	t.Helper()
	reply, ok := f.say(t, jgnFounder, lobbyChannel, "!challenge TMP")
	require.True(t, ok)
	require.Equal(t, "Challenge created", reply.Title, reply.Text)
	return "challenge-1"
}

func TestDispatcher_IgnoresChatter(t *testing.T) {
	f := newBotFixture(t)

	_, ok := f.say(t, jgnFounder, lobbyChannel, "gg")
	assert.False(t, ok)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	f := newBotFixture(t)

	reply, ok := f.say(t, jgnFounder, lobbyChannel, "!warp")
	require.True(t, ok)
	assert.Equal(t, "Unknown command", reply.Title)
}

func TestDispatcher_HelpHidesAdminCommands(t *testing.T) {
	f := newBotFixture(t)

	reply, ok := f.say(t, jgnFounder, lobbyChannel, "!help")
	require.True(t, ok)
	assert.Contains(t, reply.Text, "!challenge <TAG>")
	assert.NotContains(t, reply.Text, "!adjudicate")

	reply, ok = f.sayAsAdmin(t, lobbyChannel, "!help")
	require.True(t, ok)
	assert.Contains(t, reply.Text, "!adjudicate")
}

func TestDispatcher_ChallengeNegotiation(t *testing.T) {
	f := newBotFixture(t)
	channel := f.openChallenge(t)
	assert.Equal(t, []string{"JGN-vs-TMP"}, f.channels.created)
	assert.Contains(t, f.notifier.sent(channel), "New challenge")

	_, ok := f.say(t, jgnFounder, channel, "!gametype ctf")
	assert.False(t, ok, "the service posts its own message")
	assert.Contains(t, f.notifier.sent(channel), "Game type suggested")

	reply, ok := f.say(t, jgnFounder, channel, "!confirmgametype")
	require.True(t, ok)
	assert.Equal(t, "Not allowed right now", reply.Title)

	_, ok = f.say(t, tmpFounder, channel, "!confirmgametype")
	assert.False(t, ok)

	item, found, err := f.store.Challenges().GetByChannel(t.Context(), channel)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, item.GameType.IsSet)
	assert.Equal(t, team.GameTypeCTF, item.GameType.Value)
}

func TestDispatcher_ChallengeCommandOutsideChannel(t *testing.T) {
	f := newBotFixture(t)

	reply, ok := f.say(t, jgnFounder, lobbyChannel, "!gametype TA")
	require.True(t, ok)
	assert.Equal(t, "Not found", reply.Title)
	assert.Contains(t, reply.Text, "challenge channel")
}

func TestDispatcher_RequiresCaptain(t *testing.T) {
	f := newBotFixture(t)
	channel := f.openChallenge(t)

	reply, ok := f.say(t, jgnPilot, channel, "!gametype TA")
	require.True(t, ok)
	assert.Equal(t, "Permission denied", reply.Title)
}

func TestDispatcher_AdminSimulatesTeam(t *testing.T) {
	f := newBotFixture(t)
	channel := f.openChallenge(t)

	_, ok := f.say(t, jgnFounder, channel, "!teamsize 3")
	require.False(t, ok)

	_, ok = f.sayAsAdmin(t, channel, "!confirmteamsize as:tmp")
	assert.False(t, ok)

	item, _, err := f.store.Challenges().GetByChannel(t.Context(), channel)
	require.NoError(t, err)
	assert.True(t, item.TeamSize.IsSet)
	assert.Equal(t, 3, item.TeamSize.Value)
}

func TestDispatcher_AdminOnly(t *testing.T) {
	f := newBotFixture(t)
	channel := f.openChallenge(t)

	reply, ok := f.say(t, jgnFounder, channel, "!lock")
	require.True(t, ok)
	assert.Equal(t, "Permission denied", reply.Title)

	_, ok = f.sayAsAdmin(t, channel, "!lock")
	assert.False(t, ok)
	assert.Contains(t, f.notifier.sent(channel), "Challenge locked")
}

func TestDispatcher_UsageErrors(t *testing.T) {
	f := newBotFixture(t)
	channel := f.openChallenge(t)

	reply, ok := f.say(t, jgnFounder, channel, "!teamsize four")
	require.True(t, ok)
	assert.Equal(t, "Invalid command", reply.Title)
	assert.Contains(t, reply.Text, "Usage: `!teamsize <pilots>`")
}

func TestDispatcher_TeamCommands(t *testing.T) {
	f := newBotFixture(t)

	reply, ok := f.say(t, outsider, lobbyChannel, "!createteam NOVA Nova Wing")
	require.True(t, ok)
	assert.Equal(t, "Done", reply.Title, reply.Text)

	created, exists, err := f.store.Teams().GetByTag(t.Context(), "NOVA")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, outsider, created.FounderID)

	reply, ok = f.say(t, jgnPilot, lobbyChannel, "!makefounder <@"+jgnPilot+">")
	require.True(t, ok)
	assert.Equal(t, "Permission denied", reply.Title, "only founders hand over a team")

	reply, ok = f.say(t, jgnFounder, lobbyChannel, "!addcaptain <@"+jgnPilot+">")
	require.True(t, ok)
	assert.Equal(t, "Done", reply.Title, reply.Text)

	reply, ok = f.say(t, outsider, lobbyChannel, "!team JGN")
	require.True(t, ok)
	assert.Equal(t, "Juggernaut (JGN)", reply.Title)
}

func TestDispatcher_RatingsWithoutMatches(t *testing.T) {
	f := newBotFixture(t)

	reply, ok := f.say(t, outsider, lobbyChannel, "!ratings")
	require.True(t, ok)
	assert.Equal(t, "Season 1 ratings", reply.Title)
	assert.Equal(t, "No confirmed matches yet.", reply.Text)
}

func TestDispatcher_MemberLeft(t *testing.T) {
	f := newBotFixture(t)

	require.NoError(t, f.dispatcher.HandleMemberLeft(t.Context(), jgnPilot))
	item, exists, err := f.store.Teams().GetByID(t.Context(), memory.TeamIDJuggernaut)
	require.NoError(t, err)
	require.True(t, exists)
	assert.False(t, item.HasPilot(jgnPilot))

	assert.NoError(t, f.dispatcher.HandleMemberLeft(t.Context(), outsider), "pilots without a team are ignored")

	err = f.dispatcher.HandleMemberLeft(t.Context(), jgnFounder)
	assert.True(t, usecase.IsKind(err, usecase.ErrCritical))
}

func TestDispatcher_RestrictAndAuthorize(t *testing.T) {
	f := newBotFixture(t)
	channel := f.openChallenge(t)

	_, ok := f.sayAsAdmin(t, channel, "!restrict")
	require.False(t, ok)
	assert.Contains(t, f.notifier.sent(channel), "Challenge restricted")

	_, ok = f.sayAsAdmin(t, channel, "!authorize TMP <@"+outsider+">")
	require.False(t, ok)

	reply, ok := f.sayAsAdmin(t, channel, "!authorize TMP not-a-user")
	require.True(t, ok)
	assert.Equal(t, "Invalid command", reply.Title)

	item, _, err := f.store.Challenges().GetByChannel(t.Context(), channel)
	require.NoError(t, err)
	assert.True(t, item.IsAuthorized(memory.TeamIDTempest, outsider))
	assert.True(t, item.IsAuthorized(memory.TeamIDJuggernaut, jgnPilot))

	_, ok = f.sayAsAdmin(t, channel, "!deauthorize TMP <@!"+outsider+">")
	require.False(t, ok)
	item, _, err = f.store.Challenges().GetByChannel(t.Context(), channel)
	require.NoError(t, err)
	assert.False(t, item.IsAuthorized(memory.TeamIDTempest, outsider))
}
