package discord

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/riskibarqy/overload-teams-league/internal/platform/resilience"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu       sync.Mutex
	embeds   map[string][]*discordgo.MessageEmbed
	err      error
	calls    int
	channels []discordgo.GuildChannelCreateData
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.embeds == nil {
		f.embeds = make(map[string][]*discordgo.MessageEmbed)
	}
	f.embeds[channelID] = append(f.embeds[channelID], embed)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeSession) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.channels = append(f.channels, data)
	return &discordgo.Channel{ID: "chan-" + data.Name, GuildID: guildID}, nil
}

func TestNotifier_SendsEmbed(t *testing.T) {
	t.Parallel()

	session := &fakeSession{}
	notifier := NewNotifier(session, resilience.BreakerConfig{}, logging.NewNop())

	err := notifier.Send(t.Context(), "123", usecase.Message{Title: "Clock deadline passed", Color: usecase.ColorDanger})
	require.NoError(t, err)
	require.Len(t, session.embeds["123"], 1)
	assert.Equal(t, "Clock deadline passed", session.embeds["123"][0].Title)

	assert.Error(t, notifier.Send(t.Context(), "", usecase.Message{Title: "x"}))
}

func TestNotifier_BreakerStopsCallsDuringOutage(t *testing.T) {
	t.Parallel()

	session := &fakeSession{err: errors.New("HTTP 503 Service Unavailable")}
	notifier := NewNotifier(session, resilience.BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour}, logging.NewNop())

	ctx := context.Background()
	for range 5 {
		assert.Error(t, notifier.Send(ctx, "123", usecase.Message{Title: "Match starting soon"}))
	}

	assert.Equal(t, 2, session.calls)
	err := notifier.Send(ctx, "123", usecase.Message{Title: "Match starting soon"})
	assert.ErrorIs(t, err, resilience.ErrOpen)
}

func TestChallengeChannels_Create(t *testing.T) {
	t.Parallel()

	session := &fakeSession{}
	channels := NewChallengeChannels(session, "guild-1", "category-9")

	id, err := channels.CreateChallengeChannel(t.Context(), "JGN", "TMP")
	require.NoError(t, err)
	assert.Equal(t, "chan-jgn-vs-tmp", id)
	require.Len(t, session.channels, 1)
	assert.Equal(t, "category-9", session.channels[0].ParentID)
	assert.Equal(t, discordgo.ChannelTypeGuildText, session.channels[0].Type)

	_, err = NewChallengeChannels(session, "", "").CreateChallengeChannel(t.Context(), "JGN", "TMP")
	assert.Error(t, err)
}
