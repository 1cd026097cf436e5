package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ChannelCreator is the part of *discordgo.Session used to open challenge
// channels.
type ChannelCreator interface {
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// ChallengeChannels opens one text channel per challenge under a category.
type ChallengeChannels struct {
	creator    ChannelCreator
	guildID    string
	categoryID string
}

func NewChallengeChannels(creator ChannelCreator, guildID, categoryID string) *ChallengeChannels {
	return &ChallengeChannels{creator: creator, guildID: guildID, categoryID: categoryID}
}

func (c *ChallengeChannels) CreateChallengeChannel(ctx context.Context, challengingTag, challengedTag string) (string, error) {
	if c.guildID == "" {
		return "", fmt.Errorf("discord guild id is not configured")
	}

	ch, err := c.creator.GuildChannelCreateComplex(c.guildID, discordgo.GuildChannelCreateData{
		Name:     ChallengeChannelName(challengingTag, challengedTag),
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: c.categoryID,
		Topic:    fmt.Sprintf("%s challenges %s", challengingTag, challengedTag),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("create challenge channel %s vs %s: %w", challengingTag, challengedTag, err)
	}
	return ch.ID, nil
}

// ChallengeChannelName builds a Discord-safe channel name such as "jgn-vs-tmp".
func ChallengeChannelName(challengingTag, challengedTag string) string {
	return slug(challengingTag) + "-vs-" + slug(challengedTag)
}

func slug(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(tag)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "team"
	}
	return b.String()
}
