package discord

import (
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

// Discord rejects embeds over these limits.
const (
	maxTitleLen       = 256
	maxDescriptionLen = 4096
	maxFieldNameLen   = 256
	maxFieldValueLen  = 1024
	maxFields         = 25
	maxContentLen     = 2000
)

// zeroWidthSpace stands in for empty field parts, which Discord rejects.
const zeroWidthSpace = "\u200b"

// Embed converts a core message into a Discord embed, clipping every part to
// the API limits.
func Embed(msg usecase.Message) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       truncate(msg.Title, maxTitleLen),
		Description: truncate(msg.Text, maxDescriptionLen),
		Color:       msg.Color,
	}

	for i, field := range msg.Fields {
		if i == maxFields {
			break
		}
		name := strings.TrimSpace(field.Name)
		if name == "" {
			name = zeroWidthSpace
		}
		value := strings.TrimSpace(field.Value)
		if value == "" {
			value = zeroWidthSpace
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   truncate(name, maxFieldNameLen),
			Value:  truncate(value, maxFieldValueLen),
			Inline: field.Inline,
		})
	}
	return embed
}

// PlainText renders msg as markdown for plain channel messages.
func PlainText(msg usecase.Message) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if msg.Title != "" {
		_, _ = buf.WriteString("**")
		_, _ = buf.WriteString(msg.Title)
		_, _ = buf.WriteString("**\n")
	}
	if msg.Text != "" {
		_, _ = buf.WriteString(msg.Text)
		_ = buf.WriteByte('\n')
	}
	for _, field := range msg.Fields {
		_, _ = buf.WriteString("> **")
		_, _ = buf.WriteString(field.Name)
		_, _ = buf.WriteString("**: ")
		_, _ = buf.WriteString(field.Value)
		_ = buf.WriteByte('\n')
	}

	return truncate(strings.TrimRight(buf.String(), "\n"), maxContentLen)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
