package discordbot

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

const defaultCommandTimeout = 15 * time.Second

type BotConfig struct {
	GuildID        string
	AdminRoleID    string
	CommandTimeout time.Duration
}

// Bot feeds gateway events from a discordgo session into the dispatcher and
// posts replies through the notifier.
type Bot struct {
	session    *discordgo.Session
	dispatcher *Dispatcher
	replies    usecase.Notifier
	cfg        BotConfig
	logger     *logging.Logger
}

func NewBot(session *discordgo.Session, dispatcher *Dispatcher, replies usecase.Notifier, cfg BotConfig, logger *logging.Logger) *Bot {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = defaultCommandTimeout
	}
	return &Bot{
		session:    session,
		dispatcher: dispatcher,
		replies:    replies,
		cfg:        cfg,
		logger:     logger.Named("discordbot"),
	}
}

// Open registers handlers and connects to the gateway.
func (b *Bot) Open() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberRemove)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord gateway ready", "user", r.User.Username, "guilds", len(r.Guilds))
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !b.inGuild(m.GuildID) {
		return
	}

	ev := Event{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		AuthorID:  m.Author.ID,
		IsAdmin:   b.isAdmin(m.Member),
		Content:   m.Content,
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.CommandTimeout)
	defer cancel()

	reply, ok := b.dispatcher.Handle(ctx, ev)
	if !ok {
		return
	}
	if err := b.replies.Send(ctx, m.ChannelID, reply); err != nil {
		b.logger.WarnContext(ctx, "send command reply failed", "channel_id", m.ChannelID, "error", err)
	}
}

func (b *Bot) onGuildMemberRemove(_ *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil || !b.inGuild(m.GuildID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.CommandTimeout)
	defer cancel()
	_ = b.dispatcher.HandleMemberLeft(ctx, m.User.ID)
}

func (b *Bot) inGuild(guildID string) bool {
	if guildID == "" {
		return false
	}
	return b.cfg.GuildID == "" || b.cfg.GuildID == guildID
}

func (b *Bot) isAdmin(member *discordgo.Member) bool {
	if member == nil || b.cfg.AdminRoleID == "" {
		return false
	}
	return slices.Contains(member.Roles, b.cfg.AdminRoleID)
}
