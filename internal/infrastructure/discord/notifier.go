package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/riskibarqy/overload-teams-league/internal/platform/resilience"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

// MessageSender is the part of *discordgo.Session the notifier needs.
type MessageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts core messages as embeds. A breaker stops hammering Discord
// during an outage so the scheduler's ticks fail fast.
type Notifier struct {
	sender  MessageSender
	breaker *resilience.Breaker
	logger  *logging.Logger
}

func NewNotifier(sender MessageSender, breakerCfg resilience.BreakerConfig, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("discord")

	breaker := resilience.NewBreaker(breakerCfg)
	breaker.OnStateChange(func(from, to resilience.State) {
		logger.Warn("discord circuit breaker state changed", "from", from, "to", to)
	})

	return &Notifier{sender: sender, breaker: breaker, logger: logger}
}

func (n *Notifier) Send(ctx context.Context, destination string, msg usecase.Message) error {
	if destination == "" {
		return fmt.Errorf("discord destination is required")
	}

	embed := Embed(msg)
	err := n.breaker.Do(func() error {
		_, err := n.sender.ChannelMessageSendEmbed(destination, embed, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		n.logger.WarnContext(ctx, "send discord embed failed",
			"channel_id", destination,
			"title", msg.Title,
			"error", err,
		)
		return fmt.Errorf("send discord embed channel=%s: %w", destination, err)
	}

	n.logger.DebugContext(ctx, "discord embed sent", "channel_id", destination, "title", msg.Title)
	return nil
}

var _ usecase.Notifier = (*Notifier)(nil)
