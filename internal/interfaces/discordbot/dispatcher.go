package discordbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

var botTracer = otel.Tracer("overload-teams-league/internal/interfaces/discordbot")

// simulatePrefix lets an admin run a captain command for a team, e.g.
// "!confirmtime as:JGN".
const simulatePrefix = "as:"

// Event is a guild message reduced to what command handling needs.
type Event struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	IsAdmin   bool
	Content   string
}

// ChannelOpener creates the text channel a new challenge is negotiated in.
type ChannelOpener interface {
	CreateChallengeChannel(ctx context.Context, challengingTag, challengedTag string) (string, error)
}

type Services struct {
	Teams      *usecase.TeamService
	Challenges *usecase.ChallengeService
	Ratings    *usecase.RatingService
}

type Config struct {
	Prefix        string
	CurrentSeason int
}

// Dispatcher parses commands, resolves who is acting and in which challenge,
// and calls the league services. Challenge services post their own channel
// messages, so most challenge commands reply only on failure.
type Dispatcher struct {
	teams      *usecase.TeamService
	challenges *usecase.ChallengeService
	ratings    *usecase.RatingService
	channels   ChannelOpener
	cfg        Config
	registry   *Registry
	binder     *binder
	logger     *logging.Logger
}

// NewDispatcher registers every command. channels may be nil, in which case
// challenges are bound to the channel they were issued in.
func NewDispatcher(svc Services, channels ChannelOpener, cfg Config, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "!"
	}

	d := &Dispatcher{
		teams:      svc.Teams,
		challenges: svc.Challenges,
		ratings:    svc.Ratings,
		channels:   channels,
		cfg:        cfg,
		registry:   NewRegistry(),
		binder:     newBinder(),
		logger:     logger,
	}
	d.registerChallengeCommands()
	d.registerAdminChallengeCommands()
	d.registerTeamCommands()
	d.registerInfoCommands()
	return d
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Handle runs one message. ok is false when the message is not a command or
// the command has nothing to say.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) (reply usecase.Message, ok bool) {
	parsed, isCommand, err := parse(d.cfg.Prefix, ev.Content)
	if !isCommand {
		return usecase.Message{}, false
	}
	if err != nil {
		return replyForError(nil, usagef("%v", err)), true
	}

	cmd, found := d.registry.Lookup(parsed.Name)
	if !found {
		return usecase.Message{
			Title: "Unknown command",
			Text:  fmt.Sprintf("There is no %s%s command. Try %shelp.", d.cfg.Prefix, parsed.Name, d.cfg.Prefix),
			Color: usecase.ColorWarning,
		}, true
	}

	ctx, span := botTracer.Start(ctx, "discordbot.Dispatcher."+cmd.Name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("discord.command", cmd.Name),
			attribute.String("discord.channel_id", ev.ChannelID),
			attribute.String("discord.author_id", ev.AuthorID),
			attribute.Bool("discord.admin", ev.IsAdmin),
		),
	)
	defer span.End()

	started := time.Now()
	reply, err = d.run(ctx, cmd, ev, parsed.Args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logFailure(ctx, cmd, ev, err)
		return replyForError(cmd, err), true
	}

	d.logger.InfoContext(ctx, "command handled",
		"command", cmd.Name,
		"author_id", ev.AuthorID,
		"channel_id", ev.ChannelID,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return reply, reply.Title != "" || reply.Text != ""
}

func (d *Dispatcher) run(ctx context.Context, cmd *Command, ev Event, args []string) (usecase.Message, error) {
	if cmd.AdminOnly && !ev.IsAdmin {
		return usecase.Message{}, crerr.Wrapf(usecase.ErrUnauthorized, "only admins can use %s%s", d.cfg.Prefix, cmd.Name)
	}

	inv := &Invocation{Event: ev, Args: args}
	if !cmd.Global {
		item, found, err := d.challenges.GetByChannel(ctx, ev.ChannelID)
		if err != nil {
			return usecase.Message{}, err
		}
		if !found {
			return usecase.Message{}, crerr.Wrapf(usecase.ErrNotFound, "%s%s only works in a challenge channel", d.cfg.Prefix, cmd.Name)
		}
		inv.Challenge = item
	}

	switch {
	case cmd.Simulatable && ev.IsAdmin && len(inv.Args) > 0 && hasSimulatePrefix(inv.Args[0]):
		t, err := d.teams.GetByTag(ctx, inv.Args[0][len(simulatePrefix):])
		if err != nil {
			return usecase.Message{}, err
		}
		inv.Team = t
		inv.Simulated = true
		inv.Args = inv.Args[1:]
	case cmd.NeedsTeam && cmd.FounderOnly:
		t, err := d.teams.RequireFounder(ctx, ev.AuthorID)
		if err != nil {
			return usecase.Message{}, err
		}
		inv.Team = t
	case cmd.NeedsTeam:
		t, err := d.teams.RequireCaptain(ctx, ev.AuthorID)
		if err != nil {
			return usecase.Message{}, err
		}
		inv.Team = t
	}

	return cmd.Run(ctx, inv)
}

func hasSimulatePrefix(arg string) bool {
	return len(arg) > len(simulatePrefix) && strings.EqualFold(arg[:len(simulatePrefix)], simulatePrefix)
}

func (d *Dispatcher) logFailure(ctx context.Context, cmd *Command, ev Event, err error) {
	args := []any{"command", cmd.Name, "author_id", ev.AuthorID, "channel_id", ev.ChannelID, "error", err}
	switch {
	case usecase.IsKind(err, usecase.ErrCritical):
		d.logger.ErrorContext(ctx, "command needs admin attention", args...)
	case usecase.IsKind(err, usecase.ErrRatingsOutdated):
		d.logger.ErrorContext(ctx, "season ratings outdated", args...)
	case usecase.IsKind(err, usecase.ErrConflict):
		d.logger.WarnContext(ctx, "command lost a concurrent update", args...)
	case usecase.IsKind(err, usecase.ErrInvalidInput),
		usecase.IsKind(err, usecase.ErrUnauthorized),
		usecase.IsKind(err, usecase.ErrNotFound):
		d.logger.InfoContext(ctx, "command rejected", args...)
	default:
		var usage *usageError
		if crerr.As(err, &usage) {
			d.logger.DebugContext(ctx, "command usage error", args...)
			return
		}
		d.logger.ErrorContext(ctx, "command failed", args...)
	}
}

// HandleMemberLeft drops a pilot who left the guild from their roster. A
// founder leaving is reported as critical for an admin to resolve.
func (d *Dispatcher) HandleMemberLeft(ctx context.Context, pilotID string) error {
	ctx, span := botTracer.Start(ctx, "discordbot.Dispatcher.memberLeft",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("discord.pilot_id", pilotID)),
	)
	defer span.End()

	t, err := d.teams.PilotLeft(ctx, pilotID)
	switch {
	case err == nil:
		d.logger.InfoContext(ctx, "pilot left server", "pilot_id", pilotID, "team_id", t.ID)
		return nil
	case usecase.IsKind(err, usecase.ErrNotFound):
		return nil
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.ErrorContext(ctx, "handle pilot leaving failed", "pilot_id", pilotID, "team_id", t.ID, "error", err)
		return err
	}
}
