package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/riskibarqy/overload-teams-league/internal/app"
	"github.com/riskibarqy/overload-teams-league/internal/config"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/discord"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/riskibarqy/overload-teams-league/internal/platform/resilience"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

// deps is built once per invocation and handed to every command.
type deps struct {
	ctx      context.Context
	cfg      config.Config
	logger   *logging.Logger
	storage  *app.Storage
	services app.Services
}

var cli struct {
	Ratings ratingsCmd `cmd:"" help:"Inspect or rebuild season ratings."`
	Teams   teamsCmd   `cmd:"" help:"List registered teams."`
	Notify  notifyCmd  `cmd:"" help:"Run scheduled notifications."`
	Seed    seedCmd    `cmd:"" help:"Insert the starter teams into an empty Postgres league."`
}

type ratingsCmd struct {
	Show      ratingsShowCmd      `cmd:"" default:"withargs" help:"Print the standings of a season."`
	Recompute ratingsRecomputeCmd `cmd:"" help:"Replay every confirmed match of a season and store the result."`
}

type ratingsShowCmd struct {
	Season int `arg:"" optional:"" help:"Season number. Defaults to LEAGUE_CURRENT_SEASON."`
}

func (c *ratingsShowCmd) Run(rt *deps) error {
	season := seasonOrCurrent(c.Season, rt.cfg)
	items, err := rt.services.Ratings.SeasonRatings(rt.ctx, season)
	if err != nil {
		return err
	}
	teams, err := rt.services.Teams.List(rt.ctx)
	if err != nil {
		return err
	}
	renderRatings(os.Stdout, season, items, teamsByID(teams))
	return nil
}

type ratingsRecomputeCmd struct {
	Season int `arg:"" optional:"" help:"Season number. Defaults to LEAGUE_CURRENT_SEASON."`
}

func (c *ratingsRecomputeCmd) Run(rt *deps) error {
	season := seasonOrCurrent(c.Season, rt.cfg)
	items, err := rt.services.Ratings.RecalculateSeason(rt.ctx, season)
	if err != nil {
		return err
	}
	teams, err := rt.services.Teams.List(rt.ctx)
	if err != nil {
		return err
	}
	rt.logger.Info("season ratings recomputed", "season", season, "teams", len(items))
	renderRatings(os.Stdout, season, items, teamsByID(teams))
	return nil
}

type teamsCmd struct {
	All bool `help:"Include disbanded teams."`
}

func (c *teamsCmd) Run(rt *deps) error {
	teams, err := rt.services.Teams.List(rt.ctx)
	if err != nil {
		return err
	}
	renderTeams(os.Stdout, teams, c.All)
	return nil
}

type notifyCmd struct {
	Once notifyOnceCmd `cmd:"" default:"1" help:"Run a single scheduler tick and exit."`
}

type notifyOnceCmd struct{}

func (c *notifyOnceCmd) Run(rt *deps) error {
	scheduler, err := usecase.NewNotificationScheduler(rt.storage.Challenges, rt.services.Challenges, app.SchedulerConfig(rt.cfg), rt.logger)
	if err != nil {
		return err
	}
	defer scheduler.Close()

	renderNotifyReport(os.Stdout, scheduler.Notify(rt.ctx))
	return nil
}

type seedCmd struct{}

func (c *seedCmd) Run(rt *deps) error {
	if rt.storage.DB == nil {
		return fmt.Errorf("seed needs STORAGE_DRIVER=%s", config.StoragePostgres)
	}
	if err := postgres.BootstrapSeed(rt.ctx, rt.storage.DB, memory.SeedTeams()); err != nil {
		return err
	}
	rt.logger.Info("bootstrap seed finished")
	return nil
}

func seasonOrCurrent(season int, cfg config.Config) int {
	if season > 0 {
		return season
	}
	return cfg.Rules.CurrentSeason
}

func teamsByID(teams []team.Team) map[string]team.Team {
	out := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		out[item.ID] = item
	}
	return out
}

func newDeps(ctx context.Context, cfg config.Config, logger *logging.Logger) (*deps, error) {
	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var notifier usecase.Notifier = usecase.NewLogNotifier(logger)
	if cfg.DiscordEnabled {
		// REST calls work without opening the gateway.
		session, err := discord.NewSession(cfg.DiscordToken)
		if err != nil {
			_ = storage.Close()
			return nil, err
		}
		notifier = discord.NewNotifier(session, resilience.DefaultBreakerConfig(), logger)
	}

	return &deps{
		ctx:      ctx,
		cfg:      cfg,
		logger:   logger,
		storage:  storage,
		services: app.NewServices(cfg, storage, notifier, logger),
	}, nil
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx := kong.Parse(&cli,
		kong.Name("otlctl"),
		kong.Description("Operate the Overload Teams League from a shell."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	kctx.FatalIfErrorf(err)

	logger := logging.NewConsole(cfg.LogLevel).Named("otlctl")
	defer func() { _ = logger.Sync() }()

	rt, err := newDeps(context.Background(), cfg, logger)
	kctx.FatalIfErrorf(err)
	defer func() { _ = rt.storage.Close() }()

	err = kctx.Run(rt)
	if err != nil {
		logger.Error("command failed", "command", kctx.Command(), "error", err)
	}
	kctx.FatalIfErrorf(err)
}
