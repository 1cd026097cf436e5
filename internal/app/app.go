package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/riskibarqy/overload-teams-league/internal/config"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/discord"
	"github.com/riskibarqy/overload-teams-league/internal/interfaces/discordbot"
	"github.com/riskibarqy/overload-teams-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/overload-teams-league/internal/observability"
	idgen "github.com/riskibarqy/overload-teams-league/internal/platform/id"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/riskibarqy/overload-teams-league/internal/platform/resilience"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
	"github.com/sourcegraph/conc"
)

const shutdownTimeout = 10 * time.Second

// Services is the league core shared by the bot, the API and the CLI.
type Services struct {
	Teams      *usecase.TeamService
	Challenges *usecase.ChallengeService
	Ratings    *usecase.RatingService
}

// NewServices builds the league services on top of storage. notifier may be
// nil, in which case messages are only logged.
func NewServices(cfg config.Config, storage *Storage, notifier usecase.Notifier, logger *logging.Logger) Services {
	if notifier == nil {
		notifier = usecase.NewLogNotifier(logger)
	}
	ids := idgen.NewUUIDGenerator()

	ratings := usecase.NewRatingService(storage.Ratings, cfg.Rules, logger)
	return Services{
		Teams: usecase.NewTeamService(storage.Teams, storage.Challenges, cfg.Rules, ids, logger),
		Challenges: usecase.NewChallengeService(
			storage.Challenges,
			storage.Teams,
			ratings,
			notifier,
			ids,
			usecase.ChallengeConfig{
				Rules:                  cfg.Rules,
				MatchStartingLead:      cfg.MatchStartingLead,
				MatchMissedGrace:       cfg.MatchMissedGrace,
				AnnouncementsChannelID: cfg.AnnouncementsChannelID,
			},
			logger,
		),
		Ratings: ratings,
	}
}

// SchedulerConfig maps the NOTIFY_* and MATCH_* settings.
func SchedulerConfig(cfg config.Config) usecase.SchedulerConfig {
	return usecase.SchedulerConfig{
		Interval:          cfg.NotifyInterval,
		ItemTimeout:       cfg.NotifyItemTimeout,
		Workers:           cfg.NotifyWorkers,
		MatchStartingLead: cfg.MatchStartingLead,
		MatchMissedGrace:  cfg.MatchMissedGrace,
	}
}

// App runs the Discord bot, the notification scheduler and the HTTP API in
// one process.
type App struct {
	cfg       config.Config
	logger    *logging.Logger
	storage   *Storage
	services  Services
	scheduler *usecase.NotificationScheduler
	bot       *discordbot.Bot
	server    *http.Server

	stopTracing   func(context.Context) error
	stopProfiling func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	a := &App{
		cfg:         cfg,
		logger:      logger,
		stopTracing: observability.InitUptrace(cfg, logger),
	}
	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		a.logger.Warn("profiling unavailable", "error", err)
		stopProfiling = func() error { return nil }
	}
	a.stopProfiling = stopProfiling

	if err := a.build(ctx); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	storage, err := OpenStorage(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.storage = storage

	var (
		session  *discordgo.Session
		notifier usecase.Notifier
		channels discordbot.ChannelOpener
	)
	if a.cfg.DiscordEnabled {
		session, err = discord.NewSession(a.cfg.DiscordToken)
		if err != nil {
			return err
		}
		notifier = discord.NewNotifier(session, resilience.DefaultBreakerConfig(), a.logger)
		if a.cfg.DiscordGuildID != "" {
			channels = discord.NewChallengeChannels(session, a.cfg.DiscordGuildID, a.cfg.ChallengeCategoryID)
		}
	} else {
		a.logger.Info("discord disabled", "reason", "DISCORD_ENABLED=false")
		notifier = usecase.NewLogNotifier(a.logger)
	}

	a.services = NewServices(a.cfg, storage, notifier, a.logger)

	a.scheduler, err = usecase.NewNotificationScheduler(storage.Challenges, a.services.Challenges, SchedulerConfig(a.cfg), a.logger)
	if err != nil {
		return err
	}

	if session != nil {
		dispatcher := discordbot.NewDispatcher(
			discordbot.Services{
				Teams:      a.services.Teams,
				Challenges: a.services.Challenges,
				Ratings:    a.services.Ratings,
			},
			channels,
			discordbot.Config{Prefix: a.cfg.CommandPrefix, CurrentSeason: a.cfg.Rules.CurrentSeason},
			a.logger,
		)
		a.bot = discordbot.NewBot(session, dispatcher, notifier, discordbot.BotConfig{
			GuildID:     a.cfg.DiscordGuildID,
			AdminRoleID: a.cfg.DiscordAdminRoleID,
		}, a.logger)
	}

	if a.cfg.HTTPEnabled {
		handler := httpapi.NewHandler(a.services.Teams, a.services.Challenges, a.services.Ratings, a.logger)
		a.server = &http.Server{
			Addr: a.cfg.HTTPAddr,
			Handler: httpapi.NewRouter(handler, httpapi.RouterConfig{
				ServiceName:        a.cfg.ServiceName,
				CORSAllowedOrigins: a.cfg.CORSAllowedOrigins,
				AdminToken:         a.cfg.HTTPAdminToken,
			}, a.logger),
			ReadTimeout:  a.cfg.ReadTimeout,
			WriteTimeout: a.cfg.WriteTimeout,
		}
	}
	return nil
}

// Services exposes the league core, mainly for tests and tooling.
func (a *App) Services() Services {
	return a.services
}

// Run blocks until ctx is cancelled or the HTTP listener fails, then stops
// every component.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	var wg conc.WaitGroup
	wg.Go(func() { a.scheduler.Run(ctx) })

	if a.server != nil {
		wg.Go(func() {
			a.logger.Info("http server starting", "addr", a.server.Addr)
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("http server: %w", err)
			}
		})
	}

	var runErr error
	if a.bot != nil {
		if err := a.bot.Open(); err != nil {
			runErr = err
			cancel()
		}
	}

	if runErr == nil {
		select {
		case <-ctx.Done():
		case runErr = <-serveErr:
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if a.server != nil {
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown failed", "error", err)
		}
	}
	if a.bot != nil {
		if err := a.bot.Close(); err != nil {
			a.logger.Warn("discord gateway close failed", "error", err)
		}
	}
	wg.Wait()

	a.logger.Info("league bot stopped")
	return runErr
}

// Close releases storage and flushes telemetry. It is safe after a failed New.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.scheduler != nil {
		a.scheduler.Close()
	}
	if err := a.storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	if a.stopProfiling != nil {
		if err := a.stopProfiling(); err != nil {
			errs = append(errs, fmt.Errorf("stop profiling: %w", err))
		}
	}
	if a.stopTracing != nil {
		if err := a.stopTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
	}
	return errors.Join(errs...)
}
