package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/overload-teams-league/internal/domain/league"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config stores runtime configuration for the bot, scheduler and API.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	LogLevel                logging.Level
	HTTPEnabled             bool
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	CORSAllowedOrigins      []string
	HTTPAdminToken          string
	StorageDriver           string
	DBURL                   string
	DBDisablePreparedBinary bool
	DiscordEnabled          bool
	DiscordToken            string
	DiscordGuildID          string
	DiscordAdminRoleID      string
	ChallengeCategoryID     string
	AnnouncementsChannelID  string
	CommandPrefix           string
	NotifyInterval          time.Duration
	NotifyItemTimeout       time.Duration
	NotifyWorkers           int
	MatchStartingLead       time.Duration
	MatchMissedGrace        time.Duration
	Rules                   league.Rules
	UptraceEnabled          bool
	UptraceDSN              string
	PyroscopeEnabled        bool
	PyroscopeServerAddress  string
	PyroscopeAppName        string
	PyroscopeAuthToken      string
	PyroscopeUploadRate     time.Duration
}

// LoadDotEnv merges a .env file into the process environment when present.
// Variables that are already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	httpEnabled, err := strconv.ParseBool(getEnv("HTTP_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_ENABLED: %w", err)
	}
	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	storageDriver := strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", StorageMemory)))
	if storageDriver != StorageMemory && storageDriver != StoragePostgres {
		return Config{}, fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", storageDriver, StorageMemory, StoragePostgres)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storageDriver == StoragePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	discordEnabled, err := strconv.ParseBool(getEnv("DISCORD_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCORD_ENABLED: %w", err)
	}
	discordToken := strings.TrimSpace(getEnv("DISCORD_TOKEN", ""))
	if discordEnabled && discordToken == "" {
		return Config{}, fmt.Errorf("DISCORD_TOKEN is required when DISCORD_ENABLED=true")
	}
	commandPrefix := strings.TrimSpace(getEnv("DISCORD_COMMAND_PREFIX", "!"))
	if commandPrefix == "" {
		return Config{}, fmt.Errorf("DISCORD_COMMAND_PREFIX cannot be empty")
	}

	notifyInterval, err := parsePositiveDuration("NOTIFY_INTERVAL", "1m")
	if err != nil {
		return Config{}, err
	}
	notifyItemTimeout, err := parsePositiveDuration("NOTIFY_ITEM_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	notifyWorkers, err := getEnvAsInt("NOTIFY_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse NOTIFY_WORKERS: %w", err)
	}
	if notifyWorkers < 1 {
		return Config{}, fmt.Errorf("NOTIFY_WORKERS must be >= 1")
	}
	matchStartingLead, err := parsePositiveDuration("MATCH_STARTING_LEAD", "30m")
	if err != nil {
		return Config{}, err
	}
	matchMissedGrace, err := parsePositiveDuration("MATCH_MISSED_GRACE", "1h")
	if err != nil {
		return Config{}, err
	}

	rules, err := loadRules()
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := parsePositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "otl-bot"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		HTTPEnabled:             httpEnabled,
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		CORSAllowedOrigins:      parseCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		HTTPAdminToken:          strings.TrimSpace(getEnv("HTTP_ADMIN_TOKEN", "")),
		StorageDriver:           storageDriver,
		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		DiscordEnabled:          discordEnabled,
		DiscordToken:            discordToken,
		DiscordGuildID:          strings.TrimSpace(getEnv("DISCORD_GUILD_ID", "")),
		DiscordAdminRoleID:      strings.TrimSpace(getEnv("DISCORD_ADMIN_ROLE_ID", "")),
		ChallengeCategoryID:     strings.TrimSpace(getEnv("DISCORD_CHALLENGE_CATEGORY_ID", "")),
		AnnouncementsChannelID:  strings.TrimSpace(getEnv("DISCORD_ANNOUNCEMENTS_CHANNEL_ID", "")),
		CommandPrefix:           commandPrefix,
		NotifyInterval:          notifyInterval,
		NotifyItemTimeout:       notifyItemTimeout,
		NotifyWorkers:           notifyWorkers,
		MatchStartingLead:       matchStartingLead,
		MatchMissedGrace:        matchMissedGrace,
		Rules:                   rules,
		UptraceEnabled:          uptraceEnabled,
		UptraceDSN:              uptraceDSN,
		PyroscopeEnabled:        pyroscopeEnabled,
		PyroscopeServerAddress:  pyroscopeServerAddress,
		PyroscopeAuthToken:      strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:     pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.HTTPEnabled && strings.TrimSpace(cfg.HTTPAddr) == "" {
		return Config{}, fmt.Errorf("APP_HTTP_ADDR cannot be empty when HTTP_ENABLED=true")
	}

	return cfg, nil
}

func loadRules() (league.Rules, error) {
	rules := league.DefaultRules()

	ints := []struct {
		key string
		dst *int
	}{
		{"LEAGUE_CURRENT_SEASON", &rules.CurrentSeason},
		{"LEAGUE_MAX_ROSTER_SIZE", &rules.MaxRosterSize},
		{"LEAGUE_MAX_CAPTAINS", &rules.MaxCaptains},
		{"LEAGUE_HOME_MAPS_PER_GAME_TYPE", &rules.HomeMapsPerGameType},
		{"LEAGUE_MIN_TEAM_SIZE", &rules.MinTeamSize},
		{"LEAGUE_MAX_TEAM_SIZE", &rules.MaxTeamSize},
		{"LEAGUE_MAX_ACTIVE_CLOCKS", &rules.MaxActiveClocks},
		{"LEAGUE_PENALTY_GAMES", &rules.PenaltyGames},
	}
	for _, item := range ints {
		value, err := getEnvAsInt(item.key, *item.dst)
		if err != nil {
			return league.Rules{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = value
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"LEAGUE_CLOCK_DURATION", &rules.ClockDuration},
		{"LEAGUE_CLOCK_EXTENSION", &rules.ClockExtension},
		{"LEAGUE_CLOCK_COOLDOWN", &rules.ClockCooldown},
	}
	for _, item := range durations {
		raw := strings.TrimSpace(os.Getenv(item.key))
		if raw == "" {
			continue
		}
		value, err := time.ParseDuration(raw)
		if err != nil {
			return league.Rules{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = value
	}

	if raw := strings.TrimSpace(os.Getenv("LEAGUE_RATING_K")); raw != "" {
		k, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return league.Rules{}, fmt.Errorf("parse LEAGUE_RATING_K: %w", err)
		}
		rules.RatingK = k
	}

	if err := validator.New().Struct(rules); err != nil {
		return league.Rules{}, fmt.Errorf("validate league rules: %w", err)
	}

	return rules, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func parseCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
