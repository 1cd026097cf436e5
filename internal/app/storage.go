package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/overload-teams-league/internal/config"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	cacherepo "github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/overload-teams-league/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/overload-teams-league/internal/platform/cache"
	"github.com/riskibarqy/overload-teams-league/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const seasonRatingsCacheTTL = 10 * time.Minute

// Storage bundles the repositories for the configured driver. DB is nil for
// the memory driver.
type Storage struct {
	DB         *sqlx.DB
	Teams      team.Repository
	Challenges challenge.Repository
	Ratings    rating.Repository
}

// OpenStorage builds the repositories selected by STORAGE_DRIVER. Season
// ratings are always read through an in-process cache.
func OpenStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Storage, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var storage Storage
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		storage = Storage{
			DB:         db,
			Teams:      postgres.NewTeamRepository(db),
			Challenges: postgres.NewChallengeRepository(db),
			Ratings:    postgres.NewRatingRepository(db),
		}
	default:
		store := memory.NewSeededStore(memory.SeedTeams())
		storage = Storage{
			Teams:      store.Teams(),
			Challenges: store.Challenges(),
			Ratings:    store.Ratings(),
		}
	}
	storage.Ratings = cacherepo.NewRatingRepository(storage.Ratings, basecache.NewStore[[]rating.TeamRating](seasonRatingsCacheTTL))

	logger.Info("storage ready", "driver", cfg.StorageDriver)
	return &storage, nil
}

// OpenDB connects to Postgres with SQL spans enabled.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := NormalizeDBURL(strings.TrimSpace(cfg.DBURL), cfg.DBDisablePreparedBinary)

	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(dsn); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (s *Storage) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
