package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	qb "github.com/riskibarqy/overload-teams-league/internal/platform/querybuilder"
)

type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

type seasonMatchRow struct {
	PublicID                   string    `db:"public_id"`
	ChallengingTeamID          string    `db:"challenging_team_id"`
	ChallengedTeamID           string    `db:"challenged_team_id"`
	ChallengingTeamScore       int       `db:"challenging_team_score"`
	ChallengedTeamScore        int       `db:"challenged_team_score"`
	ChallengingTeamUnqualified bool      `db:"challenging_team_unqualified"`
	ChallengedTeamUnqualified  bool      `db:"challenged_team_unqualified"`
	GameType                   string    `db:"game_type"`
	DateConfirmed              time.Time `db:"date_confirmed"`
}

// unqualifiedColumn reads the current qualification of a participant. A
// missing team row counts as qualified.
func unqualifiedColumn(teamColumn, alias string) string {
	return fmt.Sprintf("COALESCE((SELECT NOT t.qualified FROM %s t WHERE t.public_id = %s), FALSE) AS %s", teamTable, teamColumn, alias)
}

type teamRatingTableModel struct {
	Season    int       `db:"season"`
	TeamID    string    `db:"team_public_id"`
	Rating    float64   `db:"rating"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *RatingRepository) ListSeasonMatches(ctx context.Context, season int) ([]rating.SeasonMatch, error) {
	query, args, err := qb.Select(
		"public_id",
		"challenging_team_id",
		"challenged_team_id",
		"challenging_team_score",
		"challenged_team_score",
		unqualifiedColumn("challenging_team_id", "challenging_team_unqualified"),
		unqualifiedColumn("challenged_team_id", "challenged_team_unqualified"),
		"COALESCE(negotiation->'game_type'->>'value', '') AS game_type",
		"date_confirmed",
	).From(challengeTable).
		Where(
			qb.Eq("season", season),
			qb.IsNotNull("date_confirmed"),
			qb.IsNull("date_voided"),
		).
		OrderBy("date_confirmed", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select season matches query: %w", err)
	}

	var rows []seasonMatchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select season matches season=%d: %w", season, err)
	}

	out := make([]rating.SeasonMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, rating.SeasonMatch{
			ChallengeID:          row.PublicID,
			ChallengingTeamID:    row.ChallengingTeamID,
			ChallengedTeamID:     row.ChallengedTeamID,
			ChallengingTeamScore: row.ChallengingTeamScore,
			ChallengedTeamScore:  row.ChallengedTeamScore,
			GameType:             row.GameType,
			DateConfirmed:        row.DateConfirmed,

			ChallengingTeamUnqualified: row.ChallengingTeamUnqualified,
			ChallengedTeamUnqualified:  row.ChallengedTeamUnqualified,
		})
	}
	return out, nil
}

// ReplaceSeasonRatings swaps the whole season table in one transaction.
func (r *RatingRepository) ReplaceSeasonRatings(ctx context.Context, season int, ratings []rating.TeamRating) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace season ratings tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("team_ratings").Where(qb.Eq("season", season)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete season ratings query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete season ratings season=%d: %w", season, err)
	}

	if len(ratings) > 0 {
		insert := qb.InsertInto("team_ratings").Columns("season", "team_public_id", "rating", "updated_at")
		for _, item := range ratings {
			row := teamRatingTableModel{
				Season:    season,
				TeamID:    item.TeamID,
				Rating:    item.Rating,
				UpdatedAt: item.UpdatedAt.UTC(),
			}
			insert.Values(row.Season, row.TeamID, row.Rating, row.UpdatedAt)
		}
		insertQuery, insertArgs, err := insert.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert season ratings query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("insert season ratings season=%d: %w", season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace season ratings tx: %w", err)
	}
	return nil
}

func (r *RatingRepository) ListSeasonRatings(ctx context.Context, season int) ([]rating.TeamRating, error) {
	query, args, err := qb.Select("season", "team_public_id", "rating", "updated_at").From("team_ratings").
		Where(qb.Eq("season", season)).
		OrderBy("rating DESC", "team_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select season ratings query: %w", err)
	}

	var rows []teamRatingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select season ratings season=%d: %w", season, err)
	}

	out := make([]rating.TeamRating, 0, len(rows))
	for _, row := range rows {
		out = append(out, rating.TeamRating{
			Season:    row.Season,
			TeamID:    row.TeamID,
			Rating:    row.Rating,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}
