package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overload-teams-league/internal/domain/challenge"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	qb "github.com/riskibarqy/overload-teams-league/internal/platform/querybuilder"
)

type ChallengeRepository struct {
	db *sqlx.DB
}

func NewChallengeRepository(db *sqlx.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func openChallenge() qb.Condition {
	return qb.And(
		qb.IsNull("date_confirmed"),
		qb.IsNull("date_voided"),
		qb.IsNull("date_closed"),
	)
}

func involves(teamID string) qb.Condition {
	return qb.Or(
		qb.Eq("challenging_team_id", teamID),
		qb.Eq("challenged_team_id", teamID),
	)
}

func (r *ChallengeRepository) Create(ctx context.Context, item challenge.Challenge) error {
	item.Version = 0
	model, err := challengeToModel(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel(challengeTable, model, "")
	if err != nil {
		return fmt.Errorf("build insert challenge query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert challenge id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *ChallengeRepository) GetByID(ctx context.Context, challengeID string) (challenge.Challenge, bool, error) {
	query, args, err := qb.Select(challengeColumns...).From(challengeTable).
		Where(qb.Eq("public_id", challengeID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, fmt.Errorf("build select challenge by id query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

// GetByChannel returns the newest challenge bound to the channel, since a
// rematch reuses its parent's channel.
func (r *ChallengeRepository) GetByChannel(ctx context.Context, channelID string) (challenge.Challenge, bool, error) {
	query, args, err := qb.Select(challengeColumns...).From(challengeTable).
		Where(qb.Eq("channel_id", channelID)).
		OrderBy("date_added DESC", "public_id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, fmt.Errorf("build select challenge by channel query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *ChallengeRepository) getOne(ctx context.Context, query string, args []any) (challenge.Challenge, bool, error) {
	var row challengeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Challenge{}, false, nil
		}
		return challenge.Challenge{}, false, fmt.Errorf("select challenge: %w", err)
	}

	out, err := row.toDomain()
	if err != nil {
		return challenge.Challenge{}, false, err
	}
	return out, true, nil
}

func (r *ChallengeRepository) Update(ctx context.Context, item challenge.Challenge) error {
	return updateChallenge(ctx, r.db, item)
}

func (r *ChallengeRepository) UpdateWithTeams(ctx context.Context, item challenge.Challenge, teams []team.Team) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update challenge with teams tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := updateChallenge(ctx, tx, item); err != nil {
		return err
	}
	for _, t := range teams {
		if err := updateTeam(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update challenge with teams tx: %w", err)
	}
	return nil
}

func updateChallenge(ctx context.Context, exec sqlx.ExecerContext, item challenge.Challenge) error {
	model, err := challengeToModel(item)
	if err != nil {
		return err
	}

	builder, err := qb.UpdateModel(challengeTable, model,
		[]string{"public_id", "version", "date_added"},
		qb.Eq("public_id", item.ID),
		qb.Eq("version", item.Version),
	)
	if err != nil {
		return fmt.Errorf("build update challenge query: %w", err)
	}
	query, args, err := builder.SetExpr("version", "version + 1").ToSQL()
	if err != nil {
		return fmt.Errorf("build update challenge query: %w", err)
	}

	affected, err := execAffected(ctx, exec, query, args...)
	if err != nil {
		return fmt.Errorf("update challenge id=%s: %w", item.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: challenge id=%s version=%d", challenge.ErrVersionConflict, item.ID, item.Version)
	}
	return nil
}

func (r *ChallengeRepository) MarkNotified(ctx context.Context, challengeID string, flag challenge.NotifiedFlag) (bool, error) {
	column, ok := notifiedColumns[flag]
	if !ok {
		return false, fmt.Errorf("unknown notified flag %q", flag)
	}

	query, args, err := qb.Update(challengeTable).
		Set(column, true).
		SetExpr("version", "version + 1").
		Where(
			qb.Eq("public_id", challengeID),
			qb.Eq(column, false),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark notified query: %w", err)
	}

	affected, err := execAffected(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark %s notified challenge=%s: %w", flag, challengeID, err)
	}
	return affected == 1, nil
}

func (r *ChallengeRepository) ListOpenByTeam(ctx context.Context, teamID string) ([]challenge.Challenge, error) {
	query, args, err := qb.Select(challengeColumns...).From(challengeTable).
		Where(openChallenge(), involves(teamID)).
		OrderBy("date_added", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select open challenges query: %w", err)
	}

	var rows []challengeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select open challenges team=%s: %w", teamID, err)
	}

	out := make([]challenge.Challenge, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *ChallengeRepository) HasOpenBetween(ctx context.Context, teamAID, teamBID string) (bool, error) {
	return r.exists(ctx, "open challenge between teams",
		openChallenge(), involves(teamAID), involves(teamBID),
	)
}

func (r *ChallengeRepository) CountActiveClocks(ctx context.Context, teamID string) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From(challengeTable).
		Where(
			qb.Eq("clock_team_id", teamID),
			openChallenge(),
			qb.IsNull("date_reported"),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count active clocks query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count active clocks team=%s: %w", teamID, err)
	}
	return count, nil
}

func (r *ChallengeRepository) HasClockedOpponentSince(ctx context.Context, teamID, opponentID string, since time.Time) (bool, error) {
	return r.exists(ctx, "clocked opponent since",
		qb.Eq("clock_team_id", teamID),
		involves(opponentID),
		qb.Cmp("date_clocked", ">=", since.UTC()),
	)
}

func (r *ChallengeRepository) HasClockedOpponentInSeason(ctx context.Context, teamID, opponentID string, season int) (bool, error) {
	return r.exists(ctx, "clocked opponent in season",
		qb.Eq("clock_team_id", teamID),
		involves(opponentID),
		qb.Eq("season", season),
		qb.IsNotNull("date_clocked"),
	)
}

func (r *ChallengeRepository) exists(ctx context.Context, label string, conds ...qb.Condition) (bool, error) {
	query, args, err := qb.Select("1").From(challengeTable).Where(conds...).Limit(1).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build %s query: %w", label, err)
	}

	var found bool
	if err := r.db.GetContext(ctx, &found, "SELECT EXISTS ("+query+")", args...); err != nil {
		return false, fmt.Errorf("check %s: %w", label, err)
	}
	return found, nil
}

func (r *ChallengeRepository) ListUnnotifiedExpiredClocks(ctx context.Context, now time.Time) ([]string, error) {
	return r.listIDs(ctx, "expired clocks",
		openChallenge(),
		qb.Eq("clock_deadline_notified", false),
		qb.Cmp("date_clock_deadline", "<=", now.UTC()),
	)
}

func (r *ChallengeRepository) ListUnnotifiedStartingMatches(ctx context.Context, now time.Time, lead time.Duration) ([]string, error) {
	return r.listIDs(ctx, "starting matches",
		openChallenge(),
		qb.IsNull("date_reported"),
		qb.Eq("match_time_notified", false),
		qb.Cmp("match_time", ">", now.UTC()),
		qb.Cmp("match_time", "<=", now.Add(lead).UTC()),
	)
}

func (r *ChallengeRepository) ListUnnotifiedMissedMatches(ctx context.Context, now time.Time, grace time.Duration) ([]string, error) {
	return r.listIDs(ctx, "missed matches",
		openChallenge(),
		qb.IsNull("date_reported"),
		qb.Eq("match_time_passed_notified", false),
		qb.Cmp("match_time", "<=", now.Add(-grace).UTC()),
	)
}

func (r *ChallengeRepository) listIDs(ctx context.Context, label string, conds ...qb.Condition) ([]string, error) {
	query, args, err := qb.Select("public_id").From(challengeTable).
		Where(conds...).
		OrderBy("date_added", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s query: %w", label, err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", label, err)
	}
	return out, nil
}
