package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	qb "github.com/riskibarqy/overload-teams-league/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	return r.getOne(ctx, "by id", qb.Eq("public_id", teamID))
}

func (r *TeamRepository) GetByTag(ctx context.Context, tag string) (team.Team, bool, error) {
	return r.getOne(ctx, "by tag", qb.EqFold("tag", tag))
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (team.Team, bool, error) {
	return r.getOne(ctx, "by name", qb.EqFold("name", name))
}

func (r *TeamRepository) GetByPilot(ctx context.Context, pilotID string) (team.Team, bool, error) {
	return r.getOne(ctx, "by pilot",
		qb.Contains("pilot_ids", pilotID),
		qb.Eq("disbanded", false),
	)
}

func (r *TeamRepository) getOne(ctx context.Context, label string, conds ...qb.Condition) (team.Team, bool, error) {
	query, args, err := qb.Select(teamColumns...).From(teamTable).
		Where(conds...).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team %s query: %w", label, err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team %s: %w", label, err)
	}

	out, err := row.toDomain()
	if err != nil {
		return team.Team{}, false, err
	}
	return out, true, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select(teamColumns...).From(teamTable).
		OrderBy("name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *TeamRepository) Create(ctx context.Context, item team.Team) error {
	item.Version = 0
	model, err := teamToModel(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel(teamTable, model, "")
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("team id=%s tag=%s already exists: %w", item.ID, item.Tag, err)
		}
		return fmt.Errorf("insert team id=%s: %w", item.ID, err)
	}
	return nil
}

func (r *TeamRepository) Update(ctx context.Context, item team.Team) error {
	return updateTeam(ctx, r.db, item)
}

// updateTeam writes item when the stored version still equals item.Version.
func updateTeam(ctx context.Context, exec sqlx.ExecerContext, item team.Team) error {
	model, err := teamToModel(item)
	if err != nil {
		return err
	}

	builder, err := qb.UpdateModel(teamTable, model,
		[]string{"public_id", "version", "created_at"},
		qb.Eq("public_id", item.ID),
		qb.Eq("version", item.Version),
	)
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}
	query, args, err := builder.SetExpr("version", "version + 1").ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}

	affected, err := execAffected(ctx, exec, query, args...)
	if err != nil {
		return fmt.Errorf("update team id=%s: %w", item.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: team id=%s version=%d", team.ErrVersionConflict, item.ID, item.Version)
	}
	return nil
}

func (r *TeamRepository) IsLeadershipBanned(ctx context.Context, pilotID string) (bool, error) {
	var banned bool
	if err := r.db.GetContext(ctx, &banned,
		`SELECT EXISTS (SELECT 1 FROM leadership_bans WHERE pilot_id = $1)`, pilotID,
	); err != nil {
		return false, fmt.Errorf("check leadership ban pilot=%s: %w", pilotID, err)
	}
	return banned, nil
}

// AddLeadershipBans keeps the first ban recorded for a pilot.
func (r *TeamRepository) AddLeadershipBans(ctx context.Context, bans []team.LeadershipBan) error {
	if len(bans) == 0 {
		return nil
	}

	insert := qb.InsertInto("leadership_bans").
		Columns("pilot_id", "team_public_id", "reason", "created_at").
		Suffix("ON CONFLICT (pilot_id) DO NOTHING")
	seen := make(map[string]struct{}, len(bans))
	for _, ban := range bans {
		if _, dup := seen[ban.PilotID]; dup {
			continue
		}
		seen[ban.PilotID] = struct{}{}
		row := leadershipBanTableModel{
			PilotID:   ban.PilotID,
			TeamID:    ban.TeamID,
			Reason:    ban.Reason,
			CreatedAt: ban.CreatedAt.UTC(),
		}
		insert.Values(row.PilotID, row.TeamID, row.Reason, row.CreatedAt)
	}

	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert leadership bans query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert leadership bans: %w", err)
	}
	return nil
}
