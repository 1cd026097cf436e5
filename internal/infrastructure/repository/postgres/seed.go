package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	qb "github.com/riskibarqy/overload-teams-league/internal/platform/querybuilder"
)

// BootstrapSeed inserts teams into an empty league. It is a no-op once any
// team exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, teams []team.Team) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM teams`); err != nil {
		return fmt.Errorf("count teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, t := range teams {
		t.Version = 0
		model, err := teamToModel(t)
		if err != nil {
			return err
		}
		query, args, err := qb.InsertModel(teamTable, model, "ON CONFLICT (public_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build seed team %s query: %w", t.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
