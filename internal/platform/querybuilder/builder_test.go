package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("public_id", "name").
		From("teams").
		Where(EqFold("tag", "jgn"), IsNull("disbanded_at")).
		OrderBy("created_at DESC", "id").
		Limit(1).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT public_id, name FROM teams WHERE LOWER(tag) = LOWER($1) AND disbanded_at IS NULL ORDER BY created_at DESC, id LIMIT 1", query)
	assert.Equal(t, []any{"jgn"}, args)
}

func TestSelectBuilder_OrContainsAndLock(t *testing.T) {
	query, args, err := Select("*").
		From("challenges").
		Where(
			Or(Eq("challenging_team_id", "a"), Eq("challenged_team_id", "a")),
			Contains("streamer_ids", "p1"),
			Cmp("match_time", "<=", 10),
			IsNotNull("date_clocked"),
		).
		ForUpdate().
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM challenges WHERE (challenging_team_id = $1 OR challenged_team_id = $2) AND $3 = ANY(streamer_ids) AND match_time <= $4 AND date_clocked IS NOT NULL FOR UPDATE", query)
	assert.Equal(t, []any{"a", "a", "p1", 10}, args)
}

func TestSelectBuilder_EmptyGroups(t *testing.T) {
	query, _, err := Select("id").From("t").Where(Or(), In("id", nil)).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t WHERE 1=0 AND 1=0", query)
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("team_ratings").
		Columns("season", "team_public_id").
		Values(1, "a").
		Values(1, "b").
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO team_ratings (season, team_public_id) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING", query)
	assert.Equal(t, []any{1, "a", 1, "b"}, args)

	_, _, err = InsertInto("t").Columns("a", "b").Values(1).ToSQL()
	assert.Error(t, err)
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("challenges").
		Set("title", "Finals").
		SetExpr("version", "version + ?", 1).
		SetExpr("updated_at", "NOW()").
		Where(Eq("public_id", "c1"), Eq("version", int64(3))).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE challenges SET title = $1, version = version + $2, updated_at = NOW() WHERE public_id = $3 AND version = $4", query)
	assert.Equal(t, []any{"Finals", 1, "c1", int64(3)}, args)
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("team_ratings").Where(Eq("season", 2)).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM team_ratings WHERE season = $1", query)
	assert.Equal(t, []any{2}, args)

	_, _, err = DeleteFrom("team_ratings").ToSQL()
	assert.Error(t, err)
}

func TestModelBuilders(t *testing.T) {
	type row struct {
		ID       string `db:"public_id"`
		Name     string `db:"name"`
		Version  int64  `db:"version"`
		internal string
		Skipped  string `db:"-"`
	}
	item := row{ID: "t1", Name: "Juggernaut", Version: 2, internal: "x", Skipped: "y"}

	query, args, err := InsertModel("teams", item, "RETURNING id")
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO teams (public_id, name, version) VALUES ($1, $2, $3) RETURNING id", query)
	assert.Equal(t, []any{"t1", "Juggernaut", int64(2)}, args)

	b, err := UpdateModel("teams", &item, []string{"public_id", "version"}, Eq("public_id", "t1"))
	require.NoError(t, err)
	query, args, err = b.SetExpr("version", "version + 1").ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE teams SET name = $1, version = version + 1 WHERE public_id = $2", query)
	assert.Equal(t, []any{"Juggernaut", "t1"}, args)

	_, _, err = InsertModel("teams", (*row)(nil), "")
	assert.Error(t, err)
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, "'o''hara'", quoteLiteral("o'hara"))
	query, _, err := Select("id").From("teams").Where(EqLiteral("league", "upper")).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM teams WHERE league = 'upper'", query)
}
