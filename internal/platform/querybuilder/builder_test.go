package querybuilder

import "testing"

func TestSelectBuilderWithJoins(t *testing.T) {
	query, args, err := Select("e.id", "t.name AS team_name").
		From("score_entries e").
		Join("teams t ON t.id = e.team_id").
		LeftJoin("players p ON p.id = e.player_id").
		Where(Eq("e.team_id", "team-blue"), Lte("r.day", "2025-07-01"), IsNull("e.reversal_of")).
		OrderBy("e.created_at DESC", "e.id DESC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT e.id, t.name AS team_name FROM score_entries e JOIN teams t ON t.id = e.team_id LEFT JOIN players p ON p.id = e.player_id WHERE e.team_id = $1 AND r.day <= $2 AND e.reversal_of IS NULL ORDER BY e.created_at DESC, e.id DESC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "team-blue" || args[1] != "2025-07-01" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderGroupByAndIn(t *testing.T) {
	query, args, err := Select("team_id", "COALESCE(SUM(points), 0) AS total").
		From("score_entries").
		Where(In("team_id", []any{"a", "b"})).
		GroupBy("team_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT team_id, COALESCE(SUM(points), 0) AS total FROM score_entries WHERE team_id IN ($1, $2) GROUP BY team_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderSuffixPlaceholders(t *testing.T) {
	query, args, err := InsertInto("rounds").
		Columns("id", "game_id").
		Values("r-1", "g-1").
		Suffix("ON CONFLICT (game_id, day, round_number) DO NOTHING RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO rounds (id, game_id) VALUES ($1, $2) ON CONFLICT (game_id, day, round_number) DO NOTHING RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "r-1" || args[1] != "g-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilderIncrement(t *testing.T) {
	query, args, err := Update("team_aggregates").
		SetExpr("total_points", "total_points + ?", int64(15)).
		Set("last_updated", "now").
		Where(Eq("team_id", "team-blue")).
		Suffix("RETURNING total_points").
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE team_aggregates SET total_points = total_points + $1, last_updated = $2 WHERE team_id = $3 RETURNING total_points"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != int64(15) || args[2] != "team-blue" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type entryRow struct {
	ID       string  `db:"id"`
	TeamID   string  `db:"team_id"`
	PlayerID *string `db:"player_id"`
	Points   int64   `db:"points"`
	ignored  string
}

func TestInsertModels(t *testing.T) {
	player := "p-1"
	query, args, err := InsertModels("score_entries", []entryRow{
		{ID: "e-1", TeamID: "blue", PlayerID: &player, Points: 10},
		{ID: "e-2", TeamID: "blue", Points: 20, ignored: "x"},
	}, "")
	if err != nil {
		t.Fatalf("build insert models query: %v", err)
	}

	wantQuery := "INSERT INTO score_entries (id, team_id, player_id, points) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 8 || args[4] != "e-2" {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModels[entryRow]("score_entries", nil, ""); err == nil {
		t.Fatalf("expected error for empty models")
	}
}
