package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/player"
	qb "github.com/riskibarqy/camp-scoreboard/internal/platform/querybuilder"
)

var playerColumns = []string{"public_id", "team_public_id", "name", "phone"}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.Eq("public_id", playerID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by id query: %w", err)
	}

	var row playerTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by id: %w", err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.In("public_id", anySlice(playerIDs))).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}
	return r.selectPlayers(ctx, query, args)
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.Eq("team_public_id", teamID)).
		OrderBy("name", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by team query: %w", err)
	}
	return r.selectPlayers(ctx, query, args)
}

func (r *PlayerRepository) selectPlayers(ctx context.Context, query string, args []any) ([]player.Player, error) {
	var rows []playerTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:     row.PublicID,
		TeamID: row.TeamPublicID,
		Name:   row.Name,
		Phone:  nullString(row.Phone),
	}
}
