package postgres

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	qb "github.com/riskibarqy/camp-scoreboard/internal/platform/querybuilder"
)

// reversalConstraint is the partial unique index on score_entries.reversal_of.
const reversalConstraint = "score_entries_reversal_of_key"

var entryColumns = []string{
	"e.public_id",
	"e.round_public_id",
	"e.team_public_id",
	"e.player_public_id",
	"e.points",
	"e.reason",
	"e.created_by",
	"e.reversal_of",
	"e.created_at",
}

var entryViewColumns = append(append([]string(nil), entryColumns...),
	"r.game_public_id",
	dayColumn("r.day", "day"),
	"t.name AS team_name",
	"t.color AS team_color",
	"p.name AS player_name",
)

type EntryRepository struct {
	db *sqlx.DB
}

func NewEntryRepository(db *sqlx.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Insert(ctx context.Context, entries ...scoring.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	models := make([]scoreEntryInsertModel, 0, len(entries))
	for _, e := range entries {
		models = append(models, scoreEntryInsertModel{
			PublicID:       e.ID,
			RoundPublicID:  e.RoundID,
			TeamPublicID:   e.TeamID,
			PlayerPublicID: optionalString(e.PlayerID),
			Points:         e.Points,
			Reason:         e.Reason,
			CreatedBy:      e.CreatedBy,
			ReversalOf:     optionalString(e.ReversalOf),
			CreatedAt:      e.CreatedAt,
		})
	}

	query, args, err := qb.InsertModels("score_entries", models, "")
	if err != nil {
		return fmt.Errorf("build insert score entries query: %w", err)
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, reversalConstraint) {
			return crerr.WithSecondaryError(crerr.Wrap(scoring.ErrAlreadyReversed, "insert score entries"), err)
		}
		return fmt.Errorf("insert score entries count=%d: %w", len(entries), err)
	}
	return nil
}

func (r *EntryRepository) GetByID(ctx context.Context, entryID string) (scoring.EntryView, bool, error) {
	query, args, err := selectEntryViews().
		Where(qb.Eq("e.public_id", entryID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return scoring.EntryView{}, false, fmt.Errorf("build select score entry query: %w", err)
	}

	var row scoreEntryViewModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.EntryView{}, false, nil
		}
		return scoring.EntryView{}, false, fmt.Errorf("get score entry: %w", err)
	}
	return entryViewFromRow(row), true, nil
}

func (r *EntryRepository) GetReversalOf(ctx context.Context, entryID string) (scoring.Entry, bool, error) {
	query, args, err := qb.Select(entryColumns...).From("score_entries e").
		Where(qb.Eq("e.reversal_of", entryID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return scoring.Entry{}, false, fmt.Errorf("build select reversal query: %w", err)
	}

	var row scoreEntryTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return scoring.Entry{}, false, nil
		}
		return scoring.Entry{}, false, fmt.Errorf("get reversal of entry=%s: %w", entryID, err)
	}
	return entryFromRow(row), true, nil
}

func (r *EntryRepository) ListRecent(ctx context.Context, limit int) ([]scoring.EntryView, error) {
	query, args, err := selectEntryViews().
		OrderBy("e.created_at DESC", "e.id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select recent entries query: %w", err)
	}
	return r.selectViews(ctx, query, args)
}

func (r *EntryRepository) ListThroughDay(ctx context.Context, day round.Day) ([]scoring.EntryView, error) {
	query, args, err := selectEntryViews().
		Where(qb.Lte("r.day", day.String())).
		OrderBy("e.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select entries through day query: %w", err)
	}
	return r.selectViews(ctx, query, args)
}

func (r *EntryRepository) SumByTeam(ctx context.Context, teamIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(teamIDs))
	if len(teamIDs) == 0 {
		return out, nil
	}
	query, args, err := qb.Select("team_public_id", "SUM(points) AS total").From("score_entries").
		Where(qb.In("team_public_id", anySlice(teamIDs))).
		GroupBy("team_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build sum by team query: %w", err)
	}
	return r.selectTeamSums(ctx, out, query, args)
}

func (r *EntryRepository) SumByTeamForGame(ctx context.Context, gameID string) (map[string]int64, error) {
	query, args, err := qb.Select("e.team_public_id", "SUM(e.points) AS total").From("score_entries e").
		Join("rounds r ON r.public_id = e.round_public_id").
		Where(qb.Eq("r.game_public_id", gameID)).
		GroupBy("e.team_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build sum by team for game query: %w", err)
	}
	return r.selectTeamSums(ctx, make(map[string]int64), query, args)
}

func (r *EntryRepository) SumByPlayer(ctx context.Context) ([]scoring.PlayerTotal, error) {
	query, args, err := qb.Select("e.player_public_id", "e.team_public_id", "p.name", "SUM(e.points) AS total").
		From("score_entries e").
		Join("players p ON p.public_id = e.player_public_id").
		GroupBy("e.player_public_id", "e.team_public_id", "p.name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build sum by player query: %w", err)
	}

	var rows []struct {
		PlayerPublicID string `db:"player_public_id"`
		TeamPublicID   string `db:"team_public_id"`
		Name           string `db:"name"`
		Total          int64  `db:"total"`
	}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sum points by player: %w", err)
	}

	out := make([]scoring.PlayerTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoring.PlayerTotal{
			PlayerID:   row.PlayerPublicID,
			TeamID:     row.TeamPublicID,
			PlayerName: row.Name,
			Points:     row.Total,
		})
	}
	return out, nil
}

func (r *EntryRepository) selectViews(ctx context.Context, query string, args []any) ([]scoring.EntryView, error) {
	var rows []scoreEntryViewModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select score entries: %w", err)
	}
	out := make([]scoring.EntryView, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryViewFromRow(row))
	}
	return out, nil
}

func (r *EntryRepository) selectTeamSums(ctx context.Context, out map[string]int64, query string, args []any) (map[string]int64, error) {
	var rows []struct {
		TeamPublicID string `db:"team_public_id"`
		Total        int64  `db:"total"`
	}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sum points by team: %w", err)
	}
	for _, row := range rows {
		out[row.TeamPublicID] = row.Total
	}
	return out, nil
}

func selectEntryViews() *qb.SelectBuilder {
	return qb.Select(entryViewColumns...).From("score_entries e").
		Join("rounds r ON r.public_id = e.round_public_id").
		Join("teams t ON t.public_id = e.team_public_id").
		LeftJoin("players p ON p.public_id = e.player_public_id")
}

func entryFromRow(row scoreEntryTableModel) scoring.Entry {
	return scoring.Entry{
		ID:         row.PublicID,
		RoundID:    row.RoundPublicID,
		TeamID:     row.TeamPublicID,
		PlayerID:   nullString(row.PlayerPublicID),
		Points:     row.Points,
		Reason:     row.Reason,
		CreatedBy:  row.CreatedBy,
		ReversalOf: nullString(row.ReversalOf),
		CreatedAt:  row.CreatedAt,
	}
}

func entryViewFromRow(row scoreEntryViewModel) scoring.EntryView {
	return scoring.EntryView{
		Entry:      entryFromRow(row.scoreEntryTableModel),
		GameID:     row.GamePublicID,
		Day:        round.Day(row.Day),
		TeamName:   row.TeamName,
		TeamColor:  row.TeamColor,
		PlayerName: nullString(row.PlayerName),
	}
}
