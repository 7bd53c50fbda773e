package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	qb "github.com/riskibarqy/camp-scoreboard/internal/platform/querybuilder"
)

var roundColumns = []string{"public_id", "game_public_id", dayColumn("day", "day"), "round_number", "created_at"}

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// Ensure inserts the candidate unless (game, day, round number) exists and
// then reads the stored row. A concurrent inserter makes the INSERT wait
// for its commit, so the follow-up SELECT sees the winner.
func (r *RoundRepository) Ensure(ctx context.Context, candidate round.Round) (round.Round, error) {
	q := conn(ctx, r.db)

	insertModel := roundInsertModel{
		PublicID:     candidate.ID,
		GamePublicID: candidate.GameID,
		Day:          candidate.Day.String(),
		RoundNumber:  candidate.RoundNumber,
		CreatedAt:    candidate.CreatedAt,
	}
	query, args, err := qb.InsertModel("rounds", insertModel, `ON CONFLICT (game_public_id, day, round_number) DO NOTHING`)
	if err != nil {
		return round.Round{}, fmt.Errorf("build insert round query: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return round.Round{}, fmt.Errorf("insert round game=%s day=%s: %w", candidate.GameID, candidate.Day, err)
	}

	query, args, err = qb.Select(roundColumns...).From("rounds").
		Where(
			qb.Eq("game_public_id", candidate.GameID),
			qb.Eq("day", candidate.Day.String()),
			qb.Eq("round_number", candidate.RoundNumber),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return round.Round{}, fmt.Errorf("build select round by key query: %w", err)
	}
	var row roundTableModel
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		return round.Round{}, fmt.Errorf("get round game=%s day=%s: %w", candidate.GameID, candidate.Day, err)
	}
	return roundFromRow(row), nil
}

func (r *RoundRepository) GetByID(ctx context.Context, roundID string) (round.Round, bool, error) {
	query, args, err := qb.Select(roundColumns...).From("rounds").
		Where(qb.Eq("public_id", roundID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build select round by id query: %w", err)
	}

	var row roundTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get round by id: %w", err)
	}
	return roundFromRow(row), true, nil
}

func roundFromRow(row roundTableModel) round.Round {
	return round.Round{
		ID:          row.PublicID,
		GameID:      row.GamePublicID,
		Day:         round.Day(row.Day),
		RoundNumber: row.RoundNumber,
		CreatedAt:   row.CreatedAt,
	}
}
