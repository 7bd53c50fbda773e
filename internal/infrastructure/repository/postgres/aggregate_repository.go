package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
	qb "github.com/riskibarqy/camp-scoreboard/internal/platform/querybuilder"
)

var aggregateColumns = []string{"team_public_id", "total_points", "last_updated"}

type AggregateRepository struct {
	db *sqlx.DB
}

func NewAggregateRepository(db *sqlx.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

// Increment is a single UPDATE so concurrent writers never lose a delta.
func (r *AggregateRepository) Increment(ctx context.Context, teamID string, delta int64, at time.Time) (int64, bool, error) {
	query, args, err := qb.Update("team_aggregates").
		SetExpr("total_points", "total_points + ?", delta).
		Set("last_updated", at).
		Where(qb.Eq("team_public_id", teamID)).
		Suffix("RETURNING total_points").
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build increment team aggregate query: %w", err)
	}

	var total int64
	if err := conn(ctx, r.db).GetContext(ctx, &total, query, args...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("increment team aggregate team=%s: %w", teamID, err)
	}
	return total, true, nil
}

func (r *AggregateRepository) GetByTeam(ctx context.Context, teamID string) (aggregate.TeamAggregate, bool, error) {
	query, args, err := qb.Select(aggregateColumns...).From("team_aggregates").
		Where(qb.Eq("team_public_id", teamID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return aggregate.TeamAggregate{}, false, fmt.Errorf("build select team aggregate query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *AggregateRepository) LockByTeam(ctx context.Context, teamID string) (aggregate.TeamAggregate, bool, error) {
	const lockQuery = `
SELECT team_public_id, total_points, last_updated
FROM team_aggregates
WHERE team_public_id = $1
FOR UPDATE`

	if _, ok := txFrom(ctx); !ok {
		return aggregate.TeamAggregate{}, false, fmt.Errorf("lock team aggregate: transaction required")
	}
	return r.getOne(ctx, lockQuery, []any{teamID})
}

func (r *AggregateRepository) List(ctx context.Context) ([]aggregate.TeamAggregate, error) {
	query, args, err := qb.Select(aggregateColumns...).From("team_aggregates").
		OrderBy("team_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team aggregates query: %w", err)
	}

	var rows []teamAggregateTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team aggregates: %w", err)
	}
	out := make([]aggregate.TeamAggregate, 0, len(rows))
	for _, row := range rows {
		out = append(out, aggregateFromRow(row))
	}
	return out, nil
}

func (r *AggregateRepository) Set(ctx context.Context, teamID string, total int64, at time.Time) error {
	model := teamAggregateTableModel{
		TeamPublicID: teamID,
		TotalPoints:  total,
		LastUpdated:  at,
	}
	query, args, err := qb.InsertModel("team_aggregates", model, `ON CONFLICT (team_public_id)
DO UPDATE SET
    total_points = EXCLUDED.total_points,
    last_updated = EXCLUDED.last_updated`)
	if err != nil {
		return fmt.Errorf("build upsert team aggregate query: %w", err)
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team aggregate team=%s: %w", teamID, err)
	}
	return nil
}

func (r *AggregateRepository) getOne(ctx context.Context, query string, args []any) (aggregate.TeamAggregate, bool, error) {
	var row teamAggregateTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return aggregate.TeamAggregate{}, false, nil
		}
		return aggregate.TeamAggregate{}, false, fmt.Errorf("get team aggregate: %w", err)
	}
	return aggregateFromRow(row), true, nil
}

func aggregateFromRow(row teamAggregateTableModel) aggregate.TeamAggregate {
	return aggregate.TeamAggregate{
		TeamID:      row.TeamPublicID,
		TotalPoints: row.TotalPoints,
		LastUpdated: row.LastUpdated,
	}
}
