package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/snapshot"
	qb "github.com/riskibarqy/camp-scoreboard/internal/platform/querybuilder"
)

var snapshotColumns = []string{"public_id", dayColumn("day", "day"), "payload", "locked_by", "created_at"}

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// LockDay takes a transaction-scoped advisory lock keyed by the day.
// Writers share it; the reveal holds it exclusively, so a reveal waits for
// in-flight writes of that day and later writes wait for the reveal.
func (r *SnapshotRepository) LockDay(ctx context.Context, day round.Day, mode snapshot.LockMode) error {
	tx, ok := txFrom(ctx)
	if !ok {
		return fmt.Errorf("lock day %s: transaction required", day)
	}

	query := `SELECT pg_advisory_xact_lock_shared(hashtext($1))`
	if mode == snapshot.LockExclusive {
		query = `SELECT pg_advisory_xact_lock(hashtext($1))`
	}
	if _, err := tx.ExecContext(ctx, query, dayLockKey(day)); err != nil {
		return fmt.Errorf("advisory lock day %s: %w", day, err)
	}
	return nil
}

func (r *SnapshotRepository) Exists(ctx context.Context, day round.Day) (bool, error) {
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM daily_snapshots WHERE day = $1)`

	var exists bool
	if err := conn(ctx, r.db).GetContext(ctx, &exists, existsQuery, day.String()); err != nil {
		return false, fmt.Errorf("check snapshot for day %s: %w", day, err)
	}
	return exists, nil
}

func (r *SnapshotRepository) Insert(ctx context.Context, s snapshot.DailySnapshot) (bool, error) {
	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(s.Payload)
	if err != nil {
		return false, fmt.Errorf("marshal snapshot payload: %w", err)
	}

	model := dailySnapshotInsertModel{
		PublicID:  s.ID,
		Day:       s.Day.String(),
		Payload:   payload,
		LockedBy:  optionalString(s.LockedBy),
		CreatedAt: s.CreatedAt,
	}
	query, args, err := qb.InsertModel("daily_snapshots", model, `ON CONFLICT (day) DO NOTHING`)
	if err != nil {
		return false, fmt.Errorf("build insert snapshot query: %w", err)
	}

	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert snapshot day=%s: %w", s.Day, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read inserted snapshot rows: %w", err)
	}
	return affected == 1, nil
}

func (r *SnapshotRepository) GetByDay(ctx context.Context, day round.Day) (snapshot.DailySnapshot, bool, error) {
	query, args, err := qb.Select(snapshotColumns...).From("daily_snapshots").
		Where(qb.Eq("day", day.String())).
		Limit(1).
		ToSQL()
	if err != nil {
		return snapshot.DailySnapshot{}, false, fmt.Errorf("build select snapshot by day query: %w", err)
	}

	var row dailySnapshotTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return snapshot.DailySnapshot{}, false, nil
		}
		return snapshot.DailySnapshot{}, false, fmt.Errorf("get snapshot by day: %w", err)
	}
	item, err := snapshotFromRow(row)
	if err != nil {
		return snapshot.DailySnapshot{}, false, err
	}
	return item, true, nil
}

func (r *SnapshotRepository) List(ctx context.Context) ([]snapshot.DailySnapshot, error) {
	query, args, err := qb.Select(snapshotColumns...).From("daily_snapshots").
		OrderBy("day").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select snapshots query: %w", err)
	}

	var rows []dailySnapshotTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	out := make([]snapshot.DailySnapshot, 0, len(rows))
	for _, row := range rows {
		item, err := snapshotFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func dayLockKey(day round.Day) string {
	return "day:" + day.String()
}

func snapshotFromRow(row dailySnapshotTableModel) (snapshot.DailySnapshot, error) {
	var payload snapshot.Payload
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(row.Payload, &payload); err != nil {
		return snapshot.DailySnapshot{}, fmt.Errorf("decode snapshot payload day=%s: %w", row.Day, err)
	}
	return snapshot.DailySnapshot{
		ID:        row.PublicID,
		Day:       round.Day(row.Day),
		Payload:   payload,
		LockedBy:  nullString(row.LockedBy),
		CreatedAt: row.CreatedAt,
	}, nil
}
