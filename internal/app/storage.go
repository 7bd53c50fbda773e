package app

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/camp-scoreboard/internal/config"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/game"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/player"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/snapshot"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
	repocache "github.com/riskibarqy/camp-scoreboard/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/camp-scoreboard/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/camp-scoreboard/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/camp-scoreboard/internal/platform/cache"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

type storage struct {
	tx         usecase.Transactor
	teams      team.Repository
	players    player.Repository
	games      game.Repository
	rounds     round.Repository
	entries    scoring.Repository
	aggregates aggregate.Repository
	snapshots  snapshot.Repository
	kind       string
	close      func() error
}

func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	var (
		st  storage
		err error
	)
	if cfg.UsesDatabase() {
		st, err = openPostgresStorage(ctx, cfg, logger)
		if err != nil {
			return storage{}, err
		}
	} else {
		st = openMemoryStorage()
		logger.Warn("DB_URL empty, using in-memory store with the default seed")
	}

	if cfg.CacheEnabled {
		withReferenceCache(&st, basecache.NewStore(cfg.CacheTTL))
	}
	return st, nil
}

func openMemoryStorage() storage {
	store := memory.NewStore(memory.DefaultSeed())
	return storage{
		tx:         store,
		teams:      store.Teams(),
		players:    store.Players(),
		games:      store.Games(),
		rounds:     store.Rounds(),
		entries:    store.Entries(),
		aggregates: store.Aggregates(),
		snapshots:  store.Snapshots(),
		kind:       "memory",
		close:      func() error { return nil },
	}
}

func openPostgresStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return storage{}, crerr.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	otelsql.ReportDBStatsMetrics(db.DB)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return storage{}, crerr.Wrap(err, "ping postgres")
	}
	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		_ = db.Close()
		return storage{}, err
	}
	logger.Info("postgres connected",
		"db_host", dbHostFromURL(dsn),
		"db_name", dbNameFromURL(dsn),
		"max_open_conns", cfg.DBMaxOpenConns,
	)

	return postgresStorage(db), nil
}

func postgresStorage(db *sqlx.DB) storage {
	return storage{
		tx:         postgres.NewTransactor(db),
		teams:      postgres.NewTeamRepository(db),
		players:    postgres.NewPlayerRepository(db),
		games:      postgres.NewGameRepository(db),
		rounds:     postgres.NewRoundRepository(db),
		entries:    postgres.NewEntryRepository(db),
		aggregates: postgres.NewAggregateRepository(db),
		snapshots:  postgres.NewSnapshotRepository(db),
		kind:       "postgres",
		close:      db.Close,
	}
}

// withReferenceCache fronts the read-mostly catalogue repositories with the
// TTL cache. Ledger, aggregate and snapshot reads always hit storage.
func withReferenceCache(st *storage, store *basecache.Store) {
	st.teams = repocache.NewTeamRepository(st.teams, store)
	st.games = repocache.NewGameRepository(st.games, store)
	st.players = repocache.NewPlayerRepository(st.players, store)
}
