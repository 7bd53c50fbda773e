package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/game"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/player"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/snapshot"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
)

type roundKey struct {
	gameID string
	day    round.Day
	number int
}

type storedEntry struct {
	entry scoring.Entry
	seq   int
}

// dataset is one version of the whole store. Published versions are never
// mutated; transactions work on a clone and publish it on commit.
type dataset struct {
	teams      map[string]team.Team
	players    map[string]player.Player
	games      map[string]game.Game
	rounds     map[string]round.Round
	roundKeys  map[roundKey]string
	entries    []storedEntry
	entryIndex map[string]int
	reversals  map[string]string
	aggregates map[string]aggregate.TeamAggregate
	snapshots  map[round.Day]snapshot.DailySnapshot
}

func newDataset() *dataset {
	return &dataset{
		teams:      make(map[string]team.Team),
		players:    make(map[string]player.Player),
		games:      make(map[string]game.Game),
		rounds:     make(map[string]round.Round),
		roundKeys:  make(map[roundKey]string),
		entryIndex: make(map[string]int),
		reversals:  make(map[string]string),
		aggregates: make(map[string]aggregate.TeamAggregate),
		snapshots:  make(map[round.Day]snapshot.DailySnapshot),
	}
}

func (d *dataset) clone() *dataset {
	return &dataset{
		teams:      maps.Clone(d.teams),
		players:    maps.Clone(d.players),
		games:      maps.Clone(d.games),
		rounds:     maps.Clone(d.rounds),
		roundKeys:  maps.Clone(d.roundKeys),
		entries:    append(make([]storedEntry, 0, len(d.entries)+4), d.entries...),
		entryIndex: maps.Clone(d.entryIndex),
		reversals:  maps.Clone(d.reversals),
		aggregates: maps.Clone(d.aggregates),
		snapshots:  maps.Clone(d.snapshots),
	}
}

// Store keeps every table in process. Transactions are serialized and
// all-or-nothing; reads outside a transaction see the last committed
// version.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	current *dataset
}

type txState struct {
	store *Store
	data  *dataset
}

type txKey struct{}

func NewStore(seed Seed) *Store {
	data := newDataset()
	seed.apply(data)
	return &Store{current: data}
}

// WithinTx runs fn against a private copy of the data and publishes it when
// fn succeeds. Nested calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok && tx.store == s {
		return fn(ctx)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	work := s.current.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, &txState{store: s, data: work})); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = work
	s.mu.Unlock()
	return nil
}

func (s *Store) read(ctx context.Context, fn func(d *dataset)) {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok && tx.store == s {
		fn(tx.data)
		return
	}
	s.mu.RLock()
	data := s.current
	s.mu.RUnlock()
	fn(data)
}

func (s *Store) write(ctx context.Context, fn func(d *dataset) error) error {
	if tx, ok := ctx.Value(txKey{}).(*txState); ok && tx.store == s {
		return fn(tx.data)
	}
	return s.WithinTx(ctx, func(ctx context.Context) error {
		return s.write(ctx, fn)
	})
}

func (s *Store) Teams() *TeamRepository           { return &TeamRepository{store: s} }
func (s *Store) Players() *PlayerRepository       { return &PlayerRepository{store: s} }
func (s *Store) Games() *GameRepository           { return &GameRepository{store: s} }
func (s *Store) Rounds() *RoundRepository         { return &RoundRepository{store: s} }
func (s *Store) Entries() *EntryRepository        { return &EntryRepository{store: s} }
func (s *Store) Aggregates() *AggregateRepository { return &AggregateRepository{store: s} }
func (s *Store) Snapshots() *SnapshotRepository   { return &SnapshotRepository{store: s} }
