package cache

import (
	"context"
	"slices"
	"strings"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/game"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/player"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
	basecache "github.com/riskibarqy/camp-scoreboard/internal/platform/cache"
)

// Only reference data is cached here. Ledger, aggregate and snapshot reads
// always go to storage.

type cachedItem[T any] struct {
	value  T
	exists bool
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	items, err := basecache.Load(ctx, r.cache, "team:list", r.next.List)
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, "team:id:"+teamID, func(ctx context.Context) (cachedItem[team.Team], error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		return cachedItem[team.Team]{value: item, exists: exists}, err
	})
	if err != nil {
		return team.Team{}, false, err
	}
	return cached.value, cached.exists, nil
}

type GameRepository struct {
	next  game.Repository
	cache *basecache.Store
}

func NewGameRepository(next game.Repository, cache *basecache.Store) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	items, err := basecache.Load(ctx, r.cache, "game:list", r.next.List)
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, "game:id:"+gameID, func(ctx context.Context) (cachedItem[game.Game], error) {
		item, exists, err := r.next.GetByID(ctx, gameID)
		return cachedItem[game.Game]{value: item, exists: exists}, err
	})
	if err != nil {
		return game.Game{}, false, err
	}
	return cached.value, cached.exists, nil
}

type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, "player:id:"+playerID, func(ctx context.Context) (cachedItem[player.Player], error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		return cachedItem[player.Player]{value: item, exists: exists}, err
	})
	if err != nil {
		return player.Player{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	ids := slices.Clone(playerIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	items, err := basecache.Load(ctx, r.cache, "player:ids:"+strings.Join(ids, ","), func(ctx context.Context) ([]player.Player, error) {
		return r.next.GetByIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	items, err := basecache.Load(ctx, r.cache, "player:team:"+teamID, func(ctx context.Context) ([]player.Player, error) {
		return r.next.ListByTeam(ctx, teamID)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}
