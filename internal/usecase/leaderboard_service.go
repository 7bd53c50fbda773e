package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/game"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/standing"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultRecentEntriesLimit = 10
	MaxRecentEntriesLimit     = 100
)

type LeaderboardService struct {
	teamRepo      team.Repository
	gameRepo      game.Repository
	entryRepo     scoring.Repository
	aggregateRepo aggregate.Repository
	recentLimit   int
}

func NewLeaderboardService(
	teamRepo team.Repository,
	gameRepo game.Repository,
	entryRepo scoring.Repository,
	aggregateRepo aggregate.Repository,
	recentLimit int,
) *LeaderboardService {
	if recentLimit <= 0 || recentLimit > MaxRecentEntriesLimit {
		recentLimit = DefaultRecentEntriesLimit
	}
	return &LeaderboardService{
		teamRepo:      teamRepo,
		gameRepo:      gameRepo,
		entryRepo:     entryRepo,
		aggregateRepo: aggregateRepo,
		recentLimit:   recentLimit,
	}
}

// Live ranks every team by its stored running total. It reads storage
// directly so a committed write is visible to the next call. The three
// reads run concurrently and are not one snapshot; a write landing between
// them can show in the team total before the player list.
func (s *LeaderboardService) Live(ctx context.Context) ([]standing.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Live")
	defer span.End()

	var (
		teams        []team.Team
		aggregates   []aggregate.TeamAggregate
		playerTotals []scoring.PlayerTotal
	)
	reads := pool.New().WithContext(ctx).WithCancelOnError()
	reads.Go(func(ctx context.Context) (err error) {
		if teams, err = s.teamRepo.List(ctx); err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		return nil
	})
	reads.Go(func(ctx context.Context) (err error) {
		if aggregates, err = s.aggregateRepo.List(ctx); err != nil {
			return fmt.Errorf("list team aggregates: %w", err)
		}
		return nil
	})
	reads.Go(func(ctx context.Context) (err error) {
		if playerTotals, err = s.entryRepo.SumByPlayer(ctx); err != nil {
			return fmt.Errorf("sum points by player: %w", err)
		}
		return nil
	})
	if err := reads.Wait(); err != nil {
		return nil, err
	}

	totals := make(map[string]int64, len(aggregates))
	for _, item := range aggregates {
		totals[item.TeamID] = item.TotalPoints
	}
	playersByTeam := make(map[string][]standing.PlayerPoints, len(teams))
	for _, item := range playerTotals {
		playersByTeam[item.TeamID] = append(playersByTeam[item.TeamID], standing.PlayerPoints{
			PlayerID: item.PlayerID,
			Name:     item.PlayerName,
			Points:   item.Points,
		})
	}

	rows := make([]standing.Row, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, standing.Row{
			TeamID:     t.ID,
			Name:       t.Name,
			Color:      t.Color,
			AvatarURL:  t.AvatarURL,
			Points:     totals[t.ID],
			TopPlayers: standing.TopPlayers(playersByTeam[t.ID], standing.TopPlayersLimit),
		})
	}
	return standing.Rank(rows), nil
}

// RecentEntries returns the newest ledger rows, newest first. A limit
// outside 1..MaxRecentEntriesLimit falls back to the configured default.
func (s *LeaderboardService) RecentEntries(ctx context.Context, limit int) ([]scoring.EntryView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.RecentEntries")
	defer span.End()

	if limit <= 0 || limit > MaxRecentEntriesLimit {
		limit = s.recentLimit
	}
	items, err := s.entryRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	return items, nil
}

// GameStandings ranks teams by the points they earned in one game.
func (s *LeaderboardService) GameStandings(ctx context.Context, gameID string) (game.Game, []standing.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GameStandings")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Game{}, nil, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	item, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, nil, fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return game.Game{}, nil, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return game.Game{}, nil, fmt.Errorf("list teams: %w", err)
	}
	sums, err := s.entryRepo.SumByTeamForGame(ctx, gameID)
	if err != nil {
		return game.Game{}, nil, fmt.Errorf("sum points by team for game: %w", err)
	}

	rows := make([]standing.Row, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, standing.Row{
			TeamID:    t.ID,
			Name:      t.Name,
			Color:     t.Color,
			AvatarURL: t.AvatarURL,
			Points:    sums[t.ID],
		})
	}
	return item, standing.Rank(rows), nil
}
