package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/game"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/player"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
)

// DirectoryService serves the reference data judges pick from.
type DirectoryService struct {
	teamRepo   team.Repository
	gameRepo   game.Repository
	playerRepo player.Repository
}

func NewDirectoryService(teamRepo team.Repository, gameRepo game.Repository, playerRepo player.Repository) *DirectoryService {
	return &DirectoryService{
		teamRepo:   teamRepo,
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
	}
}

func (s *DirectoryService) ListTeams(ctx context.Context) ([]team.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (s *DirectoryService) ListGames(ctx context.Context) ([]game.Game, error) {
	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return games, nil
}

func (s *DirectoryService) ListPlayersByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	_, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	players, err := s.playerRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list players by team: %w", err)
	}
	return players, nil
}
