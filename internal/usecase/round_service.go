package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/game"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/id"
	"go.opentelemetry.io/otel/attribute"
)

type ResolveRoundInput struct {
	GameID string
	Day    round.Day
}

type RoundService struct {
	gameRepo  game.Repository
	roundRepo round.Repository
	idGen     id.Generator
	now       func() time.Time
}

func NewRoundService(gameRepo game.Repository, roundRepo round.Repository, idGen id.Generator) *RoundService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	return &RoundService{
		gameRepo:  gameRepo,
		roundRepo: roundRepo,
		idGen:     idGen,
		now:       time.Now,
	}
}

// Resolve returns the single round of a game on a day, creating it on first
// use. Repeated and concurrent calls return the same round.
func (s *RoundService) Resolve(ctx context.Context, input ResolveRoundInput) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Resolve")
	defer span.End()

	gameID := strings.TrimSpace(input.GameID)
	if gameID == "" {
		return round.Round{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if input.Day.IsZero() {
		return round.Round{}, fmt.Errorf("%w: day is required", ErrInvalidInput)
	}
	span.SetAttributes(attribute.String("game_id", gameID), attribute.String("day", input.Day.String()))

	if _, exists, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return round.Round{}, fmt.Errorf("get game: %w", err)
	} else if !exists {
		return round.Round{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	roundID, err := s.idGen.NewID()
	if err != nil {
		return round.Round{}, fmt.Errorf("generate round id: %w", err)
	}

	resolved, err := s.roundRepo.Ensure(ctx, round.Round{
		ID:          roundID,
		GameID:      gameID,
		Day:         input.Day,
		RoundNumber: round.DefaultRoundNumber,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return round.Round{}, fmt.Errorf("ensure round: %w", err)
	}

	return resolved, nil
}

// Get returns an existing round by id.
func (s *RoundService) Get(ctx context.Context, roundID string) (round.Round, error) {
	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return round.Round{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return round.Round{}, fmt.Errorf("get round: %w", err)
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	return item, nil
}
