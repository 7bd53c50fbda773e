package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/player"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/snapshot"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/id"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
)

type ScoringConfig struct {
	IndividualPointsLimit int64
	TeamPointsLimit       int64
	ReasonMaxLength       int
	// Location decides which calendar day "today" is when a write names a
	// game without a day.
	Location *time.Location
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		IndividualPointsLimit: 1000,
		TeamPointsLimit:       10000,
		ReasonMaxLength:       500,
		Location:              time.UTC,
	}
}

type MVPAward struct {
	PlayerID string
	Points   int64
}

// AddPointsInput selects the round either by RoundID or by GameID and Day.
// An empty Day means today. PlayerID is empty for a team-level award.
type AddPointsInput struct {
	GameID    string
	Day       round.Day
	RoundID   string
	TeamID    string `validate:"required"`
	PlayerID  string
	Points    int64
	Reason    string
	CreatedBy string `validate:"required"`
	MVP       *MVPAward
}

type AddTeamPointsInput struct {
	GameID       string `validate:"required"`
	Day          round.Day
	TeamID       string `validate:"required"`
	TotalPoints  int64
	Distribution map[string]int64 `validate:"required"`
	Reason       string
	CreatedBy    string `validate:"required"`
}

type AddPointsResult struct {
	Round    round.Round
	Entries  []scoring.Entry
	NewTotal int64
}

type ScoreService struct {
	tx         Transactor
	teamRepo   team.Repository
	playerRepo player.Repository
	roundSvc   *RoundService
	ledger     ledgerWriter
	idGen      id.Generator
	publisher  EventPublisher
	metrics    *metrics.Recorder
	cfg        ScoringConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewScoreService(
	tx Transactor,
	teamRepo team.Repository,
	playerRepo player.Repository,
	roundSvc *RoundService,
	entryRepo scoring.Repository,
	aggregateRepo aggregate.Repository,
	snapshotRepo snapshot.Repository,
	idGen id.Generator,
	publisher EventPublisher,
	recorder *metrics.Recorder,
	cfg ScoringConfig,
	logger *logging.Logger,
) *ScoreService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if publisher == nil {
		publisher = NewLogEventPublisher(logger)
	}
	defaults := DefaultScoringConfig()
	if cfg.IndividualPointsLimit <= 0 {
		cfg.IndividualPointsLimit = defaults.IndividualPointsLimit
	}
	if cfg.TeamPointsLimit <= 0 {
		cfg.TeamPointsLimit = defaults.TeamPointsLimit
	}
	if cfg.ReasonMaxLength <= 0 {
		cfg.ReasonMaxLength = defaults.ReasonMaxLength
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}

	return &ScoreService{
		tx:         tx,
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		roundSvc:   roundSvc,
		ledger: ledgerWriter{
			snapshotRepo:  snapshotRepo,
			entryRepo:     entryRepo,
			aggregateRepo: aggregateRepo,
			logger:        logger,
		},
		idGen:     idGen,
		publisher: publisher,
		metrics:   recorder,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// AddPoints records one award, plus an optional MVP award for a player of
// the same team, and returns the team's new total.
func (s *ScoreService) AddPoints(ctx context.Context, input AddPointsInput) (AddPointsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.AddPoints")
	defer span.End()

	input.TeamID = strings.TrimSpace(input.TeamID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.CreatedBy = strings.TrimSpace(input.CreatedBy)
	if err := validateInput(input); err != nil {
		return AddPointsResult{}, err
	}
	if err := s.checkPoints(input.Points, input.PlayerID != ""); err != nil {
		return AddPointsResult{}, err
	}
	span.SetAttributes(attribute.String("team_id", input.TeamID), attribute.Int64("points", input.Points))

	if err := s.requireTeam(ctx, input.TeamID); err != nil {
		return AddPointsResult{}, err
	}
	if input.PlayerID != "" {
		if err := s.requireMember(ctx, input.TeamID, input.PlayerID); err != nil {
			return AddPointsResult{}, err
		}
	}
	if input.MVP != nil {
		input.MVP.PlayerID = strings.TrimSpace(input.MVP.PlayerID)
		if input.MVP.PlayerID == "" {
			return AddPointsResult{}, fmt.Errorf("%w: mvp player id is required", ErrInvalidInput)
		}
		if input.MVP.Points <= 0 || input.MVP.Points > s.cfg.IndividualPointsLimit {
			return AddPointsResult{}, fmt.Errorf("%w: mvp points must be between 1 and %d", ErrInvalidInput, s.cfg.IndividualPointsLimit)
		}
		if err := s.requireMember(ctx, input.TeamID, input.MVP.PlayerID); err != nil {
			return AddPointsResult{}, err
		}
	}

	target, err := s.roundTarget(ctx, input.RoundID, input.GameID, input.Day)
	if err != nil {
		return AddPointsResult{}, err
	}

	reason := normalizeReason(input.Reason, scoring.DefaultReason, s.cfg.ReasonMaxLength)
	result, err := s.record(ctx, "award", target, input.TeamID, input.CreatedBy, func(roundID string, at time.Time) ([]scoring.Entry, error) {
		entries := make([]scoring.Entry, 0, 2)
		main, err := s.newEntry(roundID, input.TeamID, input.PlayerID, input.Points, reason, input.CreatedBy, at)
		if err != nil {
			return nil, err
		}
		entries = append(entries, main)
		if input.MVP != nil {
			mvp, err := s.newEntry(roundID, input.TeamID, input.MVP.PlayerID, input.MVP.Points, scoring.MVPReason, input.CreatedBy, at)
			if err != nil {
				return nil, err
			}
			entries = append(entries, mvp)
		}
		return entries, nil
	})
	if err != nil {
		return AddPointsResult{}, err
	}
	return result, nil
}

// AddTeamPoints splits totalPoints across players of one team. The split is
// checked before anything is written and all rows land in one transaction.
func (s *ScoreService) AddTeamPoints(ctx context.Context, input AddTeamPointsInput) (AddPointsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.AddTeamPoints")
	defer span.End()

	input.TeamID = strings.TrimSpace(input.TeamID)
	input.GameID = strings.TrimSpace(input.GameID)
	input.CreatedBy = strings.TrimSpace(input.CreatedBy)
	if err := validateInput(input); err != nil {
		return AddPointsResult{}, err
	}
	if err := s.checkPoints(input.TotalPoints, false); err != nil {
		return AddPointsResult{}, err
	}

	playerIDs := make([]string, 0, len(input.Distribution))
	shares := make(map[string]int64, len(input.Distribution))
	var sum int64
	for rawID, points := range input.Distribution {
		playerID := strings.TrimSpace(rawID)
		if playerID == "" {
			return AddPointsResult{}, fmt.Errorf("%w: distribution has an empty player id", ErrInvalidInput)
		}
		if points == 0 {
			continue
		}
		if err := s.checkPoints(points, true); err != nil {
			return AddPointsResult{}, fmt.Errorf("share for player %s: %w", playerID, err)
		}
		sum += points
		if _, dup := shares[playerID]; dup {
			return AddPointsResult{}, fmt.Errorf("%w: player %s listed twice", ErrInvalidInput, playerID)
		}
		shares[playerID] = points
		playerIDs = append(playerIDs, playerID)
	}
	if sum != input.TotalPoints {
		return AddPointsResult{}, fmt.Errorf("%w: distribution sums to %d, expected %d", ErrInvalidInput, sum, input.TotalPoints)
	}
	if len(playerIDs) == 0 {
		return AddPointsResult{}, fmt.Errorf("%w: distribution needs at least one non-zero share", ErrInvalidInput)
	}
	slices.Sort(playerIDs)
	span.SetAttributes(attribute.String("team_id", input.TeamID), attribute.Int("share_count", len(playerIDs)))

	if err := s.requireTeam(ctx, input.TeamID); err != nil {
		return AddPointsResult{}, err
	}
	players, err := s.playerRepo.GetByIDs(ctx, playerIDs)
	if err != nil {
		return AddPointsResult{}, fmt.Errorf("get players: %w", err)
	}
	byID := make(map[string]player.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, playerID := range playerIDs {
		p, ok := byID[playerID]
		if !ok {
			return AddPointsResult{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
		}
		if !p.BelongsTo(input.TeamID) {
			return AddPointsResult{}, fmt.Errorf("%w: player %s is not on team %s", ErrInvalidInput, playerID, input.TeamID)
		}
	}

	target, err := s.roundTarget(ctx, "", input.GameID, input.Day)
	if err != nil {
		return AddPointsResult{}, err
	}

	fallback := fmt.Sprintf("Team distribution: %d points", input.TotalPoints)
	reason := normalizeReason(input.Reason, fallback, s.cfg.ReasonMaxLength)
	return s.record(ctx, "team", target, input.TeamID, input.CreatedBy, func(roundID string, at time.Time) ([]scoring.Entry, error) {
		entries := make([]scoring.Entry, 0, len(playerIDs))
		for _, playerID := range playerIDs {
			e, err := s.newEntry(roundID, input.TeamID, playerID, shares[playerID], reason, input.CreatedBy, at)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		return entries, nil
	})
}

// roundTarget is either an existing round or a (game, day) pair to resolve
// inside the write transaction.
type roundTarget struct {
	existing *round.Round
	gameID   string
	day      round.Day
}

func (s *ScoreService) roundTarget(ctx context.Context, roundID, gameID string, day round.Day) (roundTarget, error) {
	roundID = strings.TrimSpace(roundID)
	gameID = strings.TrimSpace(gameID)
	if roundID != "" {
		existing, err := s.roundSvc.Get(ctx, roundID)
		if err != nil {
			return roundTarget{}, err
		}
		if gameID != "" && gameID != existing.GameID {
			return roundTarget{}, fmt.Errorf("%w: round %s belongs to game %s", ErrInvalidInput, roundID, existing.GameID)
		}
		if !day.IsZero() && day != existing.Day {
			return roundTarget{}, fmt.Errorf("%w: round %s is on %s", ErrInvalidInput, roundID, existing.Day)
		}
		return roundTarget{existing: &existing, gameID: existing.GameID, day: existing.Day}, nil
	}
	if gameID == "" {
		return roundTarget{}, fmt.Errorf("%w: game id or round id is required", ErrInvalidInput)
	}
	if day.IsZero() {
		day = round.DayOf(s.now().In(s.cfg.Location))
	}
	return roundTarget{gameID: gameID, day: day}, nil
}

func (s *ScoreService) record(
	ctx context.Context,
	kind string,
	target roundTarget,
	teamID string,
	createdBy string,
	build func(roundID string, at time.Time) ([]scoring.Entry, error),
) (AddPointsResult, error) {
	var result AddPointsResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.guardDay(ctx, target.day); err != nil {
			return err
		}

		r := round.Round{}
		if target.existing != nil {
			r = *target.existing
		} else {
			resolved, err := s.roundSvc.Resolve(ctx, ResolveRoundInput{GameID: target.gameID, Day: target.day})
			if err != nil {
				return err
			}
			r = resolved
		}

		at := s.now().UTC()
		entries, err := build(r.ID, at)
		if err != nil {
			return err
		}
		total, err := s.ledger.append(ctx, teamID, entries, at)
		if err != nil {
			return err
		}

		result = AddPointsResult{Round: r, Entries: entries, NewTotal: total}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDayLocked) {
			s.metrics.RecordRejected(kind, "day_locked")
			s.logger.WarnContext(ctx, "score write rejected, day locked",
				"team_id", teamID,
				"day", target.day.String(),
				"created_by", createdBy,
			)
		}
		return AddPointsResult{}, err
	}

	s.metrics.RecordEntries(kind, len(result.Entries))
	s.logger.InfoContext(ctx, "score recorded",
		"kind", kind,
		"team_id", teamID,
		"round_id", result.Round.ID,
		"day", result.Round.Day.String(),
		"entry_count", len(result.Entries),
		"new_total", result.NewTotal,
		"created_by", createdBy,
	)
	total := result.NewTotal
	publishAfterCommit(ctx, s.publisher, s.logger, ChangeEvent{
		Type:       EventScoreRecorded,
		TeamID:     teamID,
		Day:        result.Round.Day,
		EntryIDs:   entryIDs(result.Entries),
		NewTotal:   &total,
		OccurredAt: s.now().UTC(),
	})
	return result, nil
}

func (s *ScoreService) newEntry(roundID, teamID, playerID string, points int64, reason, createdBy string, at time.Time) (scoring.Entry, error) {
	entryID, err := s.idGen.NewID()
	if err != nil {
		return scoring.Entry{}, fmt.Errorf("generate entry id: %w", err)
	}
	return scoring.Entry{
		ID:        entryID,
		RoundID:   roundID,
		TeamID:    teamID,
		PlayerID:  playerID,
		Points:    points,
		Reason:    reason,
		CreatedBy: createdBy,
		CreatedAt: at,
	}, nil
}

func (s *ScoreService) checkPoints(points int64, individual bool) error {
	if points == 0 {
		return fmt.Errorf("%w: points must be non-zero", ErrInvalidInput)
	}
	limit := s.cfg.TeamPointsLimit
	if individual {
		limit = s.cfg.IndividualPointsLimit
	}
	if points < -limit || points > limit {
		return fmt.Errorf("%w: points must be within +/-%d", ErrInvalidInput, limit)
	}
	return nil
}

func (s *ScoreService) requireTeam(ctx context.Context, teamID string) error {
	_, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	return nil
}

func (s *ScoreService) requireMember(ctx context.Context, teamID, playerID string) error {
	p, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	if !p.BelongsTo(teamID) {
		return fmt.Errorf("%w: player %s is not on team %s", ErrInvalidInput, playerID, teamID)
	}
	return nil
}
