package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/snapshot"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/id"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
)

type RevealDayInput struct {
	Day      round.Day
	LockedBy string
}

type RevealService struct {
	tx           Transactor
	teamRepo     team.Repository
	entryRepo    scoring.Repository
	snapshotRepo snapshot.Repository
	idGen        id.Generator
	publisher    EventPublisher
	metrics      *metrics.Recorder
	logger       *logging.Logger
	now          func() time.Time
}

func NewRevealService(
	tx Transactor,
	teamRepo team.Repository,
	entryRepo scoring.Repository,
	snapshotRepo snapshot.Repository,
	idGen id.Generator,
	publisher EventPublisher,
	recorder *metrics.Recorder,
	logger *logging.Logger,
) *RevealService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if publisher == nil {
		publisher = NewLogEventPublisher(logger)
	}
	return &RevealService{
		tx:           tx,
		teamRepo:     teamRepo,
		entryRepo:    entryRepo,
		snapshotRepo: snapshotRepo,
		idGen:        idGen,
		publisher:    publisher,
		metrics:      recorder,
		logger:       logger,
		now:          time.Now,
	}
}

// RevealDay freezes the ranking after day and locks the day against
// further writes. A day can be revealed once.
func (s *RevealService) RevealDay(ctx context.Context, input RevealDayInput) (snapshot.DailySnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RevealService.RevealDay")
	defer span.End()

	if input.Day.IsZero() {
		return snapshot.DailySnapshot{}, fmt.Errorf("%w: day is required", ErrInvalidInput)
	}
	input.LockedBy = strings.TrimSpace(input.LockedBy)
	span.SetAttributes(attribute.String("day", input.Day.String()))

	start := s.now()
	var created snapshot.DailySnapshot
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.snapshotRepo.LockDay(ctx, input.Day, snapshot.LockExclusive); err != nil {
			return fmt.Errorf("lock day: %w", err)
		}
		locked, err := s.snapshotRepo.Exists(ctx, input.Day)
		if err != nil {
			return fmt.Errorf("check day lock: %w", err)
		}
		if locked {
			return &AlreadyLockedError{Day: input.Day}
		}

		teams, err := s.teamRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		entries, err := s.entryRepo.ListThroughDay(ctx, input.Day)
		if err != nil {
			return fmt.Errorf("list entries through day: %w", err)
		}

		snapshotID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate snapshot id: %w", err)
		}
		at := s.now().UTC()
		candidate := snapshot.DailySnapshot{
			ID:        snapshotID,
			Day:       input.Day,
			Payload:   snapshot.Build(input.Day, teams, entries, at),
			LockedBy:  input.LockedBy,
			CreatedAt: at,
		}

		inserted, err := s.snapshotRepo.Insert(ctx, candidate)
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
		if !inserted {
			return &AlreadyLockedError{Day: input.Day}
		}
		created = candidate
		return nil
	})
	s.metrics.RecordReveal(s.now().Sub(start), err)
	if err != nil {
		if errors.Is(err, ErrAlreadyLocked) {
			s.metrics.RecordRejected("reveal", "already_locked")
		}
		return snapshot.DailySnapshot{}, err
	}

	s.logger.InfoContext(ctx, "day revealed",
		"day", created.Day.String(),
		"snapshot_id", created.ID,
		"team_count", len(created.Payload.OrderedTeams),
		"locked_by", created.LockedBy,
	)
	publishAfterCommit(ctx, s.publisher, s.logger, ChangeEvent{
		Type:       EventDayRevealed,
		Day:        created.Day,
		OccurredAt: s.now().UTC(),
	})
	return created, nil
}

func (s *RevealService) GetSnapshot(ctx context.Context, day round.Day) (snapshot.DailySnapshot, error) {
	if day.IsZero() {
		return snapshot.DailySnapshot{}, fmt.Errorf("%w: day is required", ErrInvalidInput)
	}
	item, exists, err := s.snapshotRepo.GetByDay(ctx, day)
	if err != nil {
		return snapshot.DailySnapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	if !exists {
		return snapshot.DailySnapshot{}, fmt.Errorf("%w: snapshot for day=%s", ErrNotFound, day)
	}
	return item, nil
}

// ListSnapshots returns every revealed day, oldest first.
func (s *RevealService) ListSnapshots(ctx context.Context) ([]snapshot.DailySnapshot, error) {
	items, err := s.snapshotRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return items, nil
}
