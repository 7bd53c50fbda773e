package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/snapshot"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/id"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
)

type UndoInput struct {
	EntryID   string `validate:"required"`
	CreatedBy string `validate:"required"`
}

type UndoResult struct {
	Original scoring.EntryView
	Reversal scoring.Entry
	NewTotal int64
}

type UndoService struct {
	tx              Transactor
	entryRepo       scoring.Repository
	ledger          ledgerWriter
	idGen           id.Generator
	publisher       EventPublisher
	metrics         *metrics.Recorder
	reasonMaxLength int
	logger          *logging.Logger
	now             func() time.Time
}

func NewUndoService(
	tx Transactor,
	entryRepo scoring.Repository,
	aggregateRepo aggregate.Repository,
	snapshotRepo snapshot.Repository,
	idGen id.Generator,
	publisher EventPublisher,
	recorder *metrics.Recorder,
	reasonMaxLength int,
	logger *logging.Logger,
) *UndoService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if publisher == nil {
		publisher = NewLogEventPublisher(logger)
	}
	if reasonMaxLength <= 0 {
		reasonMaxLength = DefaultScoringConfig().ReasonMaxLength
	}
	return &UndoService{
		tx:        tx,
		entryRepo: entryRepo,
		ledger: ledgerWriter{
			snapshotRepo:  snapshotRepo,
			entryRepo:     entryRepo,
			aggregateRepo: aggregateRepo,
			logger:        logger,
		},
		idGen:           idGen,
		publisher:       publisher,
		metrics:         recorder,
		reasonMaxLength: reasonMaxLength,
		logger:          logger,
		now:             time.Now,
	}
}

// Undo appends the compensating entry for an entry and applies it to the
// team total. An entry can be undone once; compensating entries cannot be
// undone.
func (s *UndoService) Undo(ctx context.Context, input UndoInput) (UndoResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UndoService.Undo")
	defer span.End()

	input.EntryID = strings.TrimSpace(input.EntryID)
	input.CreatedBy = strings.TrimSpace(input.CreatedBy)
	if err := validateInput(input); err != nil {
		return UndoResult{}, err
	}
	span.SetAttributes(attribute.String("entry_id", input.EntryID))

	original, exists, err := s.entryRepo.GetByID(ctx, input.EntryID)
	if err != nil {
		return UndoResult{}, fmt.Errorf("get score entry: %w", err)
	}
	if !exists {
		return UndoResult{}, fmt.Errorf("%w: entry=%s", ErrNotFound, input.EntryID)
	}
	if original.IsReversal() {
		return UndoResult{}, fmt.Errorf("%w: entry %s is itself an undo of %s", ErrInvalidInput, original.ID, original.ReversalOf)
	}

	var result UndoResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ledger.guardDay(ctx, original.Day); err != nil {
			return err
		}

		prior, undone, err := s.entryRepo.GetReversalOf(ctx, original.ID)
		if err != nil {
			return fmt.Errorf("get reversal: %w", err)
		}
		if undone {
			return &AlreadyUndoneError{EntryID: original.ID, ReversalID: prior.ID}
		}

		reversalID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate entry id: %w", err)
		}
		at := s.now().UTC()
		reversal := original.Entry.Reversal(reversalID, input.CreatedBy, at)
		reversal.Reason = scoring.ClipReason(reversal.Reason, s.reasonMaxLength)

		total, err := s.ledger.append(ctx, original.TeamID, []scoring.Entry{reversal}, at)
		if err != nil {
			if errors.Is(err, scoring.ErrAlreadyReversed) {
				return &AlreadyUndoneError{EntryID: original.ID}
			}
			return err
		}

		result = UndoResult{Original: original, Reversal: reversal, NewTotal: total}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDayLocked):
			s.metrics.RecordRejected("undo", "day_locked")
		case errors.Is(err, ErrAlreadyUndone):
			s.metrics.RecordRejected("undo", "already_undone")
		}
		return UndoResult{}, err
	}

	s.metrics.RecordEntries("undo", 1)
	s.logger.InfoContext(ctx, "score entry undone",
		"entry_id", original.ID,
		"reversal_id", result.Reversal.ID,
		"team_id", original.TeamID,
		"points", result.Reversal.Points,
		"new_total", result.NewTotal,
		"created_by", input.CreatedBy,
	)
	total := result.NewTotal
	publishAfterCommit(ctx, s.publisher, s.logger, ChangeEvent{
		Type:       EventScoreUndone,
		TeamID:     original.TeamID,
		Day:        original.Day,
		EntryIDs:   []string{result.Reversal.ID},
		NewTotal:   &total,
		OccurredAt: s.now().UTC(),
	})
	return result, nil
}
