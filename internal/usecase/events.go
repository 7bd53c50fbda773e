package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
)

const (
	EventScoreRecorded = "score.recorded"
	EventScoreUndone   = "score.undone"
	EventDayRevealed   = "day.revealed"
)

// ChangeEvent tells subscribers that committed state changed. It carries
// enough to refresh a view without another read.
type ChangeEvent struct {
	Type       string    `json:"type"`
	TeamID     string    `json:"team_id,omitempty"`
	Day        round.Day `json:"day,omitempty"`
	EntryIDs   []string  `json:"entry_ids,omitempty"`
	NewTotal   *int64    `json:"new_total,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

type logEventPublisher struct {
	logger *logging.Logger
}

// NewLogEventPublisher returns a publisher that only logs events.
func NewLogEventPublisher(logger *logging.Logger) EventPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return logEventPublisher{logger: logger}
}

func (p logEventPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	p.logger.DebugContext(ctx, "change event",
		"event_type", event.Type,
		"team_id", event.TeamID,
		"day", event.Day.String(),
		"entry_count", len(event.EntryIDs),
	)
	return nil
}

// publishAfterCommit hands event to publisher. The write it describes is
// already durable, so failures are logged and swallowed.
func publishAfterCommit(ctx context.Context, publisher EventPublisher, logger *logging.Logger, event ChangeEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "publish change event failed",
			"event_type", event.Type,
			"team_id", event.TeamID,
			"day", event.Day.String(),
			"error", err,
		)
	}
}
