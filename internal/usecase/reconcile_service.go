package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/aggregate"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/team"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/metrics"
)

const (
	reconcileStatusInSync   = "in_sync"
	reconcileStatusDrift    = "drift"
	reconcileStatusRepaired = "repaired"
	reconcileStatusFailed   = "failed"

	defaultReconcileWorkers = 4
	maxReconcileWorkers     = 32
)

type ReconcileInput struct {
	TeamIDs    []string
	DryRun     bool
	MaxWorkers int
}

type ReconcileResult struct {
	TeamCount     int                 `json:"team_count"`
	DriftCount    int                 `json:"drift_count"`
	RepairedCount int                 `json:"repaired_count"`
	FailedCount   int                 `json:"failed_count"`
	WorkerCount   int                 `json:"worker_count"`
	DryRun        bool                `json:"dry_run"`
	Teams         []ReconcileTeamItem `json:"teams"`
}

type ReconcileTeamItem struct {
	TeamID           string `json:"team_id"`
	StoredTotal      int64  `json:"stored_total"`
	LedgerTotal      int64  `json:"ledger_total"`
	Drift            int64  `json:"drift"`
	AggregateMissing bool   `json:"aggregate_missing,omitempty"`
	Status           string `json:"status"`
	DurationMs       int64  `json:"duration_ms"`
	Message          string `json:"message,omitempty"`
}

// ReconcileService compares each team aggregate with its ledger sum and,
// unless asked for a dry run, rewrites drifted aggregates from the ledger.
// It runs only when invoked.
type ReconcileService struct {
	tx            Transactor
	teamRepo      team.Repository
	entryRepo     scoring.Repository
	aggregateRepo aggregate.Repository
	metrics       *metrics.Recorder
	logger        *logging.Logger
	workers       int
	now           func() time.Time
}

func NewReconcileService(
	tx Transactor,
	teamRepo team.Repository,
	entryRepo scoring.Repository,
	aggregateRepo aggregate.Repository,
	recorder *metrics.Recorder,
	workers int,
	logger *logging.Logger,
) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultReconcileWorkers
	}
	return &ReconcileService{
		tx:            tx,
		teamRepo:      teamRepo,
		entryRepo:     entryRepo,
		aggregateRepo: aggregateRepo,
		metrics:       recorder,
		logger:        logger,
		workers:       workers,
		now:           time.Now,
	}
}

func (s *ReconcileService) Reconcile(ctx context.Context, input ReconcileInput) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Reconcile")
	defer span.End()

	teamIDs, err := s.resolveTeams(ctx, input.TeamIDs)
	if err != nil {
		return ReconcileResult{}, err
	}

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = s.workers
	}
	workerCount = min(workerCount, maxReconcileWorkers, max(len(teamIDs), 1))

	result := ReconcileResult{
		TeamCount:   len(teamIDs),
		WorkerCount: workerCount,
		DryRun:      input.DryRun,
		Teams:       make([]ReconcileTeamItem, 0, len(teamIDs)),
	}
	if len(teamIDs) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	items := make(chan ReconcileTeamItem, len(teamIDs))
	var driftCount, repairedCount, failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, teamID := range teamIDs {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := s.now()
			item := s.reconcileTeam(ctx, teamID, input.DryRun)
			item.DurationMs = s.now().Sub(start).Milliseconds()

			switch item.Status {
			case reconcileStatusDrift:
				driftCount.Add(1)
			case reconcileStatusRepaired:
				driftCount.Add(1)
				repairedCount.Add(1)
			case reconcileStatusFailed:
				failedCount.Add(1)
			}
			items <- item
		}); err != nil {
			workers.Done()
			return ReconcileResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(items)
	for item := range items {
		result.Teams = append(result.Teams, item)
	}
	slices.SortFunc(result.Teams, func(a, b ReconcileTeamItem) int {
		return strings.Compare(a.TeamID, b.TeamID)
	})

	result.DriftCount = int(driftCount.Load())
	result.RepairedCount = int(repairedCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "aggregate reconciliation finished",
		"team_count", result.TeamCount,
		"drift_count", result.DriftCount,
		"repaired_count", result.RepairedCount,
		"failed_count", result.FailedCount,
		"dry_run", input.DryRun,
	)
	return result, nil
}

func (s *ReconcileService) reconcileTeam(ctx context.Context, teamID string, dryRun bool) ReconcileTeamItem {
	item := ReconcileTeamItem{TeamID: teamID, Status: reconcileStatusInSync}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		stored, ok, err := s.aggregateRepo.LockByTeam(ctx, teamID)
		if err != nil {
			return fmt.Errorf("lock team aggregate: %w", err)
		}
		sums, err := s.entryRepo.SumByTeam(ctx, []string{teamID})
		if err != nil {
			return fmt.Errorf("sum ledger: %w", err)
		}

		item.AggregateMissing = !ok
		item.StoredTotal = stored.TotalPoints
		item.LedgerTotal = sums[teamID]
		item.Drift = item.StoredTotal - item.LedgerTotal
		if item.Drift == 0 && ok {
			return nil
		}

		item.Status = reconcileStatusDrift
		if dryRun {
			return nil
		}
		if err := s.aggregateRepo.Set(ctx, teamID, item.LedgerTotal, s.now().UTC()); err != nil {
			return fmt.Errorf("rewrite team aggregate: %w", err)
		}
		item.Status = reconcileStatusRepaired
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "reconcile team failed", "team_id", teamID, "error", err)
		return ReconcileTeamItem{TeamID: teamID, Status: reconcileStatusFailed, Message: err.Error()}
	}

	if item.Status != reconcileStatusInSync {
		s.metrics.RecordDrift(teamID, item.Drift, item.Status == reconcileStatusRepaired)
		s.logger.WarnContext(ctx, "team aggregate drift",
			"team_id", teamID,
			"stored_total", item.StoredTotal,
			"ledger_total", item.LedgerTotal,
			"aggregate_missing", item.AggregateMissing,
			"status", item.Status,
		)
	}
	return item
}

func (s *ReconcileService) resolveTeams(ctx context.Context, requested []string) ([]string, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	known := make(map[string]struct{}, len(teams))
	all := make([]string, 0, len(teams))
	for _, t := range teams {
		known[t.ID] = struct{}{}
		all = append(all, t.ID)
	}
	if len(requested) == 0 {
		return all, nil
	}

	out := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, raw := range requested {
		teamID := strings.TrimSpace(raw)
		if teamID == "" {
			continue
		}
		if _, ok := known[teamID]; !ok {
			return nil, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
		}
		if _, dup := seen[teamID]; dup {
			continue
		}
		seen[teamID] = struct{}{}
		out = append(out, teamID)
	}
	return out, nil
}
