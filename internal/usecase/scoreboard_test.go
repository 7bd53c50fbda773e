package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/id"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/metrics"
)

const (
	testGame  = "game-relay"
	testToday = round.Day("2025-07-04")
)

type scoreboard struct {
	store       *memory.Store
	rounds      *RoundService
	scores      *ScoreService
	undo        *UndoService
	reveal      *RevealService
	leaderboard *LeaderboardService
	reconcile   *ReconcileService
	metrics     *metrics.Recorder
	events      *recordingPublisher
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newScoreboard(t *testing.T) *scoreboard {
	t.Helper()

	store := memory.NewStore(memory.DefaultSeed())
	idGen := id.NewSequenceGenerator("id")
	recorder := metrics.NewRecorder()
	events := &recordingPublisher{}
	clock := func() time.Time { return time.Date(2025, 7, 4, 15, 0, 0, 0, time.UTC) }

	rounds := NewRoundService(store.Games(), store.Rounds(), idGen)
	rounds.now = clock
	scores := NewScoreService(store, store.Teams(), store.Players(), rounds, store.Entries(), store.Aggregates(), store.Snapshots(), idGen, events, recorder, DefaultScoringConfig(), nil)
	scores.now = clock
	undo := NewUndoService(store, store.Entries(), store.Aggregates(), store.Snapshots(), idGen, events, recorder, DefaultScoringConfig().ReasonMaxLength, nil)
	undo.now = clock
	reveal := NewRevealService(store, store.Teams(), store.Entries(), store.Snapshots(), idGen, events, recorder, nil)
	reveal.now = clock

	return &scoreboard{
		store:       store,
		rounds:      rounds,
		scores:      scores,
		undo:        undo,
		reveal:      reveal,
		leaderboard: NewLeaderboardService(store.Teams(), store.Games(), store.Entries(), store.Aggregates(), 0),
		reconcile:   NewReconcileService(store, store.Teams(), store.Entries(), store.Aggregates(), recorder, 2, nil),
		metrics:     recorder,
		events:      events,
	}
}

func (sb *scoreboard) total(t *testing.T, teamID string) int64 {
	t.Helper()
	agg, ok, err := sb.store.Aggregates().GetByTeam(context.Background(), teamID)
	if err != nil || !ok {
		t.Fatalf("get aggregate for %s: ok=%v err=%v", teamID, ok, err)
	}
	return agg.TotalPoints
}

func (sb *scoreboard) ledgerSum(t *testing.T, teamID string) int64 {
	t.Helper()
	sums, err := sb.store.Entries().SumByTeam(context.Background(), []string{teamID})
	if err != nil {
		t.Fatalf("sum ledger: %v", err)
	}
	return sums[teamID]
}

func TestScoreboard_BlueScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	award, err := sb.scores.AddPoints(ctx, AddPointsInput{
		GameID:    testGame,
		Day:       testToday,
		TeamID:    memory.TeamIDBlue,
		Points:    50,
		Reason:    "night game",
		CreatedBy: "judge-ayu",
	})
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if award.NewTotal != 50 || sb.total(t, memory.TeamIDBlue) != 50 {
		t.Fatalf("expected total 50, got %d", award.NewTotal)
	}
	if award.Entries[0].CreatedBy != "judge-ayu" || award.Entries[0].Reason != "night game" {
		t.Fatalf("unexpected entry: %+v", award.Entries[0])
	}

	split, err := sb.scores.AddTeamPoints(ctx, AddTeamPointsInput{
		GameID:      testGame,
		Day:         testToday,
		TeamID:      memory.TeamIDBlue,
		TotalPoints: 30,
		Distribution: map[string]int64{
			"player-bima":  10,
			"player-bunga": 10,
			"player-bayu":  10,
		},
		CreatedBy: "judge-ayu",
	})
	if err != nil {
		t.Fatalf("add team points: %v", err)
	}
	if split.NewTotal != 80 || len(split.Entries) != 3 {
		t.Fatalf("expected total 80 with 3 entries, got %d with %d", split.NewTotal, len(split.Entries))
	}
	for _, e := range split.Entries {
		if e.Points != 10 || e.Reason != "Team distribution: 30 points" {
			t.Fatalf("unexpected split entry: %+v", e)
		}
		if e.RoundID != award.Round.ID {
			t.Fatalf("expected one round for the game and day, got %s and %s", e.RoundID, award.Round.ID)
		}
	}

	undone, err := sb.undo.Undo(ctx, UndoInput{EntryID: award.Entries[0].ID, CreatedBy: "judge-budi"})
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if undone.NewTotal != 30 || sb.total(t, memory.TeamIDBlue) != 30 {
		t.Fatalf("expected total 30 after undo, got %d", undone.NewTotal)
	}
	if undone.Reversal.Points != -50 || undone.Reversal.ReversalOf != award.Entries[0].ID {
		t.Fatalf("unexpected reversal: %+v", undone.Reversal)
	}

	snap, err := sb.reveal.RevealDay(ctx, RevealDayInput{Day: testToday, LockedBy: "judge-budi"})
	if err != nil {
		t.Fatalf("reveal day: %v", err)
	}
	var found bool
	for _, line := range snap.Payload.OrderedTeams {
		if line.TeamID != memory.TeamIDBlue {
			continue
		}
		found = true
		if line.DayPoints != 30 || line.TotalPointsAfterDay != 30 {
			t.Fatalf("unexpected blue snapshot line: %+v", line)
		}
	}
	if !found {
		t.Fatalf("blue missing from snapshot")
	}
	if snap.Payload.OrderedTeams[0].TeamID != memory.TeamIDBlue {
		t.Fatalf("expected Blue to lead, got %s", snap.Payload.OrderedTeams[0].TeamID)
	}
	if snap.LockedBy != "judge-budi" {
		t.Fatalf("expected locked_by recorded, got %q", snap.LockedBy)
	}

	_, err = sb.scores.AddPoints(ctx, AddPointsInput{
		GameID:    testGame,
		Day:       testToday,
		TeamID:    memory.TeamIDBlue,
		Points:    5,
		CreatedBy: "judge-ayu",
	})
	var locked *DayLockedError
	if !errors.As(err, &locked) || locked.Day != testToday {
		t.Fatalf("expected DayLockedError for %s, got %v", testToday, err)
	}
	if sb.total(t, memory.TeamIDBlue) != 30 {
		t.Fatalf("rejected write must not change the total")
	}
	if sb.metrics.Count("rejected:award:day_locked") != 1 {
		t.Fatalf("expected day lock rejection to be counted")
	}

	want := []string{EventScoreRecorded, EventScoreRecorded, EventScoreUndone, EventDayRevealed}
	got := sb.events.types()
	if len(got) != len(want) {
		t.Fatalf("unexpected events: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got=%s want=%s", i, got[i], want[i])
		}
	}
}

func TestScoreboard_DayLockOnlyBlocksThatDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	if _, err := sb.reveal.RevealDay(ctx, RevealDayInput{Day: "2025-07-03"}); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	_, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: "2025-07-03", TeamID: memory.TeamIDRed, Points: 10, CreatedBy: "judge"})
	if !errors.Is(err, ErrDayLocked) {
		t.Fatalf("expected ErrDayLocked, got %v", err)
	}
	if _, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDRed, Points: 10, CreatedBy: "judge"}); err != nil {
		t.Fatalf("expected other day to accept writes, got %v", err)
	}
}

func TestScoreboard_RejectedWriteDoesNotCreateRound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)
	if _, err := sb.reveal.RevealDay(ctx, RevealDayInput{Day: testToday}); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	_, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: "game-quiz", Day: testToday, TeamID: memory.TeamIDRed, Points: 10, CreatedBy: "judge"})
	if !errors.Is(err, ErrDayLocked) {
		t.Fatalf("expected ErrDayLocked, got %v", err)
	}
	recent, _ := sb.leaderboard.RecentEntries(ctx, 0)
	if len(recent) != 0 {
		t.Fatalf("expected no entries, got %d", len(recent))
	}
}

func TestScoreboard_SecondRevealFailsAndKeepsSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	if _, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDGreen, Points: 20, CreatedBy: "judge"}); err != nil {
		t.Fatalf("add points: %v", err)
	}
	first, err := sb.reveal.RevealDay(ctx, RevealDayInput{Day: testToday, LockedBy: "first"})
	if err != nil {
		t.Fatalf("first reveal: %v", err)
	}

	_, err = sb.reveal.RevealDay(ctx, RevealDayInput{Day: testToday, LockedBy: "second"})
	if !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("expected ErrAlreadyLocked, got %v", err)
	}

	stored, err := sb.reveal.GetSnapshot(ctx, testToday)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if stored.ID != first.ID || stored.LockedBy != "first" {
		t.Fatalf("existing snapshot was altered: %+v", stored)
	}
}

func TestScoreboard_ConcurrentRevealsLockOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	const callers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	var okCount, lockedCount int
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sb.reveal.RevealDay(ctx, RevealDayInput{Day: testToday})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				okCount++
			case errors.Is(err, ErrAlreadyLocked):
				lockedCount++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if okCount != 1 || lockedCount != callers-1 {
		t.Fatalf("expected exactly one reveal, got ok=%d locked=%d", okCount, lockedCount)
	}
}

func TestScoreboard_UndoTwice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	award, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDYellow, PlayerID: "player-yoga", Points: 15, CreatedBy: "judge"})
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	first, err := sb.undo.Undo(ctx, UndoInput{EntryID: award.Entries[0].ID, CreatedBy: "judge"})
	if err != nil {
		t.Fatalf("first undo: %v", err)
	}
	if first.NewTotal != 0 {
		t.Fatalf("expected total back to 0, got %d", first.NewTotal)
	}

	_, err = sb.undo.Undo(ctx, UndoInput{EntryID: award.Entries[0].ID, CreatedBy: "judge"})
	var already *AlreadyUndoneError
	if !errors.As(err, &already) || already.ReversalID != first.Reversal.ID {
		t.Fatalf("expected AlreadyUndoneError naming %s, got %v", first.Reversal.ID, err)
	}

	_, err = sb.undo.Undo(ctx, UndoInput{EntryID: first.Reversal.ID, CreatedBy: "judge"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected undo of an undo to be rejected, got %v", err)
	}
	if sb.total(t, memory.TeamIDYellow) != 0 {
		t.Fatalf("rejected undos must not change the total")
	}
}

func TestScoreboard_UndoUnknownEntry(t *testing.T) {
	t.Parallel()

	_, err := newScoreboard(t).undo.Undo(context.Background(), UndoInput{EntryID: "missing", CreatedBy: "judge"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScoreboard_UndoOnLockedDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	award, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDRed, Points: 10, CreatedBy: "judge"})
	if err != nil {
		t.Fatalf("add points: %v", err)
	}
	if _, err := sb.reveal.RevealDay(ctx, RevealDayInput{Day: testToday}); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	_, err = sb.undo.Undo(ctx, UndoInput{EntryID: award.Entries[0].ID, CreatedBy: "judge"})
	if !errors.Is(err, ErrDayLocked) {
		t.Fatalf("expected ErrDayLocked, got %v", err)
	}
}

func TestScoreboard_ConcurrentUndoOnlyOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	award, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDGreen, Points: 40, CreatedBy: "judge"})
	if err != nil {
		t.Fatalf("add points: %v", err)
	}

	const callers = 6
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := sb.undo.Undo(ctx, UndoInput{EntryID: award.Entries[0].ID, CreatedBy: "judge"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var okCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		case !errors.Is(err, ErrAlreadyUndone):
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 {
		t.Fatalf("expected one successful undo, got %d", okCount)
	}
	if sb.total(t, memory.TeamIDGreen) != 0 {
		t.Fatalf("expected total 0, got %d", sb.total(t, memory.TeamIDGreen))
	}
}

func TestScoreboard_ConcurrentIncrementsConverge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	var wg sync.WaitGroup
	for _, points := range []int64{10, 15} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDRed, Points: points, CreatedBy: "judge"}); err != nil {
				t.Errorf("add points: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := sb.total(t, memory.TeamIDRed); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
}

func TestScoreboard_ConcurrentResolveReturnsOneRound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := sb.rounds.Resolve(ctx, ResolveRoundInput{GameID: testGame, Day: "2025-07-03"})
			if err != nil {
				t.Errorf("resolve round: %v", err)
				return
			}
			ids[i] = r.ID
		}()
	}
	wg.Wait()

	for i, got := range ids {
		if got == "" || got != ids[0] {
			t.Fatalf("caller %d got round %q, expected %q", i, got, ids[0])
		}
	}
}

func TestScoreboard_AggregateMatchesLedgerAfterMixedWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			points := int64(i%7 + 1)
			if i%3 == 0 {
				points = -points
			}
			res, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDBlue, PlayerID: "player-bima", Points: points, CreatedBy: "judge"})
			if err != nil {
				t.Errorf("add points: %v", err)
				return
			}
			if i%4 == 0 {
				if _, err := sb.undo.Undo(ctx, UndoInput{EntryID: res.Entries[0].ID, CreatedBy: "judge"}); err != nil {
					t.Errorf("undo: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	if got, want := sb.total(t, memory.TeamIDBlue), sb.ledgerSum(t, memory.TeamIDBlue); got != want {
		t.Fatalf("aggregate %d does not match ledger %d", got, want)
	}
}

func TestScoreboard_MissingAggregateRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)
	if err := sb.store.Aggregates().Drop(ctx, memory.TeamIDRed); err != nil {
		t.Fatalf("drop aggregate: %v", err)
	}

	_, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDRed, Points: 10, CreatedBy: "judge"})
	var inconsistent *AggregateInconsistencyError
	if !errors.As(err, &inconsistent) || inconsistent.TeamID != memory.TeamIDRed || inconsistent.Delta != 10 {
		t.Fatalf("expected AggregateInconsistencyError, got %v", err)
	}
	if got := sb.ledgerSum(t, memory.TeamIDRed); got != 0 {
		t.Fatalf("ledger row must be rolled back with the failed increment, ledger=%d", got)
	}
}

func TestScoreboard_RevealSnapshotArithmeticAcrossDays(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	writes := []struct {
		day    round.Day
		team   string
		points int64
	}{
		{"2025-07-01", memory.TeamIDRed, 20},
		{"2025-07-02", memory.TeamIDRed, 5},
		{"2025-07-02", memory.TeamIDGreen, 30},
		{"2025-07-03", memory.TeamIDGreen, 100},
	}
	for _, w := range writes {
		if _, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: w.day, TeamID: w.team, Points: w.points, CreatedBy: "judge"}); err != nil {
			t.Fatalf("add points: %v", err)
		}
	}

	snap, err := sb.reveal.RevealDay(ctx, RevealDayInput{Day: "2025-07-02"})
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	lines := map[string][2]int64{}
	for _, line := range snap.Payload.OrderedTeams {
		lines[line.TeamID] = [2]int64{line.DayPoints, line.TotalPointsAfterDay}
	}
	if lines[memory.TeamIDRed] != [2]int64{5, 25} {
		t.Fatalf("unexpected red line: %v", lines[memory.TeamIDRed])
	}
	if lines[memory.TeamIDGreen] != [2]int64{30, 30} {
		t.Fatalf("unexpected green line: %v", lines[memory.TeamIDGreen])
	}
	if snap.Payload.OrderedTeams[0].TeamID != memory.TeamIDGreen || snap.Payload.OrderedTeams[1].TeamID != memory.TeamIDRed {
		t.Fatalf("unexpected order: %+v", snap.Payload.OrderedTeams)
	}
	if len(snap.Payload.OrderedTeams) != 4 {
		t.Fatalf("every team must be listed, got %d", len(snap.Payload.OrderedTeams))
	}
}

func TestScoreboard_ReconcileRepairsDrift(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	if _, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDBlue, Points: 40, CreatedBy: "judge"}); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if err := sb.store.Aggregates().Set(ctx, memory.TeamIDBlue, 999, time.Now()); err != nil {
		t.Fatalf("corrupt aggregate: %v", err)
	}
	if err := sb.store.Aggregates().Drop(ctx, memory.TeamIDYellow); err != nil {
		t.Fatalf("drop aggregate: %v", err)
	}

	dry, err := sb.reconcile.Reconcile(ctx, ReconcileInput{DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if dry.DriftCount != 2 || dry.RepairedCount != 0 || dry.TeamCount != 4 {
		t.Fatalf("unexpected dry run result: %+v", dry)
	}
	if sb.total(t, memory.TeamIDBlue) != 999 {
		t.Fatalf("dry run must not write")
	}

	res, err := sb.reconcile.Reconcile(ctx, ReconcileInput{})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.RepairedCount != 2 || res.FailedCount != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	for _, item := range res.Teams {
		if item.TeamID == memory.TeamIDBlue && (item.StoredTotal != 999 || item.LedgerTotal != 40 || item.Drift != 959) {
			t.Fatalf("unexpected blue item: %+v", item)
		}
	}
	if sb.total(t, memory.TeamIDBlue) != 40 || sb.total(t, memory.TeamIDYellow) != 0 {
		t.Fatalf("expected aggregates rebuilt from the ledger")
	}

	again, err := sb.reconcile.Reconcile(ctx, ReconcileInput{TeamIDs: []string{memory.TeamIDBlue, memory.TeamIDBlue}})
	if err != nil {
		t.Fatalf("reconcile again: %v", err)
	}
	if again.TeamCount != 1 || again.DriftCount != 0 {
		t.Fatalf("expected clean single-team run, got %+v", again)
	}

	if _, err := sb.reconcile.Reconcile(ctx, ReconcileInput{TeamIDs: []string{"team-ghost"}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown team, got %v", err)
	}
}

func TestScoreboard_LiveLeaderboardReadsYourWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	if _, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDYellow, PlayerID: "player-yuni", Points: 12, CreatedBy: "judge"}); err != nil {
		t.Fatalf("add points: %v", err)
	}
	rows, err := sb.leaderboard.Live(ctx)
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if rows[0].TeamID != memory.TeamIDYellow || rows[0].Points != 12 || rows[0].Rank != 1 {
		t.Fatalf("expected Yellow leading with 12, got %+v", rows[0])
	}
	if len(rows[0].TopPlayers) != 1 || rows[0].TopPlayers[0].Name != "Yuni" {
		t.Fatalf("unexpected top players: %+v", rows[0].TopPlayers)
	}
	// Remaining teams tie at zero and fall back to name order.
	if rows[1].Name != "Blue" || rows[2].Name != "Green" || rows[3].Name != "Red" {
		t.Fatalf("unexpected tie order: %s %s %s", rows[1].Name, rows[2].Name, rows[3].Name)
	}
}

func TestScoreboard_GameStandings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sb := newScoreboard(t)

	if _, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: "game-quiz", Day: testToday, TeamID: memory.TeamIDRed, Points: 7, CreatedBy: "judge"}); err != nil {
		t.Fatalf("add points: %v", err)
	}
	if _, err := sb.scores.AddPoints(ctx, AddPointsInput{GameID: testGame, Day: testToday, TeamID: memory.TeamIDGreen, Points: 70, CreatedBy: "judge"}); err != nil {
		t.Fatalf("add points: %v", err)
	}

	g, rows, err := sb.leaderboard.GameStandings(ctx, "game-quiz")
	if err != nil {
		t.Fatalf("game standings: %v", err)
	}
	if g.Slug != "quiz" || rows[0].TeamID != memory.TeamIDRed || rows[0].Points != 7 {
		t.Fatalf("unexpected standings: %+v", rows)
	}

	if _, _, err := sb.leaderboard.GameStandings(ctx, "game-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
