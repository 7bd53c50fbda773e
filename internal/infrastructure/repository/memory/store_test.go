package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/round"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
)

func seededRound(t *testing.T, store *Store) round.Round {
	t.Helper()
	r, err := store.Rounds().Ensure(context.Background(), round.Round{
		ID:          "round-1",
		GameID:      "game-relay",
		Day:         "2025-07-01",
		RoundNumber: round.DefaultRoundNumber,
	})
	if err != nil {
		t.Fatalf("ensure round: %v", err)
	}
	return r
}

func TestStore_WithinTxRollsBackEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(DefaultSeed())
	r := seededRound(t, store)
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context) error {
		if err := store.Entries().Insert(ctx, scoring.Entry{ID: "e-1", RoundID: r.ID, TeamID: TeamIDBlue, Points: 10}); err != nil {
			return err
		}
		if _, _, err := store.Aggregates().Increment(ctx, TeamIDBlue, 10, time.Now()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, ok, _ := store.Entries().GetByID(ctx, "e-1"); ok {
		t.Fatalf("entry must not survive a rolled back transaction")
	}
	agg, _, _ := store.Aggregates().GetByTeam(ctx, TeamIDBlue)
	if agg.TotalPoints != 0 {
		t.Fatalf("aggregate must not survive a rolled back transaction, got %d", agg.TotalPoints)
	}
}

func TestStore_ReadersSeeOnlyCommittedState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(DefaultSeed())
	r := seededRound(t, store)

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.WithinTx(ctx, func(ctx context.Context) error {
			if err := store.Entries().Insert(ctx, scoring.Entry{ID: "e-1", RoundID: r.ID, TeamID: TeamIDBlue, Points: 10}); err != nil {
				return err
			}
			close(inside)
			<-release
			return nil
		})
	}()

	<-inside
	if _, ok, _ := store.Entries().GetByID(ctx, "e-1"); ok {
		t.Fatalf("uncommitted entry visible outside the transaction")
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, ok, _ := store.Entries().GetByID(ctx, "e-1"); !ok {
		t.Fatalf("committed entry not visible")
	}
}

func TestRoundRepository_EnsureIsIdempotentUnderConcurrency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(DefaultSeed())

	const callers = 16
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := store.Rounds().Ensure(ctx, round.Round{
				ID:          "candidate-" + string(rune('a'+i)),
				GameID:      "game-quiz",
				Day:         "2025-07-02",
				RoundNumber: round.DefaultRoundNumber,
			})
			if err != nil {
				t.Errorf("ensure round: %v", err)
				return
			}
			ids[i] = r.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("expected one round id, got %s and %s", ids[0], ids[i])
		}
	}
}

func TestEntryRepository_SecondReversalRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(DefaultSeed())
	r := seededRound(t, store)
	entries := store.Entries()

	original := scoring.Entry{ID: "e-1", RoundID: r.ID, TeamID: TeamIDRed, Points: 10, Reason: "win"}
	if err := entries.Insert(ctx, original); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := entries.Insert(ctx, original.Reversal("e-2", "judge", time.Now())); err != nil {
		t.Fatalf("insert reversal: %v", err)
	}
	err := entries.Insert(ctx, original.Reversal("e-3", "judge", time.Now()))
	if !errors.Is(err, scoring.ErrAlreadyReversed) {
		t.Fatalf("expected ErrAlreadyReversed, got %v", err)
	}

	rev, ok, _ := entries.GetReversalOf(ctx, "e-1")
	if !ok || rev.ID != "e-2" {
		t.Fatalf("expected reversal e-2, got %+v", rev)
	}
}

func TestEntryRepository_RejectsZeroPoints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(DefaultSeed())
	r := seededRound(t, store)

	err := store.Entries().Insert(ctx,
		scoring.Entry{ID: "e-1", RoundID: r.ID, TeamID: TeamIDBlue, Points: 4},
		scoring.Entry{ID: "e-2", RoundID: r.ID, TeamID: TeamIDBlue, Points: 0},
	)
	if err == nil {
		t.Fatalf("expected zero-point entry to be rejected")
	}
	if _, ok, _ := store.Entries().GetByID(ctx, "e-1"); ok {
		t.Fatalf("rejected batch must not leave entries behind")
	}
}

func TestEntryRepository_ListRecentNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(DefaultSeed())
	r := seededRound(t, store)

	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"e-1", "e-2", "e-3"} {
		err := store.Entries().Insert(ctx, scoring.Entry{
			ID: id, RoundID: r.ID, TeamID: TeamIDGreen, PlayerID: "player-gita",
			Points: 5, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := store.Entries().ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "e-3" || got[1].ID != "e-2" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].TeamName != "Green" || got[0].PlayerName != "Gita" || got[0].Day != "2025-07-01" {
		t.Fatalf("expected denormalized view, got %+v", got[0])
	}
}
