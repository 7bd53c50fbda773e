package standing

import "testing"

func TestRank_TieBreakByNameThenID(t *testing.T) {
	t.Parallel()

	rows := Rank([]Row{
		{TeamID: "t-3", Name: "Red", Points: 40},
		{TeamID: "t-2", Name: "Blue", Points: 40},
		{TeamID: "t-1", Name: "Blue", Points: 40},
		{TeamID: "t-4", Name: "Amber", Points: 55},
	})

	want := []string{"t-4", "t-1", "t-2", "t-3"}
	for i, id := range want {
		if rows[i].TeamID != id {
			t.Fatalf("position %d: got=%s want=%s", i, rows[i].TeamID, id)
		}
		if rows[i].Rank != i+1 {
			t.Fatalf("position %d: rank got=%d want=%d", i, rows[i].Rank, i+1)
		}
	}
}

func TestTopPlayers_SkipsZeroAndLimits(t *testing.T) {
	t.Parallel()

	got := TopPlayers([]PlayerPoints{
		{PlayerID: "p1", Name: "Ann", Points: 10},
		{PlayerID: "p2", Name: "Bob", Points: 0},
		{PlayerID: "p3", Name: "Cid", Points: 25},
		{PlayerID: "p4", Name: "Dee", Points: 10},
		{PlayerID: "p5", Name: "Eve", Points: 5},
	}, TopPlayersLimit)

	if len(got) != 3 {
		t.Fatalf("expected 3 players, got %d", len(got))
	}
	if got[0].PlayerID != "p3" || got[1].PlayerID != "p1" || got[2].PlayerID != "p4" {
		t.Fatalf("unexpected order: %+v", got)
	}
}
