package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/user"
	"github.com/riskibarqy/camp-scoreboard/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/id"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/metrics"
	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
)

const (
	testAdminToken = "admin-secret"
	testJobToken   = "job-secret"
	testDay        = "2025-07-04"
)

type stubVerifier struct{}

func (stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token != testAdminToken {
		return user.Principal{}, fmt.Errorf("%w: unknown admin token", usecase.ErrUnauthorized)
	}
	return user.Principal{Identity: "kak-rina"}, nil
}

type envelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *metrics.Recorder) {
	t.Helper()

	store := memory.NewStore(memory.DefaultSeed())
	idGen := id.NewSequenceGenerator("id")
	recorder := metrics.NewRecorder()
	logger := logging.NewNop()
	publisher := usecase.NewLogEventPublisher(logger)

	rounds := usecase.NewRoundService(store.Games(), store.Rounds(), idGen)
	scores := usecase.NewScoreService(store, store.Teams(), store.Players(), rounds, store.Entries(), store.Aggregates(), store.Snapshots(), idGen, publisher, recorder, usecase.DefaultScoringConfig(), logger)
	undo := usecase.NewUndoService(store, store.Entries(), store.Aggregates(), store.Snapshots(), idGen, publisher, recorder, 0, logger)
	reveal := usecase.NewRevealService(store, store.Teams(), store.Entries(), store.Snapshots(), idGen, publisher, recorder, logger)

	handler := NewHandler(
		usecase.NewDirectoryService(store.Teams(), store.Games(), store.Players()),
		usecase.NewLeaderboardService(store.Teams(), store.Games(), store.Entries(), store.Aggregates(), 0),
		rounds,
		scores,
		undo,
		reveal,
		usecase.NewReconcileService(store, store.Teams(), store.Entries(), store.Aggregates(), recorder, 2, logger),
		logger,
	)

	return NewRouter(handler, stubVerifier{}, logger, recorder, RouterConfig{
		ServiceName:      "camp-scoreboard",
		InternalJobToken: testJobToken,
	}), recorder
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func adminHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testAdminToken}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var out envelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	return out
}

func errorReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	body := decodeBody[any](t, rec)
	if body.Error == nil || len(body.Error.Errors) == 0 {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
	return body.Error.Errors[0].Reason
}

func TestRouter_AdminRoutesRequireBearerToken(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	payload := `{"game_id":"game-relay","day":"2025-07-04","team_id":"team-blue","points":10}`

	rec := doRequest(t, router, http.MethodPost, "/v1/admin/scores", payload, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/admin/scores", payload, map[string]string{"Authorization": "Bearer wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for unknown token, got %d", rec.Code)
	}
	if got := errorReason(t, rec); got != "unauthorized" {
		t.Fatalf("unexpected reason: %s", got)
	}
}

func TestRouter_ScoreUndoRevealFlow(t *testing.T) {
	t.Parallel()

	router, recorder := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/admin/scores",
		`{"game_id":"game-relay","day":"2025-07-04","team_id":"team-blue","points":50,"reason":"night game"}`, adminHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	award := decodeBody[scoreResultDTO](t, rec)
	if award.Data.NewTotal != 50 || len(award.Data.Entries) != 1 {
		t.Fatalf("unexpected award result: %+v", award.Data)
	}
	if award.Data.Entries[0].CreatedBy != "kak-rina" {
		t.Fatalf("expected created_by from principal, got %q", award.Data.Entries[0].CreatedBy)
	}
	entryID := award.Data.Entries[0].ID

	rec = doRequest(t, router, http.MethodPost, "/v1/admin/scores/team",
		`{"game_id":"game-relay","day":"2025-07-04","team_id":"team-blue","total_points":30,"distribution":{"player-bima":10,"player-bunga":10,"player-bayu":10}}`, adminHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 for team split, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody[scoreResultDTO](t, rec).Data.NewTotal; got != 80 {
		t.Fatalf("expected total 80, got %d", got)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/admin/scores/"+entryID+"/undo", "", adminHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 for undo, got %d: %s", rec.Code, rec.Body.String())
	}
	undone := decodeBody[undoResultDTO](t, rec)
	if undone.Data.NewTotal != 30 || undone.Data.Reversal.Points != -50 || undone.Data.Reversal.ReversalOf != entryID {
		t.Fatalf("unexpected undo result: %+v", undone.Data)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/admin/scores/"+entryID+"/undo", "", adminHeaders())
	if rec.Code != http.StatusConflict || errorReason(t, rec) != "alreadyUndone" {
		t.Fatalf("expected 409 alreadyUndone, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/leaderboard", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	board := decodeBody[[]standingRowDTO](t, rec)
	if len(board.Data) != 4 || board.Data[0].TeamID != memory.TeamIDBlue || board.Data[0].Points != 30 || board.Data[0].Rank != 1 {
		t.Fatalf("unexpected leaderboard: %+v", board.Data)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/admin/days/"+testDay+"/reveal", "", adminHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 for reveal, got %d: %s", rec.Code, rec.Body.String())
	}
	revealed := decodeBody[snapshotDTO](t, rec)
	if revealed.Data.LockedBy != "kak-rina" || len(revealed.Data.Snapshot.OrderedTeams) != 4 {
		t.Fatalf("unexpected snapshot: %+v", revealed.Data)
	}
	if first := revealed.Data.Snapshot.OrderedTeams[0]; first.TeamID != memory.TeamIDBlue || first.DayPoints != 30 || first.TotalPointsAfterDay != 30 {
		t.Fatalf("unexpected first team in snapshot: %+v", first)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/admin/days/"+testDay+"/reveal", "", adminHeaders())
	if rec.Code != http.StatusConflict || errorReason(t, rec) != "alreadyLocked" {
		t.Fatalf("expected 409 alreadyLocked, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/admin/scores",
		`{"game_id":"game-relay","day":"2025-07-04","team_id":"team-red","points":5}`, adminHeaders())
	if rec.Code != http.StatusConflict || errorReason(t, rec) != "dayLocked" {
		t.Fatalf("expected 409 dayLocked, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := recorder.Count("rejected:award:day_locked"); got != 1 {
		t.Fatalf("expected one day_locked rejection, got %d", got)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/snapshots/"+testDay, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for snapshot, got %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/v1/snapshots", "", nil)
	if list := decodeBody[[]snapshotSummaryDTO](t, rec); len(list.Data) != 1 || list.Data[0].Leader != memory.TeamIDBlue {
		t.Fatalf("unexpected snapshot list: %+v", list.Data)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/scores/recent?limit=2", "", nil)
	recent := decodeBody[[]entryViewDTO](t, rec)
	if len(recent.Data) != 2 || recent.Data[0].ReversalOf != entryID {
		t.Fatalf("expected the reversal first in recent scores, got %+v", recent.Data)
	}
}

func TestRouter_RejectsBadPayloads(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "unknown field", path: "/v1/admin/scores", body: `{"team_id":"team-blue","points":1,"game_id":"game-relay","bonus":true}`},
		{name: "zero points", path: "/v1/admin/scores", body: `{"team_id":"team-blue","points":0,"game_id":"game-relay"}`},
		{name: "no game or round", path: "/v1/admin/scores", body: `{"team_id":"team-blue","points":3}`},
		{name: "bad day", path: "/v1/admin/scores", body: `{"team_id":"team-blue","points":3,"game_id":"game-relay","day":"04/07/2025"}`},
		{name: "empty body", path: "/v1/admin/rounds/resolve", body: ""},
		{name: "empty distribution", path: "/v1/admin/scores/team", body: `{"game_id":"game-relay","team_id":"team-blue","total_points":5,"distribution":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, tt.path, tt.body, adminHeaders())
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if got := errorReason(t, rec); got != "invalidInput" {
				t.Fatalf("unexpected reason: %s", got)
			}
		})
	}
}

func TestRouter_ResolveRoundIsIdempotent(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	body := `{"game_id":"game-quiz","day":"2025-07-05"}`

	first := decodeBody[roundDTO](t, doRequest(t, router, http.MethodPost, "/v1/admin/rounds/resolve", body, adminHeaders()))
	second := decodeBody[roundDTO](t, doRequest(t, router, http.MethodPost, "/v1/admin/rounds/resolve", body, adminHeaders()))
	if first.Data.ID == "" || first.Data.ID != second.Data.ID {
		t.Fatalf("expected the same round twice, got %q and %q", first.Data.ID, second.Data.ID)
	}
	if first.Data.RoundNumber != 1 || first.Data.Day != "2025-07-05" {
		t.Fatalf("unexpected round: %+v", first.Data)
	}

	rec := doRequest(t, router, http.MethodPost, "/v1/admin/rounds/resolve", `{"game_id":"game-missing","day":"2025-07-05"}`, adminHeaders())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestRouter_PublicReads(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	teams := decodeBody[[]teamDTO](t, doRequest(t, router, http.MethodGet, "/v1/teams", "", nil))
	if len(teams.Data) != 4 {
		t.Fatalf("expected 4 teams, got %d", len(teams.Data))
	}
	players := decodeBody[[]playerDTO](t, doRequest(t, router, http.MethodGet, "/v1/teams/team-red/players", "", nil))
	if len(players.Data) != 2 {
		t.Fatalf("expected 2 red players, got %+v", players.Data)
	}
	games := decodeBody[[]gameDTO](t, doRequest(t, router, http.MethodGet, "/v1/games", "", nil))
	if len(games.Data) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games.Data))
	}

	rec := doRequest(t, router, http.MethodGet, "/v1/games/game-relay/standings", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	standings := decodeBody[gameStandingsDTO](t, rec)
	if standings.Data.Game.ID != "game-relay" || len(standings.Data.Teams) != 4 {
		t.Fatalf("unexpected standings: %+v", standings.Data)
	}

	if rec := doRequest(t, router, http.MethodGet, "/v1/snapshots/not-a-day", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad day, got %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/v1/snapshots/2025-07-09", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unrevealed day, got %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for healthz, got %d", rec.Code)
	}
}

func TestRouter_ReconcileJobRequiresToken(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/internal/jobs/reconcile", `{"dry_run":true}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/internal/jobs/reconcile", "", map[string]string{"X-Internal-Job-Token": testJobToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decodeBody[usecase.ReconcileResult](t, rec)
	if result.Data.TeamCount != 4 || result.Data.DriftCount != 0 {
		t.Fatalf("unexpected reconcile result: %+v", result.Data)
	}
}

func TestRecoverPanic_WritesGenericError(t *testing.T) {
	t.Parallel()

	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/teams", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("panic value leaked into response: %s", rec.Body.String())
	}
}
