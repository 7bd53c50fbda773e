package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecorderCountsInProcess(t *testing.T) {
	t.Parallel()

	rec := NewRecorder()
	rec.RecordEntries("award", 2)
	rec.RecordEntries("award", 1)
	rec.RecordEntries("undo", 0)
	rec.RecordRejected("award", "day_locked")
	rec.RecordReveal(time.Millisecond, errors.New("boom"))
	rec.RecordDrift("blue", 5, true)
	rec.RecordDrift("red", 0, false)

	if got := rec.Count("entries:award"); got != 3 {
		t.Fatalf("expected 3 award entries, got %d", got)
	}
	if got := rec.Count("entries:undo"); got != 0 {
		t.Fatalf("expected zero-sized batches ignored, got %d", got)
	}
	if got := rec.Count("rejected:award:day_locked"); got != 1 {
		t.Fatalf("expected 1 rejection, got %d", got)
	}
	if got := rec.Count("reveal:error"); got != 1 {
		t.Fatalf("expected 1 failed reveal, got %d", got)
	}
	if rec.Count("drift") != 1 || rec.Count("drift:repaired") != 1 {
		t.Fatalf("expected one repaired drift")
	}
	if rec.LastSeen("drift").IsZero() {
		t.Fatalf("expected last seen timestamp")
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	t.Parallel()

	var rec *Recorder
	rec.RecordEntries("award", 1)
	rec.RecordRejected("award", "day_locked")
	rec.RecordReveal(time.Second, nil)
	rec.RecordDrift("blue", 1, false)
	rec.RecordHTTPRequest("GET", "/v1/leaderboard", 200, time.Millisecond)
	if rec.Count("entries:award") != 0 {
		t.Fatalf("nil recorder must report zero")
	}
}

func TestSetupDisabledReturnsNoHandler(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("expected no error when disabled, got %v", err)
	}
	if rec == nil || shutdown == nil {
		t.Fatalf("expected recorder and shutdown")
	}
	if handler != nil {
		t.Fatalf("expected nil handler when disabled")
	}
}

func TestSetupEnabledExposesPrometheus(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{
		Enabled:     true,
		ServiceName: "camp-scoreboard-test",
	})
	if err != nil {
		t.Fatalf("setup metrics: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	rec.RecordEntries("award", 1)
	rec.RecordHTTPRequest("POST", "/v1/admin/scores", 201, time.Millisecond)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(resp.Result().Body)
	if !strings.Contains(string(body), "scoreboard_entries_total") {
		t.Fatalf("expected entries counter in exposition, got:\n%s", body)
	}
}
