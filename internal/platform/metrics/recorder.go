package metrics

import (
	"sync"
	"time"
)

// Recorder counts scoreboard activity in process and forwards it to the
// OpenTelemetry instruments when metrics export is enabled. A nil Recorder
// drops everything.
type Recorder struct {
	mu       sync.Mutex
	counts   map[string]int64
	lastSeen map[string]time.Time
	otel     *otelInstruments
	now      func() time.Time
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		counts:   make(map[string]int64),
		lastSeen: make(map[string]time.Time),
		otel:     otel,
		now:      time.Now,
	}
}

// RecordEntries counts ledger rows written. kind is award, team or undo.
func (r *Recorder) RecordEntries(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.add("entries:"+kind, int64(n))
	if r.otel != nil {
		r.otel.recordEntries(kind, n)
	}
}

// RecordRejected counts writes refused with a domain reason such as
// day_locked or already_undone.
func (r *Recorder) RecordRejected(kind, reason string) {
	if r == nil {
		return
	}
	r.add("rejected:"+kind+":"+reason, 1)
	if r.otel != nil {
		r.otel.recordRejected(kind, reason)
	}
}

func (r *Recorder) RecordReveal(duration time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.add("reveal:"+result, 1)
	if r.otel != nil {
		r.otel.recordReveal(duration, result)
	}
}

// RecordDrift tracks aggregate drift found by reconciliation.
func (r *Recorder) RecordDrift(teamID string, drift int64, repaired bool) {
	if r == nil || drift == 0 {
		return
	}
	r.add("drift", 1)
	if repaired {
		r.add("drift:repaired", 1)
	}
	if r.otel != nil {
		r.otel.recordDrift(teamID, drift, repaired)
	}
}

func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, route, status, duration)
}

// Count returns the in-process counter for key, for example
// "entries:award" or "rejected:award:day_locked".
func (r *Recorder) Count(key string) int64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[key]
}

// LastSeen returns when key was last incremented.
func (r *Recorder) LastSeen(key string) time.Time {
	if r == nil {
		return time.Time{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSeen[key]
}

func (r *Recorder) add(key string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[key] += n
	r.lastSeen[key] = r.now()
}
