package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRecorderTracksSourceAttemptsAndErrors(t *testing.T) {
	rec := NewRecorder()
	rec.RecordSourceAttempt("http", 10*time.Millisecond, nil)
	rec.RecordSourceAttempt("http", 15*time.Millisecond, errors.New("boom"))

	if got := rec.SourceCalls("http"); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if got := rec.SourceErrors("http"); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if got := rec.LastCallLatency("http"); got != 15*time.Millisecond {
		t.Fatalf("expected last latency to be 15ms, got %s", got)
	}

	snap := rec.Snapshot("http")
	if snap.Calls != 2 || snap.Errors != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if got := rec.Snapshot("unknown"); got != (Snapshot{}) {
		t.Fatalf("expected empty snapshot for unknown source, got %+v", got)
	}
}

func TestRecorderTracksRateLimits(t *testing.T) {
	rec := NewRecorder()
	rec.RecordRateLimit("http", 5*time.Second)
	rec.RecordRateLimit("http", 0)

	if got := rec.RateLimitHits("http"); got != 2 {
		t.Fatalf("expected 2 rate limit hits, got %d", got)
	}
	if got := rec.LastRetryAfter("http"); got != 5*time.Second {
		t.Fatalf("expected last retry-after to be 5s, got %s", got)
	}
}

func TestRecorderTracksRefreshes(t *testing.T) {
	rec := NewRecorder()
	rec.RecordRefresh(time.Millisecond, 42, nil)
	rec.RecordRefresh(time.Millisecond, 0, errors.New("down"))

	total, failed := rec.Refreshes()
	if total != 2 || failed != 1 {
		t.Fatalf("expected 2 refreshes with 1 failure, got %d/%d", total, failed)
	}
	if rec.RosterSize() != 0 {
		t.Fatalf("expected roster size reset after failed load, got %d", rec.RosterSize())
	}
}

func TestRecorderTracksLogins(t *testing.T) {
	rec := NewRecorder()
	rec.RecordLogin("success")
	rec.RecordLogin("failure")
	rec.RecordLogin("failure")

	if rec.Logins("success") != 1 || rec.Logins("failure") != 2 {
		t.Fatalf("unexpected login counts %d/%d", rec.Logins("success"), rec.Logins("failure"))
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordSourceAttempt("x", time.Millisecond, nil)
	rec.RecordRateLimit("x", time.Second)
	rec.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	rec.RecordRefresh(time.Millisecond, 1, nil)
	rec.RecordLogin("success")
	if rec.SourceCalls("x") != 0 || rec.RosterSize() != 0 || rec.Logins("success") != 0 {
		t.Fatal("expected zero values from nil recorder")
	}
}

func TestRecorderConcurrentUse(t *testing.T) {
	rec := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.RecordSourceAttempt("file", time.Millisecond, nil)
			rec.RecordRefresh(time.Millisecond, 3, nil)
		}()
	}
	wg.Wait()
	if got := rec.SourceCalls("file"); got != 20 {
		t.Fatalf("expected 20 calls, got %d", got)
	}
}
