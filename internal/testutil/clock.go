package testutil

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// MustParseRFC3339 parses an RFC3339 timestamp or panics; intended for tests.
func MustParseRFC3339(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return t
}

// FakeClockAt returns a fake clock set to the RFC3339 timestamp.
func FakeClockAt(v string) *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(MustParseRFC3339(v))
}
