package testutil

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"

	approster "github.com/preston-bernstein/roster-service/internal/app/roster"
	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/providers"
	"github.com/preston-bernstein/roster-service/internal/store"
)

// NewRosterService returns a service whose roster was loaded from records.
func NewRosterService(t *testing.T, records []domainroster.Person, clock clockwork.Clock) *approster.Service {
	t.Helper()
	svc := NewServiceWithProvider(GoodProvider{Records: records}, clock)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to load roster: %v", err)
	}
	return svc
}

// NewServiceWithProvider returns an unloaded service backed by an in-memory store.
func NewServiceWithProvider(p providers.RosterProvider, clock clockwork.Clock) *approster.Service {
	return approster.NewService(p, store.NewMemoryStore(), approster.Options{
		Source: "test",
		Clock:  clock,
	})
}
