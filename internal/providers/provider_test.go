package providers

import (
	"context"
	"testing"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

type testProvider struct{}

func (t *testProvider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	_ = ctx
	return nil, nil
}

func TestRosterProviderInterfaceImplemented(t *testing.T) {
	var _ RosterProvider = (*testProvider)(nil)
	var _ RosterProvider = ProviderFunc(nil)
}

func TestProviderFuncDelegates(t *testing.T) {
	called := false
	p := ProviderFunc(func(ctx context.Context) ([]domainroster.Person, error) {
		called = true
		return []domainroster.Person{{FirstName: "A"}}, nil
	})
	got, err := p.FetchRoster(context.Background())
	if err != nil || len(got) != 1 || !called {
		t.Fatalf("expected delegated call, got %v err %v", got, err)
	}
}
