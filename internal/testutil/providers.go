package testutil

import (
	"context"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/providers"
)

// GoodProvider returns the provided records with no error.
type GoodProvider struct {
	Records []domainroster.Person
}

func (p GoodProvider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	_ = ctx
	return p.Records, nil
}

// ErrProvider always returns the provided error.
type ErrProvider struct {
	Err error
}

func (p ErrProvider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	_ = ctx
	return nil, p.Err
}

// EmptyProvider returns no records, no error.
type EmptyProvider struct{}

func (EmptyProvider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	_ = ctx
	return []domainroster.Person{}, nil
}

// UnavailableProvider returns ErrProviderUnavailable.
type UnavailableProvider struct{}

func (UnavailableProvider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	_ = ctx
	return nil, providers.ErrProviderUnavailable
}
