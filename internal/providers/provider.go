package providers

import (
	"context"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

// RosterProvider retrieves the full personnel collection from an upstream source.
// Implementations return records in source order; the caller builds the snapshot.
type RosterProvider interface {
	FetchRoster(ctx context.Context) ([]domainroster.Person, error)
}

// ProviderFunc adapts a function to RosterProvider.
type ProviderFunc func(ctx context.Context) ([]domainroster.Person, error)

// FetchRoster calls f.
func (f ProviderFunc) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	return f(ctx)
}

// Closer is implemented by wrappers holding background resources.
type Closer interface {
	Close()
}
