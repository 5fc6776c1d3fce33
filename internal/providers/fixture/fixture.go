package fixture

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/providers"
)

//go:embed roster.json
var rosterJSON []byte

// Provider returns a static roster useful for local testing and bootstrapping.
type Provider struct {
	overrides providers.PhotoOverrides
}

// New creates a fixture provider. Photo overrides are applied like any other source.
func New(overrides map[string]string) *Provider {
	return &Provider{overrides: overrides}
}

// Name identifies the source in logs and metrics.
func (p *Provider) Name() string {
	return "fixture"
}

// FetchRoster returns a deterministic roster spanning two divisions plus records
// exercising the fallback labels and a duplicated license number.
func (p *Provider) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := Records()
	if err != nil {
		return nil, err
	}
	return providers.NormalizeRecords(records, p.overrides), nil
}

// Records decodes the embedded roster.
func Records() ([]domainroster.Person, error) {
	var records []domainroster.Person
	if err := json.Unmarshal(rosterJSON, &records); err != nil {
		return nil, fmt.Errorf("decode fixture roster: %w", err)
	}
	return records, nil
}
