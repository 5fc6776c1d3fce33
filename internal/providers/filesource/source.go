package filesource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/providers"
)

// Source reads the roster JSON array from a local file on every fetch.
type Source struct {
	path      string
	overrides providers.PhotoOverrides
}

// New returns a file-backed source.
func New(path string, overrides map[string]string) *Source {
	return &Source{path: path, overrides: overrides}
}

// Name identifies the source in logs and metrics.
func (s *Source) Name() string {
	return "file"
}

// FetchRoster decodes the file. A missing path reports ErrProviderUnavailable.
func (s *Source) FetchRoster(ctx context.Context) ([]domainroster.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path == "" {
		return nil, providers.ErrProviderUnavailable
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open roster file: %w", err)
	}
	defer f.Close()

	var records []domainroster.Person
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode roster file %s: %w", s.path, err)
	}
	return providers.NormalizeRecords(records, s.overrides), nil
}
