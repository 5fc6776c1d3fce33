package server

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/roster-service/internal/providers"
)

// normalizeProviderName returns a lower-cased source name, deriving from the instance when not configured.
// Used for metrics labels and the snapshot source field.
func normalizeProviderName(raw string, provider providers.RosterProvider) string {
	if raw != "" {
		return strings.ToLower(raw)
	}
	if named, ok := provider.(interface{ Name() string }); ok && named.Name() != "" {
		return strings.ToLower(named.Name())
	}
	if provider != nil {
		return strings.ToLower(fmt.Sprintf("%T", provider))
	}
	return "provider"
}
