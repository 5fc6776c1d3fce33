package metrics

import "testing"

func TestMetricFieldKeysAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range []string{AttrMethod, AttrPath, AttrStatus, AttrSource, AttrOutcome} {
		if k == "" || seen[k] {
			t.Fatalf("attribute key %q empty or duplicated", k)
		}
		seen[k] = true
	}
}
