package fixture

import (
	"context"
	"testing"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

func TestFetchRosterReturnsDeterministicRecords(t *testing.T) {
	p := New(map[string]string{"910919010": "/images/910919010.jpeg"})

	first, err := p.FetchRoster(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, _ := p.FetchRoster(context.Background())
	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("expected stable non-empty roster, got %d and %d", len(first), len(second))
	}
	if first[0].Photo != "/images/910919010.jpeg" {
		t.Fatalf("expected photo override on first record, got %q", first[0].Photo)
	}
	if p.Name() != "fixture" {
		t.Fatalf("unexpected name %s", p.Name())
	}
}

func TestFixtureCoversFallbacksAndDuplicates(t *testing.T) {
	records, err := Records()
	if err != nil {
		t.Fatalf("expected embedded roster to decode, got %v", err)
	}

	licenses := make(map[string]int)
	var unspecified bool
	for _, r := range records {
		licenses[r.LicenseNumber]++
		if r.DivisionKey() == domainroster.UnspecifiedDivision {
			unspecified = true
		}
	}
	if !unspecified {
		t.Fatal("expected a record without division")
	}
	var dup bool
	for _, n := range licenses {
		if n > 1 {
			dup = true
		}
	}
	if !dup {
		t.Fatal("expected a duplicated license number")
	}
}

func TestFetchRosterHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(nil).FetchRoster(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
