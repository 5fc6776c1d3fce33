package roster

import (
	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

// Facets lists the options offered by each filter control, All first.
type Facets struct {
	Categories []string `json:"categories"`
	RoleTypes  []string `json:"types"`
	Divisions  []string `json:"leagues"`
}

// ExtractFacets derives the option lists from the full, unfiltered snapshot.
// Values appear once each in first-occurrence order; empty values are skipped,
// except that records without a division contribute the fallback division label.
func ExtractFacets(records []domainroster.Person) Facets {
	categories := newDistinct()
	roleTypes := newDistinct()
	divisions := newDistinct()
	for _, p := range records {
		categories.add(p.Category)
		roleTypes.add(p.RoleType)
		divisions.add(p.DivisionKey())
	}
	return Facets{
		Categories: categories.values,
		RoleTypes:  roleTypes.values,
		Divisions:  divisions.values,
	}
}

type distinct struct {
	seen   map[string]struct{}
	values []string
}

func newDistinct() *distinct {
	return &distinct{seen: make(map[string]struct{}), values: []string{All}}
}

func (d *distinct) add(v string) {
	if v == "" || v == All {
		return
	}
	if _, ok := d.seen[v]; ok {
		return
	}
	d.seen[v] = struct{}{}
	d.values = append(d.values, v)
}
