package roster

import (
	"strings"

	"golang.org/x/text/cases"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

// All is the filter sentinel that matches every value.
const All = "ALL"

// Criteria holds the active search term and the three categorical filters.
type Criteria struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	RoleType string `json:"type"`
	Division string `json:"league"`
}

// Normalize trims the search term and maps empty filters to All.
func (c Criteria) Normalize() Criteria {
	c.Search = strings.TrimSpace(c.Search)
	if c.Category == "" {
		c.Category = All
	}
	if c.RoleType == "" {
		c.RoleType = All
	}
	if c.Division == "" {
		c.Division = All
	}
	return c
}

// Matches reports whether p satisfies the search term and every categorical filter.
func Matches(p domainroster.Person, c Criteria) bool {
	return newMatcher(c).match(p)
}

// Filter returns the records matching c, in source order.
func Filter(records []domainroster.Person, c Criteria) []domainroster.Person {
	m := newMatcher(c)
	out := make([]domainroster.Person, 0, len(records))
	for _, p := range records {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out
}

// matcher folds the search term once so a whole snapshot can be scanned with one caser.
type matcher struct {
	criteria Criteria
	term     string
	caser    cases.Caser
}

func newMatcher(c Criteria) *matcher {
	c = c.Normalize()
	m := &matcher{criteria: c, caser: cases.Fold()}
	m.term = m.fold(c.Search)
	return m
}

func (m *matcher) fold(s string) string {
	return m.caser.String(s)
}

func (m *matcher) match(p domainroster.Person) bool {
	return m.matchSearch(p) &&
		matchField(m.criteria.Category, p.Category) &&
		matchField(m.criteria.RoleType, p.RoleType) &&
		matchField(m.criteria.Division, p.DivisionKey())
}

func (m *matcher) matchSearch(p domainroster.Person) bool {
	if m.term == "" {
		return true
	}
	if m.contains(p.FirstName) || m.contains(p.LastName) {
		return true
	}
	if jersey, ok := p.JerseyText(); ok && m.contains(jersey) {
		return true
	}
	return m.contains(p.TeamName)
}

func (m *matcher) contains(field string) bool {
	if field == "" {
		return false
	}
	return strings.Contains(m.fold(field), m.term)
}

func matchField(filter, value string) bool {
	return filter == All || filter == value
}
