package roster

import (
	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

// TeamGroup holds one team's records inside a division.
type TeamGroup struct {
	Initial string
	Records []domainroster.Person
	// positions are the indexes of Records in the sequence given to Aggregate.
	positions []int
}

// RoleCounts summarises a team's personnel by role type.
type RoleCounts struct {
	Players   int `json:"players"`
	Officials int `json:"officials"`
	Total     int `json:"total"`
}

// CountRole counts the team's records with the given role type.
func (g *TeamGroup) CountRole(role string) int {
	n := 0
	for _, p := range g.Records {
		if p.RoleType == role {
			n++
		}
	}
	return n
}

// RoleCounts scans the team's records; counts are never cached since filters change the list.
func (g *TeamGroup) RoleCounts() RoleCounts {
	return RoleCounts{
		Players:   g.CountRole(domainroster.RolePlayer),
		Officials: g.CountRole(domainroster.RoleOfficial),
		Total:     len(g.Records),
	}
}

// Teams maps team keys to their groups in first-occurrence order.
type Teams = OrderedMap[string, *TeamGroup]

// Tree maps division keys to their teams in first-occurrence order.
type Tree struct {
	divisions *OrderedMap[string, *Teams]
}

// Aggregate groups records by division then team in a single pass, preserving first-occurrence order.
func Aggregate(records []domainroster.Person) Tree {
	divisions := NewOrderedMap[string, *Teams]()
	for i, p := range records {
		teams := divisions.GetOrInsert(p.DivisionKey(), NewOrderedMap[string, *TeamGroup])
		group := teams.GetOrInsert(p.TeamKey(), func() *TeamGroup {
			return &TeamGroup{Initial: p.TeamInitialKey()}
		})
		group.Records = append(group.Records, p)
		group.positions = append(group.positions, i)
	}
	return Tree{divisions: divisions}
}

// Divisions returns the division keys in order.
func (t Tree) Divisions() []string {
	return t.divisions.Keys()
}

// Teams returns the teams of a division.
func (t Tree) Teams(division string) (*Teams, bool) {
	if t.divisions == nil {
		return nil, false
	}
	return t.divisions.Get(division)
}

// Team returns one team group.
func (t Tree) Team(division, team string) (*TeamGroup, bool) {
	teams, ok := t.Teams(division)
	if !ok {
		return nil, false
	}
	return teams.Get(team)
}

// Len returns the number of divisions.
func (t Tree) Len() int {
	return t.divisions.Len()
}

// Each visits every division in order.
func (t Tree) Each(fn func(division string, teams *Teams)) {
	t.divisions.Each(fn)
}

// Count sums the records of every team in every division.
func (t Tree) Count() int {
	total := 0
	t.Each(func(_ string, teams *Teams) {
		teams.Each(func(_ string, g *TeamGroup) {
			total += len(g.Records)
		})
	})
	return total
}

// DivisionTotals returns the number of teams and records in a division.
func (t Tree) DivisionTotals(division string) (teamCount, recordCount int) {
	teams, ok := t.Teams(division)
	if !ok {
		return 0, 0
	}
	teams.Each(func(_ string, g *TeamGroup) {
		recordCount += len(g.Records)
	})
	return teams.Len(), recordCount
}
