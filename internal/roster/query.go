package roster

import (
	"time"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/timeutil"
)

// DisplayOptions carries the presentation inputs that are not part of the snapshot.
type DisplayOptions struct {
	Now    time.Time
	Locale string
}

// Card is one person as presented, with derived display values.
type Card struct {
	domainroster.Person
	Key              string `json:"key"`
	Age              int    `json:"age"`
	BirthDateDisplay string `json:"birthDateDisplay"`
}

// TeamNode is a team in the presented outline.
type TeamNode struct {
	Name     string     `json:"name"`
	Initial  string     `json:"initial"`
	Key      string     `json:"key"`
	Expanded bool       `json:"expanded"`
	Counts   RoleCounts `json:"counts"`
	Records  []Card     `json:"records"`
}

// DivisionNode is a division in the presented outline.
type DivisionNode struct {
	Division    string     `json:"division"`
	TeamCount   int        `json:"teamCount"`
	RecordCount int        `json:"recordCount"`
	Expanded    bool       `json:"expanded"`
	Teams       []TeamNode `json:"teams"`
}

// View is everything the presentation layer needs for one render.
type View struct {
	Records   []Card         `json:"filteredRecords"`
	Count     int            `json:"count"`
	Tree      Tree           `json:"-"`
	Outline   []DivisionNode `json:"organizedTree"`
	Facets    Facets         `json:"facets"`
	Criteria  Criteria       `json:"criteria"`
	Expansion Expansion      `json:"expansion"`
}

// Query runs the engine over one snapshot. It is pure: the caller supplies the
// expansion state of its session and the display clock.
func Query(snap domainroster.Snapshot, c Criteria, exp Expansion, opts DisplayOptions) View {
	c = c.Normalize()
	m := newMatcher(c)

	filtered := make([]domainroster.Person, 0, len(snap.Records))
	cards := make([]Card, 0, len(snap.Records))
	for i, p := range snap.Records {
		if !m.match(p) {
			continue
		}
		filtered = append(filtered, p)
		cards = append(cards, newCard(p, i, opts))
	}

	tree := Aggregate(filtered)
	return View{
		Records:   cards,
		Count:     len(cards),
		Tree:      tree,
		Outline:   Outline(tree, cards, exp),
		Facets:    ExtractFacets(snap.Records),
		Criteria:  c,
		Expansion: exp,
	}
}

// Outline flattens the tree into presentation nodes. cards must be aligned with
// the sequence the tree was aggregated from.
func Outline(tree Tree, cards []Card, exp Expansion) []DivisionNode {
	nodes := make([]DivisionNode, 0, tree.Len())
	tree.Each(func(division string, teams *Teams) {
		teamCount, recordCount := tree.DivisionTotals(division)
		node := DivisionNode{
			Division:    division,
			TeamCount:   teamCount,
			RecordCount: recordCount,
			Expanded:    exp.IsDivisionExpanded(division),
			Teams:       make([]TeamNode, 0, teams.Len()),
		}
		teams.Each(func(name string, g *TeamGroup) {
			key := TeamNodeKey(division, g.Initial)
			team := TeamNode{
				Name:     name,
				Initial:  g.Initial,
				Key:      key,
				Expanded: exp.IsTeamExpanded(key),
				Counts:   g.RoleCounts(),
				Records:  make([]Card, 0, len(g.positions)),
			}
			for _, pos := range g.positions {
				if pos < len(cards) {
					team.Records = append(team.Records, cards[pos])
				}
			}
			node.Teams = append(node.Teams, team)
		})
		nodes = append(nodes, node)
	})
	return nodes
}

func newCard(p domainroster.Person, index int, opts DisplayOptions) Card {
	card := Card{Person: p, Key: p.CardKey(index)}
	if birth, err := timeutil.ParseBirthDate(p.BirthDate); err == nil {
		card.Age = timeutil.Age(birth, opts.Now)
		card.BirthDateDisplay = timeutil.FormatLocaleDate(birth, opts.Locale)
	}
	return card
}
