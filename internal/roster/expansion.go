package roster

import (
	"encoding/json"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

// KeySet is an immutable set of node keys. Operations return new sets.
type KeySet struct {
	keys  []string
	index map[string]struct{}
}

// NewKeySet builds a set from keys, ignoring duplicates.
func NewKeySet(keys ...string) KeySet {
	s := KeySet{index: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		if _, ok := s.index[k]; ok {
			continue
		}
		s.index[k] = struct{}{}
		s.keys = append(s.keys, k)
	}
	return s
}

// Has reports membership.
func (s KeySet) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Len returns the number of keys.
func (s KeySet) Len() int {
	return len(s.keys)
}

// Keys returns the members in insertion order.
func (s KeySet) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Equal reports whether both sets hold the same members.
func (s KeySet) Equal(other KeySet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, k := range s.keys {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as an array.
func (s KeySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

// UnmarshalJSON decodes an array of keys.
func (s *KeySet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*s = NewKeySet(keys...)
	return nil
}

// Toggle returns a copy of set with key's membership flipped.
func Toggle(set KeySet, key string) KeySet {
	keys := make([]string, 0, set.Len()+1)
	found := false
	for _, k := range set.keys {
		if k == key {
			found = true
			continue
		}
		keys = append(keys, k)
	}
	if !found {
		keys = append(keys, key)
	}
	return NewKeySet(keys...)
}

// TeamNodeKey disambiguates identically named teams across divisions.
func TeamNodeKey(division, initial string) string {
	return division + "-" + initial
}

// Expansion records which division and team nodes are open.
type Expansion struct {
	Divisions KeySet `json:"divisions"`
	Teams     KeySet `json:"teams"`
}

// IsDivisionExpanded reports whether the division node is open.
func (e Expansion) IsDivisionExpanded(key string) bool {
	return e.Divisions.Has(key)
}

// IsTeamExpanded reports whether the team node (see TeamNodeKey) is open.
func (e Expansion) IsTeamExpanded(key string) bool {
	return e.Teams.Has(key)
}

// ToggleDivision returns a new Expansion with the division flipped.
func (e Expansion) ToggleDivision(key string) Expansion {
	e.Divisions = Toggle(e.Divisions, key)
	return e
}

// ToggleTeam returns a new Expansion with the team flipped.
func (e Expansion) ToggleTeam(key string) Expansion {
	e.Teams = Toggle(e.Teams, key)
	return e
}

// ExpandAll opens every division and team derivable from records.
func ExpandAll(records []domainroster.Person) Expansion {
	divisions := make([]string, 0)
	teams := make([]string, 0)
	for _, p := range records {
		division := p.DivisionKey()
		divisions = append(divisions, division)
		teams = append(teams, TeamNodeKey(division, p.TeamInitialKey()))
	}
	return Expansion{
		Divisions: NewKeySet(divisions...),
		Teams:     NewKeySet(teams...),
	}
}
