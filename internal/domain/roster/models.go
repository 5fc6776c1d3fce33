package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fallback labels used when a record lacks a grouping field.
const (
	UnspecifiedDivision = "Unspecified division"
	UnknownTeam         = "Unknown team"
	UnknownInitial      = "N/A"
)

// Known role types and categories in the federation export.
const (
	RolePlayer    = "Joueur"
	RoleOfficial  = "Dirigeant"
	CategoryElite = "ELITE"
)

// Person is one registered player or staff member as exported by the federation.
// JSON tags follow the upstream export field names.
type Person struct {
	FirstName     string        `json:"name"`
	LastName      string        `json:"lastName"`
	JerseyNumber  *JerseyNumber `json:"playerNum,omitempty"`
	LicenseNumber string        `json:"numLicence"`
	Category      string        `json:"categorie"`
	RoleType      string        `json:"typeInterv"`
	Division      string        `json:"division"`
	TeamName      string        `json:"teamName"`
	TeamInitial   string        `json:"teamInitial"`
	Nationality   string        `json:"nationalite"`
	BirthDate     string        `json:"dateNaissance"`
	Photo         string        `json:"photo,omitempty"`
}

// DivisionKey returns the grouping key for the person's division.
func (p Person) DivisionKey() string {
	if p.Division == "" {
		return UnspecifiedDivision
	}
	return p.Division
}

// TeamKey returns the grouping key for the person's team.
func (p Person) TeamKey() string {
	if p.TeamName == "" {
		return UnknownTeam
	}
	return p.TeamName
}

// TeamInitialKey returns the team's short code or the fallback label.
func (p Person) TeamInitialKey() string {
	if p.TeamInitial == "" {
		return UnknownInitial
	}
	return p.TeamInitial
}

// CardKey identifies a displayed card; duplicate license numbers stay distinct by position.
func (p Person) CardKey(index int) string {
	return fmt.Sprintf("%s-%d", p.LicenseNumber, index)
}

// JerseyText renders the jersey number, reporting false when the person has none.
func (p Person) JerseyText() (string, bool) {
	if p.JerseyNumber == nil {
		return "", false
	}
	text := p.JerseyNumber.String()
	return text, text != ""
}

// IsPlayer reports whether the person is playing personnel.
func (p Person) IsPlayer() bool {
	return p.RoleType == RolePlayer
}

// JerseyNumber accepts both numeric and string values from the export.
type JerseyNumber string

// String returns the jersey number as text.
func (n JerseyNumber) String() string {
	return string(n)
}

// UnmarshalJSON decodes a number or a string.
func (n *JerseyNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = JerseyNumber(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("playerNum: %w", err)
	}
	if i, err := num.Int64(); err == nil {
		*n = JerseyNumber(strconv.FormatInt(i, 10))
		return nil
	}
	*n = JerseyNumber(num.String())
	return nil
}

// NewJerseyNumber returns a pointer to a jersey number, handy for fixtures.
func NewJerseyNumber(v string) *JerseyNumber {
	n := JerseyNumber(v)
	return &n
}

// Snapshot is the immutable roster produced by one load.
type Snapshot struct {
	Records  []Person  `json:"records"`
	LoadedAt time.Time `json:"loadedAt"`
	Source   string    `json:"source"`
}

// NewSnapshot copies records so later mutation of the input cannot leak into the snapshot.
func NewSnapshot(records []Person, loadedAt time.Time, source string) Snapshot {
	copied := make([]Person, len(records))
	copy(copied, records)
	return Snapshot{Records: copied, LoadedAt: loadedAt, Source: source}
}

// Len returns the number of records in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Records)
}

// IsEmpty reports whether the snapshot carries no records.
func (s Snapshot) IsEmpty() bool {
	return len(s.Records) == 0
}
