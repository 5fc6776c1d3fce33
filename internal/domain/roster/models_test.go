package roster

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestPersonJSONTags(t *testing.T) {
	type fieldCheck struct {
		name string
		tag  string
	}
	personType := reflect.TypeOf(Person{})
	fields := []fieldCheck{
		{"FirstName", "name"},
		{"LastName", "lastName"},
		{"JerseyNumber", "playerNum,omitempty"},
		{"LicenseNumber", "numLicence"},
		{"Category", "categorie"},
		{"RoleType", "typeInterv"},
		{"Division", "division"},
		{"TeamName", "teamName"},
		{"TeamInitial", "teamInitial"},
		{"Nationality", "nationalite"},
		{"BirthDate", "dateNaissance"},
		{"Photo", "photo,omitempty"},
	}
	for _, fc := range fields {
		f, ok := personType.FieldByName(fc.name)
		if !ok {
			t.Fatalf("missing field %s", fc.name)
		}
		if tag := f.Tag.Get("json"); tag != fc.tag {
			t.Fatalf("field %s expected tag %s, got %s", fc.name, fc.tag, tag)
		}
	}
}

func TestDecodeExportRecord(t *testing.T) {
	raw := `[
		{"name":"Youssef","lastName":"Msakni","playerNum":7,"numLicence":"100","categorie":"ELITE","typeInterv":"Joueur","division":"Ligue 1","teamName":"Espérance","teamInitial":"EST","nationalite":"Tunisienne","dateNaissance":"1990-10-28"},
		{"name":"Ali","lastName":"Maaloul","playerNum":"12","numLicence":"101"},
		{"name":null,"lastName":"Coach","playerNum":null,"numLicence":"102","typeInterv":"Dirigeant"}
	]`
	var people []Person
	if err := json.Unmarshal([]byte(raw), &people); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(people) != 3 {
		t.Fatalf("expected 3 records, got %d", len(people))
	}
	if text, ok := people[0].JerseyText(); !ok || text != "7" {
		t.Fatalf("expected numeric jersey 7, got %q %v", text, ok)
	}
	if text, ok := people[1].JerseyText(); !ok || text != "12" {
		t.Fatalf("expected string jersey 12, got %q %v", text, ok)
	}
	if _, ok := people[2].JerseyText(); ok {
		t.Fatalf("expected no jersey for null playerNum")
	}
	if people[2].FirstName != "" {
		t.Fatalf("expected null name to decode as empty string")
	}
	if !people[0].IsPlayer() || people[2].IsPlayer() {
		t.Fatalf("unexpected role classification")
	}
}

func TestGroupingKeysFallBack(t *testing.T) {
	p := Person{}
	if p.DivisionKey() != UnspecifiedDivision {
		t.Fatalf("expected division fallback, got %s", p.DivisionKey())
	}
	if p.TeamKey() != UnknownTeam {
		t.Fatalf("expected team fallback, got %s", p.TeamKey())
	}
	if p.TeamInitialKey() != UnknownInitial {
		t.Fatalf("expected initial fallback, got %s", p.TeamInitialKey())
	}

	named := Person{Division: "L1", TeamName: "CA", TeamInitial: "CA"}
	if named.DivisionKey() != "L1" || named.TeamKey() != "CA" || named.TeamInitialKey() != "CA" {
		t.Fatalf("expected explicit keys to be used: %+v", named)
	}
}

func TestCardKeyKeepsDuplicatesDistinct(t *testing.T) {
	p := Person{LicenseNumber: "910919010"}
	if p.CardKey(0) == p.CardKey(1) {
		t.Fatalf("expected card keys to differ by position")
	}
	if p.CardKey(3) != "910919010-3" {
		t.Fatalf("unexpected card key %s", p.CardKey(3))
	}
}

func TestNewSnapshotCopiesRecords(t *testing.T) {
	records := []Person{{FirstName: "A"}}
	snap := NewSnapshot(records, time.Unix(0, 0), "fixture")
	records[0].FirstName = "mutated"
	if snap.Records[0].FirstName != "A" {
		t.Fatalf("expected snapshot to be isolated from input slice")
	}
	if snap.Len() != 1 || snap.IsEmpty() {
		t.Fatalf("unexpected snapshot size")
	}
	if !(Snapshot{}).IsEmpty() {
		t.Fatalf("expected zero snapshot to be empty")
	}
}
