package testutil

import (
	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

// SamplePerson builds a player record with the grouping fields set.
func SamplePerson(license, division, team string) domainroster.Person {
	return domainroster.Person{
		FirstName:     "Player",
		LastName:      license,
		LicenseNumber: license,
		Category:      domainroster.CategoryElite,
		RoleType:      domainroster.RolePlayer,
		Division:      division,
		TeamName:      team,
		TeamInitial:   "T" + team,
		Nationality:   "TUN",
		BirthDate:     "2000-06-15",
	}
}

// SampleRoster returns a small roster spanning two divisions, two teams and both role types.
func SampleRoster() []domainroster.Person {
	jean := SamplePerson("1", "L1", "A")
	jean.FirstName, jean.LastName = "Jean", "Dupont"
	jean.JerseyNumber = domainroster.NewJerseyNumber("10")

	paul := SamplePerson("2", "L1", "B")
	paul.FirstName, paul.LastName = "Paul", "Martin"
	paul.Category = "U21"
	paul.RoleType = domainroster.RoleOfficial

	marc := SamplePerson("3", "L2", "A")
	marc.FirstName, marc.LastName = "Marc", "Trabelsi"

	return []domainroster.Person{jean, paul, marc}
}
