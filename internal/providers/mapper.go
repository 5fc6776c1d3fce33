package providers

import (
	"strings"

	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
)

// PhotoOverrides maps license numbers to a replacement photo reference.
type PhotoOverrides map[string]string

// NormalizeRecords trims identifying text fields and applies photo overrides.
// It returns a new slice; source order is preserved and no record is dropped.
func NormalizeRecords(records []domainroster.Person, overrides PhotoOverrides) []domainroster.Person {
	out := make([]domainroster.Person, len(records))
	for i, p := range records {
		p.FirstName = strings.TrimSpace(p.FirstName)
		p.LastName = strings.TrimSpace(p.LastName)
		p.LicenseNumber = strings.TrimSpace(p.LicenseNumber)
		p.Division = strings.TrimSpace(p.Division)
		p.TeamName = strings.TrimSpace(p.TeamName)
		p.TeamInitial = strings.TrimSpace(p.TeamInitial)
		if photo, ok := overrides[p.LicenseNumber]; ok {
			p.Photo = photo
		}
		out[i] = p
	}
	return out
}
