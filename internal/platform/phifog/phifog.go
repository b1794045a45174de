// Package phifog generates deterministic synthetic demographics so that
// screens can be shared, demoed, or screenshotted without exposing real
// patient identities. Clinical data is untouched; only identifying fields
// are replaced. The substitution is keyed on the patient ID, so the same
// patient always fogs to the same synthetic identity within and across
// requests.
package phifog

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Header is the request header that switches fogging on for a request.
const Header = "X-PHI-Fog"

var firstNames = []string{
	"Avery", "Blake", "Casey", "Dana", "Ellis", "Finley", "Gray", "Harper",
	"Indigo", "Jordan", "Kai", "Logan", "Morgan", "Noel", "Oakley", "Parker",
	"Quinn", "Riley", "Sage", "Tatum", "Uma", "Vesper", "Wren", "Xen",
}

var lastNames = []string{
	"Alder", "Birch", "Cedar", "Dunewood", "Elmsley", "Fernwall", "Grovern",
	"Hazelton", "Ivorsen", "Juniper", "Kestrel", "Larkspur", "Maplewood",
	"Nightingale", "Oakhurst", "Pinefield", "Quillon", "Rowanberry",
	"Silverbirch", "Thornefield", "Umberley", "Vale", "Willowmere", "Yarrow",
}

var streets = []string{
	"Meadow Lane", "Harbor View Rd", "Summit Ave", "Clearwater St",
	"Ridgeline Dr", "Brookside Ct", "Fernwood Way", "Stonegate Blvd",
}

var cities = []string{
	"Lakemont", "Riverbend", "Fairhaven", "Crestwood",
	"Maple Falls", "Stonebridge", "Willow Creek", "Northpoint",
}

// Identity is a synthetic replacement for a patient's identifying fields.
type Identity struct {
	FirstName   string
	LastName    string
	Phone       string
	Email       string
	AddressLine string
	City        string
}

// IdentityFor derives a synthetic identity from a patient ID. The derivation
// is deterministic: equal IDs yield equal identities.
func IdentityFor(id uuid.UUID) Identity {
	b := id[:]
	seed := int64(binary.BigEndian.Uint64(b[:8]) ^ binary.BigEndian.Uint64(b[8:]))
	rng := rand.New(rand.NewSource(seed))

	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]

	return Identity{
		FirstName:   first,
		LastName:    last,
		Phone:       fmt.Sprintf("555-%03d-%04d", rng.Intn(1000), rng.Intn(10000)),
		Email:       fmt.Sprintf("%s.%s@example.org", strings.ToLower(first), strings.ToLower(last)),
		AddressLine: fmt.Sprintf("%d %s", 100+rng.Intn(9900), streets[rng.Intn(len(streets))]),
		City:        cities[rng.Intn(len(cities))],
	}
}

// Enabled reports whether the request asked for fogged output.
func Enabled(c echo.Context) bool {
	return strings.EqualFold(c.Request().Header.Get(Header), "on")
}
