// Package patent converts filing identifiers into the form used by the
// external patent-lookup site.
package patent

import (
	"fmt"
	"regexp"
	"strings"
)

// URLTemplate is the external lookup URL with a %s placeholder for the id.
const URLTemplate = "https://patents.google.com/patent/%s/en"

// SerialDigits is the serial length the lookup site expects.
const SerialDigits = 7

// publicationPattern matches country, year, serial and kind code of a
// separator-free publication number, e.g. US 2021 123456 A1.
var publicationPattern = regexp.MustCompile(`^([A-Z]{2})(\d{4})(\d{6,7})([A-Z][A-Z0-9]?)$`)

// separators are stripped before matching.
var separators = strings.NewReplacer(" ", "", "-", "", "/", "", ".", "", ",", "", "_", "")

// Canonical returns the lookup form of id. Ids that do not look like a
// country/year/serial/kind publication number are returned unchanged.
func Canonical(id string) string {
	stripped := strings.ToUpper(separators.Replace(strings.TrimSpace(id)))
	m := publicationPattern.FindStringSubmatch(stripped)
	if m == nil {
		return id
	}
	country, year, serial, kind := m[1], m[2], m[3], m[4]
	serial = strings.Repeat("0", SerialDigits-len(serial)) + serial
	return country + year + serial + kind
}

// URL returns the external lookup URL for id.
func URL(id string) string {
	return fmt.Sprintf(URLTemplate, Canonical(id))
}
