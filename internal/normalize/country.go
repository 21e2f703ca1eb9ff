package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics removes combining marks left behind by a Unicode
// decomposition, turning e.g. "Côte d'Ivoire" into "Cote d'Ivoire" so it can
// be matched against the plain-ASCII alias table below.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// countryAliasToAlpha2 maps common country names, in their case-folded and
// diacritic-stripped form, to an ISO-3166-1 alpha-2 code. It is intentionally
// small: just the names that show up in free-text "country" fields across
// the two catalogs this engine resolves, not a full ISO-3166 table. No
// library in this codebase's dependency family maps country names to
// alpha-2 codes (see DESIGN.md), so this table is hand-written and
// deliberately scoped to what the phone criterion actually needs.
var countryAliasToAlpha2 = map[string]string{
	"france":                     "FR",
	"united states":              "US",
	"united states of america":   "US",
	"usa":                        "US",
	"us":                         "US",
	"united kingdom":             "GB",
	"great britain":              "GB",
	"uk":                         "GB",
	"germany":                    "DE",
	"deutschland":                "DE",
	"spain":                      "ES",
	"espana":                     "ES",
	"italy":                      "IT",
	"italia":                     "IT",
	"netherlands":                "NL",
	"the netherlands":            "NL",
	"holland":                    "NL",
	"belgium":                    "BE",
	"belgique":                   "BE",
	"switzerland":                "CH",
	"suisse":                     "CH",
	"canada":                     "CA",
	"mexico":                     "MX",
	"brazil":                     "BR",
	"brasil":                     "BR",
	"portugal":                   "PT",
	"ireland":                    "IE",
	"austria":                    "AT",
	"osterreich":                 "AT",
	"sweden":                     "SE",
	"norway":                     "NO",
	"denmark":                    "DK",
	"finland":                    "FI",
	"poland":                     "PL",
	"polska":                     "PL",
	"japan":                      "JP",
	"china":                      "CN",
	"india":                      "IN",
	"australia":                  "AU",
	"new zealand":                "NZ",
	"south africa":               "ZA",
	"luxembourg":                 "LU",
}

// CountryAlpha2 canonicalizes a free-text country name to an ISO-3166-1
// alpha-2 code. It case-folds and strips diacritics before the table lookup
// so variants like "FRANCE" or "Côte d'Ivoire"-style accenting still match.
// Returns "" if the name is not in the table.
func CountryAlpha2(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if ascii, _, err := transform.String(stripDiacritics, key); err == nil {
		key = ascii
	}
	return countryAliasToAlpha2[key]
}
