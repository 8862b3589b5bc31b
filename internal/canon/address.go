// Package canon normalizes free-text addresses into stable cache keys.
package canon

import (
	"regexp"
	"strings"
)

var rePunct = regexp.MustCompile(`[^A-Za-z0-9\s]`)

// Address folds case, punctuation, unit designators, street suffixes and
// spelled-out state names so that variants of one address share a key.
func Address(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = rePunct.ReplaceAllString(s, " ")
	s = collapseSpaces(s)
	s = stripUnit(s)
	s = abbreviateSuffix(" " + s + " ")
	s = abbreviateStates(s)
	return strings.ToLower(collapseSpaces(s))
}

// Zip returns the five-digit form of a US zip ("62701-1234" becomes "62701").
// Anything that does not start with five digits is returned trimmed.
func Zip(raw string) string {
	z := strings.TrimSpace(raw)
	if len(z) >= 5 && isDigits(z[:5]) {
		return z[:5]
	}
	return z
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripUnit drops a unit designator and the unit number that follows it,
// keeping the rest of the line.
func stripUnit(s string) string {
	toks := strings.Fields(s)
	out := toks[:0]
	for i := 0; i < len(toks); i++ {
		switch toks[i] {
		case "APT", "UNIT", "STE", "SUITE":
			i++
			continue
		}
		out = append(out, toks[i])
	}
	return strings.Join(out, " ")
}

var suffixes = map[string]string{
	" STREET ":    " ST ",
	" ROAD ":      " RD ",
	" AVENUE ":    " AVE ",
	" BOULEVARD ": " BLVD ",
	" DRIVE ":     " DR ",
	" LANE ":      " LN ",
	" COURT ":     " CT ",
	" CIRCLE ":    " CIR ",
	" TERRACE ":   " TER ",
	" PLACE ":     " PL ",
	" PARKWAY ":   " PKWY ",
	" HIGHWAY ":   " HWY ",
}

func abbreviateSuffix(s string) string {
	for k, v := range suffixes {
		s = strings.ReplaceAll(s, k, v)
	}
	return s
}

var states = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR", "CALIFORNIA": "CA", "COLORADO": "CO",
	"CONNECTICUT": "CT", "DELAWARE": "DE", "FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI", "IDAHO": "ID",
	"ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA", "KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA",
	"MAINE": "ME", "MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI", "MINNESOTA": "MN",
	"MISSISSIPPI": "MS", "MISSOURI": "MO", "MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM", "NEW YORK": "NY", "NORTH CAROLINA": "NC",
	"NORTH DAKOTA": "ND", "OHIO": "OH", "OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA",
	"RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD", "TENNESSEE": "TN", "TEXAS": "TX",
	"UTAH": "UT", "VERMONT": "VT", "VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV",
	"WISCONSIN": "WI", "WYOMING": "WY",
}

// abbreviateStates only rewrites a state name that ends the line or is
// followed by a zip or the country, so "WASHINGTON ST" stays a street.
func abbreviateStates(s string) string {
	toks := strings.Fields(s)
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		n, abbr := stateAt(toks, i)
		if n == 0 {
			out = append(out, toks[i])
			continue
		}
		out = append(out, abbr)
		i += n - 1
	}
	return strings.Join(out, " ")
}

func stateAt(toks []string, i int) (int, string) {
	for n := 2; n >= 1; n-- {
		if i+n > len(toks) {
			continue
		}
		abbr, ok := states[strings.Join(toks[i:i+n], " ")]
		if !ok {
			continue
		}
		if i+n == len(toks) {
			return n, abbr
		}
		next := toks[i+n]
		if next == "USA" || next == "US" || (len(next) == 5 && isDigits(next)) {
			return n, abbr
		}
	}
	return 0, ""
}
