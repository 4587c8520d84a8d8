// Package textutil holds the shared text/phone normalisation primitives used by CV
// matching and candidate lookup — the "Shared utilities" line item of the component
// budget.
package textutil

import "strings"

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// minSignificantDigits is the minimum number of digits required for a phone comparison
// to be considered meaningful. Fewer than this and short local numbers collide with
// unrelated longer ones purely by chance.
const minSignificantDigits = 7

// PhonesMatch reports whether a and b identify the same phone number once normalised
// to digits only, with leading zeros (a national trunk prefix) dropped. A bare
// digit-equality check would miss country-code variants ("+44 7700 900123" vs
// "07700900123"), so either number may be a suffix of the other provided at least
// minSignificantDigits digits overlap.
//
// This suffix rule is a deliberate trade-off: it will produce false positives between
// a short local number and an unrelated longer international number that happens to
// end in the same digits. Acceptable for a recruiting tool operating at modest lead
// volumes; not a general-purpose phone-identity check.
func PhonesMatch(a, b string) bool {
	da, db := strings.TrimLeft(DigitsOnly(a), "0"), strings.TrimLeft(DigitsOnly(b), "0")
	if da == "" || db == "" {
		return false
	}
	if len(da) < minSignificantDigits || len(db) < minSignificantDigits {
		return false
	}
	if da == db {
		return true
	}
	shorter, longer := da, db
	if len(longer) < len(shorter) {
		shorter, longer = longer, shorter
	}
	if len(shorter) < minSignificantDigits {
		return false
	}
	return strings.HasSuffix(longer, shorter)
}
