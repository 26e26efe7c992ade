// Package normalize provides total normalization functions for amounts,
// identifiers, and dates as they appear in liquidation documents.
//
// Every function is pure and never fails: unparsable input maps to the
// zero value of the target domain so that extraction and validation share
// one canonical form.
package normalize

import (
	"strconv"
	"strings"
	"time"
)

// placeholders are the literal strings the portal prints for an absent
// amount.
var placeholders = map[string]bool{
	"":        true,
	"---":     true,
	"-------": true,
}

// Amount parses a currency string like "$125,880" into minor units: 125880.
// Placeholders ("---", "-------") and unparsable input yield 0.
func Amount(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.TrimSpace(s)
	if placeholders[s] {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// DenormalizeAmount renders a minor-unit value back into the portal's
// currency format, e.g. 125880 -> "$ 125,880". Inverse of Amount for all
// non-negative integers.
func DenormalizeAmount(n int64) string {
	if n < 0 {
		n = 0
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return "$ " + b.String()
}

// RUT strips separators from a Chilean RUT and upper-cases the check
// digit: "12.696.942-k" -> "12696942-K".
func RUT(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToUpper(s)
}

// Date converts "dd/mm/yyyy" to ISO-8601 "yyyy-mm-dd".
// Malformed input yields "".
func Date(s string) string {
	t, err := time.Parse("02/01/2006", strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
