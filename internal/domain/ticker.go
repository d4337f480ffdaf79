package domain

import (
	"regexp"
	"strings"
)

type Ticker string

// Covers plain equities (NVDA), share classes (BRK-B), indices (^GSPC),
// currencies (EURUSD=X) and exchange suffixes (SAP.DE).
var tickerRe = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.\-=]{0,14}$`)

// NormalizeTicker trims and upper-cases t and reports whether the result is a
// ticker the quote page can be addressed with.
func NormalizeTicker(t string) (Ticker, bool) {
	n := strings.ToUpper(strings.TrimSpace(t))
	if !tickerRe.MatchString(n) {
		return "", false
	}
	return Ticker(n), true
}
