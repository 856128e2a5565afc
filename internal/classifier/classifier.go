// Package classifier decides whether an SMS body looks like a financial
// transaction notice.
//
// The decision is a pure function of the body text: a substring search of
// the fully lower-cased body over a fixed keyword table, then a
// currency-amount pattern search that folds ASCII letters only. Substring
// matching is not word-bounded, so short keywords such as "rs" also match
// inside words like "hours".
package classifier

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var keywords = []string{
	"debited", "credited", "paid", "received", "transferred",
	"transaction", "payment", "purchase", "withdrawn", "deposit",
	"balance", "account", "bank", "upi", "card", "atm",
	"amount", "rupees", "rs", "inr", "₹",
}

// amountPattern matches a currency marker followed by digits, e.g. "Rs. 500",
// "INR2500" or "₹100". It runs against the original-case body. Case folding
// is ASCII-only, so "Rſ 500" (long s) does not match, and whitespace includes
// the vertical tab.
var amountPattern = regexp.MustCompile(`(₹|[Rr][Ss]\.?|[Ii][Nn][Rr])[\t\n\x0B\f\r ]*[0-9]+`)

// Reason identifies which test produced a verdict.
type Reason string

const (
	ReasonNone    Reason = "none"
	ReasonEmpty   Reason = "empty"
	ReasonKeyword Reason = "keyword"
	ReasonAmount  Reason = "amount_pattern"
)

// Verdict is the explained form of Classify.
type Verdict struct {
	IsTransaction bool   `json:"isTransaction"`
	Reason        Reason `json:"reason"`
	Keyword       string `json:"keyword,omitempty"`
	Amount        string `json:"amount,omitempty"`
}

// Classify reports whether body looks like a transaction message.
func Classify(body string) bool {
	if body == "" {
		return false
	}

	if _, ok := matchKeyword(body); ok {
		return true
	}

	return amountPattern.MatchString(body)
}

// Explain returns the same decision as Classify together with the test that
// produced it. The keyword path is checked first, so a body that satisfies
// both tests reports ReasonKeyword.
func Explain(body string) Verdict {
	if body == "" {
		return Verdict{Reason: ReasonEmpty}
	}

	if kw, ok := matchKeyword(body); ok {
		return Verdict{IsTransaction: true, Reason: ReasonKeyword, Keyword: kw}
	}

	if m := amountPattern.FindString(body); m != "" {
		return Verdict{IsTransaction: true, Reason: ReasonAmount, Amount: m}
	}

	return Verdict{Reason: ReasonNone}
}

// HasAmount reports whether body contains a currency amount, independent of
// the keyword table.
func HasAmount(body string) bool {
	return amountPattern.MatchString(body)
}

// Keywords returns a copy of the keyword table in match order.
func Keywords() []string {
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}

// lowerBody applies the full Unicode lower-case mapping, which turns "İ"
// into "i" plus a combining dot, so "İNR" does not contain "inr".
// strings.ToLower maps "İ" to a plain "i".
func lowerBody(body string) string {
	return cases.Lower(language.Und).String(body)
}

func matchKeyword(body string) (string, bool) {
	lower := lowerBody(body)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}
