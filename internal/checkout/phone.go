package checkout

import (
	"strings"
	"unicode"
)

// Phone is a calling code plus a local number kept in display form.
type Phone struct {
	CountryCode string `json:"country_code"`
	LocalNumber string `json:"local_number"`
}

// ParsePhone splits a stored phone string into calling code and local number.
// A leading "+<digits>" run becomes the calling code; the remainder, stripped
// of separators, is regrouped as the local number. Without a "+" the whole
// string is the local number.
func ParsePhone(raw string) Phone {
	raw = strings.TrimSpace(raw)

	plus := strings.Index(raw, "+")
	if plus < 0 {
		return Phone{LocalNumber: FormatLocalNumber(raw)}
	}

	rest := raw[plus+1:]
	i := 0
	for i < len(rest) && unicode.IsDigit(rune(rest[i])) {
		i++
	}
	if i == 0 {
		return Phone{LocalNumber: FormatLocalNumber(rest)}
	}

	return Phone{
		CountryCode: "+" + rest[:i],
		LocalNumber: FormatLocalNumber(rest[i:]),
	}
}

// FormatLocalNumber regroups keystroke input as DDD-DDD-DDDD, discarding
// non-digit characters first. Digits past the tenth are dropped, matching the
// input mask.
func FormatLocalNumber(input string) string {
	digits := digitsOnly(input)
	if len(digits) > 10 {
		digits = digits[:10]
	}

	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 6:
		return digits[:3] + "-" + digits[3:]
	default:
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	}
}

// ValidLocalNumber reports whether the local number resolves to exactly 10
// digits once separators are stripped.
func ValidLocalNumber(local string) bool {
	return len(digitsOnly(local)) == 10
}

// FormatFullPhone renders the wire form sent to the profile service:
// "<countryCode> <localNumber>".
func FormatFullPhone(p Phone) string {
	if p.CountryCode == "" {
		return p.LocalNumber
	}
	return p.CountryCode + " " + p.LocalNumber
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
