package delivery

import "regexp"

var phoneNoise = regexp.MustCompile(`[\s\-\(\)]+`)

// NormalizePhone converts a locally written phone number to E.164-ish
// international form: whitespace, hyphens and parentheses are stripped,
// a leading national zero becomes the country code, and a missing plus
// prefix is added.
func NormalizePhone(raw, countryCode string) string {
	number := phoneNoise.ReplaceAllString(raw, "")
	if number == "" {
		return number
	}

	if number[0] == '0' {
		return countryCode + number[1:]
	}
	if number[0] != '+' {
		return "+" + number
	}
	return number
}
