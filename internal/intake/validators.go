package intake

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	phoneRe = regexp.MustCompile(`^\+?1?\d{10,15}$`)
)

// ValidName accepts letters and interior spaces only.
func ValidName(input string) bool {
	compact := strings.ReplaceAll(input, " ", "")
	if compact == "" {
		return false
	}
	for _, r := range compact {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ValidEmail accepts local@domain.tld addresses.
func ValidEmail(input string) bool {
	return input != "" && emailRe.MatchString(input)
}

// ValidPhone accepts an optional +, optional leading 1 and 10-15 digits,
// ignoring spaces and hyphens.
func ValidPhone(input string) bool {
	compact := strings.NewReplacer(" ", "", "-", "").Replace(input)
	return compact != "" && phoneRe.MatchString(compact)
}

// ValidYears accepts a non-negative whole number of years. Digit-only input
// can never be negative, so no numeric conversion is needed.
func ValidYears(input string) bool {
	if input == "" {
		return false
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MinLength returns a validator accepting answers of at least n characters.
func MinLength(n int) Validator {
	return func(input string) bool {
		return len([]rune(input)) >= n
	}
}
