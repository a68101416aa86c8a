// Package mask redacts personally identifiable fields before they leave
// the API.
package mask

import (
	"regexp"
	"strings"
)

var (
	cpfPattern   = regexp.MustCompile(`^(\d{3})\.\d{3}\.\d{3}-(\d{2})$`)
	celPattern   = regexp.MustCompile(`^(\(\d{2}\) \d)\d{4}(-\d{4})$`)
	yearPattern  = regexp.MustCompile(`^\d{4}`)
	emailPattern = regexp.MustCompile(`^(.{2})(.*)(@.*)$`)
)

// CPF keeps the first three and last two digits of a formatted CPF.
// 123.456.789-01 becomes 123.###.###-01.
func CPF(value string) string {
	return cpfPattern.ReplaceAllString(value, "$1.###.###-$2")
}

// Email keeps the first two characters of the local part and the domain.
// leonardo@example.com becomes le######@example.com.
func Email(value string) string {
	m := emailPattern.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	return m[1] + strings.Repeat("#", len(m[2])) + m[3]
}

// Cel keeps the area code and the last four digits of a formatted
// mobile number. (83) 98877-6655 becomes (83) 9####-6655.
func Cel(value string) string {
	return celPattern.ReplaceAllString(value, "$1####$2")
}

// Birthday hides the year of an ISO date. 1990-12-25 becomes ####-12-25.
func Birthday(value string) string {
	return yearPattern.ReplaceAllString(value, "####")
}

// Name keeps the first word and abbreviates the rest to initials.
// "Maria da Silva" becomes "Maria d. S.".
func Name(value string) string {
	names := strings.Fields(value)
	if len(names) == 0 {
		return value
	}
	if len(names) == 1 {
		return string([]rune(names[0])[0]) + "."
	}
	parts := []string{names[0]}
	for _, n := range names[1:] {
		parts = append(parts, string([]rune(n)[0])+".")
	}
	return strings.Join(parts, " ")
}
