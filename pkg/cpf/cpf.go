// Package cpf validates and normalizes Brazilian CPF numbers.
package cpf

import "strings"

// Normalize strips formatting characters, keeping digits only.
func Normalize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format renders an 11-digit CPF as 000.000.000-00. Inputs that are not
// 11 digits are returned unchanged.
func Format(value string) string {
	digits := Normalize(value)
	if len(digits) != 11 {
		return value
	}
	return digits[:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:]
}

// IsValid reports whether value is a well-formed CPF with correct
// verifier digits. Formatting characters are ignored.
func IsValid(value string) bool {
	digits := Normalize(value)
	if len(digits) != 11 {
		return false
	}

	allSame := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	if verifierDigit(digits[:9]) != int(digits[9]-'0') {
		return false
	}
	if verifierDigit(digits[:10]) != int(digits[10]-'0') {
		return false
	}
	return true
}

func verifierDigit(digits string) int {
	weight := len(digits) + 1
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}
