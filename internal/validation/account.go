package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Account field rules:
// - Full name: 3..100 characters after trimming.
// - Email: a bare RFC 5322 address with a dotted domain, at most 254 bytes.
// - Phone: digits, spaces, '+', '-', '(' and ')', 7..20 characters, at least 7 digits.
var (
	phoneRe       = regexp.MustCompile(`^[0-9+\-() ]{7,20}$`)
	emailDomainRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const (
	FullNameMin = 3
	FullNameMax = 100
	emailMax    = 254
)

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is a plain address (no display name).
func ValidEmail(email string) bool {
	if email == "" || len(email) > emailMax || !emailDomainRe.MatchString(email) {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// ValidFullName checks the trimmed length in runes.
func ValidFullName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= FullNameMin && n <= FullNameMax
}

// ValidPhone checks the allowed alphabet, the length and the digit count.
func ValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !phoneRe.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}
