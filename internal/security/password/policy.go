package password

import "unicode/utf8"

// Policy is the password acceptance rule. Only length is enforced.
type Policy struct {
	MinLength int
	// MaxBytes guards bcrypt's 72 byte input limit.
	MaxBytes int
}

func DefaultPolicy() Policy { return Policy{MinLength: 6, MaxBytes: 72} }

// Validate returns the reasons s is rejected, or none.
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if utf8.RuneCountInString(s) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	if p.MaxBytes > 0 && len(s) > p.MaxBytes {
		reasons = append(reasons, "too_long")
	}
	return len(reasons) == 0, reasons
}
