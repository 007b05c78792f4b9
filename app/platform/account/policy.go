package account

import (
	"fmt"
	"regexp"
	"strings"
)

// Deliberately stricter than RFC 5322: we would rather bounce an odd but
// technically valid address than accept a mistyped one.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._%+-]{3,}@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}

	domain := email[strings.LastIndex(email, "@")+1:]
	if !strings.Contains(domain, ".") {
		return false
	}
	parts := strings.Split(domain, ".")
	if len(parts[len(parts)-1]) < 2 {
		return false
	}

	return true
}

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// IsStrongPassword reports whether the password satisfies the policy and,
// when it does not, the first failing rule's message.
func IsStrongPassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "password must be at least 8 characters long"
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		return false, "password must contain at least one uppercase letter"
	}
	if !hasLower {
		return false, "password must contain at least one lowercase letter"
	}
	if !hasDigit {
		return false, "password must contain at least one digit"
	}
	if !hasSymbol {
		return false, fmt.Sprintf("password must contain at least one special character (%s)", passwordSymbols)
	}

	return true, ""
}

// NormalizeEmail applies the canonical form used for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
