// Package validation holds the pure field validators for registration and
// password reset. Validators report every violated rule in one pass, in a
// fixed order, so callers can join them into a single deterministic message.
package validation

import (
	"regexp"
	"strings"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 20
	passwordMinLength = 8
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
	specialRe   = regexp.MustCompile(`[!@#$%^&*()_\-=\[\]{};':"\\|,.<>/?]`)
)

// Violation is one broken rule, keyed by the input field it applies to.
type Violation struct {
	Field   string
	Message string
}

type Violations []Violation

// Join concatenates the violation messages in declaration order.
func (v Violations) Join(sep string) string {
	msgs := make([]string, 0, len(v))
	for _, violation := range v {
		msgs = append(msgs, violation.Message)
	}
	return strings.Join(msgs, sep)
}

func (v Violations) OK() bool { return len(v) == 0 }

// Email checks basic local-part@dotted-domain shape. Corporate domain policy
// is layered on top by the auth service, not here.
func Email(value string) Violations {
	if value == "" {
		return Violations{{Field: "email", Message: "Email is required"}}
	}
	if !emailRe.MatchString(value) {
		return Violations{{Field: "email", Message: "Please enter a valid email address"}}
	}
	return nil
}

// Username reports every violated rule: length bounds and the
// letters/digits/underscore charset.
func Username(value string) Violations {
	if value == "" {
		return Violations{{Field: "username", Message: "Username is required"}}
	}
	var out Violations
	if len(value) < usernameMinLength {
		out = append(out, Violation{Field: "username", Message: "Username must be at least 3 characters long"})
	}
	if len(value) > usernameMaxLength {
		out = append(out, Violation{Field: "username", Message: "Username must be less than 20 characters"})
	}
	if !usernameRe.MatchString(value) {
		out = append(out, Violation{Field: "username", Message: "Username can only contain letters, numbers, and underscores"})
	}
	return out
}

// Password reports every unmet strength rule: minimum length plus presence
// of an uppercase letter, a lowercase letter, a digit, and a symbol from the
// fixed punctuation set.
func Password(value string) Violations {
	if value == "" {
		return Violations{{Field: "password", Message: "Password is required"}}
	}
	var out Violations
	if len(value) < passwordMinLength {
		out = append(out, Violation{Field: "password", Message: "Password must be at least 8 characters long"})
	}
	if !uppercaseRe.MatchString(value) {
		out = append(out, Violation{Field: "password", Message: "Password must contain at least one uppercase letter"})
	}
	if !lowercaseRe.MatchString(value) {
		out = append(out, Violation{Field: "password", Message: "Password must contain at least one lowercase letter"})
	}
	if !digitRe.MatchString(value) {
		out = append(out, Violation{Field: "password", Message: "Password must contain at least one number"})
	}
	if !specialRe.MatchString(value) {
		out = append(out, Violation{Field: "password", Message: "Password must contain at least one special character"})
	}
	return out
}
