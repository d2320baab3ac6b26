// Package policy holds the account input rules shared by the server-side
// workflows and the client form controllers, so both reject the same input
// with the same messages.
package policy

import (
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the minimum number of characters in a password.
const MinPasswordLength = 6

// SpecialCharacters is the set a password must draw at least one character from.
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

// Violation messages, in rule declaration order.
const (
	MsgPasswordTooShort   = "Password must be at least 6 characters long"
	MsgPasswordNoNumber   = "Password must contain at least one number"
	MsgPasswordNoSpecial  = "Password must contain at least one special character"
	MsgPasswordNoUpper    = "Password must contain at least one uppercase letter"
	MsgPasswordsDontMatch = "The passwords do not match."
)

// Result is the outcome of checking a password against the policy.
type Result struct {
	Accepted   bool
	Violations []string
}

type rule struct {
	message string
	ok      func(string) bool
}

// rules are all evaluated; every failing rule contributes its message.
var rules = []rule{
	{MsgPasswordTooShort, func(p string) bool { return utf8.RuneCountInString(p) >= MinPasswordLength }},
	{MsgPasswordNoNumber, func(p string) bool { return strings.ContainsAny(p, "0123456789") }},
	{MsgPasswordNoSpecial, func(p string) bool { return strings.ContainsAny(p, SpecialCharacters) }},
	{MsgPasswordNoUpper, func(p string) bool { return strings.ContainsAny(p, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") }},
}

// ValidatePassword checks password against every rule of the policy.
func ValidatePassword(password string) Result {
	violations := []string{}
	for _, r := range rules {
		if !r.ok(password) {
			violations = append(violations, r.message)
		}
	}
	return Result{
		Accepted:   len(violations) == 0,
		Violations: violations,
	}
}

// ValidateConfirmation compares the confirmation byte for byte with the password.
// It returns an empty string when they match.
func ValidateConfirmation(password, confirmation string) string {
	if password != confirmation {
		return MsgPasswordsDontMatch
	}
	return ""
}
