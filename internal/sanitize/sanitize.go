// Package sanitize converts untrusted identifier strings into tokens that
// are safe to place in a subprocess argument vector.
//
// This is the only boundary between caller-supplied VM and snapshot names
// and the argv handed to the virtualization controller, so the rules are
// deliberately blunt: anything outside a fixed allowlist is removed, not
// escaped.
package sanitize

import (
	"strings"

	"github.com/google/uuid"
)

// Identifier filters s down to the allowlist [A-Za-z0-9-_{}].
//
// It is total: any input, including empty or pathologically long strings,
// yields a result. Shell metacharacters, whitespace, path separators and
// everything else outside the allowlist are dropped. The filter is a single
// left-to-right pass with no backtracking, so it is linear in len(s).
//
// Identifier is idempotent: allowlist characters are a fixed point, so
// Identifier(Identifier(s)) == Identifier(s). A canonical braced UUID such
// as {12345678-1234-5678-9abc-def012345678} passes through unchanged
// because every one of its characters is already allowed.
func Identifier(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if allowed(c) {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// allowed reports whether c is in the identifier allowlist.
// Braces and hyphens are permitted even outside UUID context so that
// arbitrary display names using them survive.
func allowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '{' || c == '}':
		return true
	}
	return false
}

// IsBracedUUID reports whether s is a braced UUID token of the form
// {8-4-4-4-12}, the shape the controller uses for machine and snapshot IDs.
func IsBracedUUID(s string) bool {
	if len(s) != 38 || s[0] != '{' || s[len(s)-1] != '}' {
		return false
	}
	_, err := uuid.Parse(s[1 : len(s)-1])
	return err == nil
}
