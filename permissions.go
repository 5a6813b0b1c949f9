package eventkit

import (
	"strings"
)

// AccessMatcher handles field and method name matching with wildcard support.
//
// Supported patterns:
//   - "*" matches everything
//   - "cfp_*" matches names with the prefix (e.g., "cfp_start_at")
//   - "title" matches exactly
type AccessMatcher struct{}

// NewAccessMatcher creates a new AccessMatcher.
func NewAccessMatcher() *AccessMatcher {
	return &AccessMatcher{}
}

// Match checks if an access pattern matches a field or method name.
//
// Examples:
//
//	Match("*", "title")              // true - wildcard matches all
//	Match("cfp_*", "cfp_start_at")   // true - prefix wildcard
//	Match("title", "title")          // true - exact match
//	Match("title", "tagline")        // false - no match
func (am *AccessMatcher) Match(pattern, name string) bool {
	// Exact match
	if pattern == name {
		return true
	}

	// Universal wildcard
	if pattern == "*" {
		return true
	}

	// Prefix wildcard
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}

	return false
}

// MatchAny checks if any of the patterns match the name.
func (am *AccessMatcher) MatchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if am.Match(pattern, name) {
			return true
		}
	}
	return false
}

// Expand returns all names from 'all' that the patterns would grant.
// This is useful for displaying what a role can do.
func (am *AccessMatcher) Expand(patterns []string, all []string) []string {
	matched := make(map[string]bool)

	for _, name := range all {
		for _, pattern := range patterns {
			if am.Match(pattern, name) {
				matched[name] = true
				break
			}
		}
	}

	result := make([]string, 0, len(matched))
	for n := range matched {
		result = append(result, n)
	}
	return result
}

// Validate checks if an access pattern is well-formed.
// A valid pattern is "*", an identifier, or an identifier prefix followed
// by "*".
func (am *AccessMatcher) Validate(pattern string) error {
	if pattern == "" {
		return NewError(ErrInvalidPattern, "pattern cannot be empty")
	}

	if pattern == "*" {
		return nil
	}

	body, _ := strings.CutSuffix(pattern, "*")
	if body == "" {
		return NewError(ErrInvalidPattern, "prefix wildcard requires a prefix")
	}
	for _, c := range body {
		if !isValidAccessChar(c) {
			return NewError(ErrInvalidPattern, "pattern contains invalid character")
		}
	}

	return nil
}

func isValidAccessChar(c rune) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_'
}

// DefaultMatcher is the default access matcher instance.
var DefaultMatcher = NewAccessMatcher()

// MatchAccess is a convenience function using the default matcher.
func MatchAccess(pattern, name string) bool {
	return DefaultMatcher.Match(pattern, name)
}

// MatchAnyAccess is a convenience function using the default matcher.
func MatchAnyAccess(patterns []string, name string) bool {
	return DefaultMatcher.MatchAny(patterns, name)
}
