package scopes

import (
	"slices"
	"sort"
	"strings"
)

const (
	// Wildcard matches every scope.
	Wildcard = "*"

	// Delimiter separates the parts of a hierarchical scope, as in
	// "tickets.assign".
	Delimiter = "."
)

// Matches reports whether a scope satisfies a pattern. Patterns support
// exact matches, the global wildcard "*", and trailing namespace wildcards
// such as "tickets.*" (which matches "tickets.assign" but not "tickets").
func Matches(scope, pattern string) bool {
	if scope == pattern || pattern == Wildcard {
		return true
	}
	if strings.HasSuffix(pattern, Wildcard) {
		prefix := strings.TrimSuffix(pattern, Wildcard)
		prefix = strings.TrimSuffix(prefix, Delimiter)
		return strings.HasPrefix(scope, prefix+Delimiter)
	}
	return false
}

// Has reports whether any granted scope matches the required one.
func Has(granted []string, required string) bool {
	for _, g := range granted {
		if Matches(required, g) {
			return true
		}
	}
	return false
}

// HasAll reports whether every required scope is matched by the granted
// set. An empty requirement is always satisfied.
func HasAll(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(granted) == 0 {
		return false
	}
	if slices.Contains(granted, Wildcard) {
		return true
	}
	for _, req := range required {
		if !Has(granted, req) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one required scope is matched by the
// granted set. An empty requirement is always satisfied.
func HasAny(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(granted) == 0 {
		return false
	}
	if slices.Contains(granted, Wildcard) {
		return true
	}
	for _, req := range required {
		if Has(granted, req) {
			return true
		}
	}
	return false
}

// Normalize removes duplicates and sorts the scopes for stable comparison
// and storage. Returns nil for empty input.
func Normalize(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	unique := make(map[string]struct{}, len(in))
	for _, s := range in {
		unique[s] = struct{}{}
	}
	out := make([]string, 0, len(unique))
	for s := range unique {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
