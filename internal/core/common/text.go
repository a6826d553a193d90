package common

import "strings"

// SplitNonEmpty splits s on sep and drops empty tokens, so trailing or
// doubled separators never produce "" entries.
func SplitNonEmpty(s, sep string) []string {
	var out []string
	for _, tok := range strings.Split(s, sep) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// UniqueStable removes duplicates from values, keeping the first occurrence
// so aggregation output stays deterministic.
func UniqueStable(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// TruncateDecimal cuts a stringified float at its decimal point, turning
// "1200.0" into "1200". Values without a dot pass through untouched.
func TruncateDecimal(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

// SanitizeValue replaces single quotes with carets so values embed safely in
// downstream serialization.
func SanitizeValue(s string) string {
	return strings.ReplaceAll(s, "'", "^")
}
