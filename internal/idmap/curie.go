package idmap

import "strings"

// Prefix builds a CURIE from a prefix and a bare identifier: "uniprot",
// "P12345" -> "uniprot:P12345". The prefix is lowercased; identifiers that
// already carry it pass through normalized, and empty input is returned
// unchanged.
func Prefix(prefix, id string) string {
	if prefix == "" || id == "" {
		return id
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if rest, ok := cutPrefixFold(id, prefix+":"); ok {
		return prefix + ":" + rest
	}
	return prefix + ":" + id
}

// cutPrefixFold is strings.CutPrefix under ASCII case folding.
func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) {
		return s, false
	}
	if !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
